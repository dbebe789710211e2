package tick

import "sort"

// Snapshot returns a point-in-time view of the loop: pending registrations
// (soonest first) and a copy of the bounded fire history.
func (l *Loop) Snapshot() Snapshot {
	l.mu.Lock()
	running := l.stopCh != nil
	pending := make([]RegistrationInfo, 0, len(l.regs))
	for _, r := range l.regs {
		pending = append(pending, RegistrationInfo{
			Handle: r.h,
			Name:   r.name,
			Kind:   r.kind(),
			Next:   r.fireAt,
			Every:  r.every,
			Spec:   r.spec,
		})
	}
	l.mu.Unlock()

	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].Next.Equal(pending[j].Next) {
			return pending[i].Next.Before(pending[j].Next)
		}
		return pending[i].Handle < pending[j].Handle
	})

	l.hmu.Lock()
	hist := make([]HistoryItem, len(l.history))
	copy(hist, l.history)
	l.hmu.Unlock()

	return Snapshot{
		Running: running,
		Pending: pending,
		History: hist,
	}
}

// History returns a copy of the bounded fire history.
func (l *Loop) History() []HistoryItem {
	l.hmu.Lock()
	defer l.hmu.Unlock()
	out := make([]HistoryItem, len(l.history))
	copy(out, l.history)
	return out
}
