package tick

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"tickloop/internal/eventbus"
	"tickloop/pkg/logx"
)

// Handle is an opaque token identifying a pending registration.
// The zero Handle is never issued and cancels nothing.
type Handle uint64

// Options carries optional registration settings.
type Options struct {
	// Name labels the registration in logs, history and snapshots.
	Name string
}

// Config controls the loop.
type Config struct {
	// HistorySize caps the in-memory fire history (default 200).
	HistorySize int
}

// HistoryItem records one callback invocation.
type HistoryItem struct {
	Handle   Handle
	Name     string
	Started  time.Time
	Duration time.Duration
	// Error holds the recovered panic text, if the callback panicked.
	Error string
}

// RegistrationInfo describes one pending registration.
type RegistrationInfo struct {
	Handle Handle
	Name   string
	Kind   string // "once", "interval" or "cron"
	Next   time.Time
	Every  time.Duration // interval kind only
	Spec   string        // cron kind only
}

// Snapshot is a point-in-time view of the loop.
type Snapshot struct {
	Running bool
	Pending []RegistrationInfo
	History []HistoryItem
}

// Bus event types published by the loop.
const (
	EventFired     = "timer.fired"
	EventPanic     = "timer.panic"
	EventCancelled = "timer.cancelled"
)

// FireEvent is the bus payload for EventFired, EventPanic and EventCancelled.
// For EventCancelled only Handle and Name are set.
type FireEvent struct {
	Handle   Handle
	Name     string
	Started  time.Time
	Duration time.Duration
	Error    string
}

// registration is owned by the Loop; all fields except fireAt, seq and
// index are immutable after creation. The mutable ones are guarded by
// Loop.mu.
type registration struct {
	h    Handle
	seq  uint64
	name string
	run  func()

	fireAt time.Time
	every  time.Duration // > 0 => fixed-interval repeating
	sched  cron.Schedule // non-nil => cron repeating
	spec   string        // original cron spec, for snapshots

	index int // heap index; -1 while popped
}

func (r *registration) repeating() bool { return r.every > 0 || r.sched != nil }

func (r *registration) kind() string {
	switch {
	case r.sched != nil:
		return "cron"
	case r.every > 0:
		return "interval"
	default:
		return "once"
	}
}

// Loop is a single-threaded deferred-call scheduler.
//
// All callbacks run on one loop goroutine, run-to-completion. Scheduling
// and cancellation are safe for concurrent use, including from inside
// callbacks.
type Loop struct {
	log    logx.Logger
	parser cron.Parser
	cfg    Config // immutable after New

	mu      sync.Mutex
	regs    map[Handle]*registration
	pq      regHeap
	nextH   uint64
	nextSeq uint64
	stopCh  chan struct{}
	wake    chan struct{}
	loopWG  sync.WaitGroup

	bus eventbus.Bus

	hmu     sync.Mutex
	history []HistoryItem
}

// New creates a stopped Loop. Registrations made before Start are retained
// and become eligible once the loop runs.
func New(cfg Config, log logx.Logger) *Loop {
	return &Loop{
		log: log,
		cfg: cfg,
		// SecondOptional allows both 5-field and 6-field (with seconds) cron specs.
		parser: cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		regs:   map[Handle]*registration{},
	}
}

// SetBus attaches an event bus for fire/panic/cancel events.
// Call before Start.
func (l *Loop) SetBus(bus eventbus.Bus) { l.bus = bus }

// Running reports whether the loop goroutine is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopCh != nil
}

// Len reports the number of pending registrations.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.regs)
}
