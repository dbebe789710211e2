package tick

import (
	"errors"
	"fmt"
	"time"
)

// ScheduleCron registers fn to fire per a cron expression until cancelled.
//
// Accepted formats: 5-field (min hour dom mon dow) or 6-field (with
// seconds) cron specs, descriptors like "@hourly", and "@every 55m".
// Execution happens on the loop like every other registration; cron only
// supplies the ready times.
func (l *Loop) ScheduleCron(spec string, fn func()) (Handle, error) {
	return l.ScheduleCronOpt(spec, Options{}, fn)
}

// ScheduleCronOpt is ScheduleCron with options.
func (l *Loop) ScheduleCronOpt(spec string, opt Options, fn func()) (Handle, error) {
	if fn == nil {
		return 0, errors.New("callback required")
	}
	sched, err := l.parser.Parse(spec)
	if err != nil {
		return 0, fmt.Errorf("parse cron spec %q: %w", spec, err)
	}
	now := time.Now()
	next := sched.Next(now)
	if next.IsZero() {
		return 0, fmt.Errorf("cron spec %q has no upcoming run", spec)
	}
	return l.add(next, 0, sched, spec, opt, fn), nil
}
