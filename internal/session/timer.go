package session

import "time"

// Scheduler abstracts one-shot timers so tests can fire them
// deterministically. The returned stop function reports whether the
// timer was cancelled before firing; a false return means the callback
// already ran or is running, in which case the epoch guard makes it a
// no-op.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (stop func() bool)
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}
