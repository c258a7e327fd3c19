package fiber

import "time"

// Deadline is the budget the host grants for one batch of work units.
type Deadline interface {
	// TimeRemaining is the time left in the current slice.
	TimeRemaining() time.Duration

	// DidTimeout reports that the callback is overdue and must make
	// progress regardless of TimeRemaining.
	DidTimeout() bool
}

// IdleRequester is the host's scheduling primitive. It calls cb later with a
// fresh deadline; timeout is a hint for how long the host may postpone it.
type IdleRequester interface {
	RequestIdle(cb func(Deadline), timeout time.Duration)
}

// IdleRequesterFunc adapts a function to IdleRequester.
type IdleRequesterFunc func(cb func(Deadline), timeout time.Duration)

// RequestIdle implements IdleRequester.
func (f IdleRequesterFunc) RequestIdle(cb func(Deadline), timeout time.Duration) {
	f(cb, timeout)
}

type overdue struct{}

func (overdue) TimeRemaining() time.Duration { return 0 }
func (overdue) DidTimeout() bool             { return true }

// Overdue returns a deadline that never yields.
func Overdue() Deadline { return overdue{} }

type wallClock struct {
	end time.Time
	now func() time.Time
}

func (w wallClock) TimeRemaining() time.Duration {
	if r := w.end.Sub(w.now()); r > 0 {
		return r
	}
	return 0
}

func (wallClock) DidTimeout() bool { return false }

// Budget returns a deadline that expires d from now.
func Budget(d time.Duration) Deadline {
	return wallClock{end: time.Now().Add(d), now: time.Now}
}

// units grants a fixed number of work units. Each TimeRemaining call
// consumes one.
type units struct{ left int }

func (u *units) TimeRemaining() time.Duration {
	u.left--
	if u.left > 0 {
		return time.Hour
	}
	return 0
}

func (*units) DidTimeout() bool { return false }

// Units returns a deadline that lets exactly n work units run, which makes
// interruption points deterministic.
func Units(n int) Deadline { return &units{left: n} }
