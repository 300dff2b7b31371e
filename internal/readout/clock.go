package readout

import "time"

// Clock abstracts time so the controller's interval and cap logic is
// deterministically testable without real waits.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancellable pending callback
type Timer interface {
	Stop() bool
}

// realClock delegates to the time package
type realClock struct{}

// NewRealClock returns the production wall clock
func NewRealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
