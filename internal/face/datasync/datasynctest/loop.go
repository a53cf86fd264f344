package datasynctest

import (
	"time"
)

// Loop stands in for the engine loop: callbacks posted from transport
// goroutines are run by the test goroutine only.
type Loop struct {
	tasks chan func()
}

func NewLoop() *Loop {
	return &Loop{tasks: make(chan func(), 256)}
}

func (l *Loop) Post(f func()) {
	l.tasks <- f
}

// RunUntil runs posted callbacks until cond holds. It returns false on timeout.
func (l *Loop) RunUntil(timeout time.Duration, cond func() bool) bool {
	deadline := time.After(timeout)
	for {
		if cond() {
			return true
		}
		select {
		case f := <-l.tasks:
			f()
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			return cond()
		}
	}
}

// RunFor runs posted callbacks during d.
func (l *Loop) RunFor(d time.Duration) {
	deadline := time.After(d)
	for {
		select {
		case f := <-l.tasks:
			f()
		case <-deadline:
			return
		}
	}
}
