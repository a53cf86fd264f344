// Package schedulertest provides a manual clock for driving the scheduler in tests.
package schedulertest

import (
	"sort"
	"sync"
	"time"

	"github.com/jypelle/sunface/internal/face/scheduler"
)

type Clock struct {
	lock   sync.Mutex
	now    time.Time
	timers []*Timer
}

type Timer struct {
	clock   *Clock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

func (c *Clock) AfterFunc(d time.Duration, f func()) scheduler.Timer {
	c.lock.Lock()
	defer c.lock.Unlock()
	t := &Timer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *Timer) Stop() bool {
	t.clock.lock.Lock()
	defer t.clock.lock.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves the clock forward, firing due timers in order. Timers created
// by a firing callback are fired too when they fall inside the window.
func (c *Clock) Advance(d time.Duration) {
	c.lock.Lock()
	target := c.now.Add(d)
	c.lock.Unlock()

	for {
		c.lock.Lock()
		next := c.nextLocked()
		if next == nil || next.at.After(target) {
			c.now = target
			c.lock.Unlock()
			return
		}
		c.now = next.at
		next.fired = true
		c.lock.Unlock()

		next.f()
	}
}

// Pending returns the fire times of active timers, earliest first.
func (c *Clock) Pending() []time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()

	var out []time.Time
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.at)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (c *Clock) nextLocked() *Timer {
	var next *Timer
	for _, t := range c.timers {
		if t.stopped || t.fired {
			continue
		}
		if next == nil || t.at.Before(next.at) {
			next = t
		}
	}
	return next
}
