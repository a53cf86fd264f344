// Package press turns sampled button levels into press and release events.
package press

import (
	"time"

	"github.com/jypelle/sunface/internal/srv/event"
)

const (
	// Step is the interval between two press events while a button is held.
	Step = 160 * time.Millisecond
	// Debounce is how long a level must hold before it is trusted.
	Debounce = 20 * time.Millisecond
	// LongPress is the step count of a held button that asks for power off.
	LongPress = 20
)

type Event struct {
	Type  event.ButtonEventType
	Steps int64
}

// Tracker follows one button. The first press event is step 1, then one more
// step is counted every Step while held. The release reports the steps reached.
type Tracker struct {
	level      bool
	levelSince time.Time
	pressed    bool
	steps      int64
	lastStep   time.Time
}

// Update feeds the level sampled at now (true when pressed) and returns the
// event due, if any.
func (t *Tracker) Update(level bool, now time.Time) (Event, bool) {
	if level != t.level {
		t.level = level
		t.levelSince = now
	}
	if now.Sub(t.levelSince) < Debounce {
		return Event{}, false
	}

	switch {
	case !t.level && t.pressed:
		steps := t.steps
		t.pressed = false
		t.steps = 0
		return Event{Type: event.RELEASE_EVENT_TYPE, Steps: steps}, true
	case t.level && !t.pressed:
		t.pressed = true
		t.steps = 1
		t.lastStep = now
		return Event{Type: event.PRESS_EVENT_TYPE, Steps: 1}, true
	case t.level && now.Sub(t.lastStep) >= Step:
		t.steps++
		t.lastStep = now
		return Event{Type: event.PRESS_EVENT_TYPE, Steps: t.steps}, true
	}
	return Event{}, false
}
