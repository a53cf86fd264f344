package scheduler_test

import (
	"testing"
	"time"

	"github.com/jypelle/sunface/internal/face/scheduler"
	"github.com/jypelle/sunface/internal/face/scheduler/schedulertest"
)

type runFlag struct {
	run bool
}

func (r *runFlag) ShouldRun() bool {
	return r.run
}

func inline(f func()) {
	f()
}

var origin = time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)

func TestNextDelayIsPhaseAligned(t *testing.T) {
	cases := []struct {
		offset   time.Duration
		expected time.Duration
	}{
		{0, time.Second},
		{1 * time.Millisecond, 999 * time.Millisecond},
		{250 * time.Millisecond, 750 * time.Millisecond},
		{999 * time.Millisecond, 1 * time.Millisecond},
		{1500 * time.Millisecond, 500 * time.Millisecond},
	}

	for _, c := range cases {
		delay := scheduler.NextDelay(origin.Add(c.offset), time.Second)
		if delay != c.expected {
			t.Errorf("offset %v: expected delay %v, got %v", c.offset, c.expected, delay)
		}
	}
}

func TestSubMillisecondCadenceFallsBackToDefault(t *testing.T) {
	for _, cadence := range []time.Duration{-time.Second, 0, 500 * time.Microsecond} {
		if delay := scheduler.NextDelay(origin.Add(250*time.Millisecond), cadence); delay != 750*time.Millisecond {
			t.Errorf("cadence %v: expected delay 750ms, got %v", cadence, delay)
		}

		clock := schedulertest.NewClock(origin.Add(250 * time.Millisecond))
		s := scheduler.NewScheduler(clock, &runFlag{run: true}, cadence, func() {}, inline)
		s.Start()

		pending := clock.Pending()
		if len(pending) != 1 || !pending[0].Equal(origin.Add(time.Second)) {
			t.Errorf("cadence %v: expected one tick at %v, got %v", cadence, origin.Add(time.Second), pending)
		}
	}
}

func TestStartSchedulesOnNextSecondBoundary(t *testing.T) {
	clock := schedulertest.NewClock(origin.Add(250 * time.Millisecond))
	s := scheduler.NewScheduler(clock, &runFlag{run: true}, time.Second, func() {}, inline)

	s.Start()

	pending := clock.Pending()
	if len(pending) != 1 {
		t.Fatalf("Expected 1 pending tick, got %d", len(pending))
	}
	if !pending[0].Equal(origin.Add(time.Second)) {
		t.Errorf("Expected tick at %v, got %v", origin.Add(time.Second), pending[0])
	}
}

func TestTicksEverySecond(t *testing.T) {
	clock := schedulertest.NewClock(origin.Add(250 * time.Millisecond))
	redraws := 0
	s := scheduler.NewScheduler(clock, &runFlag{run: true}, time.Second, func() { redraws++ }, inline)

	s.Start()
	clock.Advance(5 * time.Second)

	if redraws != 5 {
		t.Errorf("Expected 5 redraws, got %d", redraws)
	}
	if s.TickCount() != 5 {
		t.Errorf("Expected 5 ticks, got %d", s.TickCount())
	}
	if len(clock.Pending()) != 1 {
		t.Errorf("Expected the scheduler to stay armed, got %d pending timers", len(clock.Pending()))
	}
}

func TestStartWithoutRunPolicyDoesNothing(t *testing.T) {
	clock := schedulertest.NewClock(origin)
	s := scheduler.NewScheduler(clock, &runFlag{run: false}, time.Second, func() {}, inline)

	s.Start()

	if len(clock.Pending()) != 0 {
		t.Errorf("Expected no pending tick")
	}
	if s.Running() {
		t.Errorf("Expected scheduler not running")
	}
}

func TestRestartKeepsASingleTimer(t *testing.T) {
	clock := schedulertest.NewClock(origin)
	s := scheduler.NewScheduler(clock, &runFlag{run: true}, time.Second, func() {}, inline)

	s.Start()
	s.Start()
	s.Start()

	if len(clock.Pending()) != 1 {
		t.Errorf("Expected 1 pending tick, got %d", len(clock.Pending()))
	}
}

func TestStopIsIdempotent(t *testing.T) {
	clock := schedulertest.NewClock(origin)
	redraws := 0
	s := scheduler.NewScheduler(clock, &runFlag{run: true}, time.Second, func() { redraws++ }, inline)

	s.Start()
	s.Stop()
	s.Stop()
	clock.Advance(10 * time.Second)

	if redraws != 0 {
		t.Errorf("Expected no redraw after Stop, got %d", redraws)
	}
}

// A tick already handed to the loop before Stop must not redraw.
func TestStaleTickIsDiscarded(t *testing.T) {
	clock := schedulertest.NewClock(origin)
	var queue []func()
	post := func(f func()) { queue = append(queue, f) }

	redraws := 0
	s := scheduler.NewScheduler(clock, &runFlag{run: true}, time.Second, func() { redraws++ }, post)

	s.Start()
	clock.Advance(time.Second)
	if len(queue) != 1 {
		t.Fatalf("Expected 1 posted tick, got %d", len(queue))
	}

	s.Stop()
	for _, f := range queue {
		f()
	}

	if redraws != 0 {
		t.Errorf("Expected stale tick to be discarded, got %d redraws", redraws)
	}
	if len(clock.Pending()) != 0 {
		t.Errorf("Expected no re-arm from a stale tick")
	}
}

func TestRequestImmediateRedrawKeepsSchedule(t *testing.T) {
	clock := schedulertest.NewClock(origin.Add(100 * time.Millisecond))
	redraws := 0
	s := scheduler.NewScheduler(clock, &runFlag{run: true}, time.Second, func() { redraws++ }, inline)

	s.Start()
	before := clock.Pending()

	s.RequestImmediateRedraw()

	after := clock.Pending()
	if redraws != 1 {
		t.Errorf("Expected 1 redraw, got %d", redraws)
	}
	if len(before) != 1 || len(after) != 1 || !before[0].Equal(after[0]) {
		t.Errorf("Expected schedule untouched, before %v after %v", before, after)
	}
}

func TestTickStopsWhenPolicyTurnsOff(t *testing.T) {
	clock := schedulertest.NewClock(origin)
	policy := &runFlag{run: true}
	redraws := 0
	s := scheduler.NewScheduler(clock, policy, time.Second, func() { redraws++ }, inline)

	s.Start()
	clock.Advance(time.Second)
	policy.run = false
	clock.Advance(5 * time.Second)

	if redraws != 2 {
		t.Errorf("Expected 2 redraws, got %d", redraws)
	}
	if s.Running() {
		t.Errorf("Expected scheduler to stop re-arming")
	}
}
