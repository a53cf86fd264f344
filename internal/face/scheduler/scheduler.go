package scheduler

import (
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultCadence = time.Second

// RunPolicy decides whether periodic ticks are wanted at all.
type RunPolicy interface {
	ShouldRun() bool
}

// Scheduler re-arms a single timer after every tick, aligned on cadence
// boundaries of the wall clock.
//
// Timer callbacks fire on the clock's goroutine; they are handed to post,
// which must run them on the engine loop. Every method of the Scheduler must
// be called from that loop.
type Scheduler struct {
	clock   Clock
	policy  RunPolicy
	cadence time.Duration
	redraw  func()
	post    func(func())

	generation uint64
	pending    Timer
	tickCount  uint64
}

func NewScheduler(clock Clock, policy RunPolicy, cadence time.Duration, redraw func(), post func(func())) *Scheduler {
	if cadence < time.Millisecond {
		cadence = DefaultCadence
	}
	return &Scheduler{
		clock:   clock,
		policy:  policy,
		cadence: cadence,
		redraw:  redraw,
		post:    post,
	}
}

// NextDelay is the time left until the next cadence boundary strictly after now.
// Cadences under a millisecond fall back to DefaultCadence.
func NextDelay(now time.Time, cadence time.Duration) time.Duration {
	if cadence < time.Millisecond {
		cadence = DefaultCadence
	}
	nowMs := now.UnixNano() / int64(time.Millisecond)
	cadenceMs := int64(cadence / time.Millisecond)
	return time.Duration(cadenceMs-nowMs%cadenceMs) * time.Millisecond
}

func (s *Scheduler) Start() {
	s.cancel()
	if !s.policy.ShouldRun() {
		return
	}

	generation := s.generation
	delay := NextDelay(s.clock.Now(), s.cadence)
	s.pending = s.clock.AfterFunc(delay, func() {
		s.post(func() {
			s.tick(generation)
		})
	})
}

func (s *Scheduler) Stop() {
	s.cancel()
}

// RequestImmediateRedraw redraws without touching the pending tick.
func (s *Scheduler) RequestImmediateRedraw() {
	s.redraw()
}

// Running tells whether a tick is currently armed.
func (s *Scheduler) Running() bool {
	return s.pending != nil
}

func (s *Scheduler) TickCount() uint64 {
	return s.tickCount
}

func (s *Scheduler) cancel() {
	s.generation++
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
}

func (s *Scheduler) tick(generation uint64) {
	if generation != s.generation {
		logrus.Debugf("Discard stale tick (generation %d, current %d)", generation, s.generation)
		return
	}
	s.pending = nil
	s.tickCount++
	s.redraw()
	s.Start()
}
