// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"sync"
	"time"
)

// Timer is a handle to a scheduled delayed call; Stop cancels it if it
// has not fired yet.
type Timer interface {
	Stop() bool
}

// Scheduler is the single logical executor every Runtime started
// through Start or Fork shares: a FIFO next-tick queue plus a timer
// used by resumeLater, fork, and the Delay combinator. It is a
// deliberately minimal stand-in for the host event loop the effect
// algebra treats as an external collaborator — this module ships a
// usable default instead of leaving it abstract.
//
// Real timers fire on their own goroutine, so the queue is guarded by a
// mutex even though the rest of the interpreter assumes a single
// logical thread of execution; RunUntilIdle and Advance are meant to be
// driven from one goroutine at a time.
type Scheduler struct {
	mu      sync.Mutex
	queue   []func()
	virtual bool
	now     time.Duration
	timers  []*virtualTimer
}

// NewScheduler returns a scheduler backed by real OS timers.
func NewScheduler() *Scheduler { return &Scheduler{} }

// NewVirtualScheduler returns a scheduler whose clock only advances
// when Advance is called, for deterministic tests of time-dependent
// behavior (the "mock timer" the testable-property scenarios run
// against).
func NewVirtualScheduler() *Scheduler { return &Scheduler{virtual: true} }

// Schedule enqueues f to run on a later call to RunUntilIdle, in FIFO
// order with every other call queued this way.
func (s *Scheduler) Schedule(f func()) {
	s.mu.Lock()
	s.queue = append(s.queue, f)
	s.mu.Unlock()
}

// RunUntilIdle drains the queue, running newly scheduled work as it
// arrives, until nothing is left.
func (s *Scheduler) RunUntilIdle() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		f := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()
		f()
	}
}

type timerHandle struct{ t *time.Timer }

func (h *timerHandle) Stop() bool { return h.t.Stop() }

type virtualTimer struct {
	at        time.Duration
	fn        func()
	cancelled bool
}

func (t *virtualTimer) Stop() bool {
	fired := t.cancelled
	t.cancelled = true
	return !fired
}

// After schedules f to run once d has elapsed. On a real scheduler f is
// routed through Schedule, so it runs FIFO with respect to other queued
// work. On a virtual scheduler, d only elapses when Advance is called,
// and Advance calls f directly.
func (s *Scheduler) After(d time.Duration, f func()) Timer {
	if !s.virtual {
		t := time.AfterFunc(d, func() { s.Schedule(f) })
		return &timerHandle{t: t}
	}
	vt := &virtualTimer{at: s.now + d, fn: f}
	s.mu.Lock()
	s.timers = append(s.timers, vt)
	s.mu.Unlock()
	return vt
}

// Advance moves a virtual scheduler's clock forward by d, firing every
// timer now due (earliest first) and draining the task queue after
// each, then returns once no further scheduled work remains. It panics
// if called on a scheduler built with NewScheduler.
func (s *Scheduler) Advance(d time.Duration) {
	if !s.virtual {
		panic("fiber: Advance called on a non-virtual scheduler")
	}
	s.mu.Lock()
	s.now += d
	deadline := s.now
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var due *virtualTimer
		dueIdx := -1
		for i, t := range s.timers {
			if t.cancelled {
				continue
			}
			if t.at > deadline {
				continue
			}
			if due == nil || t.at < due.at {
				due, dueIdx = t, i
			}
		}
		if due == nil {
			s.mu.Unlock()
			break
		}
		s.timers = append(s.timers[:dueIdx], s.timers[dueIdx+1:]...)
		s.mu.Unlock()
		due.fn()
		s.RunUntilIdle()
	}
	s.RunUntilIdle()
}
