// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// semWaiter is one queued AcquireN request.
type semWaiter struct {
	id   int64
	n    int
	done *Deferred[struct{}]
}

// Semaphore is a FIFO-fair counting semaphore: releases wake waiters in
// arrival order, and a release that only brings the count up to a
// later, smaller waiter's requirement never lets that waiter jump ahead
// of an earlier, larger one still queued.
type Semaphore struct {
	count   int
	waiters []*semWaiter
	nextID  int64
}

// NewSemaphore creates a semaphore with initial permits available. It
// panics if initial is negative.
func NewSemaphore(initial int) *Semaphore {
	if initial < 0 {
		panic("fiber: semaphore initial count must be >= 0")
	}
	return &Semaphore{count: initial}
}

// Count returns the number of permits currently available. It does not
// account for queued waiters; it is a plain read, not an effect, since
// the value can change between observation and use regardless.
func (s *Semaphore) Count() int { return s.count }

// AcquireN suspends until n permits are available, then takes them. A
// request is only satisfied immediately if the queue is empty and
// enough permits are free; otherwise it queues behind every earlier
// waiter. Interrupting a queued acquire removes it from the queue.
func (s *Semaphore) AcquireN(n int) Effect[Never, struct{}] {
	return Suspend[Never, struct{}](func() Effect[Never, struct{}] {
		if n <= 0 {
			return Of[Never, struct{}](struct{}{})
		}
		if len(s.waiters) == 0 && s.count >= n {
			s.count -= n
			return Of[Never, struct{}](struct{}{})
		}
		w := &semWaiter{id: s.nextID, n: n, done: NewDeferred[struct{}]()}
		s.nextID++
		s.waiters = append(s.waiters, w)
		return OnDone(w.done.Wait(), s.removeWaiter(w.id))
	})
}

// Acquire is AcquireN(1).
func (s *Semaphore) Acquire() Effect[Never, struct{}] { return s.AcquireN(1) }

func (s *Semaphore) removeWaiter(id int64) Effect[Never, struct{}] {
	return Suspend[Never, struct{}](func() Effect[Never, struct{}] {
		for i, w := range s.waiters {
			if w.id == id {
				s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
				break
			}
		}
		return Of[Never, struct{}](struct{}{})
	})
}

// ReleaseN returns n permits and wakes as many queued waiters, in
// arrival order, as the resulting count allows — stopping at the first
// waiter it cannot yet satisfy, so a later smaller request never jumps
// ahead of an earlier larger one.
func (s *Semaphore) ReleaseN(n int) Effect[Never, struct{}] {
	return Suspend[Never, struct{}](func() Effect[Never, struct{}] {
		s.count += n
		s.drain()
		return Of[Never, struct{}](struct{}{})
	})
}

// Release is ReleaseN(1).
func (s *Semaphore) Release() Effect[Never, struct{}] { return s.ReleaseN(1) }

func (s *Semaphore) drain() {
	for len(s.waiters) > 0 {
		head := s.waiters[0]
		if s.count < head.n {
			return
		}
		s.count -= head.n
		s.waiters = s.waiters[1:]
		head.done.fillNow(struct{}{})
	}
}

// TryAcquireN takes n permits and resumes with true if they are
// immediately available without queueing, or resumes with false and
// takes nothing otherwise.
func (s *Semaphore) TryAcquireN(n int) Effect[Never, bool] {
	return Suspend[Never, bool](func() Effect[Never, bool] {
		if len(s.waiters) == 0 && s.count >= n {
			s.count -= n
			return Of[Never, bool](true)
		}
		return Of[Never, bool](false)
	})
}

// TryAcquire is TryAcquireN(1).
func (s *Semaphore) TryAcquire() Effect[Never, bool] { return s.TryAcquireN(1) }

// WithPermitsN acquires n permits, runs body, and releases n permits
// when body exits — success, failure, or interruption.
func WithPermitsN[A any](s *Semaphore, n int, body Effect[Never, A]) Effect[Never, A] {
	return Chain(s.AcquireN(n), func(struct{}) Effect[Never, A] {
		return OnDone(body, s.ReleaseN(n))
	})
}

// WithPermit is WithPermitsN(s, 1, body).
func WithPermit[A any](s *Semaphore, body Effect[Never, A]) Effect[Never, A] {
	return WithPermitsN(s, 1, body)
}
