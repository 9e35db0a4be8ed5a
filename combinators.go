// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"sync/atomic"
	"time"
)

// Delay succeeds after d has elapsed on scheduler's clock. Interrupting
// a fiber suspended in Delay cancels the underlying timer.
func Delay[E any](scheduler *Scheduler, d time.Duration) Effect[E, struct{}] {
	return Async[E, struct{}](func(cs ContextSwitch[E, struct{}]) {
		timer := scheduler.After(d, func() {
			cs.Resume(ValueResult[E, struct{}](struct{}{}))
		})
		cs.SetAbort(func() { timer.Stop() })
	})
}

// Race runs a and b as separate fibers and resumes with whichever
// settles first, interrupting (without waiting on) the loser. The
// natural way to use it for a timeout is Race(work, Delay[E](sched,
// d)) — the half that wins determines whether the result is the work's
// own outcome or the timeout's empty success.
func Race[E, A any](scheduler *Scheduler, a, b Effect[E, A]) Effect[E, A] {
	return Async[E, A](func(cs ContextSwitch[E, A]) {
		fa := Fork(scheduler, a)
		fb := Fork(scheduler, b)

		var settled atomic.Uintptr
		finish := func(r FiberResult[E, A], loser *Fiber[E, A]) {
			if settled.Add(1) != 1 {
				return
			}
			loser.rt.interrupt()
			switch {
			case r.IsValue():
				cs.Resume(ValueResult[E, A](r.Value()))
			case r.IsFailure():
				cs.Resume(FailureResult[E, A](r.Cause()))
			default:
				cs.Resume(FailureResult[E, A](AbortCause[E]("fiber: race branch was interrupted")))
			}
		}

		fa.rt.Result().Listen(func(r Result[E, A]) { finish(r, fb) })
		fb.rt.Result().Listen(func(r Result[E, A]) { finish(r, fa) })

		cs.SetAbort(func() {
			fa.rt.interrupt()
			fb.rt.interrupt()
		})
	})
}
