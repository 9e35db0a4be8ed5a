// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "github.com/google/uuid"

// Fiber is a handle to a running (or already settled) Runtime. It
// exposes the runtime's lifecycle entirely through Effect values —
// Join, Wait, Interrupt, InterruptAndWait — which reach the runtime only
// through its result cell and its interrupt request.
type Fiber[E, A any] struct {
	ID uuid.UUID
	rt *Runtime[E, A]
}

// Fork starts eff on a fresh Runtime sharing scheduler, on the
// scheduler's next tick (so forking never runs the child synchronously
// inside the parent's own step, breaking left-recursion the way a real
// event loop's task queue does), and returns a handle to it
// immediately.
func Fork[E, A any](scheduler *Scheduler, eff Effect[E, A]) *Fiber[E, A] {
	rt := NewRuntime[E, A](scheduler)
	f := &Fiber[E, A]{ID: rt.ID(), rt: rt}
	scheduler.Schedule(func() { rt.Start(eff) })
	return f
}

// ForkWithObserver is Fork with a lifecycle observer attached.
func ForkWithObserver[E, A any](scheduler *Scheduler, observer Observer, eff Effect[E, A]) *Fiber[E, A] {
	rt := NewRuntime[E, A](scheduler).WithObserver(observer)
	f := &Fiber[E, A]{ID: rt.ID(), rt: rt}
	scheduler.Schedule(func() { rt.Start(eff) })
	return f
}

// Join awaits the fiber's success value, propagating a typed failure
// or turning an observed interruption into an Abort defect — this
// effect's own E is the target's E, so a genuine failure on the target
// simply is a genuine failure here.
func (f *Fiber[E, A]) Join() Effect[E, A] {
	return Async[E, A](func(cs ContextSwitch[E, A]) {
		id := f.rt.Result().Listen(func(r Result[E, A]) {
			switch {
			case r.IsValue():
				cs.Resume(ValueResult[E, A](r.Value()))
			case r.IsFailure():
				cs.Resume(FailureResult[E, A](r.Cause()))
			default:
				cs.Resume(FailureResult[E, A](AbortCause[E]("fiber: join observed interruption")))
			}
		})
		cs.SetAbort(func() { f.rt.Result().Unlisten(id) })
	})
}

// Wait observes the fiber's terminal FiberResult as a plain value; it
// never fails, regardless of how the target settled.
func (f *Fiber[E, A]) Wait() Effect[Never, FiberResult[E, A]] {
	return Async[Never, FiberResult[E, A]](func(cs ContextSwitch[Never, FiberResult[E, A]]) {
		id := f.rt.Result().Listen(func(r Result[E, A]) {
			cs.Resume(ValueResult[Never, FiberResult[E, A]](r))
		})
		cs.SetAbort(func() { f.rt.Result().Unlisten(id) })
	})
}

// Interrupt requests cooperative interruption of the fiber and returns
// immediately without waiting for it to settle.
func (f *Fiber[E, A]) Interrupt() Effect[Never, struct{}] {
	return Suspend[Never, struct{}](func() Effect[Never, struct{}] {
		f.rt.interrupt()
		return Of[Never, struct{}](struct{}{})
	})
}

// InterruptAndWait requests interruption and awaits the fiber's
// terminal result.
func (f *Fiber[E, A]) InterruptAndWait() Effect[Never, FiberResult[E, A]] {
	return Chain(f.Interrupt(), func(struct{}) Effect[Never, FiberResult[E, A]] {
		return f.Wait()
	})
}
