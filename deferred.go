// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// Deferred[A] is an asynchronous one-shot cell: Wait suspends until
// some other effect Fills it, however many fibers are waiting.
type Deferred[A any] struct {
	cell OneShot[A]
}

// NewDeferred creates an empty deferred.
func NewDeferred[A any]() *Deferred[A] { return &Deferred[A]{} }

// Wait suspends until the deferred is filled, then resumes with the
// stored value. Interrupting the waiting fiber simply removes its
// listener; it does not affect other waiters or the deferred itself.
func (d *Deferred[A]) Wait() Effect[Never, A] {
	return Async[Never, A](func(cs ContextSwitch[Never, A]) {
		id := d.cell.Listen(func(v A) { cs.Resume(ValueResult[Never, A](v)) })
		cs.SetAbort(func() { d.cell.Unlisten(id) })
	})
}

// fillNow performs the fill synchronously; it backs the Fill effect and
// is also used directly by primitives (like Semaphore) that need to
// wake a waiter from inside their own plain Go bookkeeping.
func (d *Deferred[A]) fillNow(a A) { d.cell.Set(a) }

// Fill completes the deferred with a. Filling an already-full deferred
// is a programmer error and panics, the same as OneShot.Set.
func (d *Deferred[A]) Fill(a A) Effect[Never, struct{}] {
	return Suspend[Never, struct{}](func() Effect[Never, struct{}] {
		d.fillNow(a)
		return Of[Never, struct{}](struct{}{})
	})
}

// IsEmpty reports whether the deferred has not yet been filled.
func (d *Deferred[A]) IsEmpty() bool { return !d.cell.IsSet() }

// IsFull reports whether the deferred has been filled.
func (d *Deferred[A]) IsFull() bool { return d.cell.IsSet() }
