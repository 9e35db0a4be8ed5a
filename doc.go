// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fiber lets a program build a value describing a concurrent,
// failure-aware computation and execute it on a cooperatively-scheduled
// single-threaded event loop.
//
// An Effect[E, A] is an immutable description of a computation that
// either produces a value of type A, fails with a typed cause carrying
// an E, or is interrupted. Building an Effect performs no work: Of,
// Failed, Raised, Suspend, Async, Critical, Chain, ChainError, OnDone
// and OnInterrupted all just construct a tree. Nothing runs until a
// Runtime steps it.
//
// A Runtime drives one Effect to completion using an iterative step
// loop instead of recursive evaluation, so a long synchronous chain
// pipeline does not grow the Go call stack. The loop dispatches on the
// Effect's tag, maintains an explicit call-frame stack for chain
// continuations, error handlers, and finalizers, and yields back to its
// Scheduler whenever it hits an Async boundary. Asynchronous
// resumption is one-shot: a ContextSwitch can be resumed (or
// interrupted) exactly once, enforced by an affine latch shared between
// the two paths.
//
// Interruption is cooperative. A Fiber wrapping a Runtime can be asked
// to interrupt; the runtime finishes its current critical section (if
// any) before honoring the request, then runs every Finalize and
// Interrupt frame still on its stack — innermost first — before
// settling on Result.Interrupted. A finalizer's own failure during an
// ordinary (non-interrupted) exit is folded into the outgoing cause via
// And; during interrupt-finalization a finalizer's failure is swallowed
// and the terminal outcome is always Interrupted.
//
// Fiber, Ref, Deferred, Semaphore and Mutex expose their operations as
// Effect values returned from their methods. Ref, Deferred, Semaphore
// and Mutex never touch a Runtime; Fiber reaches its Runtime only
// through the result cell and the interrupt request. A Semaphore keeps a FIFO
// queue of waiters so that releases wake requesters in arrival order
// and never let a later, smaller request jump ahead of an earlier,
// larger one still waiting on permits.
//
// Delay and Race are small combinators built the same way any caller
// would build them, included because they are the natural way to
// exercise the Scheduler's timer and the async suspension path end to
// end.
package fiber
