// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"strings"

	"github.com/google/uuid"
)

// Runtime drives a single Effect[E, A] to completion using an iterative
// step loop: the explicit call-frame stack (frame.go) plays the role a
// native call stack would, so a long synchronous chain pipeline does
// not grow the Go goroutine stack.
type Runtime[E, A any] struct {
	id         uuid.UUID
	scheduler  *Scheduler
	observer   Observer
	result     OneShot[Result[E, A]]
	stack      []callFrame
	cs         *contextSwitch
	critical   int
	interrupted bool
	suspended  bool
	finalizing bool
	started    bool
}

// NewRuntime creates a runtime bound to scheduler. It does not start
// running until Start is called.
func NewRuntime[E, A any](scheduler *Scheduler) *Runtime[E, A] {
	return &Runtime[E, A]{id: uuid.New(), scheduler: scheduler}
}

// WithObserver installs an optional lifecycle observer and returns the
// runtime, for convenient chaining after NewRuntime.
func (rt *Runtime[E, A]) WithObserver(o Observer) *Runtime[E, A] {
	rt.observer = o
	return rt
}

// ID identifies this runtime, and the fiber built on top of it.
func (rt *Runtime[E, A]) ID() uuid.UUID { return rt.id }

// Result is the runtime's own completion cell; Fiber.Join/Wait attach
// listeners to it.
func (rt *Runtime[E, A]) Result() *OneShot[Result[E, A]] { return &rt.result }

// Start begins stepping eff. It is a programmer error to call Start
// twice on the same runtime.
func (rt *Runtime[E, A]) Start(eff Effect[E, A]) {
	if rt.started {
		panic("fiber: runtime started twice")
	}
	rt.started = true
	if rt.observer != nil {
		rt.observer.OnFiberEvent(FiberEvent{FiberID: rt.id, Kind: FiberStarted})
	}
	rt.run(eff.node)
}

func (rt *Runtime[E, A]) complete(r Result[E, A]) {
	if rt.finalizing {
		r = InterruptedResult[E, A]()
	}
	if rt.observer != nil {
		kind := FiberCompleted
		if r.IsInterrupted() {
			kind = FiberInterrupted
		}
		rt.observer.OnFiberEvent(FiberEvent{FiberID: rt.id, Kind: kind, Outcome: r})
	}
	rt.result.Set(r)
}

// run is the step loop (spec §4.3.1). It reduces current one tag at a
// time until the fiber suspends on an async boundary or completes.
func (rt *Runtime[E, A]) run(current effectNode) {
	for current != nil {
		if rt.interrupted && rt.critical == 0 && !rt.finalizing {
			rt.beginInterruptFinalize()
			return
		}
		switch n := current.(type) {
		case ofNode:
			current = rt.succeed(n.value)
		case failedNode:
			current = rt.unwind(Cause[Erased]{kind: causeRaise, raise: n.err})
		case raisedNode:
			current = rt.unwind(n.cause)
		case suspendNode:
			current = rt.reduceSuspend(n)
		case asyncNode:
			rt.installAsync(n)
			return
		case criticalNode:
			current = rt.enterCritical(n)
		case chainNode:
			rt.stack = append(rt.stack, acquireChainFrame(n.k))
			current = n.inner
		case chainErrorNode:
			rt.stack = append(rt.stack, acquireErrorFrame(n.k))
			current = n.inner
		case onDoneNode:
			rt.stack = append(rt.stack, acquireFinalizeFrame(criticalNode{inner: n.finalizer}))
			current = n.inner
		case onInterruptedNode:
			rt.stack = append(rt.stack, acquireInterruptFrame(criticalNode{inner: n.handler}))
			current = n.inner
		default:
			panic("fiber: unrecognized effect node")
		}
	}
}

func (rt *Runtime[E, A]) reduceSuspend(n suspendNode) (next effectNode) {
	defer func() {
		if r := recover(); r != nil {
			if s, ok := r.(string); ok && strings.HasPrefix(s, "fiber: ") {
				panic(r)
			}
			next = raisedNode{cause: Cause[Erased]{kind: causeAbort, abort: r}}
		}
	}()
	return n.thunk()
}

func (rt *Runtime[E, A]) enterCritical(n criticalNode) effectNode {
	rt.critical++
	decrement := suspendNode{thunk: func() effectNode {
		rt.critical--
		return ofNode{value: struct{}{}}
	}}
	// The decrement goes straight onto the stack as a finalize frame:
	// onDoneNode would wrap it in another critical section, whose own
	// decrement would be wrapped again, without end.
	rt.stack = append(rt.stack, acquireFinalizeFrame(decrement))
	return n.inner
}

// popFrameWithFinalizers pops frames against a successful value v,
// consuming the first chain or finalize frame it meets. Error and
// Interrupt frames pass v through unchanged — they are only meaningful
// on the unwind path — so they are simply discarded here. ok is false
// once the stack is empty, meaning v is the fiber's final value.
func (rt *Runtime[E, A]) popFrameWithFinalizers(v Erased) (next effectNode, ok bool) {
	for len(rt.stack) > 0 {
		top := rt.stack[len(rt.stack)-1]
		rt.stack = rt.stack[:len(rt.stack)-1]
		switch f := top.(type) {
		case *chainFrame:
			k := f.k
			releaseChainFrame(f)
			return k(v), true
		case *finalizeFrame:
			fin := f.effect
			releaseFinalizeFrame(f)
			return chainNode{inner: resurrectNode(fin), k: func(res Erased) effectNode {
				outcome := res.(erasedFinalizerOutcome)
				if outcome.failed {
					return raisedNode{cause: outcome.cause}
				}
				return ofNode{value: v}
			}}, true
		case *errorFrame:
			releaseErrorFrame(f)
		case *interruptFrame:
			releaseInterruptFrame(f)
		}
	}
	return nil, false
}

// succeed advances the loop with a successful value, completing the
// fiber once the stack empties.
func (rt *Runtime[E, A]) succeed(v Erased) effectNode {
	next, ok := rt.popFrameWithFinalizers(v)
	if ok {
		return next
	}
	if rt.finalizing {
		rt.complete(InterruptedResult[E, A]())
	} else {
		rt.complete(ValueResult[E, A](v.(A)))
	}
	return nil
}

// unwind begins or continues an error unwind for cause (spec §4.3.2):
// pop frames until an Error frame is found or the stack empties,
// collecting Finalize frames along the way (in pop order, i.e.
// innermost first). Chain and Interrupt frames are discarded silently.
// Each collected finalizer is resurrected and, if it fails on its own,
// its cause is folded into the outgoing one via And.
func (rt *Runtime[E, A]) unwind(cause Cause[Erased]) effectNode {
	var finalizers []effectNode
	var caught *errorFrame
	for len(rt.stack) > 0 {
		top := rt.stack[len(rt.stack)-1]
		rt.stack = rt.stack[:len(rt.stack)-1]
		switch f := top.(type) {
		case *chainFrame:
			releaseChainFrame(f)
			continue
		case *interruptFrame:
			releaseInterruptFrame(f)
			continue
		case *finalizeFrame:
			finalizers = append(finalizers, f.effect)
			releaseFinalizeFrame(f)
			continue
		case *errorFrame:
			caught = f
		}
		break
	}

	if len(finalizers) == 0 {
		if caught != nil {
			k := caught.k
			releaseErrorFrame(caught)
			return k(cause)
		}
		if rt.finalizing {
			rt.complete(InterruptedResult[E, A]())
		} else {
			rt.complete(FailureResult[E, A](unerase[E](cause)))
		}
		return nil
	}

	composite := effectNode(ofNode{value: cause})
	for _, fin := range finalizers {
		fin := fin
		composite = chainNode{inner: composite, k: func(c Erased) effectNode {
			cc := c.(Cause[Erased])
			return chainNode{inner: resurrectNode(fin), k: func(res Erased) effectNode {
				outcome := res.(erasedFinalizerOutcome)
				if outcome.failed {
					return ofNode{value: Cause[Erased]{kind: causeAnd, left: &cc, right: &outcome.cause}}
				}
				return ofNode{value: cc}
			}}
		}}
	}
	if caught != nil {
		rt.stack = append(rt.stack, caught)
	}
	return chainNode{inner: composite, k: func(c Erased) effectNode {
		return raisedNode{cause: c.(Cause[Erased])}
	}}
}

// beginInterruptFinalize drains the remaining stack (spec §4.3.4),
// running every Finalize and Interrupt frame still installed —
// innermost first — with their own failures swallowed, and settles on
// Result.Interrupted once none are left.
func (rt *Runtime[E, A]) beginInterruptFinalize() {
	rt.finalizing = true
	var collected []effectNode
	for len(rt.stack) > 0 {
		top := rt.stack[len(rt.stack)-1]
		rt.stack = rt.stack[:len(rt.stack)-1]
		switch f := top.(type) {
		case *finalizeFrame:
			collected = append(collected, f.effect)
			releaseFinalizeFrame(f)
		case *interruptFrame:
			collected = append(collected, f.effect)
			releaseInterruptFrame(f)
		case *chainFrame:
			releaseChainFrame(f)
		case *errorFrame:
			releaseErrorFrame(f)
		}
	}

	if len(collected) == 0 {
		rt.complete(InterruptedResult[E, A]())
		return
	}

	composite := effectNode(ofNode{value: struct{}{}})
	for _, fin := range collected {
		fin := fin
		composite = chainNode{inner: composite, k: func(Erased) effectNode {
			return chainNode{inner: resurrectNode(fin), k: func(Erased) effectNode {
				return ofNode{value: struct{}{}}
			}}
		}}
	}
	rt.run(composite)
}

// interrupt requests cooperative interruption (spec §4.3.3). If the
// fiber is already settled or an interrupt is already in flight, this
// is a no-op. If it is mid-critical-section, the flag is latched and
// honored once the section exits. If it is suspended on an
// interruptible async boundary, the boundary's cancel hook runs
// immediately and interrupt-finalization begins. Otherwise the next
// cooperative check in the step loop (after the boundary's eventual
// resumption) observes the flag.
func (rt *Runtime[E, A]) interrupt() {
	if rt.result.IsSet() || rt.interrupted {
		return
	}
	rt.interrupted = true
	if rt.critical != 0 {
		return
	}
	if rt.suspended && rt.cs != nil && rt.cs.isInterruptible() {
		rt.cs.interrupt()
		rt.beginInterruptFinalize()
	}
}

func (rt *Runtime[E, A]) installAsync(n asyncNode) {
	cs := &contextSwitch{sched: rt.scheduler}
	cs.resumeFn = func(o asyncOutcome) {
		rt.suspended = false
		rt.cs = nil
		var next effectNode
		if o.isCause {
			next = rt.unwind(o.cause)
		} else {
			next = rt.succeed(o.value)
		}
		rt.run(next)
	}
	rt.cs = cs
	rt.suspended = true

	func() {
		defer func() {
			if r := recover(); r != nil {
				if s, ok := r.(string); ok && strings.HasPrefix(s, "fiber: ") {
					panic(r)
				}
				rt.suspended = false
				rt.cs = nil
				rt.run(rt.unwind(Cause[Erased]{kind: causeAbort, abort: r}))
			}
		}()
		n.register(cs)
	}()
}
