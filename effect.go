// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// effectNode is the unexported marker every Effect AST node implements.
// The set of ten tags below is closed by design: the step loop
// dispatches on them with a type switch rather than an open handler
// registry, because this interpreter's effect set is fixed, not
// user-extensible.
type effectNode interface{ effectNode() }

type ofNode struct{ value Erased }

func (ofNode) effectNode() {}

type failedNode struct{ err Erased }

func (failedNode) effectNode() {}

type raisedNode struct{ cause Cause[Erased] }

func (raisedNode) effectNode() {}

type suspendNode struct{ thunk func() effectNode }

func (suspendNode) effectNode() {}

type asyncNode struct{ register func(*contextSwitch) }

func (asyncNode) effectNode() {}

type criticalNode struct{ inner effectNode }

func (criticalNode) effectNode() {}

type chainNode struct {
	inner effectNode
	k     func(Erased) effectNode
}

func (chainNode) effectNode() {}

type chainErrorNode struct {
	inner effectNode
	k     func(Cause[Erased]) effectNode
}

func (chainErrorNode) effectNode() {}

type onDoneNode struct {
	inner     effectNode
	finalizer effectNode
}

func (onDoneNode) effectNode() {}

type onInterruptedNode struct {
	inner   effectNode
	handler effectNode
}

func (onInterruptedNode) effectNode() {}

// Effect[E, A] is an immutable description of a computation that
// produces an A, fails with a Cause[E], or is interrupted. Building one
// does no work; a Runtime steps it.
type Effect[E, A any] struct{ node effectNode }

// Of lifts a plain value into an effect that succeeds immediately.
func Of[E, A any](a A) Effect[E, A] { return Effect[E, A]{node: ofNode{value: a}} }

// Failed builds an effect that fails immediately with a typed value.
func Failed[E, A any](e E) Effect[E, A] { return Effect[E, A]{node: failedNode{err: e}} }

// Raised builds an effect that fails immediately with a prebuilt cause.
func Raised[E, A any](c Cause[E]) Effect[E, A] {
	return Effect[E, A]{node: raisedNode{cause: eraseCause(c)}}
}

// Suspend defers construction of an effect until the step loop reaches
// it. A panic raised by f becomes an Abort cause, except a string panic
// beginning "fiber: " (this package's own programmer-error panics, such
// as filling a Deferred twice), which propagates out of the runtime.
func Suspend[E, A any](f func() Effect[E, A]) Effect[E, A] {
	return Effect[E, A]{node: suspendNode{thunk: func() effectNode { return f().node }}}
}

// Async suspends the fiber at an asynchronous boundary. register is
// invoked once with a ContextSwitch the caller uses to resume the fiber
// (now, on the next tick, or never, in which case the fiber is parked
// until Fiber.Interrupt). A panic raised by register becomes an Abort
// cause, the same as Suspend.
func Async[E, A any](register func(ContextSwitch[E, A])) Effect[E, A] {
	return Effect[E, A]{node: asyncNode{register: func(cs *contextSwitch) {
		register(ContextSwitch[E, A]{cs: cs})
	}}}
}

// Critical runs inner with interruption masked: a pending interrupt is
// honored only after inner (and any nested Critical sections) complete.
func Critical[E, A any](inner Effect[E, A]) Effect[E, A] {
	return Effect[E, A]{node: criticalNode{inner: inner.node}}
}

// Chain sequences m into k, running k's effect with m's success value.
func Chain[E, X, A any](m Effect[E, X], k func(X) Effect[E, A]) Effect[E, A] {
	return Effect[E, A]{node: chainNode{inner: m.node, k: func(v Erased) effectNode {
		return k(v.(X)).node
	}}}
}

// ChainError sequences m's failure path into k, running k's effect with
// m's cause. It never observes m's success value.
func ChainError[E1, E, A any](m Effect[E1, A], k func(Cause[E1]) Effect[E, A]) Effect[E, A] {
	return Effect[E, A]{node: chainErrorNode{inner: m.node, k: func(c Cause[Erased]) effectNode {
		return k(unerase[E1](c)).node
	}}}
}

// OnDone attaches finalizer to m: finalizer runs on every exit path from
// m — success, typed failure, abort, or interruption — innermost
// finalizer first, exactly once per installation. finalizer's own
// failure during an ordinary (non-interrupted) exit is folded into the
// outgoing cause via AndCause; during interrupt-finalization its
// failure is swallowed.
func OnDone[E, A, F any](m Effect[E, A], finalizer Effect[Never, F]) Effect[E, A] {
	return Effect[E, A]{node: onDoneNode{inner: m.node, finalizer: finalizer.node}}
}

// OnInterrupted attaches handler to m: handler runs only if m is
// unwound by interruption, with the same finalizer-failure semantics as
// OnDone's finalizer during that unwind.
func OnInterrupted[E, A, F any](m Effect[E, A], handler Effect[Never, F]) Effect[E, A] {
	return Effect[E, A]{node: onInterruptedNode{inner: m.node, handler: handler.node}}
}

// erasedFinalizerOutcome is the resurrected result of running a
// finalizer: its own success or failure captured as plain data instead
// of being allowed to unwind through the stack on its own.
type erasedFinalizerOutcome struct {
	failed bool
	cause  Cause[Erased]
}

// resurrectNode reifies fin's own outcome as a value: Effect<never, _>
// becomes, in effect, Effect<never, erasedFinalizerOutcome>. This falls
// directly out of composing chain and chainerror — no dedicated runtime
// hook is needed, because a chainerror frame already catches whatever
// fin's own unwind (including its own nested finalizers) produces.
func resurrectNode(fin effectNode) effectNode {
	return chainErrorNode{
		inner: chainNode{inner: fin, k: func(Erased) effectNode {
			return ofNode{value: erasedFinalizerOutcome{failed: false}}
		}},
		k: func(c Cause[Erased]) effectNode {
			return ofNode{value: erasedFinalizerOutcome{failed: true, cause: c}}
		},
	}
}
