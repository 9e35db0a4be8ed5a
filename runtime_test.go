// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"testing"
	"time"
)

// run drives eff to completion on a fresh scheduler and returns its
// result, failing the test if it never settles.
func run[E, A any](t *testing.T, eff Effect[E, A]) Result[E, A] {
	t.Helper()
	sched := NewScheduler()
	rt := NewRuntime[E, A](sched)
	rt.Start(eff)
	sched.RunUntilIdle()
	r, ok := rt.Result().Get()
	if !ok {
		t.Fatal("runtime never settled")
	}
	return r
}

func TestRuntimeOfSucceeds(t *testing.T) {
	r := run(t, Of[string, int](5))
	if !r.IsValue() || r.Value() != 5 {
		t.Fatalf("got %+v, want Value(5)", r)
	}
}

func TestRuntimeFailedPropagates(t *testing.T) {
	r := run(t, Failed[string, int]("bad"))
	if !r.IsFailure() || r.Cause().Raise() != "bad" {
		t.Fatalf("got %+v, want Failure(bad)", r)
	}
}

func TestRuntimeChainSequencesValues(t *testing.T) {
	eff := Chain(Of[string, int](2), func(x int) Effect[string, int] {
		return Chain(Of[string, int](x*10), func(y int) Effect[string, int] {
			return Of[string, int](y + 1)
		})
	})
	r := run(t, eff)
	if !r.IsValue() || r.Value() != 21 {
		t.Fatalf("got %+v, want Value(21)", r)
	}
}

func TestRuntimeChainShortCircuitsOnFailure(t *testing.T) {
	ran := false
	eff := Chain(Failed[string, int]("x"), func(int) Effect[string, int] {
		ran = true
		return Of[string, int](0)
	})
	r := run(t, eff)
	if ran {
		t.Fatal("continuation ran after a failure")
	}
	if !r.IsFailure() || r.Cause().Raise() != "x" {
		t.Fatalf("got %+v, want Failure(x)", r)
	}
}

func TestRuntimeChainErrorCatches(t *testing.T) {
	eff := ChainError(Failed[string, int]("x"), func(c Cause[string]) Effect[string, int] {
		return Of[string, int](len(c.Raise()))
	})
	r := run(t, eff)
	if !r.IsValue() || r.Value() != 1 {
		t.Fatalf("got %+v, want Value(1)", r)
	}
}

func TestRuntimeOnDoneRunsOnSuccess(t *testing.T) {
	var finalized bool
	eff := OnDone(Of[string, int](1), Suspend[Never, struct{}](func() Effect[Never, struct{}] {
		finalized = true
		return Of[Never, struct{}](struct{}{})
	}))
	r := run(t, eff)
	if !r.IsValue() || r.Value() != 1 {
		t.Fatalf("got %+v", r)
	}
	if !finalized {
		t.Fatal("finalizer did not run on success")
	}
}

func TestRuntimeOnDoneRunsOnFailureAndOrder(t *testing.T) {
	var order []string
	inner := Failed[string, int]("boom")
	withInnerFinalizer := OnDone(inner, Suspend[Never, struct{}](func() Effect[Never, struct{}] {
		order = append(order, "inner")
		return Of[Never, struct{}](struct{}{})
	}))
	withOuterFinalizer := OnDone(withInnerFinalizer, Suspend[Never, struct{}](func() Effect[Never, struct{}] {
		order = append(order, "outer")
		return Of[Never, struct{}](struct{}{})
	}))
	r := run(t, withOuterFinalizer)
	if !r.IsFailure() || r.Cause().Raise() != "boom" {
		t.Fatalf("got %+v, want Failure(boom)", r)
	}
	if len(order) != 2 || order[0] != "inner" || order[1] != "outer" {
		t.Fatalf("finalizers ran out of order: %v", order)
	}
}

func TestRuntimeFinalizerFailureComposesWithAnd(t *testing.T) {
	eff := OnDone(Failed[string, int]("base"), Suspend[Never, struct{}](func() Effect[Never, struct{}] {
		panic("finalizer defect")
	}))
	r := run(t, eff)
	if !r.IsFailure() {
		t.Fatalf("got %+v, want a failure", r)
	}
	c := r.Cause()
	if !c.IsAnd() {
		t.Fatalf("expected composed cause, got %+v", c)
	}
	if c.Left().Raise() != "base" {
		t.Fatalf("left cause mismatch: %+v", c.Left())
	}
	if !c.Right().IsAbort() || c.Right().Abort() != "finalizer defect" {
		t.Fatalf("right cause mismatch: %+v", c.Right())
	}
}

func TestRuntimeSuspendPanicBecomesAbort(t *testing.T) {
	eff := Suspend[string, int](func() Effect[string, int] {
		panic("kaboom")
	})
	r := run(t, eff)
	if !r.IsFailure() || !r.Cause().IsAbort() || r.Cause().Abort() != "kaboom" {
		t.Fatalf("got %+v, want Abort(kaboom)", r)
	}
}

func TestRuntimeCriticalDefersInterrupt(t *testing.T) {
	sched := NewScheduler()
	var steps []string
	eff := Critical[Never, struct{}](Chain(Suspend[Never, struct{}](func() Effect[Never, struct{}] {
		steps = append(steps, "start")
		return Of[Never, struct{}](struct{}{})
	}), func(struct{}) Effect[Never, struct{}] {
		return Async[Never, struct{}](func(cs ContextSwitch[Never, struct{}]) {
			cs.SetAbort(func() {})
			sched.Schedule(func() { cs.Resume(ValueResult[Never, struct{}](struct{}{})) })
		})
	}))
	rt := NewRuntime[Never, struct{}](sched)
	rt.Start(eff)

	// Interrupt while inside the critical section; it must not take
	// effect until the section's async step resumes and exits.
	rt.interrupt()
	if rt.result.IsSet() {
		t.Fatal("runtime settled before its critical section finished")
	}
	sched.RunUntilIdle()

	r, ok := rt.result.Get()
	if !ok {
		t.Fatal("runtime never settled")
	}
	if !r.IsInterrupted() {
		t.Fatalf("got %+v, want Interrupted", r)
	}
	if len(steps) != 1 {
		t.Fatalf("expected the critical body to run exactly once, got %v", steps)
	}
}

func TestRuntimeInterruptRunsFinalizersInnermostFirst(t *testing.T) {
	sched := NewScheduler()
	var order []string
	finalizer := func(name string) Effect[Never, struct{}] {
		return Suspend[Never, struct{}](func() Effect[Never, struct{}] {
			order = append(order, name)
			return Of[Never, struct{}](struct{}{})
		})
	}

	blocked := Async[Never, struct{}](func(cs ContextSwitch[Never, struct{}]) {
		cs.SetAbort(func() { cs.Resume(ValueResult[Never, struct{}](struct{}{})) })
	})
	withInner := OnDone(blocked, finalizer("inner"))
	withOuter := OnDone(withInner, finalizer("outer"))

	rt := NewRuntime[Never, struct{}](sched)
	rt.Start(withOuter)
	rt.interrupt()
	sched.RunUntilIdle()

	r, ok := rt.Result().Get()
	if !ok || !r.IsInterrupted() {
		t.Fatalf("got %+v, want Interrupted", r)
	}
	if len(order) != 2 || order[0] != "inner" || order[1] != "outer" {
		t.Fatalf("finalizers ran out of order: %v", order)
	}
}

func TestRuntimeDelayAndRunUntilIdle(t *testing.T) {
	sched := NewVirtualScheduler()
	rt := NewRuntime[Never, struct{}](sched)
	rt.Start(Delay[Never](sched, 10*time.Millisecond))
	sched.RunUntilIdle()
	if rt.Result().IsSet() {
		t.Fatal("delay settled before its timer fired")
	}
	sched.Advance(10 * time.Millisecond)
	r, ok := rt.Result().Get()
	if !ok || !r.IsValue() {
		t.Fatalf("got %+v, want a settled Value", r)
	}
}
