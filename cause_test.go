// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "testing"

func TestCauseRaiseAbortAnd(t *testing.T) {
	r := RaiseCause[string]("boom")
	if !r.IsRaise() || r.Raise() != "boom" {
		t.Fatalf("unexpected raise cause: %+v", r)
	}

	a := AbortCause[string]("defect")
	if !a.IsAbort() || a.Abort() != "defect" {
		t.Fatalf("unexpected abort cause: %+v", a)
	}

	c := AndCause(r, a)
	if !c.IsAnd() {
		t.Fatal("expected And cause")
	}
	if c.Left().Raise() != "boom" {
		t.Fatalf("left mismatch: %+v", c.Left())
	}
	if c.Right().Abort() != "defect" {
		t.Fatalf("right mismatch: %+v", c.Right())
	}
}

func TestCauseEraseRoundTrip(t *testing.T) {
	original := AndCause(RaiseCause(3), AbortCause[int]("x"))
	erased := eraseCause(original)
	back := unerase[int](erased)

	if !back.IsAnd() || back.Left().Raise() != 3 || back.Right().Abort() != "x" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestResultVariants(t *testing.T) {
	v := ValueResult[string, int](10)
	if !v.IsValue() || v.Value() != 10 {
		t.Fatalf("unexpected value result: %+v", v)
	}

	f := FailureResult[string, int](RaiseCause("nope"))
	if !f.IsFailure() || f.Cause().Raise() != "nope" {
		t.Fatalf("unexpected failure result: %+v", f)
	}

	i := InterruptedResult[string, int]()
	if !i.IsInterrupted() {
		t.Fatalf("unexpected interrupted result: %+v", i)
	}
}
