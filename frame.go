// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "sync"

// callFrame is the unexported marker for the four call-frame stack
// shapes. A closed tag-over-interface set lets the step loop dispatch
// with a type switch instead of going through a virtual call.
type callFrame interface{ callFrame() }

// chainFrame holds a chain continuation waiting for its predecessor's
// success value.
type chainFrame struct {
	k      func(Erased) effectNode
	pooled bool
}

func (*chainFrame) callFrame() {}

// errorFrame holds a chainerror handler waiting for a cause to unwind
// into.
type errorFrame struct {
	k      func(Cause[Erased]) effectNode
	pooled bool
}

func (*errorFrame) callFrame() {}

// finalizeFrame holds an OnDone finalizer, run on every exit path.
type finalizeFrame struct {
	effect effectNode
	pooled bool
}

func (*finalizeFrame) callFrame() {}

// interruptFrame holds an OnInterrupted handler, run only on the
// interrupt unwind path.
type interruptFrame struct {
	effect effectNode
	pooled bool
}

func (*interruptFrame) callFrame() {}

var (
	chainFramePool  = sync.Pool{New: func() any { return new(chainFrame) }}
	errorFramePool  = sync.Pool{New: func() any { return new(errorFrame) }}
	finalizeFramePool = sync.Pool{New: func() any { return new(finalizeFrame) }}
	interruptFramePool = sync.Pool{New: func() any { return new(interruptFrame) }}
)

func acquireChainFrame(k func(Erased) effectNode) *chainFrame {
	f := chainFramePool.Get().(*chainFrame)
	f.k = k
	f.pooled = true
	return f
}

func releaseChainFrame(f *chainFrame) {
	if !f.pooled {
		return
	}
	f.k = nil
	f.pooled = false
	chainFramePool.Put(f)
}

func acquireErrorFrame(k func(Cause[Erased]) effectNode) *errorFrame {
	f := errorFramePool.Get().(*errorFrame)
	f.k = k
	f.pooled = true
	return f
}

func releaseErrorFrame(f *errorFrame) {
	if !f.pooled {
		return
	}
	f.k = nil
	f.pooled = false
	errorFramePool.Put(f)
}

func acquireFinalizeFrame(effect effectNode) *finalizeFrame {
	f := finalizeFramePool.Get().(*finalizeFrame)
	f.effect = effect
	f.pooled = true
	return f
}

func releaseFinalizeFrame(f *finalizeFrame) {
	if !f.pooled {
		return
	}
	f.effect = nil
	f.pooled = false
	finalizeFramePool.Put(f)
}

func acquireInterruptFrame(effect effectNode) *interruptFrame {
	f := interruptFramePool.Get().(*interruptFrame)
	f.effect = effect
	f.pooled = true
	return f
}

func releaseInterruptFrame(f *interruptFrame) {
	if !f.pooled {
		return
	}
	f.effect = nil
	f.pooled = false
	interruptFramePool.Put(f)
}
