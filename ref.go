// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// Ref[A] is a mutable cell accessed only through effects, so every read
// or write is itself a step the runtime can interleave, finalize
// around, or interrupt between — unlike a bare Go variable shared
// across fibers.
type Ref[A any] struct{ value A }

// NewRef creates a ref holding initial.
func NewRef[A any](initial A) *Ref[A] { return &Ref[A]{value: initial} }

// Get reads the current value.
func (r *Ref[A]) Get() Effect[Never, A] {
	return Suspend[Never, A](func() Effect[Never, A] { return Of[Never, A](r.value) })
}

// Set replaces the current value unconditionally.
func (r *Ref[A]) Set(a A) Effect[Never, struct{}] {
	return Suspend[Never, struct{}](func() Effect[Never, struct{}] {
		r.value = a
		return Of[Never, struct{}](struct{}{})
	})
}

// Modify atomically (with respect to other effects, since the
// interpreter is single-threaded) replaces the value with f's first
// result and returns its second.
func Modify[A, B any](r *Ref[A], f func(A) (A, B)) Effect[Never, B] {
	return Suspend[Never, B](func() Effect[Never, B] {
		next, b := f(r.value)
		r.value = next
		return Of[Never, B](b)
	})
}

// Update is Modify without a separate return value: the ref's new
// value also becomes the effect's result.
func Update[A any](r *Ref[A], f func(A) A) Effect[Never, A] {
	return Modify(r, func(a A) (A, A) {
		next := f(a)
		return next, next
	})
}
