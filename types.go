// © Coeffect Authors 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// Never is the Go stand-in for an effect's uninhabited failure channel:
// Effect[Never, A] is documented as unable to fail. Go has no bottom
// type, so this is a convention — never construct a Never value — the
// same compromise the wider ecosystem makes for "no meaningful payload"
// results.
type Never = struct{}

// Erased marks a type-erased value inside the interpreter's node chain.
// Generic typing lives only at the constructor and accessor boundary;
// the step loop itself walks untyped nodes and recovers concrete types
// via assertions at those boundaries.
type Erased = any
