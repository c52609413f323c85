package runtime

import "github.com/AlexEne/wasm-interp/wasm"

// Global is a single global variable: a declared type (value kind +
// mutability) plus its current value. Grounded on the teacher's
// wasm/module.go:Global (Type + Init bytes), generalized per spec §4.H to
// hold the already-evaluated value and enforce the declared kind and
// mutability rather than leaving that to the interpreter.
type Global struct {
	globalType wasm.GlobalType
	value      Value
}

// NewGlobal constructs a Global, type-checking initial against the
// declared kind (spec §4.H: "type-check value against declared kind; fail
// otherwise").
func NewGlobal(gt wasm.GlobalType, initial Value) (*Global, error) {
	if initial.Kind != gt.Kind {
		return nil, wrapErr(TypeMismatch, "global init expression has wrong value kind", nil)
	}
	return &Global{globalType: gt, value: initial}, nil
}

// Type returns the global's declared type.
func (g *Global) Type() wasm.GlobalType { return g.globalType }

// Get returns the global's current value.
func (g *Global) Get() Value { return g.value }

// Set updates the global's value. Only legal if the global was declared
// mutable; immutability is otherwise enforced by the interpreter (spec
// §4.H), but this store-level check makes misuse from within this
// package's own instantiation code (e.g. a buggy future caller) fail loud
// rather than silently violating invariant 4.
func (g *Global) Set(v Value) error {
	if g.globalType.Mut != wasm.Var {
		return ErrGlobalNotMutable
	}
	if v.Kind != g.globalType.Kind {
		return wrapErr(TypeMismatch, "global assignment has wrong value kind", nil)
	}
	g.value = v
	return nil
}
