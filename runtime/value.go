package runtime

import (
	"math"

	"github.com/chewxy/math32"

	"github.com/AlexEne/wasm-interp/wasm"
)

// Value is a single Wasm numeric value, stored as its raw bit pattern so a
// Value of any kind fits in one machine word — the same representation
// choice the teacher's VM stack made with its []int64 (vm/vm.go's
// push/pop), generalized here to also carry the value's kind so the
// store and the constant-expression evaluator can type-check it.
type Value struct {
	Kind wasm.ValueKind
	bits uint64
}

// I32 builds an i32 value.
func I32(v int32) Value { return Value{Kind: wasm.I32, bits: uint64(uint32(v))} }

// I64 builds an i64 value.
func I64(v int64) Value { return Value{Kind: wasm.I64, bits: uint64(v)} }

// F32 builds an f32 value. Bit conversion goes through chewxy/math32
// rather than the stdlib math package, keeping float32 round-tripping in
// a float32-native API instead of widening through float64.
func F32(v float32) Value { return Value{Kind: wasm.F32, bits: uint64(math32.Float32bits(v))} }

// F64 builds an f64 value.
func F64(v float64) Value { return Value{Kind: wasm.F64, bits: math.Float64bits(v)} }

// AsI32 returns the value as an int32. Panics if Kind != I32 — callers are
// expected to check Kind (or rely on a prior type check, e.g. the
// constant-expression evaluator's declared-kind match) before calling.
func (v Value) AsI32() int32 {
	v.requireKind(wasm.I32)
	return int32(uint32(v.bits))
}

// AsI64 returns the value as an int64.
func (v Value) AsI64() int64 {
	v.requireKind(wasm.I64)
	return int64(v.bits)
}

// AsF32 returns the value as a float32.
func (v Value) AsF32() float32 {
	v.requireKind(wasm.F32)
	return math32.Float32frombits(uint32(v.bits))
}

// AsF64 returns the value as a float64.
func (v Value) AsF64() float64 {
	v.requireKind(wasm.F64)
	return math.Float64frombits(v.bits)
}

// Bits returns the value's raw bit pattern, widened to 64 bits.
func (v Value) Bits() uint64 { return v.bits }

func (v Value) requireKind(k wasm.ValueKind) {
	if v.Kind != k {
		panic("runtime: value kind mismatch: have " + v.Kind.String() + ", want " + k.String())
	}
}
