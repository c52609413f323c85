package runtime

import (
	"bytes"

	"github.com/AlexEne/wasm-interp/reader"
	"github.com/AlexEne/wasm-interp/wasm"
)

const (
	opI32Const  byte = 0x41
	opI64Const  byte = 0x42
	opF32Const  byte = 0x43
	opF64Const  byte = 0x44
	opGlobalGet byte = 0x23
	opEnd       byte = 0x0b
)

// EvaluateConstantExpression runs the restricted opcode subset core Wasm
// allows in global initializers, element offsets and data offsets:
// i32.const/i64.const/f32.const/f64.const/global.get, terminated by end.
// Grounded on the teacher's wasm/index.go:ExecInitExpr, rewritten to
// return a typed Value instead of interface{} and to read through this
// core's own reader package instead of raw bytes.NewReader + leb128 calls.
// store is read-only and globals-only, per original_source/module.rs's
// ConstantExpressionStore trait split (spec §4.D).
func EvaluateConstantExpression(expr []byte, store ConstExprStore) (Value, error) {
	if len(expr) == 0 {
		return Value{}, ErrEmptyConstantExpr
	}

	rd := reader.New(bytes.NewReader(expr))
	var last *Value

	for {
		b, err := rd.ReadByte()
		if err != nil {
			break
		}
		switch b {
		case opI32Const:
			v, err := rd.ReadSLEB32()
			if err != nil {
				return Value{}, wrapErr(TypeMismatch, "malformed i32.const in constant expression", err)
			}
			val := I32(v)
			last = &val
		case opI64Const:
			v, err := rd.ReadSLEB64()
			if err != nil {
				return Value{}, wrapErr(TypeMismatch, "malformed i64.const in constant expression", err)
			}
			val := I64(v)
			last = &val
		case opF32Const:
			bits, err := rd.ReadU32()
			if err != nil {
				return Value{}, wrapErr(TypeMismatch, "malformed f32.const in constant expression", err)
			}
			val := Value{Kind: wasm.F32, bits: uint64(bits)}
			last = &val
		case opF64Const:
			bits, err := rd.ReadU64()
			if err != nil {
				return Value{}, wrapErr(TypeMismatch, "malformed f64.const in constant expression", err)
			}
			val := Value{Kind: wasm.F64, bits: bits}
			last = &val
		case opGlobalGet:
			idx, err := rd.ReadULEB32()
			if err != nil {
				return Value{}, wrapErr(TypeMismatch, "malformed global.get in constant expression", err)
			}
			g, release, err := store.Global(idx)
			if err != nil {
				return Value{}, err
			}
			v := g.Get()
			release()
			last = &v
		case opEnd:
			// terminator; nothing left to read in a well-formed expression
		default:
			return Value{}, wrapErr(TypeMismatch, "disallowed opcode in constant expression", nil)
		}
	}

	if last == nil {
		return Value{}, ErrEmptyConstantExpr
	}
	return *last, nil
}
