// Package wasm decodes the WebAssembly binary format (v1) into a RawModule:
// an immutable, fully parsed, but uninstantiated description of a module
// (spec §3 "Static description"). It enforces the binary's section-order
// rule and the primitive value formats; it does not resolve imports,
// allocate storage, or evaluate constant expressions — that is the
// runtime package's job.
package wasm

// ValueKind is one of the four numeric value types core Wasm 1.0 supports.
type ValueKind byte

// Value kind encodings, per https://webassembly.github.io/spec/core/binary/types.html#value-types
const (
	I32 ValueKind = 0x7f
	I64 ValueKind = 0x7e
	F32 ValueKind = 0x7d
	F64 ValueKind = 0x7c
)

func (k ValueKind) String() string {
	switch k {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "unknown"
	}
}

// Mutability flags a global as constant or mutable.
type Mutability byte

const (
	Const Mutability = 0x00
	Var   Mutability = 0x01
)

// funcTypeForm is the fixed signature byte that precedes every entry in the
// type section.
const funcTypeForm byte = 0x60

// elemKindFuncRef is the only table element kind core Wasm 1.0 supports.
const elemKindFuncRef byte = 0x70

// FuncType is a function signature: ordered parameter kinds to ordered
// result kinds.
type FuncType struct {
	Params  []ValueKind
	Results []ValueKind
}

// Equal reports whether two signatures are identical, used by
// call_indirect's type-equality check (an interpreter concern, exposed
// here since FuncType is this package's value object).
func (f FuncType) Equal(o FuncType) bool {
	if len(f.Params) != len(o.Params) || len(f.Results) != len(o.Results) {
		return false
	}
	for i := range f.Params {
		if f.Params[i] != o.Params[i] {
			return false
		}
	}
	for i := range f.Results {
		if f.Results[i] != o.Results[i] {
			return false
		}
	}
	return true
}

// Limits bounds a table or memory: a minimum size and an optional maximum.
type Limits struct {
	Min    uint32
	Max    uint32
	HasMax bool
}

// TableType describes a table import/declaration. Element kind is always
// funcref in this core (no reference-types proposal support).
type TableType struct {
	Limits Limits
}

// MemType describes a memory import/declaration in units of 64KiB pages.
type MemType struct {
	Limits Limits
}

// PageSize is the fixed Wasm linear memory page size in bytes.
const PageSize = 65536

// GlobalType describes a global import/declaration's value kind and
// mutability.
type GlobalType struct {
	Kind ValueKind
	Mut  Mutability
}

// GlobalDef is a locally declared global: its type plus the raw constant
// expression bytes that compute its initial value.
type GlobalDef struct {
	Type GlobalType
	Init []byte
}

// ImportKind tags which of the four descriptor variants an Import carries.
type ImportKind byte

const (
	ImportFunc   ImportKind = 0x00
	ImportTable  ImportKind = 0x01
	ImportMem    ImportKind = 0x02
	ImportGlobal ImportKind = 0x03
)

// ImportDesc is the typed descriptor half of an import declaration.
type ImportDesc struct {
	Kind       ImportKind
	TypeIdx    uint32
	Table      TableType
	Mem        MemType
	GlobalType GlobalType
}

// Import is one entry of the import section: (module name, field name,
// typed descriptor).
type Import struct {
	ModuleName string
	Name       string
	Desc       ImportDesc
}

// ExportKind tags which indexed sequence an Export's index refers into.
type ExportKind byte

const (
	ExportFunc   ExportKind = 0x00
	ExportTable  ExportKind = 0x01
	ExportMem    ExportKind = 0x02
	ExportGlobal ExportKind = 0x03
)

// ExportDesc names the kind and index of an exported entity.
type ExportDesc struct {
	Kind ExportKind
	Idx  uint32
}

// Export is one entry of the export section.
type Export struct {
	Name string
	Desc ExportDesc
}

// LocalEntry groups a run of function locals that share a value kind.
type LocalEntry struct {
	Count uint32
	Kind  ValueKind
}

// Func is a function body: its local declarations plus the raw
// instruction bytes (the 0x0B end opcode is not included).
type Func struct {
	Locals []LocalEntry
	Body   []byte
}

// Element is one element segment: the target table, its raw offset
// expression, and the function indices to write starting at that offset.
type Element struct {
	TableIdx  uint32
	OffsetExpr []byte
	FuncIdxs  []uint32
}

// Data is one data segment: the target memory, its raw offset expression,
// and the bytes to copy starting at that offset.
type Data struct {
	MemIdx     uint32
	OffsetExpr []byte
	Bytes      []byte
}
