package runtime

import "github.com/AlexEne/wasm-interp/wasm"

// ConstExprStore is the read-only, globals-only view a constant
// expression is evaluated against. Grounded directly on
// original_source/module.rs's ConstantExpressionStore trait, which
// exposes only global_idx(idx) — a constant expression can read an
// already-defined global but nothing else in the module. The returned
// release func must be called once the caller is done reading, the same
// borrow discipline original_source enforces with Ref<'a, Global>.
type ConstExprStore interface {
	Global(idx uint32) (*Global, func(), error)
}

// ReadStore is the full read view over an instantiated module: every
// index space plus the export map. Grounded on original_source/module.rs's
// ExpressionStore trait's non-mut accessors (func_type_idx, table_idx,
// callable_idx, mem_idx). Table and Memory hand back a borrowed Cell
// read-handle (release the concern only they mutate in place); Func does
// not, since a Callable is never replaced once the store is built and so
// never conflicts with a concurrent borrow.
type ReadStore interface {
	ConstExprStore
	FuncType(idx uint32) (wasm.FuncType, error)
	Func(idx uint32) (Callable, error)
	Table(idx uint32) (*Table, func(), error)
	Memory(idx uint32) (*Memory, func(), error)
	Export(name string) (ExportValue, error)
}

// ReadWriteStore adds the mutating accessors: GlobalMut (so global.set can
// assign), TableMut (so element initialization and table.init/elem.drop
// can rewrite entries) and MemoryMut (so data initialization and
// memory.grow can write through or reallocate the backing slice). As in
// the Rust original (table.borrow_mut()/memory.borrow_mut() in
// module.rs), every in-place mutation of a table or memory takes the
// Cell's exclusive borrow, not a shared one — a shared borrow only
// guards against another mutator running concurrently if the mutator
// itself also takes the exclusive lock.
type ReadWriteStore interface {
	ReadStore
	GlobalMut(idx uint32) (*Global, func(), error)
	TableMut(idx uint32) (*Table, func(), error)
	MemoryMut(idx uint32) (*Memory, func(), error)
}

// ExportValueKind tags which index space an Export points into.
type ExportValueKind int

const (
	ExportValueFunc ExportValueKind = iota
	ExportValueTable
	ExportValueMemory
	ExportValueGlobal
)

// ExportValue is the resolved target of a module export, handed back by
// Module.Export. Exactly one of the typed fields is valid, per Kind.
type ExportValue struct {
	Kind   ExportValueKind
	Func   Callable
	Table  *Cell[*Table]
	Memory *Cell[*Memory]
	Global *Cell[*Global]
}

// Module is the instantiated, runtime-checked store: every function,
// table, memory and global a RawModule declared or imported, plus its
// export map. It implements ConstExprStore/ReadStore/ReadWriteStore and
// is itself the ReadWriteStore a configured Engine executes WasmFunc
// bodies against. Grounded on original_source/module.rs's Module struct
// (functions/tables/memories/globals/func_types/exports, each
// Rc<RefCell<T>>), built up by Instantiate. Tables, memories and globals
// are wrapped in *Cell[T] (this core's Rc<RefCell<T>> equivalent, spec
// §9); functions are not, since a Callable slot is fixed once resolved or
// defined and so can never conflict with a concurrent borrow.
type Module struct {
	funcTypes []wasm.FuncType
	funcs     []Callable
	tables    []*Cell[*Table]
	mems      []*Cell[*Memory]
	globals   []*Cell[*Global]
	exports   map[string]ExportValue
}

func (m *Module) FuncType(idx uint32) (wasm.FuncType, error) {
	if int(idx) >= len(m.funcTypes) {
		return wasm.FuncType{}, newErr(InvalidIndex, "func type index out of range")
	}
	return m.funcTypes[idx], nil
}

func (m *Module) Func(idx uint32) (Callable, error) {
	if int(idx) >= len(m.funcs) {
		return nil, newErr(InvalidIndex, "function index out of range")
	}
	return m.funcs[idx], nil
}

func (m *Module) Table(idx uint32) (*Table, func(), error) {
	if int(idx) >= len(m.tables) {
		return nil, nil, newErr(InvalidIndex, "table index out of range")
	}
	v, release := m.tables[idx].Borrow()
	return *v, release, nil
}

func (m *Module) TableMut(idx uint32) (*Table, func(), error) {
	if int(idx) >= len(m.tables) {
		return nil, nil, newErr(InvalidIndex, "table index out of range")
	}
	v, release := m.tables[idx].BorrowMut()
	return *v, release, nil
}

func (m *Module) Memory(idx uint32) (*Memory, func(), error) {
	if int(idx) >= len(m.mems) {
		return nil, nil, newErr(InvalidIndex, "memory index out of range")
	}
	v, release := m.mems[idx].Borrow()
	return *v, release, nil
}

func (m *Module) MemoryMut(idx uint32) (*Memory, func(), error) {
	if int(idx) >= len(m.mems) {
		return nil, nil, newErr(InvalidIndex, "memory index out of range")
	}
	v, release := m.mems[idx].BorrowMut()
	return *v, release, nil
}

func (m *Module) Global(idx uint32) (*Global, func(), error) {
	if int(idx) >= len(m.globals) {
		return nil, nil, newErr(InvalidIndex, "global index out of range")
	}
	v, release := m.globals[idx].Borrow()
	return *v, release, nil
}

func (m *Module) GlobalMut(idx uint32) (*Global, func(), error) {
	if int(idx) >= len(m.globals) {
		return nil, nil, newErr(InvalidIndex, "global index out of range")
	}
	v, release := m.globals[idx].BorrowMut()
	return *v, release, nil
}

// Export looks up a named export, as collected by Instantiate (spec §4.E:
// last declaration wins on a duplicate name).
func (m *Module) Export(name string) (ExportValue, error) {
	ev, ok := m.exports[name]
	if !ok {
		return ExportValue{}, newErr(InvalidIndex, "no such export: "+name)
	}
	return ev, nil
}

// Exports returns every collected export, for introspection by an
// embedder that doesn't already know what it's looking for.
func (m *Module) Exports() map[string]ExportValue {
	return m.exports
}

// CallExport is a convenience that looks up a function export and calls
// it directly, for the common case where an embedder just wants the
// result of invoking one entry point.
func (m *Module) CallExport(name string, args []Value) ([]Value, error) {
	ev, err := m.Export(name)
	if err != nil {
		return nil, err
	}
	if ev.Kind != ExportValueFunc {
		return nil, newErr(TypeMismatch, "export "+name+" is not a function")
	}
	return ev.Func.Call(args)
}
