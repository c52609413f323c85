package runtime

import (
	"github.com/sirupsen/logrus"

	"github.com/AlexEne/wasm-interp/wasm"
)

// config holds the knobs Instantiate accepts via functional options,
// enrichment grounded on tetratelabs/wazero's api.RuntimeConfig pattern
// (reference material, not copied) applied to this core's own concerns
// (spec §3.3): which Engine executes local function bodies, where
// diagnostic logging goes, and the instantiation-time limits spec
// invariant 5 requires be enforceable rather than hardcoded.
type config struct {
	engine         Engine
	log            logrus.FieldLogger
	maxTablePages  uint32
	maxMemoryPages uint32
}

// Option configures an Instantiate call.
type Option func(*config)

// WithEngine installs the interpreter used to execute locally defined
// function bodies. Without one, calling any local function traps.
func WithEngine(e Engine) Option {
	return func(c *config) { c.engine = e }
}

// WithLogger overrides the logrus.FieldLogger instantiation diagnostics
// are written to (default: logrus.StandardLogger()).
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *config) { c.log = log }
}

// WithMaxTablePages caps the declared Min of each locally defined table,
// in units of table entries, beyond which Instantiate refuses to
// instantiate the module (ErrTooManyTables). The declared Max and imported
// tables are not checked. Zero (the default) means unlimited.
func WithMaxTablePages(max uint32) Option {
	return func(c *config) { c.maxTablePages = max }
}

// WithMaxMemoryPages caps the declared Min of each locally defined memory,
// in units of wasm.PageSize pages (ErrTooManyMemories beyond it). The
// declared Max and imported memories are not checked. Zero (the default)
// means unlimited.
func WithMaxMemoryPages(max uint32) Option {
	return func(c *config) { c.maxMemoryPages = max }
}

// Instantiate turns a decoded wasm.RawModule into a runnable Module:
// resolving imports, instantiating local definitions, wiring exports and
// running element/data initializers and the start function. Grounded
// step-for-step on original_source/module.rs's resolve_raw_module, which
// the comments below name explicitly so the ordering (spec §4.F, §9)
// stays traceable back to its source.
func Instantiate(raw *wasm.RawModule, resolver Resolver, opts ...Option) (*Module, error) {
	cfg := &config{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Module{exports: make(map[string]ExportValue)}

	// 1. resolve_imports
	if err := resolveImports(m, raw, resolver); err != nil {
		return nil, err
	}

	// 2. add_functions
	if err := addFunctions(m, raw, cfg); err != nil {
		return nil, err
	}

	// 3. add_tables
	if err := addTables(m, raw, cfg); err != nil {
		return nil, err
	}

	// 4. add_memories
	if err := addMemories(m, raw, cfg); err != nil {
		return nil, err
	}

	// 5. add_globals
	if err := addGlobals(m, raw); err != nil {
		return nil, err
	}

	// 6. collect_exports
	if err := collectExports(m, raw); err != nil {
		return nil, err
	}

	// 7. add_func_types
	m.funcTypes = raw.Types

	// 8. pre_execute_validate
	if len(m.tables) > 1 {
		return nil, ErrTooManyTables
	}
	if len(m.mems) > 1 {
		return nil, ErrTooManyMemories
	}

	// 9. initialize_table_elements
	if err := initializeTableElements(m, raw); err != nil {
		return nil, err
	}

	// 10. initialize_memory
	if err := initializeMemory(m, raw); err != nil {
		return nil, err
	}

	// 11. run the start function, if any
	if raw.Start != nil {
		if int(*raw.Start) >= len(m.funcs) {
			return nil, newErr(InvalidIndex, "start function index out of range")
		}
		start := m.funcs[*raw.Start]
		if _, err := start.Call(nil); err != nil {
			return nil, wrapErr(Trap, "start function trapped", err)
		}
	}

	cfg.log.WithField("exports", len(m.exports)).Debug("module instantiated")
	return m, nil
}

func resolveImports(m *Module, raw *wasm.RawModule, resolver Resolver) error {
	for _, imp := range raw.Imports {
		switch imp.Desc.Kind {
		case wasm.ImportFunc:
			if int(imp.Desc.TypeIdx) >= len(raw.Types) {
				return newErr(InvalidIndex, "function import has invalid type index")
			}
			want := raw.Types[imp.Desc.TypeIdx]
			fn, err := resolver.ResolveFunction(imp.ModuleName, imp.Name, want)
			if err != nil {
				return resolverErr(imp.ModuleName, imp.Name, err)
			}
			m.funcs = append(m.funcs, fn)
		case wasm.ImportTable:
			t, err := resolver.ResolveTable(imp.ModuleName, imp.Name, imp.Desc.Table)
			if err != nil {
				return resolverErr(imp.ModuleName, imp.Name, err)
			}
			m.tables = append(m.tables, NewCell(t))
		case wasm.ImportMem:
			mem, err := resolver.ResolveMemory(imp.ModuleName, imp.Name, imp.Desc.Mem)
			if err != nil {
				return resolverErr(imp.ModuleName, imp.Name, err)
			}
			m.mems = append(m.mems, NewCell(mem))
		case wasm.ImportGlobal:
			g, err := resolver.ResolveGlobal(imp.ModuleName, imp.Name, imp.Desc.GlobalType)
			if err != nil {
				return resolverErr(imp.ModuleName, imp.Name, err)
			}
			m.globals = append(m.globals, NewCell(g))
		}
	}
	return nil
}

func addFunctions(m *Module, raw *wasm.RawModule, cfg *config) error {
	for i, fn := range raw.Funcs {
		typeIdx := raw.TypeIdx[i]
		if int(typeIdx) >= len(raw.Types) {
			return newErr(InvalidIndex, "function has invalid type index")
		}
		wf := NewWasmFunc(raw.Types[typeIdx], fn.Locals, fn.Body, cfg.engine, m)
		m.funcs = append(m.funcs, wf)
	}
	return nil
}

func addTables(m *Module, raw *wasm.RawModule, cfg *config) error {
	for _, tt := range raw.Tables {
		if cfg.maxTablePages > 0 && tt.Limits.Min > cfg.maxTablePages {
			return ErrTooManyTables
		}
		m.tables = append(m.tables, NewCell(NewTable(tt)))
	}
	return nil
}

func addMemories(m *Module, raw *wasm.RawModule, cfg *config) error {
	for _, mt := range raw.Mems {
		if cfg.maxMemoryPages > 0 && mt.Limits.Min > cfg.maxMemoryPages {
			return ErrTooManyMemories
		}
		m.mems = append(m.mems, NewCell(NewMemory(mt)))
	}
	return nil
}

func addGlobals(m *Module, raw *wasm.RawModule) error {
	for _, gd := range raw.Globals {
		v, err := EvaluateConstantExpression(gd.Init, m)
		if err != nil {
			return err
		}
		g, err := NewGlobal(gd.Type, v)
		if err != nil {
			return err
		}
		m.globals = append(m.globals, NewCell(g))
	}
	return nil
}

func collectExports(m *Module, raw *wasm.RawModule) error {
	for _, exp := range raw.Exports {
		switch exp.Desc.Kind {
		case wasm.ExportFunc:
			f, err := m.Func(exp.Desc.Idx)
			if err != nil {
				return wrapErr(InvalidIndex, "export has invalid function index", err)
			}
			m.exports[exp.Name] = ExportValue{Kind: ExportValueFunc, Func: f}
		case wasm.ExportTable:
			if int(exp.Desc.Idx) >= len(m.tables) {
				return newErr(InvalidIndex, "export has invalid table index")
			}
			m.exports[exp.Name] = ExportValue{Kind: ExportValueTable, Table: m.tables[exp.Desc.Idx]}
		case wasm.ExportMem:
			if int(exp.Desc.Idx) >= len(m.mems) {
				return newErr(InvalidIndex, "export has invalid memory index")
			}
			m.exports[exp.Name] = ExportValue{Kind: ExportValueMemory, Memory: m.mems[exp.Desc.Idx]}
		case wasm.ExportGlobal:
			if int(exp.Desc.Idx) >= len(m.globals) {
				return newErr(InvalidIndex, "export has invalid global index")
			}
			m.exports[exp.Name] = ExportValue{Kind: ExportValueGlobal, Global: m.globals[exp.Desc.Idx]}
		}
	}
	return nil
}

func evaluateOffset(m *Module, expr []byte) (int, error) {
	v, err := EvaluateConstantExpression(expr, m)
	if err != nil {
		return 0, err
	}
	if v.Kind != wasm.I32 {
		return 0, wrapErr(TypeMismatch, "offset expression did not produce an i32", nil)
	}
	return int(v.AsI32()), nil
}

func initializeTableElements(m *Module, raw *wasm.RawModule) error {
	for _, el := range raw.Elem {
		offset, err := evaluateOffset(m, el.OffsetExpr)
		if err != nil {
			return err
		}
		fns := make([]Callable, len(el.FuncIdxs))
		for i, idx := range el.FuncIdxs {
			f, err := m.Func(idx)
			if err != nil {
				return wrapErr(InvalidIndex, "element initializer function index out of range", err)
			}
			fns[i] = f
		}
		tbl, release, err := m.TableMut(el.TableIdx)
		if err != nil {
			return wrapErr(InvalidIndex, "element initializer table index out of range", err)
		}
		err = tbl.SetEntries(offset, fns)
		release()
		if err != nil {
			return err
		}
	}
	return nil
}

func initializeMemory(m *Module, raw *wasm.RawModule) error {
	for _, d := range raw.Data {
		offset, err := evaluateOffset(m, d.OffsetExpr)
		if err != nil {
			return err
		}
		if offset < 0 {
			return ErrOutOfBoundMemory
		}
		mem, release, err := m.MemoryMut(d.MemIdx)
		if err != nil {
			return wrapErr(InvalidIndex, "data initializer memory index out of range", err)
		}
		err = mem.SetData(uint32(offset), d.Bytes)
		release()
		if err != nil {
			return err
		}
	}
	return nil
}
