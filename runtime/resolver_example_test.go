package runtime

import "github.com/AlexEne/wasm-interp/wasm"

// mapResolver is an example Resolver, adapted from the teacher's
// main.go:Resolver (a switch on module name, then on field name) but
// generalized to the four import kinds and backed by plain maps instead
// of a hardcoded case statement, since test modules declare different
// imports from test to test.
type mapResolver struct {
	funcs   map[string]map[string]Callable
	tables  map[string]map[string]*Table
	mems    map[string]map[string]*Memory
	globals map[string]map[string]*Global
}

func newMapResolver() *mapResolver {
	return &mapResolver{
		funcs:   map[string]map[string]Callable{},
		tables:  map[string]map[string]*Table{},
		mems:    map[string]map[string]*Memory{},
		globals: map[string]map[string]*Global{},
	}
}

func (r *mapResolver) addFunc(mod, name string, c Callable) {
	if r.funcs[mod] == nil {
		r.funcs[mod] = map[string]Callable{}
	}
	r.funcs[mod][name] = c
}

func (r *mapResolver) ResolveFunction(mod, name string, want wasm.FuncType) (Callable, error) {
	if fn, ok := r.funcs[mod][name]; ok {
		return fn, nil
	}
	return nil, resolverErr(mod, name, nil)
}

func (r *mapResolver) ResolveTable(mod, name string, want wasm.TableType) (*Table, error) {
	if t, ok := r.tables[mod][name]; ok {
		return t, nil
	}
	return nil, resolverErr(mod, name, nil)
}

func (r *mapResolver) ResolveMemory(mod, name string, want wasm.MemType) (*Memory, error) {
	if m, ok := r.mems[mod][name]; ok {
		return m, nil
	}
	return nil, resolverErr(mod, name, nil)
}

func (r *mapResolver) ResolveGlobal(mod, name string, want wasm.GlobalType) (*Global, error) {
	if g, ok := r.globals[mod][name]; ok {
		return g, nil
	}
	return nil, resolverErr(mod, name, nil)
}
