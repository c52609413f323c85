package runtime

import "github.com/AlexEne/wasm-interp/wasm"

// Resolver satisfies a module's imports. Grounded on the teacher's
// main.go:Resolver (a single GetFunction(module, name) method switching
// on a flat case statement), generalized to all four importable kinds
// per spec §4.F ("resolve imports ... in declaration order, failing on
// the first one the resolver cannot satisfy").
//
// Each method receives the declared descriptor so a resolver can check it
// against what it's about to hand back (the teacher's version trusted the
// caller entirely and panicked on an unknown name; this core instead
// returns a ResolverError-kind InstantiationError).
type Resolver interface {
	ResolveFunction(moduleName, name string, want wasm.FuncType) (Callable, error)
	ResolveTable(moduleName, name string, want wasm.TableType) (*Table, error)
	ResolveMemory(moduleName, name string, want wasm.MemType) (*Memory, error)
	ResolveGlobal(moduleName, name string, want wasm.GlobalType) (*Global, error)
}

func resolverErr(moduleName, name string, cause error) *InstantiationError {
	return wrapErr(ResolverError, "could not resolve import "+moduleName+"."+name, cause)
}
