package runtime

import "github.com/AlexEne/wasm-interp/wasm"

// Callable is anything invocable through a function index, a table
// element, or an export: either a host function resolved through a
// Resolver, or a function defined in the module itself. Grounded on the
// teacher's vm/vm.go, which dispatched function calls by index into one
// flat []*wasm.Function without distinguishing host and local functions;
// this core splits that distinction out so host calls never need an
// Engine at all.
type Callable interface {
	Type() wasm.FuncType
	Call(args []Value) ([]Value, error)
}

// HostFunc is an import satisfied directly by the embedder, outside any
// module's code section.
type HostFunc struct {
	funcType wasm.FuncType
	fn       func(args []Value) ([]Value, error)
}

// NewHostFunc wraps fn as a Callable of the given type. The caller is
// responsible for fn returning results matching funcType.Results; this
// core does not re-validate a host function's own return values.
func NewHostFunc(ft wasm.FuncType, fn func(args []Value) ([]Value, error)) *HostFunc {
	return &HostFunc{funcType: ft, fn: fn}
}

func (h *HostFunc) Type() wasm.FuncType { return h.funcType }

func (h *HostFunc) Call(args []Value) ([]Value, error) { return h.fn(args) }

// Engine executes a WasmFunc's instruction body against a store. It is
// the seam between this package (decoding, instantiation, the store) and
// an instruction interpreter, which is out of scope here — the same split
// the teacher draws between wasm/ (layout) and vm/ (execution), just
// expressed as an injected interface instead of a single concrete VM.
type Engine interface {
	Execute(fn *WasmFunc, args []Value, store ReadWriteStore) ([]Value, error)
}

// WasmFunc is a function defined by the module's own code section.
// Calling it delegates to the Engine configured at instantiation time
// (WithEngine); a module instantiated without one traps on any attempt
// to call a local function, since there is nothing that can run its body.
type WasmFunc struct {
	funcType wasm.FuncType
	locals   []wasm.LocalEntry
	body     []byte
	engine   Engine
	store    ReadWriteStore
}

// NewWasmFunc constructs a locally defined function. engine may be nil,
// in which case Call reports a Trap error instead of panicking.
func NewWasmFunc(ft wasm.FuncType, locals []wasm.LocalEntry, body []byte, engine Engine, store ReadWriteStore) *WasmFunc {
	return &WasmFunc{funcType: ft, locals: locals, body: body, engine: engine, store: store}
}

func (f *WasmFunc) Type() wasm.FuncType { return f.funcType }

// Locals returns the function's declared local variable groups (beyond
// its parameters), in declaration order.
func (f *WasmFunc) Locals() []wasm.LocalEntry { return f.locals }

// Body returns the function's instruction bytes, excluding the trailing
// end opcode (reader/wasm already stripped it during decoding).
func (f *WasmFunc) Body() []byte { return f.body }

func (f *WasmFunc) Call(args []Value) ([]Value, error) {
	if f.engine == nil {
		return nil, newErr(Trap, "no engine configured to execute local function bodies")
	}
	return f.engine.Execute(f, args, f.store)
}

// Stack is a small Value stack, grounded on the teacher's vm/vm.go stack
// ([]int64 with a vm.sp cursor), generalized to carry kind-tagged Values.
// It is not used by this package itself — it's offered as the building
// block an injected Engine will almost certainly need.
type Stack struct {
	values []Value
}

// NewStack returns an empty stack with the given initial capacity.
func NewStack(capacity int) *Stack {
	return &Stack{values: make([]Value, 0, capacity)}
}

// Push pushes v onto the stack.
func (s *Stack) Push(v Value) { s.values = append(s.values, v) }

// Pop removes and returns the top value.
func (s *Stack) Pop() (Value, error) {
	if len(s.values) == 0 {
		return Value{}, newErr(Trap, "stack underflow")
	}
	v := s.values[len(s.values)-1]
	s.values = s.values[:len(s.values)-1]
	return v, nil
}

// Peek returns the top value without removing it.
func (s *Stack) Peek() (Value, error) {
	if len(s.values) == 0 {
		return Value{}, newErr(Trap, "stack underflow")
	}
	return s.values[len(s.values)-1], nil
}

// Len returns the number of values currently on the stack.
func (s *Stack) Len() int { return len(s.values) }
