package runtime

import (
	"testing"

	"github.com/AlexEne/wasm-interp/wasm"
)

func fnType(params, results []wasm.ValueKind) wasm.FuncType {
	return wasm.FuncType{Params: params, Results: results}
}

func TestTableSetEntriesWithinBounds(t *testing.T) {
	tbl := NewTable(wasm.TableType{Limits: wasm.Limits{Min: 4}})
	fn := NewHostFunc(fnType(nil, nil), func(args []Value) ([]Value, error) { return nil, nil })

	if err := tbl.SetEntries(1, []Callable{fn, fn}); err != nil {
		t.Fatal(err)
	}
	got, err := tbl.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	if got != Callable(fn) {
		t.Fatal("expected entry 1 to be fn")
	}
	if empty, _ := tbl.Get(3); empty != nil {
		t.Fatal("expected entry 3 to remain a null reference")
	}
}

func TestTableSetEntriesTrapsPastEnd(t *testing.T) {
	tbl := NewTable(wasm.TableType{Limits: wasm.Limits{Min: 2}})
	fn := NewHostFunc(fnType(nil, nil), func(args []Value) ([]Value, error) { return nil, nil })

	if err := tbl.SetEntries(1, []Callable{fn, fn}); err == nil {
		t.Fatal("expected an out-of-bounds trap")
	}
}

func TestTableGetOutOfRange(t *testing.T) {
	tbl := NewTable(wasm.TableType{Limits: wasm.Limits{Min: 1}})
	if _, err := tbl.Get(5); err == nil {
		t.Fatal("expected out-of-range error")
	}
}
