package runtime

import (
	"testing"

	"github.com/AlexEne/wasm-interp/wasm"
)

func TestNewGlobalTypeMismatch(t *testing.T) {
	gt := wasm.GlobalType{Kind: wasm.I32, Mut: wasm.Const}
	if _, err := NewGlobal(gt, I64(1)); err == nil {
		t.Fatal("expected type mismatch error")
	}
}

func TestGlobalSetImmutable(t *testing.T) {
	gt := wasm.GlobalType{Kind: wasm.I32, Mut: wasm.Const}
	g, err := NewGlobal(gt, I32(42))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Set(I32(7)); err != ErrGlobalNotMutable {
		t.Fatalf("expected ErrGlobalNotMutable, got %v", err)
	}
}

func TestGlobalSetMutable(t *testing.T) {
	gt := wasm.GlobalType{Kind: wasm.I32, Mut: wasm.Var}
	g, err := NewGlobal(gt, I32(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Set(I32(99)); err != nil {
		t.Fatal(err)
	}
	if g.Get().AsI32() != 99 {
		t.Fatalf("got %d, want 99", g.Get().AsI32())
	}
}

func TestGlobalSetWrongKind(t *testing.T) {
	gt := wasm.GlobalType{Kind: wasm.I32, Mut: wasm.Var}
	g, err := NewGlobal(gt, I32(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Set(F64(1.5)); err == nil {
		t.Fatal("expected type mismatch error")
	}
}
