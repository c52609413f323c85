package runtime

import (
	"testing"

	"github.com/AlexEne/wasm-interp/wasm"
)

func TestMemoryAllocatesMinPages(t *testing.T) {
	mem := NewMemory(wasm.MemType{Limits: wasm.Limits{Min: 2}})
	if mem.SizePages() != 2 {
		t.Fatalf("got %d pages, want 2", mem.SizePages())
	}
}

func TestMemoryStoreLoadI32(t *testing.T) {
	mem := NewMemory(wasm.MemType{Limits: wasm.Limits{Min: 1}})
	if err := mem.StoreI32(100, -7); err != nil {
		t.Fatal(err)
	}
	v, err := mem.LoadI32(100)
	if err != nil {
		t.Fatal(err)
	}
	if v != -7 {
		t.Fatalf("got %d, want -7", v)
	}
}

func TestMemorySetDataTrapsPastEnd(t *testing.T) {
	mem := NewMemory(wasm.MemType{Limits: wasm.Limits{Min: 1}})
	if err := mem.SetData(wasm.PageSize-2, []byte{1, 2, 3, 4}); err == nil {
		t.Fatal("expected an out-of-bounds trap")
	}
}

func TestMemoryGrowRespectsMax(t *testing.T) {
	mem := NewMemory(wasm.MemType{Limits: wasm.Limits{Min: 1, Max: 1, HasMax: true}})
	if _, err := mem.Grow(1); err == nil {
		t.Fatal("expected growth beyond max to fail")
	}
}

func TestMemoryGrowSucceeds(t *testing.T) {
	mem := NewMemory(wasm.MemType{Limits: wasm.Limits{Min: 1}})
	prev, err := mem.Grow(1)
	if err != nil {
		t.Fatal(err)
	}
	if prev != 1 {
		t.Fatalf("got previous size %d, want 1", prev)
	}
	if mem.SizePages() != 2 {
		t.Fatalf("got %d pages, want 2", mem.SizePages())
	}
}
