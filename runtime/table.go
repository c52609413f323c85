package runtime

import "github.com/AlexEne/wasm-interp/wasm"

// Table holds a contiguous run of function references (funcref is the
// only element kind core Wasm 1.0 supports). Grounded on the teacher's
// wasm/index.go:populateTables, but the Open Question it left unresolved
// (spec §9 "Element writes past table end") is decided the other way: the
// teacher silently reallocates and zero-extends on an oversized write,
// this core traps, matching core Wasm 1.0's offset+len<=size requirement.
type Table struct {
	tableType wasm.TableType
	entries   []Callable
}

// NewTable allocates a table with Min entries, all null (nil Callable)
// function references.
func NewTable(tt wasm.TableType) *Table {
	return &Table{tableType: tt, entries: make([]Callable, tt.Limits.Min)}
}

// Type returns the table's declared type.
func (t *Table) Type() wasm.TableType { return t.tableType }

// Size returns the current number of entries.
func (t *Table) Size() int { return len(t.entries) }

// Get returns the entry at i (nil if the slot is a null reference).
func (t *Table) Get(i int) (Callable, error) {
	if i < 0 || i >= len(t.entries) {
		return nil, ErrOutOfBoundTable
	}
	return t.entries[i], nil
}

// SetEntries writes fns starting at offset. Traps (ErrOutOfBoundTable) if
// offset+len(fns) exceeds the table's current size rather than growing it.
func (t *Table) SetEntries(offset int, fns []Callable) error {
	if offset < 0 {
		return ErrOutOfBoundTable
	}
	end := offset + len(fns)
	if end > len(t.entries) {
		return ErrOutOfBoundTable
	}
	copy(t.entries[offset:end], fns)
	return nil
}
