package runtime

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"

	"github.com/AlexEne/wasm-interp/wasm"
)

// Memory is a single linear memory: a growable byte slice sized in pages
// of wasm.PageSize bytes. Grounded on the teacher's wasm/index.go's
// populateLinearMemory (Min pages allocated up front as zeroed bytes), with
// the same Open-Question resolution as Table: a data-section write past
// the current size traps rather than silently growing the backing slice.
type Memory struct {
	memType wasm.MemType
	data    []byte
}

// NewMemory allocates Min pages of zeroed memory.
func NewMemory(mt wasm.MemType) *Memory {
	return &Memory{memType: mt, data: make([]byte, uint64(mt.Limits.Min)*wasm.PageSize)}
}

// Type returns the memory's declared type.
func (m *Memory) Type() wasm.MemType { return m.memType }

// SizePages returns the current size in pages.
func (m *Memory) SizePages() uint32 { return uint32(len(m.data) / wasm.PageSize) }

// Grow adds deltaPages pages, returning the size in pages before the
// growth. Fails if the new size would exceed the declared maximum.
func (m *Memory) Grow(deltaPages uint32) (uint32, error) {
	prev := m.SizePages()
	next := prev + deltaPages
	if m.memType.Limits.HasMax && next > m.memType.Limits.Max {
		return 0, ErrOutOfBoundMemory
	}
	grown := make([]byte, uint64(next)*wasm.PageSize)
	copy(grown, m.data)
	m.data = grown
	return prev, nil
}

// ReadBytes returns a copy of the n bytes starting at offset.
func (m *Memory) ReadBytes(offset, n uint32) ([]byte, error) {
	end := uint64(offset) + uint64(n)
	if end > uint64(len(m.data)) {
		return nil, ErrOutOfBoundMemory
	}
	out := make([]byte, n)
	copy(out, m.data[offset:end])
	return out, nil
}

// SetData writes b starting at offset, used by data-segment initialization.
// Traps (ErrOutOfBoundMemory) rather than growing the memory.
func (m *Memory) SetData(offset uint32, b []byte) error {
	end := uint64(offset) + uint64(len(b))
	if end > uint64(len(m.data)) {
		return ErrOutOfBoundMemory
	}
	copy(m.data[offset:end], b)
	return nil
}

func (m *Memory) bounds(offset uint32, width int) error {
	end := uint64(offset) + uint64(width)
	if end > uint64(len(m.data)) {
		return ErrOutOfBoundMemory
	}
	return nil
}

// LoadI32 reads a little-endian i32 at offset.
func (m *Memory) LoadI32(offset uint32) (int32, error) {
	if err := m.bounds(offset, 4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(m.data[offset:])), nil
}

// LoadI64 reads a little-endian i64 at offset.
func (m *Memory) LoadI64(offset uint32) (int64, error) {
	if err := m.bounds(offset, 8); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(m.data[offset:])), nil
}

// LoadF32 reads a little-endian f32 at offset.
func (m *Memory) LoadF32(offset uint32) (float32, error) {
	if err := m.bounds(offset, 4); err != nil {
		return 0, err
	}
	return math32.Float32frombits(binary.LittleEndian.Uint32(m.data[offset:])), nil
}

// LoadF64 reads a little-endian f64 at offset.
func (m *Memory) LoadF64(offset uint32) (float64, error) {
	if err := m.bounds(offset, 8); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(m.data[offset:])), nil
}

// StoreI32 writes v as a little-endian i32 at offset.
func (m *Memory) StoreI32(offset uint32, v int32) error {
	if err := m.bounds(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[offset:], uint32(v))
	return nil
}

// StoreI64 writes v as a little-endian i64 at offset.
func (m *Memory) StoreI64(offset uint32, v int64) error {
	if err := m.bounds(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[offset:], uint64(v))
	return nil
}

// StoreF32 writes v as a little-endian f32 at offset.
func (m *Memory) StoreF32(offset uint32, v float32) error {
	if err := m.bounds(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[offset:], math32.Float32bits(v))
	return nil
}

// StoreF64 writes v as a little-endian f64 at offset.
func (m *Memory) StoreF64(offset uint32, v float64) error {
	if err := m.bounds(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[offset:], math.Float64bits(v))
	return nil
}
