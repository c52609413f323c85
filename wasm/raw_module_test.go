package wasm

import (
	"bytes"
	"errors"
	"testing"

	wagon "github.com/go-interpreter/wagon/wasm"
)

func header() []byte {
	return []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
}

func uleb32(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}

func section(id byte, payload []byte) []byte {
	out := []byte{id}
	out = append(out, uleb32(uint32(len(payload)))...)
	out = append(out, payload...)
	return out
}

// TestEmptyModule covers spec §8 scenario S1: magic-only input decodes to
// a RawModule with every sequence empty.
func TestEmptyModule(t *testing.T) {
	m, err := Decode(bytes.NewReader(header()), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Types) != 0 || len(m.Funcs) != 0 || len(m.Imports) != 0 || len(m.Exports) != 0 {
		t.Fatalf("expected an entirely empty module, got %+v", m)
	}
	if m.Start != nil {
		t.Fatalf("expected no start function")
	}
}

// TestHeaderGate covers spec §8 invariant 1: any input whose first 8 bytes
// differ from the magic fails with MalformedBinary, before any section is
// touched.
func TestHeaderGate(t *testing.T) {
	cases := [][]byte{
		{0x00, 0x61, 0x73, 0x6d, 0x02, 0x00, 0x00, 0x00}, // wrong version
		{0x00, 0x61, 0x73, 0x00, 0x01, 0x00, 0x00, 0x00}, // wrong magic
		{0x00, 0x61, 0x73},                               // truncated
	}
	for _, c := range cases {
		_, err := Decode(bytes.NewReader(c), nil)
		if err == nil {
			t.Fatalf("expected error for %v", c)
		}
		var de *DecodeError
		if !errors.As(err, &de) || de.Kind != MalformedBinary {
			t.Fatalf("expected MalformedBinary, got %v", err)
		}
	}
}

func typeSectionOneVoidToVoid() []byte {
	// one func type: () -> ()
	payload := append(uleb32(1), funcTypeForm)
	payload = append(payload, uleb32(0)...) // no params
	payload = append(payload, uleb32(0)...) // no results
	return section(sectionType, payload)
}

// TestBadSectionOrder covers spec §8 invariant 2 / scenario S5: a type
// section followed by a memory section followed by an import section
// fails with InvalidSectionOrder.
func TestBadSectionOrder(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(header())
	buf.Write(typeSectionOneVoidToVoid())
	buf.Write(section(sectionMemory, append(uleb32(1), 0x00, 0x00))) // one mem, flag 0, min 0
	buf.Write(section(sectionImport, uleb32(0)))                     // empty import vector

	_, err := Decode(&buf, nil)
	if err == nil {
		t.Fatalf("expected InvalidSectionOrder")
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != InvalidSectionOrder {
		t.Fatalf("expected InvalidSectionOrder, got %v", err)
	}
}

// TestCustomSectionTransparency covers spec §8 invariant 3: inserting
// custom sections anywhere between real sections doesn't change the
// decoded result and doesn't disturb the section-order state machine.
func TestCustomSectionTransparency(t *testing.T) {
	customSec := func(name string) []byte {
		payload := append(uleb32(uint32(len(name))), []byte(name)...)
		return section(sectionCustom, payload)
	}

	plain := func() []byte {
		var buf bytes.Buffer
		buf.Write(header())
		buf.Write(typeSectionOneVoidToVoid())
		return buf.Bytes()
	}()

	withCustom := func() []byte {
		var buf bytes.Buffer
		buf.Write(header())
		buf.Write(customSec("before"))
		buf.Write(typeSectionOneVoidToVoid())
		buf.Write(customSec("after"))
		return buf.Bytes()
	}()

	m1, err := Decode(bytes.NewReader(plain), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m2, err := Decode(bytes.NewReader(withCustom), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m1.Types) != len(m2.Types) || len(m1.Types) != 1 {
		t.Fatalf("expected both modules to decode 1 type, got %d and %d", len(m1.Types), len(m2.Types))
	}
}

// TestSectionNotExhausted covers the "failed to read whole section" rule:
// a section whose declared length doesn't match its actual contents fails
// decoding rather than silently under/over-reading into the next section.
func TestSectionNotExhausted(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(header())
	// Type section declares a length of 10 but the type vector inside
	// only consumes a handful of bytes, leaving the rest unconsumed.
	payload := append(uleb32(1), funcTypeForm)
	payload = append(payload, uleb32(0)...)
	payload = append(payload, uleb32(0)...)
	for len(payload) < 10 {
		payload = append(payload, 0x00)
	}
	buf.Write(section(sectionType, payload))

	_, err := Decode(&buf, nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != MalformedBinary {
		t.Fatalf("expected MalformedBinary, got %v", err)
	}
}

// TestConstExprWithEndByteImmediate covers a constant expression whose
// immediate byte equals the end opcode (0x0B): i32.const 11 encodes as
// 0x41 0x0B, so the full offset expression 0x41 0x0B 0x0B must not be
// truncated after the immediate's own 0x0B, which would misalign the
// data byte count that follows it.
func TestConstExprWithEndByteImmediate(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(header())
	buf.Write(section(sectionMemory, append(uleb32(1), 0x00, 0x01))) // one mem, flag 0, min 1

	offsetExpr := []byte{0x41, 0x0b, 0x0b} // i32.const 11, end
	dataBytes := []byte{0xde, 0xad, 0xbe, 0xef}
	dataPayload := append(uleb32(0), offsetExpr...) // mem_idx 0
	dataPayload = append(dataPayload, uleb32(uint32(len(dataBytes)))...)
	dataPayload = append(dataPayload, dataBytes...)
	buf.Write(section(sectionData, append(uleb32(1), dataPayload...)))

	m, err := Decode(&buf, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Data) != 1 {
		t.Fatalf("expected 1 data segment, got %d", len(m.Data))
	}
	if !bytes.Equal(m.Data[0].OffsetExpr, offsetExpr) {
		t.Fatalf("offset expr truncated: got %v, want %v", m.Data[0].OffsetExpr, offsetExpr)
	}
	if !bytes.Equal(m.Data[0].Bytes, dataBytes) {
		t.Fatalf("data bytes misaligned: got %v, want %v", m.Data[0].Bytes, dataBytes)
	}
}

// TestDecodeAgainstWagon cross-checks this core's decoder against
// go-interpreter/wagon's, mirroring the teacher's own use of wagon as a
// reference implementation in vm/vm_test.go.
func TestDecodeAgainstWagon(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(header())
	buf.Write(typeSectionOneVoidToVoid())
	data := buf.Bytes()

	ours, err := Decode(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("our decoder failed: %v", err)
	}

	theirs, err := wagon.ReadModule(bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("wagon failed to decode the same bytes: %v", err)
	}

	wantTypes := 0
	if theirs.Types != nil {
		wantTypes = len(theirs.Types.Entries)
	}
	if len(ours.Types) != wantTypes {
		t.Fatalf("type count mismatch: ours=%d wagon=%d", len(ours.Types), wantTypes)
	}
}
