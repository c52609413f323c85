package wasm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/AlexEne/wasm-interp/reader"
)

// decodeSection dispatches a single already-scoped, already-order-checked
// section body to its typed decoder, grounded on the teacher's
// wasm/module.go:readSection switch.
func decodeSection(m *RawModule, id byte, rd *reader.Reader) error {
	switch id {
	case sectionType:
		return decodeTypeSection(m, rd)
	case sectionImport:
		return decodeImportSection(m, rd)
	case sectionFunc:
		return decodeFuncSection(m, rd)
	case sectionTable:
		return decodeTableSection(m, rd)
	case sectionMemory:
		return decodeMemorySection(m, rd)
	case sectionGlobal:
		return decodeGlobalSection(m, rd)
	case sectionExport:
		return decodeExportSection(m, rd)
	case sectionStart:
		return decodeStartSection(m, rd)
	case sectionElem:
		return decodeElemSection(m, rd)
	case sectionCode:
		return decodeCodeSection(m, rd)
	case sectionData:
		return decodeDataSection(m, rd)
	default:
		return malformed(fmt.Sprintf("unknown section id %d", id), nil)
	}
}

func decodeTypeSection(m *RawModule, rd *reader.Reader) error {
	n, err := rd.ReadULEB32()
	if err != nil {
		return malformed("failed to read type section count", err)
	}
	m.Types = make([]FuncType, n)
	for i := range m.Types {
		form, err := rd.ReadByte()
		if err != nil {
			return malformed("failed to read functype form", err)
		}
		if form != funcTypeForm {
			return malformed("invalid functype signature byte", nil)
		}
		m.Types[i].Params, err = readValueKindVec(rd)
		if err != nil {
			return err
		}
		m.Types[i].Results, err = readValueKindVec(rd)
		if err != nil {
			return err
		}
	}
	return nil
}

func readValueKindVec(rd *reader.Reader) ([]ValueKind, error) {
	n, err := rd.ReadULEB32()
	if err != nil {
		return nil, malformed("failed to read value kind vector length", err)
	}
	out := make([]ValueKind, n)
	for i := range out {
		out[i], err = readValueKind(rd)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readValueKind(rd *reader.Reader) (ValueKind, error) {
	b, err := rd.ReadByte()
	if err != nil {
		return 0, malformed("failed to read value type", err)
	}
	switch ValueKind(b) {
	case I32, I64, F32, F64:
		return ValueKind(b), nil
	default:
		return 0, malformed("invalid value type", nil)
	}
}

func decodeImportSection(m *RawModule, rd *reader.Reader) error {
	n, err := rd.ReadULEB32()
	if err != nil {
		return malformed("failed to read import section count", err)
	}
	m.Imports = make([]Import, n)
	for i := range m.Imports {
		m.Imports[i].ModuleName, err = rd.ReadName()
		if err != nil {
			return malformed("failed to read import module name", err)
		}
		m.Imports[i].Name, err = rd.ReadName()
		if err != nil {
			return malformed("failed to read import field name", err)
		}
		kindByte, err := rd.ReadByte()
		if err != nil {
			return malformed("failed to read import kind", err)
		}

		var desc ImportDesc
		desc.Kind = ImportKind(kindByte)
		switch desc.Kind {
		case ImportFunc:
			desc.TypeIdx, err = rd.ReadULEB32()
		case ImportTable:
			desc.Table, err = readTableType(rd)
		case ImportMem:
			desc.Mem, err = readMemType(rd)
		case ImportGlobal:
			desc.GlobalType, err = readGlobalType(rd)
		default:
			return malformed(fmt.Sprintf("invalid external kind %d", kindByte), nil)
		}
		if err != nil {
			return err
		}
		m.Imports[i].Desc = desc
	}
	return nil
}

func decodeFuncSection(m *RawModule, rd *reader.Reader) error {
	n, err := rd.ReadULEB32()
	if err != nil {
		return malformed("failed to read function section count", err)
	}
	m.TypeIdx = make([]uint32, n)
	for i := range m.TypeIdx {
		m.TypeIdx[i], err = rd.ReadULEB32()
		if err != nil {
			return malformed("failed to read function type index", err)
		}
	}
	return nil
}

func readElemKind(rd *reader.Reader) error {
	b, err := rd.ReadByte()
	if err != nil {
		return malformed("failed to read table element type", err)
	}
	if b != elemKindFuncRef {
		return malformed("invalid table element type", nil)
	}
	return nil
}

func readLimits(rd *reader.Reader) (Limits, error) {
	var l Limits
	flag, err := rd.ReadByte()
	if err != nil {
		return l, malformed("failed to read limits flag", err)
	}
	switch flag {
	case 0x00:
		l.Min, err = rd.ReadULEB32()
		if err != nil {
			return l, malformed("failed to read limits min", err)
		}
	case 0x01:
		l.Min, err = rd.ReadULEB32()
		if err != nil {
			return l, malformed("failed to read limits min", err)
		}
		l.Max, err = rd.ReadULEB32()
		if err != nil {
			return l, malformed("failed to read limits max", err)
		}
		l.HasMax = true
	default:
		return l, malformed("invalid limits flag", nil)
	}
	return l, nil
}

func readTableType(rd *reader.Reader) (TableType, error) {
	var t TableType
	if err := readElemKind(rd); err != nil {
		return t, err
	}
	limits, err := readLimits(rd)
	if err != nil {
		return t, err
	}
	t.Limits = limits
	return t, nil
}

func readMemType(rd *reader.Reader) (MemType, error) {
	limits, err := readLimits(rd)
	if err != nil {
		return MemType{}, err
	}
	return MemType{Limits: limits}, nil
}

func readGlobalType(rd *reader.Reader) (GlobalType, error) {
	var gt GlobalType
	kind, err := readValueKind(rd)
	if err != nil {
		return gt, err
	}
	mutByte, err := rd.ReadByte()
	if err != nil {
		return gt, malformed("failed to read mutability flag", err)
	}
	if mutByte != 0x00 && mutByte != 0x01 {
		return gt, malformed("invalid mutability flag", nil)
	}
	gt.Kind = kind
	gt.Mut = Mutability(mutByte)
	return gt, nil
}

func decodeTableSection(m *RawModule, rd *reader.Reader) error {
	n, err := rd.ReadULEB32()
	if err != nil {
		return malformed("failed to read table section count", err)
	}
	m.Tables = make([]TableType, n)
	for i := range m.Tables {
		m.Tables[i], err = readTableType(rd)
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeMemorySection(m *RawModule, rd *reader.Reader) error {
	n, err := rd.ReadULEB32()
	if err != nil {
		return malformed("failed to read memory section count", err)
	}
	m.Mems = make([]MemType, n)
	for i := range m.Mems {
		m.Mems[i], err = readMemType(rd)
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeGlobalSection(m *RawModule, rd *reader.Reader) error {
	n, err := rd.ReadULEB32()
	if err != nil {
		return malformed("failed to read global section count", err)
	}
	m.Globals = make([]GlobalDef, n)
	for i := range m.Globals {
		m.Globals[i].Type, err = readGlobalType(rd)
		if err != nil {
			return err
		}
		m.Globals[i].Init, err = readConstExpr(rd)
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeExportSection(m *RawModule, rd *reader.Reader) error {
	n, err := rd.ReadULEB32()
	if err != nil {
		return malformed("failed to read export section count", err)
	}
	m.Exports = make([]Export, n)
	for i := range m.Exports {
		m.Exports[i].Name, err = rd.ReadName()
		if err != nil {
			return malformed("failed to read export name", err)
		}
		kindByte, err := rd.ReadByte()
		if err != nil {
			return malformed("failed to read export desc kind", err)
		}
		switch kindByte {
		case 0x00, 0x01, 0x02, 0x03:
		default:
			return malformed("invalid export desc flag", nil)
		}
		m.Exports[i].Desc.Kind = ExportKind(kindByte)
		m.Exports[i].Desc.Idx, err = rd.ReadULEB32()
		if err != nil {
			return malformed("failed to read export desc index", err)
		}
	}
	return nil
}

func decodeStartSection(m *RawModule, rd *reader.Reader) error {
	idx, err := rd.ReadULEB32()
	if err != nil {
		return malformed("failed to read start function index", err)
	}
	m.Start = &idx
	return nil
}

func decodeElemSection(m *RawModule, rd *reader.Reader) error {
	n, err := rd.ReadULEB32()
	if err != nil {
		return malformed("failed to read element section count", err)
	}
	m.Elem = make([]Element, n)
	for i := range m.Elem {
		m.Elem[i].TableIdx, err = rd.ReadULEB32()
		if err != nil {
			return malformed("failed to read element table index", err)
		}
		m.Elem[i].OffsetExpr, err = readConstExpr(rd)
		if err != nil {
			return err
		}
		count, err := rd.ReadULEB32()
		if err != nil {
			return malformed("failed to read element function count", err)
		}
		m.Elem[i].FuncIdxs = make([]uint32, count)
		for j := range m.Elem[i].FuncIdxs {
			m.Elem[i].FuncIdxs[j], err = rd.ReadULEB32()
			if err != nil {
				return malformed("failed to read element function index", err)
			}
		}
	}
	return nil
}

func decodeCodeSection(m *RawModule, rd *reader.Reader) error {
	n, err := rd.ReadULEB32()
	if err != nil {
		return malformed("failed to read code section count", err)
	}
	m.Funcs = make([]Func, n)
	for i := range m.Funcs {
		size, err := rd.ReadULEB32()
		if err != nil {
			return malformed("failed to read code entry size", err)
		}
		body, err := rd.ReadExact(size)
		if err != nil {
			return malformed("failed to read code entry body", err)
		}
		bodyBytes := bytes.NewReader(body)
		bodyReader := reader.New(bodyBytes)
		locals, err := readLocals(bodyReader)
		if err != nil {
			return err
		}
		rest, err := io.ReadAll(bodyBytes)
		if err != nil {
			return malformed("failed to read function instructions", err)
		}
		if len(rest) == 0 || rest[len(rest)-1] != endOpcode {
			return malformed("function body missing end opcode", nil)
		}
		m.Funcs[i] = Func{Locals: locals, Body: rest[:len(rest)-1]}
	}
	return nil
}

func readLocals(rd *reader.Reader) ([]LocalEntry, error) {
	n, err := rd.ReadULEB32()
	if err != nil {
		return nil, malformed("failed to read local entry count", err)
	}
	locals := make([]LocalEntry, n)
	for i := range locals {
		locals[i].Count, err = rd.ReadULEB32()
		if err != nil {
			return nil, malformed("failed to read local entry run length", err)
		}
		locals[i].Kind, err = readValueKind(rd)
		if err != nil {
			return nil, err
		}
	}
	return locals, nil
}

func decodeDataSection(m *RawModule, rd *reader.Reader) error {
	n, err := rd.ReadULEB32()
	if err != nil {
		return malformed("failed to read data section count", err)
	}
	m.Data = make([]Data, n)
	for i := range m.Data {
		m.Data[i].MemIdx, err = rd.ReadULEB32()
		if err != nil {
			return malformed("failed to read data memory index", err)
		}
		m.Data[i].OffsetExpr, err = readConstExpr(rd)
		if err != nil {
			return err
		}
		count, err := rd.ReadULEB32()
		if err != nil {
			return malformed("failed to read data byte count", err)
		}
		m.Data[i].Bytes, err = rd.ReadExact(count)
		if err != nil {
			return malformed("failed to read data bytes", err)
		}
	}
	return nil
}

const endOpcode = 0x0b

const (
	constExprI32Const  byte = 0x41
	constExprI64Const  byte = 0x42
	constExprF32Const  byte = 0x43
	constExprF64Const  byte = 0x44
	constExprGlobalGet byte = 0x23
)

// readConstExpr collects raw instruction bytes up to and including the
// terminating 0x0B (end) opcode. The opcodes are not interpreted here —
// the runtime package's constant-expression evaluator does that, against
// a store this package has no knowledge of (spec §4.D) — but each
// opcode's immediate must still be read by its own width rather than by
// scanning for the next 0x0B byte: 0x0B is a legal immediate byte (e.g.
// i32.const 11 encodes as 0x41 0x0B), so a byte-scan truncates the
// expression and misaligns every section that follows it.
func readConstExpr(rd *reader.Reader) ([]byte, error) {
	var expr []byte
	for {
		b, err := rd.ReadByte()
		if err != nil {
			return nil, malformed("failed to read constant expression", err)
		}
		expr = append(expr, b)
		switch b {
		case endOpcode:
			return expr, nil
		case constExprI32Const, constExprI64Const, constExprGlobalGet:
			imm, err := readLEBImmediate(rd)
			if err != nil {
				return nil, malformed("failed to read constant expression immediate", err)
			}
			expr = append(expr, imm...)
		case constExprF32Const:
			imm, err := rd.ReadExact(4)
			if err != nil {
				return nil, malformed("failed to read f32.const immediate", err)
			}
			expr = append(expr, imm...)
		case constExprF64Const:
			imm, err := rd.ReadExact(8)
			if err != nil {
				return nil, malformed("failed to read f64.const immediate", err)
			}
			expr = append(expr, imm...)
		default:
			return nil, malformed("disallowed opcode in constant expression", nil)
		}
	}
}

// readLEBImmediate consumes a LEB128-encoded immediate byte by byte,
// without decoding its value, stopping at the first byte whose
// continuation bit (0x80) is clear. Bounded to 10 bytes, the most a
// 64-bit LEB128 value can ever take.
func readLEBImmediate(rd *reader.Reader) ([]byte, error) {
	var out []byte
	for i := 0; i < 10; i++ {
		b, err := rd.ReadByte()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
		if b&0x80 == 0 {
			return out, nil
		}
	}
	return nil, reader.ErrLEBOverflow
}
