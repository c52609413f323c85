package wasm

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/AlexEne/wasm-interp/reader"
)

// Magic is the 4-byte "\0asm" magic number every module begins with.
const Magic uint32 = 0x6d736100

// BinaryVersion is the only version this core understands.
const BinaryVersion uint32 = 0x1

// ErrorKind classifies a module-decode failure, per spec §7.
type ErrorKind int

const (
	// MalformedBinary covers bad magic/version, truncated sections, LEB
	// overflow, invalid UTF-8, and a section not fully consumed.
	MalformedBinary ErrorKind = iota
	// InvalidSectionOrder covers non-custom sections appearing out of
	// the canonical order.
	InvalidSectionOrder
)

// DecodeError is returned by Decode. Section holds the offending section
// id for an InvalidSectionOrder failure; it is left zero for
// MalformedBinary failures.
type DecodeError struct {
	Kind    ErrorKind
	Section byte
	msg     string
	cause   error
}

func (e *DecodeError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *DecodeError) Unwrap() error { return e.cause }

func malformed(msg string, cause error) *DecodeError {
	return &DecodeError{Kind: MalformedBinary, msg: msg, cause: cause}
}

func badOrder(section byte) *DecodeError {
	return &DecodeError{Kind: InvalidSectionOrder, Section: section, msg: "invalid section order"}
}

// RawModule is an immutable, fully parsed description of a module (spec
// §3). It has no notion of imports being resolved, storage being
// allocated, or constant expressions being evaluated — see the runtime
// package for that.
type RawModule struct {
	Types   []FuncType
	TypeIdx []uint32 // one per entry of Funcs, indexes into Types
	Funcs   []Func

	Tables  []TableType
	Mems    []MemType
	Globals []GlobalDef

	Elem []Element
	Data []Data

	// Start is the function index to invoke after instantiation, or nil.
	Start *uint32

	Imports []Import
	Exports []Export
}

// Decode reads a binary Wasm module from r. log, if non-nil, receives
// informational entries (e.g. skipped custom sections); a nil log defaults
// to logrus.StandardLogger().
func Decode(r io.Reader, log logrus.FieldLogger) (*RawModule, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	rd := reader.New(r)
	if err := readHeader(rd); err != nil {
		return nil, err
	}

	m := &RawModule{}
	b := newBuilder(m, log)

	for {
		id, ok, err := readSectionID(rd)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		length, err := rd.ReadULEB32()
		if err != nil {
			return nil, malformed("failed to read section length", err)
		}

		scoped := readerScoped(rd, length)

		if id == sectionCustom {
			name, err := scoped.Reader().ReadName()
			if err != nil {
				return nil, malformed("failed to read custom section name", err)
			}
			if err := scoped.DiscardRemaining(); err != nil {
				return nil, malformed("failed to skip custom section", err)
			}
			log.WithField("custom_section", name).Debug("skipping custom section")
			continue
		}

		if err := b.advanceTo(id); err != nil {
			return nil, err
		}

		if err := decodeSection(m, id, scoped.Reader()); err != nil {
			return nil, err
		}

		if err := scoped.RequireExhausted(); err != nil {
			return nil, malformed("failed to read whole section", err)
		}
	}

	return m, nil
}

func readHeader(rd *reader.Reader) error {
	magic, err := rd.ReadU32()
	if err != nil {
		return malformed("invalid module header", err)
	}
	if magic != Magic {
		return malformed("invalid module header", nil)
	}
	version, err := rd.ReadU32()
	if err != nil {
		return malformed("invalid module header", err)
	}
	if version != BinaryVersion {
		return malformed("invalid module header", nil)
	}
	return nil
}

// readSectionID reads the next section id, reporting ok=false at a clean
// EOF (the terminal state, spec §4.C). A short read right at a section
// boundary is indistinguishable from EOF in this binary format (there is
// no trailing marker), so it is treated as the terminal state too.
func readSectionID(rd *reader.Reader) (byte, bool, error) {
	id, err := rd.ReadByte()
	if err != nil {
		if errors.Is(err, reader.ErrShortRead) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func readerScoped(rd *reader.Reader, n uint32) *reader.ScopedReader {
	return reader.NewScopedReader(rd.Unwrap(), n)
}
