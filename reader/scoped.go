package reader

import "io"

// ScopedReader forwards up to n bytes from a parent reader and then behaves
// as if at EOF, regardless of how much more the parent has to offer. Every
// section body is decoded through one of these so an over-read or
// under-read is caught rather than silently bleeding into the next
// section (spec §4.A, §4.B).
type ScopedReader struct {
	limited *io.LimitedReader
	wrapped *Reader
}

// NewScopedReader bounds parent to exactly n bytes.
func NewScopedReader(parent io.Reader, n uint32) *ScopedReader {
	lr := &io.LimitedReader{R: parent, N: int64(n)}
	return &ScopedReader{limited: lr, wrapped: New(lr)}
}

// Read implements io.Reader.
func (s *ScopedReader) Read(p []byte) (int, error) {
	return s.limited.Read(p)
}

// Reader exposes the bounded primitives (ReadExact, ReadU32, ...) over this
// scope.
func (s *ScopedReader) Reader() *Reader {
	return s.wrapped
}

// IsAtEnd reports whether every byte of the scope has been consumed.
func (s *ScopedReader) IsAtEnd() bool {
	return s.limited.N == 0
}

// Remaining returns the number of unconsumed bytes left in the scope.
func (s *ScopedReader) Remaining() int64 {
	return s.limited.N
}

// RequireExhausted returns ErrSectionNotExhausted if the scope was not
// fully consumed by the section decoder.
func (s *ScopedReader) RequireExhausted() error {
	if !s.IsAtEnd() {
		return ErrSectionNotExhausted
	}
	return nil
}

// DiscardRemaining consumes and drops whatever bytes are left in the
// scope, used for skipping a custom section body wholesale.
func (s *ScopedReader) DiscardRemaining() error {
	_, err := io.Copy(io.Discard, s.limited)
	return err
}
