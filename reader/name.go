package reader

import "unicode/utf8"

// ReadName reads a LEB128-length-prefixed UTF-8 string, grounded on the
// teacher's wasm/module.go:readName.
func (rd *Reader) ReadName() (string, error) {
	n, err := rd.ReadULEB32()
	if err != nil {
		return "", err
	}
	b, err := rd.ReadExact(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}
