package coderange

import (
	"unicode/utf8"

	"ropes/internal/enc"
)

// Scan classifies b under e in one pass and counts its characters. Malformed
// sequences count as one character each and make the result Broken.
//
// Only ASCII-compatible encodings can be SevenBit; a 7-bit run in UTF-16 is
// still Valid.
func Scan(e *enc.Encoding, b []byte) (Tag, int) {
	i := asciiPrefix(b)
	if i == len(b) {
		if e.ASCIICompatible() {
			return SevenBit, len(b)
		}
		if len(b) == 0 {
			return Valid, 0
		}
	}
	if !e.ASCIICompatible() {
		i = 0
	}

	tag := Valid
	chars := i
	for i < len(b) {
		if e.ASCIICompatible() && b[i] < utf8.RuneSelf {
			i++
			chars++
			continue
		}
		n, ok := e.CharLen(b[i:])
		if !ok {
			tag = Broken
		}
		i += n
		chars++
	}
	return tag, chars
}

// CountChars counts characters of a run whose tag is already known. SevenBit
// and single-byte encodings need no scan.
func CountChars(e *enc.Encoding, b []byte, tag Tag) int {
	if tag == SevenBit || (e.SingleByte() && tag.Known()) {
		return len(b)
	}
	_, n := Scan(e, b)
	return n
}

func asciiPrefix(b []byte) int {
	for i, c := range b {
		if c >= utf8.RuneSelf {
			return i
		}
	}
	return len(b)
}
