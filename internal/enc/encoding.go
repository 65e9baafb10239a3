package enc

import (
	xenc "golang.org/x/text/encoding"
)

// CharLenFunc measures the character starting at b[0]. It returns the number
// of bytes the character occupies and whether it is well formed. For malformed
// input n is the number of bytes to skip before resynchronizing and is always
// at least 1 when len(b) > 0.
type CharLenFunc func(b []byte) (n int, ok bool)

// Encoding is a byte encoding descriptor.
type Encoding struct {
	name    string
	aliases []string
	index   int

	minLen int
	maxLen int

	asciiCompatible bool
	charLen         CharLenFunc
	codec           xenc.Encoding
}

// Name returns the canonical encoding name.
func (e *Encoding) Name() string { return e.name }

// Aliases returns the alternative names the registry accepts.
func (e *Encoding) Aliases() []string {
	out := make([]string, len(e.aliases))
	copy(out, e.aliases)
	return out
}

// Index is the stable registry position. It is mixed into rope hashes.
func (e *Encoding) Index() int { return e.index }

// MinCharLen is the narrowest character in bytes.
func (e *Encoding) MinCharLen() int { return e.minLen }

// MaxCharLen is the widest character in bytes.
func (e *Encoding) MaxCharLen() int { return e.maxLen }

// ASCIICompatible reports whether bytes 0x00..0x7F always stand for the
// matching ASCII characters.
func (e *Encoding) ASCIICompatible() bool { return e.asciiCompatible }

// SingleByte reports whether every character is exactly one byte.
func (e *Encoding) SingleByte() bool { return e.maxLen == 1 }

// Codec returns the x/text codec, or nil for encodings that need none
// (UTF-8, US-ASCII, ASCII-8BIT).
func (e *Encoding) Codec() xenc.Encoding { return e.codec }

// CharLen measures the character at the start of b. An empty b yields (0, false).
func (e *Encoding) CharLen(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	n, ok := e.charLen(b)
	if n < 1 {
		n = 1
	}
	if n > len(b) {
		n = len(b)
	}
	return n, ok
}

// String implements fmt.Stringer.
func (e *Encoding) String() string {
	if e == nil {
		return "<nil encoding>"
	}
	return e.name
}
