// Package textops holds the eager text operations that sit outside the lazy
// rope core: explicit transcoding between encodings, Unicode normalization
// and grapheme counting. Each returns a new leaf.
package textops

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"ropes/internal/coderange"
	"ropes/internal/enc"
	"ropes/internal/rope"
)

var (
	ErrInvalidBytes        = errors.New("textops: invalid byte sequence")
	ErrUndefinedConversion = errors.New("textops: undefined conversion")
	ErrNotUnicode          = errors.New("textops: encoding is not a Unicode encoding")
	ErrUnknownForm         = errors.New("textops: unknown normalization form")
)

// Transcode converts r to encoding to. 7-bit content moving between
// ASCII-compatible encodings is relabelled without conversion. Broken input
// fails with ErrInvalidBytes and characters the target cannot represent with
// ErrUndefinedConversion.
func Transcode(f *rope.Factory, r *rope.Rope, to *enc.Encoding) (*rope.Rope, error) {
	from := r.Encoding()
	if from == to {
		return r, nil
	}
	if r.IsEmpty() {
		return f.Empty(to), nil
	}
	if r.IsASCIIOnly() && to.ASCIICompatible() {
		return f.MakeLeaf(r.Materialize().Bytes(), to, coderange.SevenBit), nil
	}
	if r.CodeRange() == coderange.Broken {
		return nil, fmt.Errorf("%w in %s", ErrInvalidBytes, from)
	}

	text, err := decode(from, r.Materialize().Bytes())
	if err != nil {
		return nil, err
	}
	out, err := encode(to, text)
	if err != nil {
		return nil, err
	}
	return f.MakeLeaf(out, to, coderange.Unknown), nil
}

// decode returns the UTF-8 form of b.
func decode(from *enc.Encoding, b []byte) ([]byte, error) {
	if codec := from.Codec(); codec != nil {
		out, _, err := transform.Bytes(codec.NewDecoder(), b)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidBytes, from, err)
		}
		return out, nil
	}
	if from == enc.UTF8 {
		return b, nil
	}
	// US-ASCII and ASCII-8BIT get here only with high bytes.
	return nil, fmt.Errorf("%w from %s to UTF-8", ErrUndefinedConversion, from)
}

// encode converts UTF-8 text to the target encoding.
func encode(to *enc.Encoding, text []byte) ([]byte, error) {
	if codec := to.Codec(); codec != nil {
		out, _, err := transform.Bytes(codec.NewEncoder(), text)
		if err != nil {
			return nil, fmt.Errorf("%w from UTF-8 to %s: %v", ErrUndefinedConversion, to, err)
		}
		return out, nil
	}
	if to == enc.UTF8 {
		return text, nil
	}
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			r, _ := utf8.DecodeRune(text[i:])
			return nil, fmt.Errorf("%w: U+%04X from UTF-8 to %s", ErrUndefinedConversion, r, to)
		}
	}
	return text, nil
}

// ParseForm maps "nfc", "nfd", "nfkc" or "nfkd" to its form.
func ParseForm(s string) (norm.Form, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nfc":
		return norm.NFC, nil
	case "nfd":
		return norm.NFD, nil
	case "nfkc":
		return norm.NFKC, nil
	case "nfkd":
		return norm.NFKD, nil
	default:
		return 0, fmt.Errorf("%w %q", ErrUnknownForm, s)
	}
}

// Normalize applies a Unicode normalization form. Ropes that are already in
// that form, including all 7-bit ones, are returned unchanged. Other Unicode
// encodings go through UTF-8 and back.
func Normalize(f *rope.Factory, r *rope.Rope, form norm.Form) (*rope.Rope, error) {
	if r.IsASCIIOnly() {
		return r, nil
	}
	e := r.Encoding()
	if !isUnicode(e) {
		return nil, fmt.Errorf("%w: %s", ErrNotUnicode, e)
	}
	u := r
	if e != enc.UTF8 {
		var err error
		if u, err = Transcode(f, r, enc.UTF8); err != nil {
			return nil, err
		}
	} else if r.CodeRange() == coderange.Broken {
		return nil, fmt.Errorf("%w in %s", ErrInvalidBytes, e)
	}

	src := u.Materialize().Bytes()
	if form.IsNormal(src) {
		return r, nil
	}
	out := f.MakeLeaf(form.Bytes(src), enc.UTF8, coderange.Unknown)
	if e == enc.UTF8 {
		return out, nil
	}
	return Transcode(f, out, e)
}

// GraphemeLength counts user-perceived characters. Non-Unicode encodings are
// counted after conversion to UTF-8.
func GraphemeLength(f *rope.Factory, r *rope.Rope) (int, error) {
	u := r
	if r.Encoding() != enc.UTF8 && !r.IsASCIIOnly() {
		var err error
		if u, err = Transcode(f, r, enc.UTF8); err != nil {
			return 0, err
		}
	}
	return uniseg.GraphemeClusterCount(u.String()), nil
}

func isUnicode(e *enc.Encoding) bool {
	switch e {
	case enc.UTF8, enc.UTF16LE, enc.UTF16BE, enc.UTF32LE, enc.UTF32BE:
		return true
	}
	return false
}
