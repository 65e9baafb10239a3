package intern

import (
	"cmp"
	"slices"

	"ropes/internal/enc"
	"ropes/internal/rope"
)

// Table is a frozen set of canonical ropes.
type Table struct {
	f        *rope.Factory
	literals []map[string]*rope.Rope
	single   [][]*rope.Rope
	padded   []*rope.Rope
	zeros    []*rope.Rope
	size     int
	maxLen   int
}

// Lookup finds a US-ASCII literal. One-byte texts come from the single-byte
// table.
func (t *Table) Lookup(text string) (*rope.Rope, bool) {
	return t.LookupIn(enc.USASCII, text)
}

// LookupIn finds a literal registered under e.
func (t *Table) LookupIn(e *enc.Encoding, text string) (*rope.Rope, bool) {
	if len(text) == 1 {
		if s := t.single[e.Index()]; s != nil {
			return s[text[0]], true
		}
	}
	r, ok := t.literals[e.Index()][text]
	return r, ok
}

// LookupBytes is LookupIn for a byte slice. It does not allocate.
func (t *Table) LookupBytes(e *enc.Encoding, b []byte) (*rope.Rope, bool) {
	if len(b) == 1 {
		if s := t.single[e.Index()]; s != nil {
			return s[b[0]], true
		}
	}
	r, ok := t.literals[e.Index()][string(b)]
	return r, ok
}

// SingleByte returns the rope for byte c in e, if e has a single-byte table.
func (t *Table) SingleByte(e *enc.Encoding, c byte) (*rope.Rope, bool) {
	s := t.single[e.Index()]
	if s == nil {
		return nil, false
	}
	return s[c], true
}

// Empty returns the empty rope for e.
func (t *Table) Empty(e *enc.Encoding) *rope.Rope {
	return t.f.Empty(e)
}

// PaddedNumber returns n formatted as %02d. n must be in [0, 99].
func (t *Table) PaddedNumber(n int) *rope.Rope {
	return t.padded[n]
}

// PaddingZeros returns a run of n '0' bytes. n must be in [0, MaxPaddingZeros].
func (t *Table) PaddingZeros(n int) *rope.Rope {
	return t.zeros[n]
}

// MaxLen is the byte length of the longest literal, at least 1 when any
// single-byte table is present.
func (t *Table) MaxLen() int { return t.maxLen }

// Len is the number of multi-byte literals, not counting single-byte tables.
func (t *Table) Len() int { return t.size }

// Entry is one registered literal.
type Entry struct {
	Text     string
	Encoding *enc.Encoding
	Rope     *rope.Rope
}

// Entries lists the multi-byte literals ordered by encoding, then text.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, t.size)
	for idx, m := range t.literals {
		e, _ := enc.ByIndex(idx)
		for text, r := range m {
			out = append(out, Entry{Text: text, Encoding: e, Rope: r})
		}
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := cmp.Compare(a.Encoding.Index(), b.Encoding.Index()); c != 0 {
			return c
		}
		return cmp.Compare(a.Text, b.Text)
	})
	return out
}
