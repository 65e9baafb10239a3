// Package intern holds canonical pre-hashed ropes for short literals.
//
// A Table is assembled once by a Builder and is read-only afterwards, so
// lookups need no synchronization. Equal literals always resolve to the same
// *rope.Rope, which makes pointer equality a valid fast path.
package intern

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"ropes/internal/coderange"
	"ropes/internal/enc"
	"ropes/internal/rope"
)

var (
	ErrDuplicateLiteral = errors.New("intern: duplicate literal")
	ErrNotASCII         = errors.New("intern: literal is not 7-bit ASCII")
	ErrFrozen           = errors.New("intern: builder already built")
	ErrDuplicateTable   = errors.New("intern: duplicate single-byte table")
)

// Builder collects literals before freezing them into a Table.
type Builder struct {
	f        *rope.Factory
	literals []map[string]*rope.Rope
	single   [][]*rope.Rope
	claimed  [][256]bool
	padded   []*rope.Rope
	zeros    []*rope.Rope
	built    bool
}

// NewBuilder returns an empty builder whose ropes come from f.
func NewBuilder(f *rope.Factory) *Builder {
	return &Builder{
		f:        f,
		literals: make([]map[string]*rope.Rope, enc.Count()),
		single:   make([][]*rope.Rope, enc.Count()),
		claimed:  make([][256]bool, enc.Count()),
	}
}

// AddSingleByteTable registers one rope per byte value for e. Bytes below
// 0x80 are 7-bit; high bytes get the code range high.
func (b *Builder) AddSingleByteTable(e *enc.Encoding, high coderange.Tag) error {
	if b.built {
		return ErrFrozen
	}
	if b.single[e.Index()] != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateTable, e)
	}
	table := make([]*rope.Rope, 256)
	for i := range table {
		tag := coderange.SevenBit
		if i >= utf8.RuneSelf {
			tag = high
		}
		table[i] = seal(b.f.MakeLeaf([]byte{byte(i)}, e, tag))
	}
	b.single[e.Index()] = table
	return nil
}

// AddLiteral registers text under e. A one-byte literal resolves to the
// single-byte table entry when e has one. Registering the same text twice
// for the same encoding fails with ErrDuplicateLiteral.
func (b *Builder) AddLiteral(text string, e *enc.Encoding, known coderange.Tag) (*rope.Rope, error) {
	if b.built {
		return nil, ErrFrozen
	}
	if len(text) == 1 {
		if t := b.single[e.Index()]; t != nil {
			c := &b.claimed[e.Index()][text[0]]
			if *c {
				return t[text[0]], fmt.Errorf("%w: %q (%s)", ErrDuplicateLiteral, text, e)
			}
			*c = true
			return t[text[0]], nil
		}
	}
	m := b.literals[e.Index()]
	if m == nil {
		m = make(map[string]*rope.Rope)
		b.literals[e.Index()] = m
	}
	if prev, dup := m[text]; dup {
		return prev, fmt.Errorf("%w: %q (%s)", ErrDuplicateLiteral, text, e)
	}
	r := seal(b.f.FromString(text, e, known))
	m[text] = r
	return r, nil
}

// AddASCII registers a 7-bit US-ASCII literal.
func (b *Builder) AddASCII(text string) (*rope.Rope, error) {
	for i := 0; i < len(text); i++ {
		if text[i] >= utf8.RuneSelf {
			return nil, fmt.Errorf("%w: %q", ErrNotASCII, text)
		}
	}
	return b.AddLiteral(text, enc.USASCII, coderange.SevenBit)
}

// SetPaddedNumbers registers the %02d forms of 0..99 in e.
func (b *Builder) SetPaddedNumbers(e *enc.Encoding) error {
	if b.built {
		return ErrFrozen
	}
	b.padded = make([]*rope.Rope, 100)
	for n := range b.padded {
		b.padded[n] = seal(b.f.MakeLeaf([]byte{byte('0' + n/10), byte('0' + n%10)}, e, coderange.SevenBit))
	}
	return nil
}

// SetPaddingZeros registers runs of 0..longest '0' bytes in e.
func (b *Builder) SetPaddingZeros(e *enc.Encoding, longest int) error {
	if b.built {
		return ErrFrozen
	}
	b.zeros = make([]*rope.Rope, longest+1)
	run := make([]byte, 0, longest)
	for n := range b.zeros {
		b.zeros[n] = seal(b.f.MakeLeaf(run, e, coderange.SevenBit))
		run = append(run, '0')
	}
	return nil
}

// Build freezes the builder. Further Add calls fail with ErrFrozen.
func (b *Builder) Build() *Table {
	b.built = true
	t := &Table{
		f:        b.f,
		literals: b.literals,
		single:   b.single,
		padded:   b.padded,
		zeros:    b.zeros,
	}
	for _, m := range b.literals {
		t.size += len(m)
		for text := range m {
			t.maxLen = max(t.maxLen, len(text))
		}
	}
	for _, s := range b.single {
		if s != nil {
			t.maxLen = max(t.maxLen, 1)
		}
	}
	return t
}

// seal settles every lazy attribute so that table reads never write.
func seal(r *rope.Rope) *rope.Rope {
	r.CodeRange()
	r.CharacterLength()
	r.Hash()
	return r
}
