package rope

import (
	"sync/atomic"

	"ropes/internal/coderange"
	"ropes/internal/enc"
)

// Rope is an immutable byte sequence tagged with an encoding. Shape fields
// never change after construction; the lazy cells below them are filled on
// first use.
type Rope struct {
	kind  Kind
	enc   *enc.Encoding
	size  int
	depth int

	bytes  []byte // KindLeaf
	left   *Rope  // KindConcat
	right  *Rope  // KindConcat
	base   *Rope  // KindSubstring, KindRepeating
	offset int    // KindSubstring
	count  int    // KindRepeating

	codeRange atomic.Uint32 // coderange.Tag, Unknown until settled
	chars     lazyInt
	hash      atomic.Uint64
	hashed    atomic.Bool
	flat      atomic.Pointer[[]byte]
}

// lazyInt stores n+1 so the zero value means "not computed".
type lazyInt struct{ v atomic.Int64 }

func (l *lazyInt) get() (int, bool) {
	v := l.v.Load()
	if v == 0 {
		return 0, false
	}
	return int(v - 1), true
}

func (l *lazyInt) set(n int) { l.v.Store(int64(n) + 1) }

// Kind returns the variant tag.
func (r *Rope) Kind() Kind { return r.kind }

// Encoding returns the encoding descriptor.
func (r *Rope) Encoding() *enc.Encoding { return r.enc }

// ByteLength is the exact number of bytes.
func (r *Rope) ByteLength() int { return r.size }

// Depth is 0 for leaves and 1 + the deepest child otherwise.
func (r *Rope) Depth() int { return r.depth }

// IsEmpty reports whether the rope has no bytes.
func (r *Rope) IsEmpty() bool { return r.size == 0 }

// Left is the first child of a Concat, nil otherwise.
func (r *Rope) Left() *Rope { return r.left }

// Right is the second child of a Concat, nil otherwise.
func (r *Rope) Right() *Rope { return r.right }

// Base is the child of a Substring or Repeating, nil otherwise.
func (r *Rope) Base() *Rope { return r.base }

// Offset is the window start of a Substring.
func (r *Rope) Offset() int { return r.offset }

// Count is the repetition count of a Repeating.
func (r *Rope) Count() int { return r.count }

// LeafBytes exposes the buffer of a Leaf without copying. It returns nil for
// other kinds. Callers must not modify the result.
func (r *Rope) LeafBytes() []byte {
	if r.kind != KindLeaf {
		return nil
	}
	return r.bytes
}

// KnownCodeRange returns the cached code range without computing it.
func (r *Rope) KnownCodeRange() coderange.Tag {
	return coderange.Tag(r.codeRange.Load())
}

// KnownCharacterLength returns the cached character count without computing it.
func (r *Rope) KnownCharacterLength() (int, bool) {
	return r.chars.get()
}

// IsFlattened reports whether the bytes are available contiguously without
// further copying.
func (r *Rope) IsFlattened() bool {
	return r.kind == KindLeaf || r.flat.Load() != nil
}

// String returns the bytes as a Go string, flattening if needed.
func (r *Rope) String() string {
	return string(r.flatBytes())
}

func (r *Rope) setCodeRange(t coderange.Tag) {
	if t.Known() {
		r.codeRange.Store(uint32(t))
	}
}

// cachedBytes returns contiguous bytes if they exist already.
func (r *Rope) cachedBytes() []byte {
	if r.kind == KindLeaf {
		return r.bytes
	}
	if p := r.flat.Load(); p != nil {
		return *p
	}
	return nil
}
