package rope

import "bytes"

// Equal reports whether a and b hold the same bytes under comparable
// encodings. Differently encoded ropes are equal only when both are 7-bit
// ASCII in ASCII-compatible encodings, or both are empty.
func Equal(a, b *Rope) bool {
	if a == b {
		return true
	}
	if a.size != b.size {
		return false
	}
	if a.enc == b.enc {
		if a.hashed.Load() && b.hashed.Load() && a.hash.Load() != b.hash.Load() {
			return false
		}
	} else if !comparable(a, b) {
		return false
	}
	return bytes.Equal(a.flatBytes(), b.flatBytes())
}

// Compare orders ropes bytewise. Equal bytes under incomparable encodings
// are ordered by encoding index so the order stays total.
func Compare(a, b *Rope) int {
	if a == b {
		return 0
	}
	if c := bytes.Compare(a.flatBytes(), b.flatBytes()); c != 0 {
		return c
	}
	if a.enc == b.enc || comparable(a, b) {
		return 0
	}
	switch ai, bi := a.enc.Index(), b.enc.Index(); {
	case ai < bi:
		return -1
	case ai > bi:
		return 1
	default:
		return 0
	}
}

func comparable(a, b *Rope) bool {
	if a.size == 0 && b.size == 0 {
		return true
	}
	return a.enc.ASCIICompatible() && b.enc.ASCIICompatible() && a.IsASCIIOnly() && b.IsASCIIOnly()
}

// ByteAt returns the byte at index i without flattening.
func (r *Rope) ByteAt(i int) (byte, error) {
	if i < 0 || i >= r.size {
		return 0, indexError("byte_at", i, r.size)
	}
	n := r
	for {
		if b := n.cachedBytes(); b != nil {
			return b[i], nil
		}
		switch n.kind {
		case KindConcat:
			if ls := n.left.size; i < ls {
				n = n.left
			} else {
				i -= ls
				n = n.right
			}
		case KindSubstring:
			i += n.offset
			n = n.base
		case KindRepeating:
			i %= n.base.size
			n = n.base
		default:
			panic("rope: byte_at reached " + n.kind.String() + " without bytes")
		}
	}
}
