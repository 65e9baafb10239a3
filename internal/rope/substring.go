package rope

import (
	"ropes/internal/coderange"
	"ropes/internal/enc"
)

// Substring returns the window [offset, offset+length) of base.
//
// The full window returns base itself and an empty window returns the empty
// rope for base's encoding. Windows over a Substring are rebased onto its
// base, and windows that fall entirely inside one child of a Concat or one
// repetition of a Repeating are taken from that child, so a Substring never
// wraps another Substring.
func (f *Factory) Substring(base *Rope, offset, length int) (*Rope, error) {
	if offset < 0 || length < 0 || offset > base.size || length > base.size-offset {
		return nil, boundsError("substring", offset, length, base.size)
	}
	if length == 0 {
		return f.Empty(base.enc), nil
	}
	if offset == 0 && length == base.size {
		return base, nil
	}

	b, off := narrow(base, offset, length)
	if off == 0 && length == b.size && b.enc == base.enc {
		return b, nil
	}
	if b.depth+1 > f.opts.MaxDepth {
		b = f.Flatten(b)
	}
	return newSubstring(base.enc, b, off, length), nil
}

// narrow descends from r to the smallest node that still contains the
// window, returning it with the window offset rebased onto it.
func narrow(r *Rope, offset, length int) (*Rope, int) {
	for {
		switch r.kind {
		case KindSubstring:
			offset += r.offset
			r = r.base
		case KindConcat:
			switch ls := r.left.size; {
			case offset+length <= ls:
				r = r.left
			case offset >= ls:
				offset -= ls
				r = r.right
			default:
				return r, offset
			}
		case KindRepeating:
			unit := r.base.size
			start := offset % unit
			if start+length > unit {
				return r, offset
			}
			offset = start
			r = r.base
		default:
			return r, offset
		}
	}
}

func newSubstring(e *enc.Encoding, base *Rope, offset, length int) *Rope {
	r := &Rope{
		kind:   KindSubstring,
		enc:    e,
		size:   length,
		depth:  base.depth + 1,
		base:   base,
		offset: offset,
	}
	if base.KnownCodeRange() == coderange.SevenBit {
		r.setCodeRange(coderange.SevenBit)
		r.chars.set(length)
	}
	return r
}
