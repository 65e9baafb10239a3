package rope

import (
	"math/bits"
	"strconv"

	"fortio.org/safecast"

	"ropes/internal/coderange"
)

// Repeat returns base repeated count times.
//
// A count of one returns base and a count of zero the empty rope for base's
// encoding. Results no longer than Options.RepeatFlattenBytes become a leaf.
// Repeating a Repeating multiplies the counts instead of nesting.
func (f *Factory) Repeat(base *Rope, count int) (*Rope, error) {
	if count < 0 {
		return nil, countError("repeat", count)
	}
	if count == 1 {
		return base, nil
	}
	if count == 0 || base.size == 0 {
		return f.Empty(base.enc), nil
	}

	hi, lo := bits.Mul64(uint64(base.size), uint64(count))
	if hi != 0 || lo > uint64(f.opts.MaxByteLength) {
		return nil, sizeOverflowError("repeat", f.opts.MaxByteLength)
	}
	total, err := safecast.Conv[int](lo)
	if err != nil {
		return nil, sizeOverflowError("repeat", f.opts.MaxByteLength)
	}

	if total <= f.opts.RepeatFlattenBytes {
		f.node("repeat.flatten_small", "bytes", strconv.Itoa(total))
		return repeatLeaf(base, count, total), nil
	}

	b := base
	if b.kind == KindRepeating {
		count *= b.count
		b = b.base
	}
	if b.depth+1 > f.opts.MaxDepth {
		f.point("repeat.flatten_base", "bytes", strconv.Itoa(b.size), "depth", strconv.Itoa(b.depth))
		b = f.Flatten(b)
	}
	return newRepeating(b, count), nil
}

func newRepeating(base *Rope, count int) *Rope {
	r := &Rope{
		kind:  KindRepeating,
		enc:   base.enc,
		size:  base.size * count,
		depth: base.depth + 1,
		base:  base,
		count: count,
	}
	deriveRepeated(r, base, count)
	return r
}

func repeatLeaf(base *Rope, count, total int) *Rope {
	buf := make([]byte, total)
	flattenInto(buf[:base.size], base, 0, base.size)
	for filled := base.size; filled < total; filled *= 2 {
		copy(buf[filled:], buf[:filled])
	}
	r := newLeaf(buf, base.enc, coderange.Unknown)
	deriveRepeated(r, base, count)
	return r
}

// deriveRepeated copies what the base knows onto a repetition of it. A
// broken base can turn valid at the seams, so it is left to a scan.
func deriveRepeated(r, base *Rope, count int) {
	tag := base.KnownCodeRange()
	if tag != coderange.SevenBit && tag != coderange.Valid {
		return
	}
	r.setCodeRange(tag)
	if n, ok := base.chars.get(); ok {
		r.chars.set(n * count)
	} else if tag == coderange.SevenBit {
		r.chars.set(r.size)
	}
}
