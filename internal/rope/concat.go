package rope

import (
	"strconv"

	"ropes/internal/coderange"
	"ropes/internal/enc"
)

// Concat returns the bytes of left followed by the bytes of right.
//
// An empty operand yields the other operand itself, encoding included. Results no longer than
// Options.ConcatFlattenBytes are copied into a fresh leaf, and a result that
// would be deeper than Options.MaxDepth is flattened. The encoding follows
// the usual compatibility rules: differing encodings combine only when one
// side is pure 7-bit and both are ASCII-compatible.
func (f *Factory) Concat(left, right *Rope) (*Rope, error) {
	if right.size == 0 {
		return left, nil
	}
	if left.size == 0 {
		return right, nil
	}

	e, err := f.resolveEncoding("concat", left, right)
	if err != nil {
		return nil, err
	}
	if left.size > f.opts.MaxByteLength-right.size {
		return nil, sizeOverflowError("concat", f.opts.MaxByteLength)
	}
	total := left.size + right.size

	if total <= f.opts.ConcatFlattenBytes {
		f.node("concat.flatten_small", "bytes", strconv.Itoa(total))
		return joinLeaf(e, total, left, right), nil
	}

	// Appending a short run to a concat whose right child is also short
	// rewrites only that child, so loops appending one character at a time
	// build leaves of ConcatFlattenBytes instead of a spine of tiny nodes.
	// Prepending mirrors this on the left child.
	if left.kind == KindConcat && left.enc == e && right.enc == e &&
		left.right.kind == KindLeaf && left.right.size+right.size <= f.opts.ConcatFlattenBytes {
		tail := joinLeaf(e, left.right.size+right.size, left.right, right)
		f.node("concat.merge_tail", "bytes", strconv.Itoa(tail.size))
		return newConcat(e, left.left, tail), nil
	}
	if right.kind == KindConcat && left.enc == e && right.enc == e &&
		right.left.kind == KindLeaf && left.size+right.left.size <= f.opts.ConcatFlattenBytes {
		head := joinLeaf(e, left.size+right.left.size, left, right.left)
		f.node("concat.merge_head", "bytes", strconv.Itoa(head.size))
		return newConcat(e, head, right.right), nil
	}

	if max(left.depth, right.depth)+1 > f.opts.MaxDepth {
		f.point("concat.depth_limit", "bytes", strconv.Itoa(total), "depth", strconv.Itoa(max(left.depth, right.depth)+1))
		return joinLeaf(e, total, left, right), nil
	}
	return newConcat(e, left, right), nil
}

// resolveEncoding picks the encoding of a two-operand result. Equal
// encodings skip the 7-bit checks, which may scan.
func (f *Factory) resolveEncoding(op string, left, right *Rope) (*enc.Encoding, error) {
	if left.enc == right.enc {
		return left.enc, nil
	}
	e := enc.Compatible(left.enc, right.enc,
		left.size == 0, right.size == 0,
		left.CodeRange() == coderange.SevenBit, right.CodeRange() == coderange.SevenBit)
	if e == nil {
		return nil, incompatibleError(op, left.enc, right.enc)
	}
	return e, nil
}

func newConcat(e *enc.Encoding, left, right *Rope) *Rope {
	r := &Rope{
		kind:  KindConcat,
		enc:   e,
		size:  left.size + right.size,
		depth: max(left.depth, right.depth) + 1,
		left:  left,
		right: right,
	}
	deriveJoined(r, left, right)
	return r
}

// joinLeaf copies the bytes of parts into a new leaf of encoding e.
func joinLeaf(e *enc.Encoding, total int, left, right *Rope) *Rope {
	buf := make([]byte, total)
	flattenInto(buf[:left.size], left, 0, left.size)
	flattenInto(buf[left.size:], right, 0, right.size)
	r := newLeaf(buf, e, coderange.Unknown)
	deriveJoined(r, left, right)
	return r
}

// deriveJoined fills the lazy cells of a concatenation from whatever the
// operands already know.
func deriveJoined(r, left, right *Rope) {
	tag := coderange.Concat(left.KnownCodeRange(), right.KnownCodeRange())
	if !tag.Known() {
		return
	}
	r.setCodeRange(tag)
	ln, lok := left.chars.get()
	rn, rok := right.chars.get()
	if lok && rok {
		r.chars.set(ln + rn)
	} else if tag == coderange.SevenBit {
		r.chars.set(r.size)
	}
}
