package rope

// flattenItem is one pending copy of the window [off, off+n) of r into
// dst[at:]. A replicate item instead extends the aligned base copy at pat
// over [at, at+n) once that copy has been written.
type flattenItem struct {
	r         *Rope
	off, n    int
	at        int
	replicate bool
	pat, unit int
}

// flattenInto writes the window [off, off+n) of root into dst[:n]. It walks
// the tree with an explicit stack; the stack holds at most one entry per
// level plus one per Repeating, so depth is bounded by the tree depth.
func flattenInto(dst []byte, root *Rope, off, n int) {
	if n == 0 {
		return
	}
	stack := make([]flattenItem, 0, min(root.depth, 64)+2)
	stack = append(stack, flattenItem{r: root, off: off, n: n})

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if it.replicate {
			replicate(dst, it.at, it.at+it.n, it.pat, it.unit)
			continue
		}
		if it.n == 0 {
			continue
		}
		if flat := it.r.cachedBytes(); flat != nil {
			copy(dst[it.at:it.at+it.n], flat[it.off:it.off+it.n])
			continue
		}

		r := it.r
		switch r.kind {
		case KindConcat:
			ls := r.left.size
			switch {
			case it.off+it.n <= ls:
				stack = append(stack, flattenItem{r: r.left, off: it.off, n: it.n, at: it.at})
			case it.off >= ls:
				stack = append(stack, flattenItem{r: r.right, off: it.off - ls, n: it.n, at: it.at})
			default:
				head := ls - it.off
				stack = append(stack,
					flattenItem{r: r.right, off: 0, n: it.n - head, at: it.at + head},
					flattenItem{r: r.left, off: it.off, n: head, at: it.at},
				)
			}
		case KindSubstring:
			stack = append(stack, flattenItem{r: r.base, off: r.offset + it.off, n: it.n, at: it.at})
		case KindRepeating:
			stack = pushRepeating(stack, it)
		default:
			panic("rope: flatten reached " + r.kind.String() + " without bytes")
		}
	}
}

// pushRepeating schedules the window of a Repeating. When the window holds a
// whole aligned repetition, that one copy is flattened and then replicated
// across the window; the replicate item is pushed first so it runs after
// the copy completes. Otherwise the window spans at most two partial
// repetitions.
func pushRepeating(stack []flattenItem, it flattenItem) []flattenItem {
	base := it.r.base
	unit := base.size
	phase := it.off % unit
	first := it.off
	if phase != 0 {
		first += unit - phase
	}
	if end := it.off + it.n; first+unit <= end {
		pat := it.at + (first - it.off)
		return append(stack,
			flattenItem{replicate: true, at: it.at, n: it.n, pat: pat, unit: unit},
			flattenItem{r: base, off: 0, n: unit, at: pat},
		)
	}
	head := min(unit-phase, it.n)
	return append(stack,
		flattenItem{r: base, off: 0, n: it.n - head, at: it.at + head},
		flattenItem{r: base, off: phase, n: head, at: it.at},
	)
}

// replicate fills dst[start:end] from the single repetition at
// dst[pat:pat+unit]. The part before pat is the tail of a repetition; the
// part after grows by doubling.
func replicate(dst []byte, start, end, pat, unit int) {
	if pre := pat - start; pre > 0 {
		copy(dst[start:pat], dst[pat+unit-pre:pat+unit])
	}
	total := end - pat
	for filled := unit; filled < total; {
		c := min(filled, total-filled)
		copy(dst[pat+filled:pat+filled+c], dst[pat:pat+c])
		filled += c
	}
}

// flatBytes returns the contiguous bytes of r, computing and caching them on
// first use. A Substring over an already flat base shares the base's buffer.
func (r *Rope) flatBytes() []byte {
	if b := r.cachedBytes(); b != nil {
		return b
	}
	var buf []byte
	if r.kind == KindSubstring {
		if bb := r.base.cachedBytes(); bb != nil {
			buf = bb[r.offset : r.offset+r.size : r.offset+r.size]
		}
	}
	if buf == nil {
		buf = make([]byte, r.size)
		flattenInto(buf, r, 0, r.size)
	}
	if !r.flat.CompareAndSwap(nil, &buf) {
		return *r.flat.Load()
	}
	return buf
}

// segments calls fn with the bytes of the window [off, off+n) of root in
// order, as a sequence of slices borrowed from leaves or cached buffers.
// fn returning false stops the walk.
func segments(root *Rope, off, n int, fn func([]byte) bool) {
	if n == 0 {
		return
	}
	stack := make([]flattenItem, 0, min(root.depth, 64)+2)
	stack = append(stack, flattenItem{r: root, off: off, n: n})

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.n == 0 {
			continue
		}
		if flat := it.r.cachedBytes(); flat != nil {
			if !fn(flat[it.off : it.off+it.n]) {
				return
			}
			continue
		}

		r := it.r
		switch r.kind {
		case KindConcat:
			ls := r.left.size
			switch {
			case it.off+it.n <= ls:
				stack = append(stack, flattenItem{r: r.left, off: it.off, n: it.n})
			case it.off >= ls:
				stack = append(stack, flattenItem{r: r.right, off: it.off - ls, n: it.n})
			default:
				head := ls - it.off
				stack = append(stack,
					flattenItem{r: r.right, off: 0, n: it.n - head},
					flattenItem{r: r.left, off: it.off, n: head},
				)
			}
		case KindSubstring:
			stack = append(stack, flattenItem{r: r.base, off: r.offset + it.off, n: it.n})
		case KindRepeating:
			unit := r.base.size
			if unit < repeatChunk && it.n > unit {
				if !repeatedChunks(r, it.off, it.n, fn) {
					return
				}
				continue
			}
			phase := it.off % unit
			head := min(unit-phase, it.n)
			stack = append(stack,
				flattenItem{r: r, off: it.off + head, n: it.n - head},
				flattenItem{r: r.base, off: phase, n: head},
			)
		default:
			panic("rope: segment walk reached " + r.kind.String() + " without bytes")
		}
	}
}

// repeatChunk is the smallest run handed to a segment callback for a
// Repeating with a short unit.
const repeatChunk = 4096

// repeatedChunks feeds the window [off, off+n) of the Repeating r to fn from
// one scratch buffer holding a whole number of repetitions plus one unit of
// slack, so every chunk starts at the same phase.
func repeatedChunks(r *Rope, off, n int, fn func([]byte) bool) bool {
	unit := r.base.size
	span := (repeatChunk/unit + 1) * unit
	phase := off % unit
	scratch := make([]byte, min(span+unit, r.size))
	flattenInto(scratch, r, 0, len(scratch))
	for n > 0 {
		c := min(n, span, len(scratch)-phase)
		if !fn(scratch[phase : phase+c]) {
			return false
		}
		n -= c
	}
	return true
}
