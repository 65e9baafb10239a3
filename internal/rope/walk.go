package rope

import (
	"fmt"
	"strconv"
	"strings"
)

// Walk visits r and its descendants in pre-order with their nesting level.
// A Repeating's base is visited once. Returning false from fn skips the
// node's children.
func Walk(r *Rope, fn func(node *Rope, level int) bool) {
	type frame struct {
		r     *Rope
		level int
	}
	stack := []frame{{r: r}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.r, f.level) {
			continue
		}
		switch f.r.kind {
		case KindConcat:
			stack = append(stack, frame{f.r.right, f.level + 1}, frame{f.r.left, f.level + 1})
		case KindSubstring, KindRepeating:
			stack = append(stack, frame{f.r.base, f.level + 1})
		}
	}
}

// Stats summarizes the shape of a rope tree.
type Stats struct {
	Nodes      int
	Leaves     int
	Concats    int
	Substrings int
	Repeatings int
	LeafBytes  int
	Depth      int
	ByteLength int
}

// Collect walks r and tallies its node kinds. Shared nodes are counted once.
func Collect(r *Rope) Stats {
	st := Stats{Depth: r.depth, ByteLength: r.size}
	seen := make(map[*Rope]struct{})
	Walk(r, func(n *Rope, _ int) bool {
		if _, dup := seen[n]; dup {
			return false
		}
		seen[n] = struct{}{}
		st.Nodes++
		switch n.kind {
		case KindLeaf:
			st.Leaves++
			st.LeafBytes += n.size
		case KindConcat:
			st.Concats++
		case KindSubstring:
			st.Substrings++
		case KindRepeating:
			st.Repeatings++
		}
		return true
	})
	return st
}

// Summary describes one node on a single line without computing anything.
func Summary(r *Rope) string {
	var sb strings.Builder
	sb.WriteString(r.kind.String())
	fmt.Fprintf(&sb, " bytes=%d depth=%d enc=%s cr=%s", r.size, r.depth, r.enc, r.KnownCodeRange())
	switch r.kind {
	case KindSubstring:
		fmt.Fprintf(&sb, " offset=%d", r.offset)
	case KindRepeating:
		fmt.Fprintf(&sb, " count=%d", r.count)
	case KindLeaf:
		sb.WriteString(" ")
		sb.WriteString(Preview(r.bytes, 24))
	}
	return sb.String()
}

// Describe renders the tree below r, one node per line, indented by level.
func Describe(r *Rope) string {
	var sb strings.Builder
	Walk(r, func(n *Rope, level int) bool {
		sb.WriteString(strings.Repeat("  ", level))
		sb.WriteString(Summary(n))
		sb.WriteByte('\n')
		return true
	})
	return sb.String()
}

// Preview quotes at most limit bytes of b, marking truncation.
func Preview(b []byte, limit int) string {
	if len(b) <= limit {
		return strconv.Quote(string(b))
	}
	return strconv.Quote(string(b[:limit])) + "..."
}
