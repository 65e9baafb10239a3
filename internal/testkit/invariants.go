// Package testkit holds checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"ropes/internal/coderange"
	"ropes/internal/rope"
)

// CheckRopeInvariants walks r and verifies the structural rules every node
// must satisfy:
//   - lengths and depths agree with the children
//   - Concat children are non-empty and Repeating counts are at least 2
//   - Substring windows lie inside their base
//   - any cached code range or character count matches a fresh scan
func CheckRopeInvariants(r *rope.Rope) error {
	if r == nil {
		return fmt.Errorf("nil rope")
	}
	var err error
	rope.Walk(r, func(n *rope.Rope, level int) bool {
		if err = checkNode(n); err != nil {
			err = fmt.Errorf("level %d, %s: %w", level, rope.Summary(n), err)
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	return checkAttributes(r)
}

func checkNode(n *rope.Rope) error {
	switch n.Kind() {
	case rope.KindLeaf:
		if len(n.LeafBytes()) != n.ByteLength() {
			return fmt.Errorf("leaf holds %d bytes, reports %d", len(n.LeafBytes()), n.ByteLength())
		}
		if n.Depth() != 0 {
			return fmt.Errorf("leaf depth %d", n.Depth())
		}
	case rope.KindConcat:
		l, r := n.Left(), n.Right()
		if l.IsEmpty() || r.IsEmpty() {
			return fmt.Errorf("concat with an empty child")
		}
		if l.ByteLength()+r.ByteLength() != n.ByteLength() {
			return fmt.Errorf("concat length %d, children sum to %d", n.ByteLength(), l.ByteLength()+r.ByteLength())
		}
		if want := max(l.Depth(), r.Depth()) + 1; n.Depth() != want {
			return fmt.Errorf("concat depth %d, want %d", n.Depth(), want)
		}
	case rope.KindSubstring:
		b := n.Base()
		if n.IsEmpty() || n.Offset() < 0 || n.Offset()+n.ByteLength() > b.ByteLength() {
			return fmt.Errorf("window [%d, +%d) outside base of %d bytes", n.Offset(), n.ByteLength(), b.ByteLength())
		}
		if n.ByteLength() == b.ByteLength() && n.Encoding() == b.Encoding() {
			return fmt.Errorf("substring covers its whole base")
		}
		if n.Depth() != b.Depth()+1 {
			return fmt.Errorf("substring depth %d, base depth %d", n.Depth(), b.Depth())
		}
	case rope.KindRepeating:
		b := n.Base()
		if n.Count() < 2 {
			return fmt.Errorf("repeat count %d", n.Count())
		}
		if b.Kind() == rope.KindRepeating {
			return fmt.Errorf("repeat of a repeat")
		}
		if b.ByteLength()*n.Count() != n.ByteLength() {
			return fmt.Errorf("repeating length %d, want %d", n.ByteLength(), b.ByteLength()*n.Count())
		}
		if n.Depth() != b.Depth()+1 {
			return fmt.Errorf("repeating depth %d, base depth %d", n.Depth(), b.Depth())
		}
	default:
		return fmt.Errorf("unknown kind %v", n.Kind())
	}
	return nil
}

// checkAttributes compares cached attributes of every node against a scan
// of its bytes. It must run before anything forces the lazy values.
func checkAttributes(r *rope.Rope) error {
	var err error
	rope.Walk(r, func(n *rope.Rope, _ int) bool {
		known := n.KnownCodeRange()
		chars, haveChars := n.KnownCharacterLength()
		if !known.Known() && !haveChars {
			return true
		}
		tag, count := coderange.Scan(n.Encoding(), []byte(n.String()))
		if known.Known() && known != tag {
			err = fmt.Errorf("%s: cached code range %s, scan says %s", rope.Summary(n), known, tag)
			return false
		}
		if haveChars && chars != count {
			err = fmt.Errorf("%s: cached %d characters, scan counts %d", rope.Summary(n), chars, count)
			return false
		}
		return true
	})
	return err
}
