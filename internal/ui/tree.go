// Package ui renders ropes and long-running ropectl work for terminals.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"ropes/internal/rope"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func kindStyle(k rope.Kind) lipgloss.Style {
	switch k {
	case rope.KindLeaf:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case rope.KindConcat:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	case rope.KindSubstring:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	case rope.KindRepeating:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle()
	}
}

func statusStyle(s Status) lipgloss.Style {
	switch s {
	case StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

// Tree renders the node structure of r, at most maxNodes lines, each cut
// to width display columns.
func Tree(r *rope.Rope, width, maxNodes int) string {
	var b strings.Builder
	shown := 0
	rope.Walk(r, func(n *rope.Rope, level int) bool {
		if shown == maxNodes {
			shown++
			b.WriteString(dimStyle.Render("  ..."))
			b.WriteByte('\n')
			return false
		}
		if shown > maxNodes {
			return false
		}
		shown++
		indent := strings.Repeat("  ", level)
		line := Truncate(indent+describeNode(n), width)
		b.WriteString(strings.Replace(line, n.Kind().String(), kindStyle(n.Kind()).Render(n.Kind().String()), 1))
		b.WriteByte('\n')
		return true
	})
	return b.String()
}

func describeNode(n *rope.Rope) string {
	switch n.Kind() {
	case rope.KindLeaf:
		return fmt.Sprintf("leaf %d B %s", n.ByteLength(), rope.Preview(n.LeafBytes(), 32))
	case rope.KindConcat:
		return fmt.Sprintf("concat %d B depth %d", n.ByteLength(), n.Depth())
	case rope.KindSubstring:
		return fmt.Sprintf("substring [%d, +%d)", n.Offset(), n.ByteLength())
	case rope.KindRepeating:
		return fmt.Sprintf("repeating x%d of %d B", n.Count(), n.Base().ByteLength())
	default:
		return n.Kind().String()
	}
}

// Stats renders a boxed key/value summary of r.
func Stats(r *rope.Rope) string {
	st := rope.Collect(r)
	rows := [][2]string{
		{"kind", r.Kind().String()},
		{"encoding", r.Encoding().Name()},
		{"bytes", fmt.Sprint(r.ByteLength())},
		{"characters", fmt.Sprint(r.CharacterLength())},
		{"code range", r.CodeRange().String()},
		{"hash", fmt.Sprintf("%016x", r.Hash())},
		{"depth", fmt.Sprint(st.Depth)},
		{"nodes", fmt.Sprintf("%d (leaf %d, concat %d, substring %d, repeating %d)",
			st.Nodes, st.Leaves, st.Concats, st.Substrings, st.Repeatings)},
		{"leaf bytes", fmt.Sprint(st.LeafBytes)},
	}
	keyWidth := 0
	for _, row := range rows {
		keyWidth = max(keyWidth, runewidth.StringWidth(row[0]))
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = keyStyle.Render(runewidth.FillRight(row[0], keyWidth)) + "  " + row[1]
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// Truncate cuts value to width display columns, marking the cut with "...".
func Truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
