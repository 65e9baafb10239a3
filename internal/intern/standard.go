package intern

import (
	"sync"

	"ropes/internal/coderange"
	"ropes/internal/enc"
	"ropes/internal/rope"
)

// MaxPaddingZeros is the longest run PaddingZeros serves.
const MaxPaddingZeros = 5

// Operators are the method-name and punctuation literals of the standard table.
var Operators = []string{
	"&", "&&", "&.", "`", "\\", "!", "!=", "!~", "call", "^", ":", "::", ",",
	".", "..", "...", "$!", "$0", "=", "==", "===", "=>", "=~", ">", ">=", ">>",
	"[", "[]", "[]=", "{", "<", "<=", "<=>", "<<", "-", "-@", "->", "|", "||",
	"%", "+", "+@", "'", "\"", "?", "]", "}", ")", ";", "/", "*", "**", "~",
}

// Standard returns the process-wide table, built on first call from the
// default factory. A duplicate in the built-in set is a programming error and
// panics.
var Standard = sync.OnceValue(func() *Table {
	t, err := NewStandard(rope.Default())
	if err != nil {
		panic(err)
	}
	return t
})

// NewStandard builds the standard table from f: single-byte tables for
// US-ASCII, ASCII-8BIT and UTF-8, the operator literals, padded numbers and
// padding zeros.
func NewStandard(f *rope.Factory) (*Table, error) {
	b := NewBuilder(f)
	tables := []struct {
		e    *enc.Encoding
		high coderange.Tag
	}{
		{enc.USASCII, coderange.Broken},
		{enc.ASCII8BIT, coderange.Valid},
		{enc.UTF8, coderange.Broken},
	}
	for _, tb := range tables {
		if err := b.AddSingleByteTable(tb.e, tb.high); err != nil {
			return nil, err
		}
	}
	for _, op := range Operators {
		if _, err := b.AddASCII(op); err != nil {
			return nil, err
		}
	}
	if err := b.SetPaddedNumbers(enc.UTF8); err != nil {
		return nil, err
	}
	if err := b.SetPaddingZeros(enc.UTF8, MaxPaddingZeros); err != nil {
		return nil, err
	}
	return b.Build(), nil
}
