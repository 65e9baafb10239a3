package enc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryIndexesAreStable(t *testing.T) {
	for i, e := range All() {
		assert.Equal(t, i, e.Index(), e.Name())
		got, ok := ByIndex(i)
		require.True(t, ok)
		assert.Same(t, e, got)
	}
	_, ok := ByIndex(Count())
	assert.False(t, ok)
}

func TestFindNamesAndAliases(t *testing.T) {
	tests := []struct {
		name string
		want *Encoding
	}{
		{"UTF-8", UTF8},
		{"utf-8", UTF8},
		{"binary", ASCII8BIT},
		{"ascii", USASCII},
		{"cp1252", Windows1252},
		{"SJIS", ShiftJIS},
		{"latin1", ISO8859_1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Find(tt.name)
			require.True(t, ok)
			assert.Same(t, tt.want, got)
		})
	}

	_, ok := Find("klingon-8")
	assert.False(t, ok)
	_, ok = Find("  ")
	assert.False(t, ok)
}

func TestCharLenUTF8(t *testing.T) {
	tests := []struct {
		in string
		n  int
		ok bool
	}{
		{"a", 1, true},
		{"é", 2, true},
		{"€", 3, true},
		{"\U0001F642", 4, true},
		{"\xE2\x82", 1, false},
		{"\xC0\xAF", 1, false},     // overlong
		{"\xED\xA0\x80", 1, false}, // surrogate
		{"\xFF", 1, false},
		{"�", 3, true},
	}
	for _, tt := range tests {
		n, ok := UTF8.CharLen([]byte(tt.in))
		assert.Equal(t, tt.n, n, "%q", tt.in)
		assert.Equal(t, tt.ok, ok, "%q", tt.in)
	}
}

func TestCharLenUTF16(t *testing.T) {
	n, ok := UTF16LE.CharLen([]byte{'a', 0})
	assert.Equal(t, 2, n)
	assert.True(t, ok)

	// U+1F642 as a surrogate pair.
	n, ok = UTF16BE.CharLen([]byte{0xD8, 0x3D, 0xDE, 0x42})
	assert.Equal(t, 4, n)
	assert.True(t, ok)

	_, ok = UTF16BE.CharLen([]byte{0xDE, 0x42})
	assert.False(t, ok, "lone low surrogate")

	n, ok = UTF16LE.CharLen([]byte{'a'})
	assert.Equal(t, 1, n)
	assert.False(t, ok, "truncated unit")
}

func TestCharLenUTF32(t *testing.T) {
	_, ok := UTF32LE.CharLen([]byte{0x42, 0xF6, 0x01, 0x00})
	assert.True(t, ok)
	_, ok = UTF32BE.CharLen([]byte{0x00, 0x11, 0x00, 0x00})
	assert.False(t, ok, "beyond U+10FFFF")
}

func TestCharLenJapanese(t *testing.T) {
	n, ok := ShiftJIS.CharLen([]byte{0x82, 0xA0}) // あ
	assert.Equal(t, 2, n)
	assert.True(t, ok)
	_, ok = ShiftJIS.CharLen([]byte{0x82})
	assert.False(t, ok)

	n, ok = EUCJP.CharLen([]byte{0xA4, 0xA2}) // あ
	assert.Equal(t, 2, n)
	assert.True(t, ok)
	n, ok = EUCJP.CharLen([]byte{0x8F, 0xB0, 0xA1})
	assert.Equal(t, 3, n)
	assert.True(t, ok)
	_, ok = EUCJP.CharLen([]byte{0xA4, 0x20})
	assert.False(t, ok)
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name           string
		left, right    *Encoding
		lEmpty, rEmpty bool
		lASCII, rASCII bool
		want           *Encoding
	}{
		{"same", UTF8, UTF8, false, false, false, false, UTF8},
		{"right ascii", UTF8, ISO8859_1, false, false, false, true, UTF8},
		{"left ascii", USASCII, UTF8, false, false, true, false, UTF8},
		{"both ascii keeps left", USASCII, UTF8, false, false, true, true, USASCII},
		{"both non-ascii", UTF8, ISO8859_1, false, false, false, false, nil},
		{"right empty", UTF16LE, UTF8, false, true, false, true, UTF16LE},
		{"left empty", UTF16LE, UTF8, true, false, true, false, UTF8},
		{"wide never mixes", UTF16LE, UTF8, false, false, false, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compatible(tt.left, tt.right, tt.lEmpty, tt.rEmpty, tt.lASCII, tt.rASCII)
			assert.Equal(t, tt.want, got)
		})
	}
}
