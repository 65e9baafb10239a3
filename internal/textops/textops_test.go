package textops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"ropes/internal/coderange"
	"ropes/internal/enc"
	"ropes/internal/rope"
)

func TestTranscode(t *testing.T) {
	f := rope.NewFactory(rope.DefaultOptions())
	cases := []struct {
		name string
		in   []byte
		from *enc.Encoding
		to   *enc.Encoding
		want []byte
	}{
		{"latin1 to utf8", []byte{'c', 'a', 'f', 0xe9}, enc.ISO8859_1, enc.UTF8, []byte("café")},
		{"utf8 to latin1", []byte("café"), enc.UTF8, enc.ISO8859_1, []byte{'c', 'a', 'f', 0xe9}},
		{"utf8 to utf16le", []byte("hé"), enc.UTF8, enc.UTF16LE, []byte{'h', 0, 0xe9, 0}},
		{"utf16be to utf8", []byte{0, 'h', 0, 'i'}, enc.UTF16BE, enc.UTF8, []byte("hi")},
		{"utf8 to shift_jis", []byte("あ"), enc.UTF8, enc.ShiftJIS, []byte{0x82, 0xa0}},
		{"euc-jp to utf8", []byte{0xa4, 0xa2}, enc.EUCJP, enc.UTF8, []byte("あ")},
		{"cp1252 euro", []byte("€"), enc.UTF8, enc.Windows1252, []byte{0x80}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := f.MakeLeaf(tc.in, tc.from, coderange.Unknown)
			out, err := Transcode(f, r, tc.to)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.Materialize().Bytes())
			assert.Same(t, tc.to, out.Encoding())
			assert.NotEqual(t, coderange.Broken, out.CodeRange())
		})
	}
}

func TestTranscodeRelabelsASCII(t *testing.T) {
	f := rope.NewFactory(rope.DefaultOptions())
	r := f.FromString("plain", enc.UTF8, coderange.Unknown)
	out, err := Transcode(f, r, enc.ShiftJIS)
	require.NoError(t, err)
	assert.Equal(t, "plain", out.String())
	assert.Equal(t, coderange.SevenBit, out.KnownCodeRange())

	same, err := Transcode(f, r, enc.UTF8)
	require.NoError(t, err)
	assert.Same(t, r, same)
}

func TestTranscodeErrors(t *testing.T) {
	f := rope.NewFactory(rope.DefaultOptions())

	_, err := Transcode(f, f.FromString("日本", enc.UTF8, coderange.Unknown), enc.ISO8859_1)
	require.ErrorIs(t, err, ErrUndefinedConversion)

	_, err = Transcode(f, f.FromString("é", enc.UTF8, coderange.Unknown), enc.USASCII)
	require.ErrorIs(t, err, ErrUndefinedConversion)

	_, err = Transcode(f, f.MakeLeaf([]byte{0xff}, enc.ASCII8BIT, coderange.Unknown), enc.UTF8)
	require.ErrorIs(t, err, ErrUndefinedConversion)

	_, err = Transcode(f, f.MakeLeaf([]byte{'a', 0xff}, enc.UTF8, coderange.Unknown), enc.UTF16LE)
	require.ErrorIs(t, err, ErrInvalidBytes)
}

func TestNormalize(t *testing.T) {
	f := rope.NewFactory(rope.DefaultOptions())
	decomposed := f.FromString("é", enc.UTF8, coderange.Unknown)

	nfc, err := Normalize(f, decomposed, norm.NFC)
	require.NoError(t, err)
	assert.Equal(t, "é", nfc.String())

	nfd, err := Normalize(f, nfc, norm.NFD)
	require.NoError(t, err)
	assert.Equal(t, "é", nfd.String())

	already, err := Normalize(f, nfc, norm.NFC)
	require.NoError(t, err)
	assert.Same(t, nfc, already)

	ascii := f.FromString("abc", enc.UTF8, coderange.Unknown)
	same, err := Normalize(f, ascii, norm.NFKC)
	require.NoError(t, err)
	assert.Same(t, ascii, same)

	wide := f.MakeLeaf([]byte{'e', 0, 0x01, 0x03}, enc.UTF16LE, coderange.Unknown)
	out, err := Normalize(f, wide, norm.NFC)
	require.NoError(t, err)
	assert.Same(t, enc.UTF16LE, out.Encoding())
	assert.Equal(t, []byte{0xe9, 0}, out.Materialize().Bytes())

	_, err = Normalize(f, f.MakeLeaf([]byte{0x82, 0xa0}, enc.ShiftJIS, coderange.Unknown), norm.NFC)
	require.ErrorIs(t, err, ErrNotUnicode)
}

func TestParseForm(t *testing.T) {
	for in, want := range map[string]norm.Form{"nfc": norm.NFC, "NFD": norm.NFD, " nfkc ": norm.NFKC, "nfkd": norm.NFKD} {
		got, err := ParseForm(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseForm("nfx")
	require.ErrorIs(t, err, ErrUnknownForm)
}

func TestGraphemeLength(t *testing.T) {
	f := rope.NewFactory(rope.DefaultOptions())
	cases := []struct {
		text string
		want int
	}{
		{"abc", 3},
		{"\r\n", 1},
		{"é", 1},
		{"🇩🇪🇫🇷", 2},
	}
	for _, tc := range cases {
		n, err := GraphemeLength(f, f.FromString(tc.text, enc.UTF8, coderange.Unknown))
		require.NoError(t, err)
		assert.Equal(t, tc.want, n, "%q", tc.text)
	}

	latin := f.MakeLeaf([]byte{'a', 0xe9}, enc.ISO8859_1, coderange.Unknown)
	n, err := GraphemeLength(f, latin)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
