package rope

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ropes/internal/coderange"
	"ropes/internal/enc"
	"ropes/internal/trace"
)

func leaf(f *Factory, s string) *Rope {
	return f.FromString(s, enc.UTF8, coderange.Unknown)
}

func mustConcat(t *testing.T, f *Factory, a, b *Rope) *Rope {
	t.Helper()
	r, err := f.Concat(a, b)
	require.NoError(t, err)
	return r
}

func mustSubstring(t *testing.T, f *Factory, r *Rope, off, n int) *Rope {
	t.Helper()
	s, err := f.Substring(r, off, n)
	require.NoError(t, err)
	return s
}

func mustRepeat(t *testing.T, f *Factory, r *Rope, n int) *Rope {
	t.Helper()
	out, err := f.Repeat(r, n)
	require.NoError(t, err)
	return out
}

func TestMakeLeafCopiesInput(t *testing.T) {
	f := NewFactory(DefaultOptions())
	src := []byte("abc")
	r := f.MakeLeaf(src, enc.UTF8, coderange.SevenBit)
	src[0] = 'x'
	assert.Equal(t, "abc", r.String())
	assert.Equal(t, KindLeaf, r.Kind())
	assert.Equal(t, 0, r.Depth())

	n, ok := r.KnownCharacterLength()
	assert.True(t, ok, "7-bit leaf knows its length without a scan")
	assert.Equal(t, 3, n)
}

func TestMakeLeafEmptyIsShared(t *testing.T) {
	f := NewFactory(DefaultOptions())
	assert.Same(t, f.Empty(enc.UTF8), f.MakeLeaf(nil, enc.UTF8, coderange.Unknown))
	assert.Same(t, f.Empty(enc.UTF16LE), f.FromString("", enc.UTF16LE, coderange.Unknown))
	assert.Equal(t, coderange.SevenBit, f.Empty(enc.UTF8).KnownCodeRange())
	assert.Equal(t, coderange.Valid, f.Empty(enc.UTF16LE).KnownCodeRange())
	assert.NotSame(t, f.Empty(enc.UTF8), f.Empty(enc.ASCII8BIT))
}

func TestConcatMaterializesBytes(t *testing.T) {
	f := NewFactory(DefaultOptions())
	cases := []struct {
		name string
		a, b string
	}{
		{"small", "foo", "bar"},
		{"large", strings.Repeat("a", 100), strings.Repeat("b", 100)},
		{"left empty", "", "xyz"},
		{"right empty", "xyz", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := mustConcat(t, f, leaf(f, tc.a), leaf(f, tc.b))
			assert.Equal(t, tc.a+tc.b, r.Materialize().String())
			assert.Equal(t, len(tc.a)+len(tc.b), r.ByteLength())
		})
	}
}

func TestConcatIdentityOnEmpty(t *testing.T) {
	f := NewFactory(DefaultOptions())
	a := leaf(f, "hello")
	assert.Same(t, a, mustConcat(t, f, a, f.Empty(enc.UTF8)))
	assert.Same(t, a, mustConcat(t, f, f.Empty(enc.UTF8), a))
	// identity holds across encodings too
	assert.Same(t, a, mustConcat(t, f, f.Empty(enc.UTF16LE), a))
}

func TestConcatSmallFlattensToLeaf(t *testing.T) {
	f := NewFactory(DefaultOptions())
	r := mustConcat(t, f, leaf(f, "ab"), leaf(f, "cd"))
	assert.Equal(t, KindLeaf, r.Kind())

	big := mustConcat(t, f, leaf(f, strings.Repeat("a", 100)), leaf(f, strings.Repeat("b", 100)))
	assert.Equal(t, KindConcat, big.Kind())
	assert.Equal(t, 1, big.Depth())
}

func TestConcatTenThousandSingleBytes(t *testing.T) {
	f := NewFactory(DefaultOptions())
	var want bytes.Buffer
	r := f.Empty(enc.UTF8)
	for i := 0; i < 10_000; i++ {
		c := byte('a' + i%26)
		want.WriteByte(c)
		r = mustConcat(t, f, r, f.MakeLeaf([]byte{c}, enc.UTF8, coderange.SevenBit))
	}
	assert.LessOrEqual(t, r.Depth(), DefaultMaxDepth)
	assert.Equal(t, 10_000, r.ByteLength())
	assert.Equal(t, want.Bytes(), r.Materialize().Bytes())
	assert.Equal(t, coderange.SevenBit, r.CodeRange())
	assert.Equal(t, 10_000, r.CharacterLength())
}

func TestConcatPrependMergesHead(t *testing.T) {
	f := NewFactory(DefaultOptions())
	var want []byte
	r := f.Empty(enc.UTF8)
	for i := 0; i < 10_000; i++ {
		c := byte('a' + i%26)
		want = append([]byte{c}, want...)
		r = mustConcat(t, f, f.MakeLeaf([]byte{c}, enc.UTF8, coderange.SevenBit), r)
	}
	// one level per filled leaf, never near the depth limit
	assert.LessOrEqual(t, r.Depth(), 10_000/DefaultFlattenBytes+1)
	assert.Equal(t, want, r.Materialize().Bytes())
	assert.Equal(t, coderange.SevenBit, r.CodeRange())
}

func TestConcatDepthLimitFlattens(t *testing.T) {
	f := NewFactory(Options{ConcatFlattenBytes: 1, MaxDepth: 8})
	var want []byte
	r := f.Empty(enc.UTF8)
	for i := 0; i < 200; i++ {
		piece := []byte{'x', byte('0' + i%10)}
		want = append(want, piece...)
		r = mustConcat(t, f, r, f.MakeLeaf(piece, enc.UTF8, coderange.Unknown))
		require.LessOrEqual(t, r.Depth(), 8)
	}
	assert.Equal(t, want, r.Materialize().Bytes())
}

func TestConcatDeepRightSpine(t *testing.T) {
	// prepending builds the opposite spine; flattening must not recurse either way
	f := NewFactory(Options{ConcatFlattenBytes: 1, MaxDepth: 1 << 20})
	var want []byte
	r := f.Empty(enc.UTF8)
	for i := 0; i < 5000; i++ {
		c := byte('a' + i%26)
		want = append([]byte{c}, want...)
		r = mustConcat(t, f, f.MakeLeaf([]byte{c}, enc.UTF8, coderange.SevenBit), r)
	}
	assert.Greater(t, r.Depth(), 1000)
	assert.Equal(t, want, r.Materialize().Bytes())
}

func TestConcatCodeRange(t *testing.T) {
	f := NewFactory(DefaultOptions())
	ascii := f.FromString(strings.Repeat("a", 100), enc.UTF8, coderange.SevenBit)
	valid := leaf(f, strings.Repeat("é", 60))
	r := mustConcat(t, f, ascii, valid)
	assert.Equal(t, coderange.Valid, r.CodeRange())
	assert.Equal(t, ascii.ByteLength()+valid.ByteLength(), r.ByteLength())
	assert.Equal(t, 160, r.CharacterLength())

	// a split character heals at the seam
	e := []byte("é")
	head := f.MakeLeaf(append(bytes.Repeat([]byte{'a'}, 100), e[0]), enc.UTF8, coderange.Unknown)
	tail := f.MakeLeaf(append([]byte{e[1]}, bytes.Repeat([]byte{'b'}, 100)...), enc.UTF8, coderange.Unknown)
	require.Equal(t, coderange.Broken, head.CodeRange())
	require.Equal(t, coderange.Broken, tail.CodeRange())
	healed := mustConcat(t, f, head, tail)
	assert.Equal(t, coderange.Valid, healed.CodeRange())
	assert.Equal(t, 201, healed.CharacterLength())
}

func TestConcatEncodingCompatibility(t *testing.T) {
	f := NewFactory(DefaultOptions())
	utf8ASCII := f.FromString("plain", enc.UTF8, coderange.Unknown)
	latin := f.MakeLeaf([]byte{'c', 'a', 'f', 0xe9}, enc.ISO8859_1, coderange.Unknown)
	utf8Wide := f.FromString("café", enc.UTF8, coderange.Unknown)
	wide16 := f.MakeLeaf([]byte{'a', 0}, enc.UTF16LE, coderange.Unknown)

	r, err := f.Concat(utf8ASCII, latin)
	require.NoError(t, err)
	assert.Same(t, enc.ISO8859_1, r.Encoding(), "7-bit side adopts the other encoding")

	r, err = f.Concat(latin, utf8ASCII)
	require.NoError(t, err)
	assert.Same(t, enc.ISO8859_1, r.Encoding())

	_, err = f.Concat(utf8Wide, latin)
	require.ErrorIs(t, err, ErrIncompatibleEncodings)

	_, err = f.Concat(utf8ASCII, wide16)
	require.ErrorIs(t, err, ErrIncompatibleEncodings)

	var rerr *Error
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, CodeIncompatibleEncodings, rerr.Code)
	assert.Contains(t, rerr.Error(), "R2003")
}

func TestConcatSizeOverflow(t *testing.T) {
	f := NewFactory(Options{MaxByteLength: 300})
	a := leaf(f, strings.Repeat("a", 200))
	_, err := f.Concat(a, a)
	require.ErrorIs(t, err, ErrSizeOverflow)
}

func TestSubstringBounds(t *testing.T) {
	f := NewFactory(DefaultOptions())
	r := leaf(f, "hello")
	for _, w := range [][2]int{{-1, 1}, {0, -1}, {6, 0}, {2, 4}, {0, math.MaxInt}} {
		_, err := f.Substring(r, w[0], w[1])
		require.ErrorIs(t, err, ErrBounds, "window %v", w)
	}
	s, err := f.Substring(r, 5, 0)
	require.NoError(t, err)
	assert.Same(t, f.Empty(enc.UTF8), s)
}

func TestSubstringIdentityAndCollapse(t *testing.T) {
	f := NewFactory(DefaultOptions())
	text := strings.Repeat("0123456789", 30)
	r := leaf(f, text)
	assert.Same(t, r, mustSubstring(t, f, r, 0, r.ByteLength()))

	outer := mustSubstring(t, f, r, 2, 10)
	inner := mustSubstring(t, f, outer, 1, 5)
	direct := mustSubstring(t, f, r, 3, 5)
	assert.Equal(t, direct.String(), inner.String())
	assert.Equal(t, text[3:8], inner.String())
	require.Equal(t, KindSubstring, inner.Kind())
	assert.NotEqual(t, KindSubstring, inner.Base().Kind())
	assert.Same(t, r, inner.Base())
	assert.Equal(t, 3, inner.Offset())
}

func TestSubstringDescendsIntoChildren(t *testing.T) {
	f := NewFactory(DefaultOptions())
	a := leaf(f, strings.Repeat("a", 200))
	b := leaf(f, strings.Repeat("b", 200))
	c := mustConcat(t, f, a, b)

	assert.Same(t, a, mustSubstring(t, f, c, 0, 200))
	assert.Same(t, b, mustSubstring(t, f, c, 200, 200))

	s := mustSubstring(t, f, c, 210, 20)
	assert.Same(t, b, s.Base())
	assert.Equal(t, 10, s.Offset())

	rep := mustRepeat(t, f, b, 5)
	s = mustSubstring(t, f, rep, 450, 100)
	assert.Same(t, b, s.Base())
	assert.Equal(t, 50, s.Offset())

	across := mustSubstring(t, f, rep, 150, 100)
	assert.Same(t, rep, across.Base())
	assert.Equal(t, strings.Repeat("b", 100), across.String())
}

func TestSubstringOfSevenBitSkipsScan(t *testing.T) {
	f := NewFactory(DefaultOptions())
	r := f.FromString(strings.Repeat("x", 300), enc.UTF8, coderange.SevenBit)
	s := mustSubstring(t, f, r, 10, 200)
	assert.Equal(t, coderange.SevenBit, s.KnownCodeRange())
	n, ok := s.KnownCharacterLength()
	assert.True(t, ok)
	assert.Equal(t, 200, n)
	assert.False(t, s.IsFlattened())
}

func TestSubstringSplittingCharacterIsBroken(t *testing.T) {
	f := NewFactory(DefaultOptions())
	r := leaf(f, strings.Repeat("é", 100))
	s := mustSubstring(t, f, r, 1, 150)
	assert.Equal(t, coderange.Broken, s.CodeRange())
	assert.Equal(t, coderange.Valid, r.CodeRange())
}

func TestRepeat(t *testing.T) {
	f := NewFactory(DefaultOptions())
	base := leaf(f, strings.Repeat("ab", 50))

	assert.Same(t, base, mustRepeat(t, f, base, 1))

	zero := mustRepeat(t, f, base, 0)
	assert.Equal(t, 0, zero.ByteLength())
	assert.Same(t, enc.UTF8, zero.Encoding())

	for _, n := range []int{2, 3, 7, 64} {
		r := mustRepeat(t, f, base, n)
		assert.Equal(t, base.ByteLength()*n, r.ByteLength())
		assert.Equal(t, strings.Repeat(base.String(), n), r.String())
	}

	small := mustRepeat(t, f, leaf(f, "ab"), 4)
	assert.Equal(t, KindLeaf, small.Kind())
	assert.Equal(t, "abababab", small.String())
}

func TestRepeatOfRepeatMultiplies(t *testing.T) {
	f := NewFactory(DefaultOptions())
	base := leaf(f, strings.Repeat("q", 200))
	r := mustRepeat(t, f, mustRepeat(t, f, base, 3), 4)
	require.Equal(t, KindRepeating, r.Kind())
	assert.Same(t, base, r.Base())
	assert.Equal(t, 12, r.Count())
	assert.Equal(t, 2400, r.ByteLength())
}

func TestRepeatErrors(t *testing.T) {
	f := NewFactory(DefaultOptions())
	base := leaf(f, "ab")
	_, err := f.Repeat(base, -1)
	require.ErrorIs(t, err, ErrBounds)

	_, err = f.Repeat(base, math.MaxInt)
	require.ErrorIs(t, err, ErrSizeOverflow)

	_, err = f.Repeat(base, DefaultMaxByteLength/2+1)
	require.ErrorIs(t, err, ErrSizeOverflow)
}

func TestRepeatKeepsCodeRange(t *testing.T) {
	f := NewFactory(DefaultOptions())
	valid := leaf(f, strings.Repeat("ж", 80))
	require.Equal(t, coderange.Valid, valid.CodeRange())
	r := mustRepeat(t, f, valid, 1000)
	assert.Equal(t, coderange.Valid, r.KnownCodeRange())
	assert.Equal(t, 80_000, r.CharacterLength())
	assert.False(t, r.IsFlattened(), "character length derived without flattening")
}

func TestFlattenMaterializesRepeatingWindows(t *testing.T) {
	f := NewFactory(DefaultOptions())
	model := strings.Repeat("0123456789", 10) + strings.Repeat("abcdefghij", 7)
	want := strings.Repeat(model, 9)

	build := func() *Rope {
		unit := mustConcat(t, f, leaf(f, model[:100]), leaf(f, model[100:]))
		return mustRepeat(t, f, unit, 9)
	}
	require.Equal(t, want, build().String())

	for _, w := range [][2]int{{0, 170}, {5, 170}, {169, 2}, {1, 1529}, {100, 500}, {340, 340}, {17, 1000}} {
		s := mustSubstring(t, f, build(), w[0], w[1])
		assert.Equal(t, want[w[0]:w[0]+w[1]], s.String(), "window %v", w)
	}
}

func TestFlattenReturnsLeafWithCachedAttributes(t *testing.T) {
	f := NewFactory(DefaultOptions())
	c := mustConcat(t, f, leaf(f, strings.Repeat("a", 100)), leaf(f, strings.Repeat("é", 50)))
	h := c.Hash()
	tag := c.CodeRange()
	l := f.Flatten(c)
	assert.Equal(t, KindLeaf, l.Kind())
	assert.Equal(t, tag, l.KnownCodeRange())
	assert.Equal(t, h, l.Hash())
	assert.Same(t, l, f.Flatten(l))
}

func TestByteAt(t *testing.T) {
	f := NewFactory(DefaultOptions())
	unit := leaf(f, strings.Repeat("xyz", 50))
	r := mustConcat(t, f, mustSubstring(t, f, mustRepeat(t, f, unit, 4), 7, 400), leaf(f, strings.Repeat("-", 200)))
	want := strings.Repeat("xyz", 200)[7:407] + strings.Repeat("-", 200)
	for _, i := range []int{0, 1, 149, 150, 399, 400, 599} {
		b, err := r.ByteAt(i)
		require.NoError(t, err)
		assert.Equal(t, want[i], b, "index %d", i)
	}
	assert.False(t, r.IsFlattened())
	_, err := r.ByteAt(len(want))
	require.ErrorIs(t, err, ErrBounds)
	_, err = r.ByteAt(-1)
	require.ErrorIs(t, err, ErrBounds)
}

func TestFactoryTracesHeuristics(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	f := NewFactory(Options{ConcatFlattenBytes: 1, MaxDepth: 3, Tracer: ring})
	r := leaf(f, "ab")
	for i := 0; i < 4; i++ {
		r = mustConcat(t, f, r, leaf(f, "cd"))
	}
	f.Flatten(mustConcat(t, f, r, leaf(f, "ef")))

	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, "concat.depth_limit")
	assert.Contains(t, names, "flatten")
	assert.NotContains(t, names, "concat.flatten_small", "node events need debug level")
}
