package rope

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ropes/internal/coderange"
	"ropes/internal/enc"
)

func TestHashIgnoresShape(t *testing.T) {
	f := NewFactory(DefaultOptions())
	text := strings.Repeat("hash me ", 40)

	flat := leaf(f, text)
	split := mustConcat(t, f, leaf(f, text[:150]), leaf(f, text[150:]))
	wide := leaf(f, "xx"+text+"yy")
	window := mustSubstring(t, f, wide, 2, len(text))
	repeated := mustRepeat(t, f, leaf(f, "hash me "), 40)

	require.Equal(t, KindConcat, split.Kind())
	require.Equal(t, KindSubstring, window.Kind())
	require.Equal(t, KindRepeating, repeated.Kind())

	h := flat.Hash()
	for _, r := range []*Rope{split, window, repeated, f.Flatten(split)} {
		assert.Equal(t, h, r.Hash(), Summary(r))
		assert.True(t, Equal(flat, r))
	}
	assert.Equal(t, HashBytes([]byte(text), enc.UTF8.Index()), h)
}

func TestHashOfShortUnitRepeatIsChunked(t *testing.T) {
	f := NewFactory(DefaultOptions())
	const count = 1 << 22
	r := mustRepeat(t, f, leaf(f, "a"), count)
	require.Equal(t, KindRepeating, r.Kind())

	calls := 0
	segments(r, 0, r.ByteLength(), func(b []byte) bool {
		calls++
		return true
	})
	assert.LessOrEqual(t, calls, count/repeatChunk+1)
	assert.Equal(t, HashBytes([]byte(strings.Repeat("a", count)), enc.UTF8.Index()), r.Hash())
	assert.Nil(t, r.cachedBytes())
}

func TestSegmentsOfRepeatKeepPhase(t *testing.T) {
	f := NewFactory(DefaultOptions())
	r := mustRepeat(t, f, leaf(f, "abc"), 5000)
	want := strings.Repeat("abc", 5000)

	for _, w := range [][2]int{{0, len(want)}, {1, 9000}, {2, len(want) - 2}, {4, 5}, {7000, 8000}} {
		var got strings.Builder
		segments(r, w[0], w[1], func(b []byte) bool {
			got.Write(b)
			return true
		})
		assert.Equal(t, want[w[0]:w[0]+w[1]], got.String(), "window %v", w)
	}
}

func TestHashIncludesEncoding(t *testing.T) {
	f := NewFactory(DefaultOptions())
	a := f.FromString("abc", enc.UTF8, coderange.Unknown)
	b := f.FromString("abc", enc.ASCII8BIT, coderange.Unknown)
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.True(t, Equal(a, b), "7-bit content compares equal across ASCII-compatible encodings")
}

func TestEqualAndCompare(t *testing.T) {
	f := NewFactory(DefaultOptions())
	utf := f.FromString("é", enc.UTF8, coderange.Unknown)
	bin := f.MakeLeaf([]byte("é"), enc.ASCII8BIT, coderange.Unknown)
	assert.False(t, Equal(utf, bin))
	assert.NotZero(t, Compare(utf, bin))
	assert.Equal(t, -Compare(utf, bin), Compare(bin, utf))

	assert.Equal(t, -1, Compare(leaf(f, "abc"), leaf(f, "abd")))
	assert.Equal(t, 1, Compare(leaf(f, "abcd"), leaf(f, "abc")))
	assert.Equal(t, 0, Compare(leaf(f, "same"), leaf(f, "same")))
	assert.False(t, Equal(leaf(f, "abc"), leaf(f, "abd")))
}

func TestCharacterLength(t *testing.T) {
	f := NewFactory(DefaultOptions())
	cases := []struct {
		name  string
		bytes []byte
		e     *enc.Encoding
		tag   coderange.Tag
		chars int
	}{
		{"ascii", []byte("hello"), enc.UTF8, coderange.SevenBit, 5},
		{"utf8", []byte("héllo"), enc.UTF8, coderange.Valid, 5},
		{"broken utf8", []byte{'a', 0xff, 'b'}, enc.UTF8, coderange.Broken, 3},
		{"binary high bytes", []byte{0x80, 0xff}, enc.ASCII8BIT, coderange.Valid, 2},
		{"us-ascii high byte", []byte{'a', 0x80}, enc.USASCII, coderange.Broken, 2},
		{"utf16", []byte{'h', 0, 'i', 0}, enc.UTF16LE, coderange.Valid, 2},
		{"shift_jis", []byte{0x82, 0xa0, 'a'}, enc.ShiftJIS, coderange.Valid, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := f.MakeLeaf(tc.bytes, tc.e, coderange.Unknown)
			assert.Equal(t, tc.tag, r.CodeRange())
			assert.Equal(t, tc.chars, r.CharacterLength())
		})
	}
}

func TestLazyAttributesAgreeUnderConcurrency(t *testing.T) {
	f := NewFactory(DefaultOptions())
	unit := mustConcat(t, f, leaf(f, strings.Repeat("a", 100)), leaf(f, strings.Repeat("ü", 50)))
	rep := mustRepeat(t, f, unit, 50)
	r := mustConcat(t, f, mustSubstring(t, f, rep, 3, 5000), leaf(f, strings.Repeat("z", 300)))

	type result struct {
		tag   coderange.Tag
		chars int
		hash  uint64
		view  string
	}
	const workers = 16
	results := make([]result, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = result{
				tag:   r.CodeRange(),
				chars: r.CharacterLength(),
				hash:  r.Hash(),
				view:  r.Materialize().String(),
			}
		}()
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Equal(t, results[0], results[i])
	}
	assert.Equal(t, coderange.Valid, results[0].tag)
	assert.Equal(t, r.CodeRange(), results[0].tag, "recomputing yields the cached tag")
	assert.Same(t, r.Materialize().Ptr(), r.Materialize().Ptr(), "flattened buffer is cached")
}

// randomRope builds a random tree together with the bytes it must hold.
func randomRope(t *testing.T, f *Factory, rng *rand.Rand, steps int) (*Rope, []byte) {
	t.Helper()
	alphabet := []string{"a", "bc", "é", "日本", strings.Repeat("x", 90), strings.Repeat("yz", 70)}
	pool := []*Rope{f.Empty(enc.UTF8)}
	models := [][]byte{nil}
	for i := 0; i < steps; i++ {
		var r *Rope
		var m []byte
		switch op := rng.IntN(4); op {
		case 0:
			s := alphabet[rng.IntN(len(alphabet))]
			r, m = leaf(f, s), []byte(s)
		case 1:
			a, b := rng.IntN(len(pool)), rng.IntN(len(pool))
			if len(models[a])+len(models[b]) > 1<<16 {
				continue
			}
			r = mustConcat(t, f, pool[a], pool[b])
			m = append(append([]byte{}, models[a]...), models[b]...)
		case 2:
			a := rng.IntN(len(pool))
			size := len(models[a])
			off := rng.IntN(size + 1)
			n := rng.IntN(size - off + 1)
			r = mustSubstring(t, f, pool[a], off, n)
			m = models[a][off : off+n]
		case 3:
			a := rng.IntN(len(pool))
			if len(models[a]) > 2000 {
				continue
			}
			n := rng.IntN(6)
			r = mustRepeat(t, f, pool[a], n)
			for range n {
				m = append(m, models[a]...)
			}
		}
		pool = append(pool, r)
		models = append(models, m)
	}
	return pool[len(pool)-1], models[len(models)-1]
}

func TestRandomTreesMatchModel(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, opts := range []Options{
		DefaultOptions(),
		{ConcatFlattenBytes: 1, RepeatFlattenBytes: 1, MaxDepth: 6},
	} {
		f := NewFactory(opts)
		for i := 0; i < 200; i++ {
			r, want := randomRope(t, f, rng, 40)
			require.Equal(t, len(want), r.ByteLength())
			require.LessOrEqual(t, r.Depth(), f.Options().MaxDepth+1)
			if len(want) > 0 {
				idx := rng.IntN(len(want))
				b, err := r.ByteAt(idx)
				require.NoError(t, err)
				require.Equal(t, want[idx], b)
			}
			require.Equal(t, HashBytes(want, enc.UTF8.Index()), r.Hash())
			require.Equal(t, string(want), r.Materialize().String())

			tag, chars := coderange.Scan(enc.UTF8, want)
			require.Equal(t, tag, r.CodeRange())
			require.Equal(t, chars, r.CharacterLength())
		}
	}
}

func FuzzConcatSubstring(f *testing.F) {
	f.Add([]byte("hello"), []byte("world"), 2, 5)
	f.Add([]byte(strings.Repeat("a", 200)), []byte("é"), 150, 51)
	f.Add([]byte{}, []byte{0xff}, 0, 1)

	fac := NewFactory(DefaultOptions())
	f.Fuzz(func(t *testing.T, a, b []byte, off, n int) {
		c, err := fac.Concat(fac.MakeLeaf(a, enc.UTF8, coderange.Unknown), fac.MakeLeaf(b, enc.UTF8, coderange.Unknown))
		require.NoError(t, err)
		want := append(append([]byte{}, a...), b...)
		require.Equal(t, want, c.Materialize().Bytes())

		s, err := fac.Substring(c, off, n)
		if off < 0 || n < 0 || off > len(want) || n > len(want)-off {
			require.ErrorIs(t, err, ErrBounds)
			return
		}
		require.NoError(t, err)
		require.Equal(t, want[off:off+n], s.Materialize().Bytes())
		tag, _ := coderange.Scan(enc.UTF8, want[off:off+n])
		require.Equal(t, tag, s.CodeRange())
	})
}
