package rope

import (
	"strconv"

	"ropes/internal/coderange"
	"ropes/internal/enc"
	"ropes/internal/trace"
)

// Factory builds ropes. It holds no mutable state after construction and is
// safe for concurrent use.
type Factory struct {
	opts   Options
	empty  []*Rope
	tracer trace.Tracer
}

// NewFactory returns a factory tuned by opts.
func NewFactory(opts Options) *Factory {
	opts = opts.normalized()
	f := &Factory{
		opts:   opts,
		empty:  make([]*Rope, enc.Count()),
		tracer: opts.Tracer,
	}
	for _, e := range enc.All() {
		f.empty[e.Index()] = newEmpty(e)
	}
	return f
}

var defaultFactory = NewFactory(DefaultOptions())

// Default returns the process-wide factory with stock options.
func Default() *Factory { return defaultFactory }

// Options returns the effective tuning.
func (f *Factory) Options() Options { return f.opts }

// Empty returns the shared empty rope for e.
func (f *Factory) Empty(e *enc.Encoding) *Rope {
	return f.empty[e.Index()]
}

func newEmpty(e *enc.Encoding) *Rope {
	r := &Rope{kind: KindLeaf, enc: e, bytes: []byte{}}
	if e.ASCIICompatible() {
		r.setCodeRange(coderange.SevenBit)
	} else {
		r.setCodeRange(coderange.Valid)
	}
	r.chars.set(0)
	r.Hash()
	return r
}

// MakeLeaf copies b into a new leaf. A known code range is trusted as given,
// so the bytes are not scanned; pass coderange.Unknown to defer the scan.
// An empty b returns the shared empty rope for e.
func (f *Factory) MakeLeaf(b []byte, e *enc.Encoding, known coderange.Tag) *Rope {
	if len(b) == 0 {
		return f.Empty(e)
	}
	buf := make([]byte, len(b))
	copy(buf, b)
	return newLeaf(buf, e, known)
}

// FromString is MakeLeaf for a Go string.
func (f *Factory) FromString(s string, e *enc.Encoding, known coderange.Tag) *Rope {
	if s == "" {
		return f.Empty(e)
	}
	return newLeaf([]byte(s), e, known)
}

// newLeaf takes ownership of b.
func newLeaf(b []byte, e *enc.Encoding, known coderange.Tag) *Rope {
	r := &Rope{kind: KindLeaf, enc: e, size: len(b), bytes: b}
	r.setCodeRange(known)
	if known == coderange.SevenBit || (known.Known() && e.SingleByte()) {
		r.chars.set(len(b))
	}
	return r
}

// Flatten returns a leaf holding the same bytes, encoding and cached
// attributes as r. Leaves are returned as is.
func (f *Factory) Flatten(r *Rope) *Rope {
	if r.kind == KindLeaf {
		return r
	}
	fresh := r.flat.Load() == nil
	leaf := newLeaf(r.flatBytes(), r.enc, r.KnownCodeRange())
	if n, ok := r.chars.get(); ok {
		leaf.chars.set(n)
	}
	if r.hashed.Load() {
		leaf.hash.Store(r.hash.Load())
		leaf.hashed.Store(true)
	}
	if fresh {
		f.point("flatten", "kind", r.kind.String(), "bytes", strconv.Itoa(r.size), "depth", strconv.Itoa(r.depth))
	}
	return leaf
}

func (f *Factory) point(name string, extra ...string) {
	trace.Point(f.tracer, trace.ScopeOp, name, extra...)
}

func (f *Factory) node(name string, extra ...string) {
	trace.Point(f.tracer, trace.ScopeNode, name, extra...)
}
