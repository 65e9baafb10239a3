package rope

import (
	"math"

	"ropes/internal/trace"
)

const (
	// DefaultFlattenBytes is the result size at or below which Concat and
	// Repeat build a fresh leaf instead of a node.
	DefaultFlattenBytes = 128
	// DefaultMaxDepth bounds rope trees; deeper results are flattened.
	DefaultMaxDepth = 128
	// DefaultMaxByteLength is the largest rope a factory will build.
	DefaultMaxByteLength = math.MaxInt32
)

// Options tunes a Factory. Zero fields take their defaults.
type Options struct {
	ConcatFlattenBytes int
	RepeatFlattenBytes int
	MaxDepth           int
	MaxByteLength      int
	Tracer             trace.Tracer
}

// DefaultOptions returns the stock tuning.
func DefaultOptions() Options {
	return Options{
		ConcatFlattenBytes: DefaultFlattenBytes,
		RepeatFlattenBytes: DefaultFlattenBytes,
		MaxDepth:           DefaultMaxDepth,
		MaxByteLength:      DefaultMaxByteLength,
		Tracer:             trace.Nop,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.ConcatFlattenBytes <= 0 {
		o.ConcatFlattenBytes = def.ConcatFlattenBytes
	}
	if o.RepeatFlattenBytes <= 0 {
		o.RepeatFlattenBytes = def.RepeatFlattenBytes
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = def.MaxDepth
	}
	if o.MaxByteLength <= 0 {
		o.MaxByteLength = def.MaxByteLength
	}
	if o.Tracer == nil {
		o.Tracer = trace.Nop
	}
	return o
}
