package trace

import (
	"bufio"
	"io"
	"sync"
)

// StreamTracer writes each admitted event to a writer through a buffer.
type StreamTracer struct {
	level  Level
	format Format

	mu      sync.Mutex
	w       *bufio.Writer
	dst     io.Writer
	scratch []byte
	err     error
}

// NewStreamTracer writes to w. Close closes w when it is an io.Closer.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{level: level, format: format, w: bufio.NewWriter(w), dst: w}
}

// Emit formats ev and writes it. Command-scope events are flushed at once so
// a span begin shows up before slow work finishes. The first write error is
// kept and returned by Flush.
func (t *StreamTracer) Emit(ev *Event) {
	if ev == nil || !t.level.ShouldEmit(ev.Scope) {
		return
	}
	if ev.Seq == 0 {
		ev.Seq = NextSeq()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return
	}
	t.scratch = AppendEvent(t.scratch[:0], ev, t.format)
	if _, err := t.w.Write(t.scratch); err != nil {
		t.err = err
		return
	}
	if ev.Scope == ScopeCommand {
		t.err = t.w.Flush()
	}
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}

func (t *StreamTracer) Close() error {
	err := t.Flush()
	if c, ok := t.dst.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (t *StreamTracer) Level() Level  { return t.level }
func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
