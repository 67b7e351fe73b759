package trace

import (
	"io"
	"sync"
)

// WriterTracer writes each event as soon as it is emitted.
type WriterTracer struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer // nil for writers we do not own
	level  Level
	format Format
	buf    []byte
	err    error
}

// NewWriter writes events to w. closer, when not nil, is closed by Close.
func NewWriter(w io.Writer, closer io.Closer, level Level, format Format) *WriterTracer {
	return &WriterTracer{w: w, closer: closer, level: level, format: format}
}

func (t *WriterTracer) Emit(ev Event) {
	if !t.level.Wants(ev.Kind) {
		return
	}
	stamp(&ev)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = AppendEvent(t.buf[:0], &ev, t.format)
	if _, err := t.w.Write(t.buf); err != nil && t.err == nil {
		t.err = err
	}
}

func (t *WriterTracer) Level() Level { return t.level }

// Close reports the first write error, then closes an owned output.
func (t *WriterTracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	err := t.err
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
		t.closer = nil
	}
	return err
}
