package format

import (
	"bytes"
	"strings"
)

// Writer accumulates indented lines.
type Writer struct {
	buf    bytes.Buffer
	indent string
	depth  int
}

func NewWriter(opt Options) *Writer {
	opt = opt.withDefaults()
	unit := strings.Repeat(" ", opt.IndentWidth)
	if opt.UseTabs {
		unit = "\t"
	}
	return &Writer{indent: unit}
}

func (w *Writer) Line(s string) {
	for range w.depth {
		w.buf.WriteString(w.indent)
	}
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

func (w *Writer) Indent()      { w.depth++ }
func (w *Writer) Dedent()      { w.depth = max(w.depth-1, 0) }
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }
