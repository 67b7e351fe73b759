package trace

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Format of written events.
type Format uint8

const (
	FormatAuto   Format = iota // pick by file extension
	FormatText                 // one aligned line per event
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a string to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// DetectFormat picks NDJSON for .ndjson/.jsonl/.json paths and text otherwise.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".jsonl", ".json":
		return FormatNDJSON
	}
	return FormatText
}

// AppendEvent appends the encoding of ev, newline included, to dst.
func AppendEvent(dst []byte, ev *Event, f Format) []byte {
	if f == FormatNDJSON {
		data, err := json.Marshal(ev)
		if err != nil {
			// Event has only plain fields; this cannot happen
			return append(dst, "{}\n"...)
		}
		return append(append(dst, data...), '\n')
	}
	return appendText(dst, ev)
}

// appendText: [clock] #seq  <indent>kind r=.. s=.. ... "text"
func appendText(dst []byte, ev *Event) []byte {
	dst = fmt.Appendf(dst, "[%s] #%-5d ", ev.Time.Format("15:04:05.000"), ev.Seq)
	for range ev.Kind.depth() {
		dst = append(dst, "  "...)
	}
	dst = append(dst, ev.Kind.String()...)

	field := func(name string, v int) {
		if v != 0 {
			dst = append(dst, ' ')
			dst = append(dst, name...)
			dst = append(dst, '=')
			dst = strconv.AppendInt(dst, int64(v), 10)
		}
	}
	field("round", ev.Round)
	field("state", ev.State)
	field("child", ev.Child)
	field("states", ev.States)
	field("live", ev.Live)
	field("freed", ev.Freed)
	if ev.Code != "" {
		dst = append(dst, " code="...)
		dst = append(dst, ev.Code...)
	}
	if ev.Elapsed > 0 {
		dst = append(dst, " elapsed="...)
		dst = append(dst, ev.Elapsed.String()...)
	}
	if ev.Text != "" {
		dst = append(dst, ' ')
		dst = strconv.AppendQuote(dst, ev.Text)
	}
	return append(dst, '\n')
}
