// Package execlog writes the per-round execution trace: a snapshot of every
// live program state after each scheduler round.
package execlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"forkvm/internal/vm"
)

// Logger receives one batch of snapshots per round.
type Logger interface {
	Log(round int, snaps []vm.Snapshot) error
	Close() error
}

// Format selects the on-disk encoding.
type Format uint8

const (
	FormatText Format = iota
	FormatNDJSON
	FormatYAML
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatNDJSON:
		return "ndjson"
	case FormatYAML:
		return "yaml"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

// ParseFormat converts a string to Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "msgpack", "mp":
		return FormatMsgpack, nil
	default:
		return FormatText, fmt.Errorf("invalid log format: %q (expected: text|ndjson|yaml|msgpack)", s)
	}
}

// Record is one round as stored by the structured formats.
type Record struct {
	Round  int           `json:"round" yaml:"round" msgpack:"round"`
	States []vm.Snapshot `json:"states" yaml:"states" msgpack:"states"`
}

// Config describes where the log goes.
type Config struct {
	Path   string // "-" for stderr
	Format Format
}

// ErrNoPath is returned by Open for an empty path.
var ErrNoPath = errors.New("execlog: empty path")

// Open appends to cfg.Path, creating it if needed.
func Open(cfg Config) (Logger, error) {
	switch cfg.Path {
	case "":
		return nil, ErrNoPath
	case "-":
		return NewWriter(os.Stderr, cfg.Format), nil
	}
	f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("execlog: %w", err)
	}
	l := NewWriter(f, cfg.Format)
	l.closer = f
	return l, nil
}

// WriterLogger encodes records onto an io.Writer. Each Log call is flushed
// before it returns so write errors reach the caller.
type WriterLogger struct {
	mu     sync.Mutex
	w      *bufio.Writer
	out    io.Writer
	closer io.Closer
	encode func(w io.Writer, rec Record) error
}

// NewWriter wraps w. The writer is not closed by Close.
func NewWriter(w io.Writer, format Format) *WriterLogger {
	l := &WriterLogger{w: bufio.NewWriter(w), out: w}
	switch format {
	case FormatNDJSON:
		l.encode = encodeNDJSON
	case FormatYAML:
		l.encode = encodeYAML
	case FormatMsgpack:
		l.encode = encodeMsgpack
	default:
		l.encode = encodeText
	}
	return l
}

func (l *WriterLogger) Log(round int, snaps []vm.Snapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.encode(l.w, Record{Round: round, States: snaps})
	if err == nil {
		err = l.w.Flush()
	}
	if err != nil {
		// bufio keeps the first error forever; drop the partial record so
		// later rounds get a fresh attempt
		l.w.Reset(l.out)
		return fmt.Errorf("execlog: round %d: %w", round, err)
	}
	return nil
}

func (l *WriterLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.w.Flush()
	if l.closer != nil {
		err = errors.Join(err, l.closer.Close())
		l.closer = nil
	}
	return err
}
