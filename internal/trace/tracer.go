package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Tracer records events. Implementations are safe for concurrent use.
type Tracer interface {
	Emit(ev Event)
	Level() Level
	Close() error
}

// Wants reports whether tr records kind k. Callers check it before
// building an expensive event.
func Wants(tr Tracer, k Kind) bool { return tr.Level().Wants(k) }

// Nop drops everything.
var Nop Tracer = off{}

type off struct{}

func (off) Emit(Event)   {}
func (off) Level() Level { return LevelOff }
func (off) Close() error { return nil }

var seq atomic.Uint64

// stamp numbers ev across all tracers of the process.
func stamp(ev *Event) {
	if ev.Seq == 0 {
		ev.Seq = seq.Add(1)
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}
}

// Mode selects where events go.
type Mode uint8

const (
	ModeStream Mode = iota + 1 // written as they happen
	ModeRing                   // last N kept, printed at exit
	ModeBoth
)

func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	}
	return "unknown"
}

// ParseMode converts a flag value to Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	}
	return ModeStream, fmt.Errorf("invalid trace mode: %q (expected: stream|ring|both)", s)
}

// DefaultRingSize is used when Config.RingSize is not positive.
const DefaultRingSize = 4096

// Config describes a tracer.
type Config struct {
	Level    Level
	Mode     Mode
	Format   Format    // FormatAuto: by Path extension
	Output   io.Writer // used instead of Path when set
	Path     string    // "" or "-": stderr
	RingSize int
}

// New builds the tracer cfg asks for.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	if cfg.RingSize <= 0 {
		cfg.RingSize = DefaultRingSize
	}
	format := cfg.Format
	if format == FormatAuto {
		format = DetectFormat(cfg.Path)
	}

	switch cfg.Mode {
	case ModeRing:
		return NewRing(cfg.RingSize, cfg.Level), nil
	case ModeStream, ModeBoth:
		w, closer, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		stream := NewWriter(w, closer, cfg.Level, format)
		if cfg.Mode == ModeStream {
			return stream, nil
		}
		return Tee(stream, NewRing(cfg.RingSize, cfg.Level)), nil
	}
	return nil, fmt.Errorf("unknown trace mode: %v", cfg.Mode)
}

func openOutput(cfg Config) (io.Writer, io.Closer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil, nil
	}
	if cfg.Path == "" || cfg.Path == "-" {
		return os.Stderr, nil, nil
	}
	f, err := os.Create(cfg.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open trace output: %w", err)
	}
	return f, f, nil
}

// Tee sends every event to all tracers under one sequence number.
func Tee(tracers ...Tracer) Tracer { return tee(tracers) }

type tee []Tracer

func (t tee) Emit(ev Event) {
	stamp(&ev)
	for _, tr := range t {
		tr.Emit(ev)
	}
}

func (t tee) Level() Level {
	var l Level
	for _, tr := range t {
		l = max(l, tr.Level())
	}
	return l
}

func (t tee) Close() error {
	var errs []error
	for _, tr := range t {
		errs = append(errs, tr.Close())
	}
	return errors.Join(errs...)
}

// Members returns the tracers behind a Tee, or tr itself.
func Members(tr Tracer) []Tracer {
	if t, ok := tr.(tee); ok {
		return t
	}
	return []Tracer{tr}
}

type ctxKey struct{}

// WithTracer stores tr in ctx.
func WithTracer(ctx context.Context, tr Tracer) context.Context {
	return context.WithValue(ctx, ctxKey{}, tr)
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if tr, ok := ctx.Value(ctxKey{}).(Tracer); ok && tr != nil {
		return tr
	}
	return Nop
}
