// Package logging wires a single zerolog.Logger that every component
// logs through, per SPEC_FULL.md §4.13: carried via context.Context, or
// passed explicitly to constructors, rather than a package-level global
// (spec.md §9's "pass them through explicit context values rather than
// module globals").
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// New builds the process logger. The control protocol is stdio-framed
// JSON-RPC (spec §6), so log output must never touch stdout; it goes to
// stderr exclusively, human-readable in a terminal and JSON otherwise.
func New(level zerolog.Level, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// WithContext returns a context carrying logger for downstream components
// to retrieve with FromContext.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger carried by ctx, or zerolog's global
// disabled logger if none was attached.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return zerolog.Nop()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
