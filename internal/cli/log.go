// Package cli implements the scenedsl command-line interface.
//
// This package provides commands for converting scenes to the DSL and
// back, diffing and patching scenes, inspecting training scenes and prompt
// prefixes, running generator-backed conversions, and serving the pipeline
// over HTTP. The CLI is built using cobra and logs through
// charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - encode, decode: scene JSON to DSL text and back
//   - diff, apply: structural patches between scenes
//   - repair, bbox, tree: scene inspection helpers
//   - prompt, convert: prompt prefixes and generator-backed conversions
//   - serve: the HTTP service
//   - cache: manage the completion cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Output
//
// Converted data goes to stdout (or -o); status lines and logs go to stderr,
// so commands compose in pipes:
//
//	scenedsl encode scene.json | scenedsl decode - --x 0 --y 0
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scenedsl/pkg/errors"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one command. Its logger carries the command name as a
// prefix, so interleaved server and CLI lines stay attributable.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger, op string) *progress {
	return &progress{logger: l.WithPrefix(op), start: time.Now()}
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// done logs msg with keyvals and the elapsed time, e.g.
// "encode: encoded scene nodes=12 elapsed=3ms".
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", p.elapsed())...)
}

// fail logs err at debug level with its error code and returns it unchanged.
// Input errors are the caller's to report and are not logged.
func (p *progress) fail(err error) error {
	if err == nil || errors.Is(err, errors.ErrCodeInvalidInput) {
		return err
	}
	p.logger.Debug("failed", "code", errors.GetCode(err), "elapsed", p.elapsed(), "error", err)
	return err
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() when
// none is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
