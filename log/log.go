package log

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	charmlog "charm.land/log/v2"
	"golang.org/x/term"
)

// Level is a log severity name.
type Level string

const (
	// LevelError only logs errors.
	LevelError Level = "error"
	// LevelWarn logs warnings, including skipped annotations.
	LevelWarn Level = "warn"
	// LevelInfo logs informational diagnostics.
	LevelInfo Level = "info"
	// LevelDebug logs pipeline progress.
	LevelDebug Level = "debug"
)

// Format represents the log output format.
type Format string

const (
	// FormatJSON outputs logs as JSON objects.
	FormatJSON Format = "json"
	// FormatLogfmt outputs logs in logfmt format.
	FormatLogfmt Format = "logfmt"
	// FormatText outputs colored, human-readable logs.
	FormatText Format = "text"
	// FormatAuto selects [FormatText] for terminals and [FormatLogfmt]
	// otherwise.
	FormatAuto Format = "auto"
)

var (
	// ErrInvalidArgument indicates an invalid argument was provided.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownLogLevel indicates an unrecognized log level string.
	ErrUnknownLogLevel = errors.New("unknown log level")
	// ErrUnknownLogFormat indicates an unrecognized log format string.
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// Handler is a [slog.Handler] built by this package.
type Handler = slog.Handler

// GetAllLevelStrings returns the accepted level names.
func GetAllLevelStrings() []string {
	return []string{string(LevelError), string(LevelWarn), string(LevelInfo), string(LevelDebug)}
}

// GetAllFormatStrings returns the accepted format names.
func GetAllFormatStrings() []string {
	return []string{string(FormatJSON), string(FormatLogfmt), string(FormatText), string(FormatAuto)}
}

// ParseLevel parses a log level name. "warning" is accepted for
// [LevelWarn].
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogLevel, level)
}

// ParseFormat parses a log format name.
func ParseFormat(format string) (Format, error) {
	logFmt := Format(strings.ToLower(format))
	if slices.Contains([]Format{FormatJSON, FormatLogfmt, FormatText, FormatAuto}, logFmt) {
		return logFmt, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownLogFormat, format)
}

// SlogLevel returns the [slog.Level] of l. Unknown levels map to
// [slog.LevelInfo].
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelError:
		return slog.LevelError
	case LevelWarn:
		return slog.LevelWarn
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
	}

	return slog.LevelInfo
}

func (l Level) charmLevel() charmlog.Level {
	switch l {
	case LevelError:
		return charmlog.ErrorLevel
	case LevelWarn:
		return charmlog.WarnLevel
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelInfo:
	}

	return charmlog.InfoLevel
}

// Resolve returns the concrete format used for w. [FormatAuto] becomes
// [FormatText] when w is a terminal and [FormatLogfmt] otherwise.
func (f Format) Resolve(w io.Writer) Format {
	if f != FormatAuto {
		return f
	}

	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) { //nolint:gosec // Fd fits in int.
		return FormatText
	}

	return FormatLogfmt
}

// NewHandlerFromStrings creates a [Handler] from level and format names.
func NewHandlerFromStrings(w io.Writer, logLevel, logFormat string) (Handler, error) {
	logLvl, err := ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	logFmt, err := ParseFormat(logFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return NewHandler(w, logLvl, logFmt), nil
}

// NewHandler creates a [Handler] writing to w with the given level and
// format. Diagnostics carry their own source position, so records do not
// include the caller.
func NewHandler(w io.Writer, logLvl Level, logFmt Format) Handler {
	opts := &slog.HandlerOptions{Level: logLvl.SlogLevel()}

	switch logFmt.Resolve(w) {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)

	case FormatText:
		return charmlog.NewWithOptions(w, charmlog.Options{
			Level:     logLvl.charmLevel(),
			Formatter: charmlog.TextFormatter,
		})

	case FormatLogfmt, FormatAuto:
	}

	return slog.NewTextHandler(w, opts)
}
