package diag

import (
	"fmt"
	"log/slog"
	"strconv"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevInfo is for informational diagnostics.
	SevInfo Severity = iota
	// SevWarning is for recoverable anomalies.
	SevWarning
	// SevError is for missing required nodes and fatal conditions.
	SevError
)

// String returns the upper-case severity name.
func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}

	return "UNKNOWN"
}

// Level returns the [slog.Level] used when logging diagnostics of this
// severity.
func (s Severity) Level() slog.Level {
	switch s {
	case SevInfo:
		return slog.LevelInfo
	case SevWarning:
		return slog.LevelWarn
	}

	return slog.LevelError
}

// Code classifies a diagnostic.
type Code string

const (
	CodeUnknownTag         Code = "unknown-tag"
	CodeDeprecatedTag      Code = "deprecated-tag"
	CodeUnknownProperty    Code = "unknown-property"
	CodeDuplicateArgument  Code = "duplicate-argument"
	CodeMalformedTag       Code = "malformed-tag"
	CodeUnresolvedConstant Code = "unresolved-constant"
	CodeInvalidSource      Code = "invalid-source"
	CodeReadFailed         Code = "read-failed"
	CodeMissingRequired    Code = "missing-required"
	CodeMultipleRequired   Code = "multiple-required"
	CodeUnmerged           Code = "unmerged"
	CodeMergeConflict      Code = "merge-conflict"
	CodeUnexpectedChild    Code = "unexpected-child"
	CodeMissingKey         Code = "missing-key"
)

// Fatal reports whether diagnostics with this code abort the enclosing unit
// of work (and the whole run in strict mode).
func (c Code) Fatal() bool {
	return c == CodeUnresolvedConstant
}

// Position locates a diagnostic or node in a source file.
// Line is 1-based; zero means unknown.
type Position struct {
	File string `msgpack:"file"`
	Line int    `msgpack:"line"`
}

// String renders the position as file:line, omitting unknown parts.
func (p Position) String() string {
	switch {
	case p.File == "" && p.Line == 0:
		return ""
	case p.Line == 0:
		return p.File
	case p.File == "":
		return "line " + strconv.Itoa(p.Line)
	}

	return p.File + ":" + strconv.Itoa(p.Line)
}

// Offset returns a copy of p moved down by n lines.
func (p Position) Offset(n int) Position {
	p.Line += n

	return p
}

// Diagnostic is a single report. It implements error so a fatal diagnostic can
// be returned directly in strict mode.
type Diagnostic struct {
	Code     Code
	Message  string
	Position Position
	Severity Severity
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if pos := d.Position.String(); pos != "" {
		return fmt.Sprintf("%s: %s (%s)", pos, d.Message, d.Code)
	}

	return fmt.Sprintf("%s (%s)", d.Message, d.Code)
}

// Reporter receives diagnostics.
type Reporter interface {
	Report(d Diagnostic)
}

// Warnf reports a [SevWarning] diagnostic to r.
func Warnf(r Reporter, code Code, pos Position, format string, args ...any) {
	report(r, SevWarning, code, pos, format, args...)
}

// Infof reports a [SevInfo] diagnostic to r.
func Infof(r Reporter, code Code, pos Position, format string, args ...any) {
	report(r, SevInfo, code, pos, format, args...)
}

// Errorf reports a [SevError] diagnostic to r.
func Errorf(r Reporter, code Code, pos Position, format string, args ...any) {
	report(r, SevError, code, pos, format, args...)
}

func report(r Reporter, sev Severity, code Code, pos Position, format string, args ...any) {
	if r == nil {
		return
	}

	r.Report(Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Position: pos,
	})
}

// Discard is a [Reporter] that drops everything.
var Discard Reporter = discard{}

type discard struct{}

func (discard) Report(Diagnostic) {}
