package docblock

import (
	"errors"
	"fmt"

	"go.jacobcolvin.com/oagen/diag"
)

// Sentinel errors wrapped by [*Error].
var (
	ErrMalformed          = errors.New("malformed tag")
	ErrUnterminated       = errors.New("unterminated argument list")
	ErrUnresolvedConstant = errors.New("unresolved constant")
)

// Error aborts one tag invocation.
type Error struct {
	Err      error
	Message  string
	Position diag.Position
}

func newError(err error, pos diag.Position, format string, args ...any) *Error {
	return &Error{Err: err, Message: fmt.Sprintf(format, args...), Position: pos}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if pos := e.Position.String(); pos != "" {
		return fmt.Sprintf("%s: %v: %s", pos, e.Err, e.Message)
	}

	return fmt.Sprintf("%v: %s", e.Err, e.Message)
}

// Unwrap returns the sentinel error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Diagnostic converts the error into the diagnostic reported for it.
// Unresolved constants are fatal errors; syntax problems are warnings.
func (e *Error) Diagnostic(tag string) diag.Diagnostic {
	if errors.Is(e.Err, ErrUnresolvedConstant) {
		return diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.CodeUnresolvedConstant,
			Message:  e.Message,
			Position: e.Position,
		}
	}

	return diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.CodeMalformedTag,
		Message:  fmt.Sprintf("Skipping malformed @%s: %s", tag, e.Message),
		Position: e.Position,
	}
}
