package docblock

import (
	"iter"

	"go.jacobcolvin.com/oagen/diag"
)

// Invocation is one tag found in a block: its name as written, the raw text
// between its parentheses, and where it starts.
type Invocation struct {
	Name     string
	Args     string
	Position diag.Position
	Span     Span
	HasArgs  bool
}

// Scan returns the tag invocations of text in order. start is the position
// of the first line of text. The sequence may be iterated more than once;
// each iteration rescans and reports malformed tags to r again.
//
// Argument lists are balanced over parentheses, skipping double-quoted
// strings. An unterminated list is reported as a warning. Scanning resumes at
// the next line that starts with a tag indented no deeper than the broken one;
// tags nested inside the broken list are skipped with it.
func Scan(text string, start diag.Position, r diag.Reporter) iter.Seq[Invocation] {
	return func(yield func(Invocation) bool) {
		c := newCursor(text)

		for !c.eof() {
			if c.peek() != '@' || !tagBoundary(c.prev()) {
				c.bump()

				continue
			}

			mark := *c

			c.bump()

			nameStart := c.off
			for !c.eof() && isIdentContinue(c.peek()) {
				c.bump()
			}

			name := c.slice(nameStart)
			if name == "" || !isIdentStart(name[0]) {
				continue
			}

			inv := Invocation{
				Name:     name,
				Position: start.Offset(mark.line),
			}

			if c.peek() == '(' {
				argsStart := c.off + 1

				end, ok := balance(c)
				if !ok {
					diag.Warnf(r, diag.CodeMalformedTag, inv.Position,
						"Unterminated argument list for @%s", name)

					*c = mark
					resume(c)

					continue
				}

				inv.HasArgs = true
				inv.Args = text[argsStart:end]
			}

			inv.Span = Span{Start: mark.off, End: c.off}

			if !yield(inv) {
				return
			}
		}
	}
}

// resume moves c from a tag with an unterminated argument list to the start
// of the next line holding a sibling tag, or to the end of the text.
func resume(c *cursor) {
	depth := indent(c.src, lineStart(c.src, c.off))

	for {
		c.skipLine()

		if c.eof() {
			return
		}

		n := indent(c.src, c.off)
		if n <= depth && c.peekAt(uint32(n)) == '@' { //nolint:gosec // Indent is bounded by the line.
			return
		}
	}
}

// lineStart returns the offset of the first byte of the line holding off.
func lineStart(src string, off uint32) uint32 {
	for off > 0 && src[off-1] != '\n' {
		off--
	}

	return off
}

// indent counts the blanks and comment stars that open the line at off.
func indent(src string, off uint32) int {
	n := 0

	for int(off)+n < len(src) {
		switch src[int(off)+n] {
		case ' ', '\t', '*':
			n++
		default:
			return n
		}
	}

	return n
}

// Invocations collects the result of [Scan].
func Invocations(text string, start diag.Position, r diag.Reporter) []Invocation {
	var out []Invocation

	for inv := range Scan(text, start, r) {
		out = append(out, inv)
	}

	return out
}

// balance consumes a parenthesised list starting at the cursor and returns
// the offset of the closing parenthesis.
func balance(c *cursor) (uint32, bool) {
	depth := 0

	for !c.eof() {
		switch c.bump() {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return c.off - 1, true
			}

		case '"':
			if !skipString(c) {
				return 0, false
			}
		}
	}

	return 0, false
}

// skipString consumes the rest of a double-quoted string whose opening quote
// was already read. Backslash escapes the next byte and "" is a literal quote.
func skipString(c *cursor) bool {
	for !c.eof() {
		switch c.bump() {
		case '\\':
			c.bump()
		case '"':
			if c.peek() != '"' {
				return true
			}

			c.bump()
		}
	}

	return false
}

func tagBoundary(prev byte) bool {
	return prev == 0 || isSpace(prev) || prev == '*' || prev == '('
}
