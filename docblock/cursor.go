package docblock

import (
	"fmt"

	"fortio.org/safecast"
)

// Span is a byte range within a block's text.
type Span struct {
	Start uint32
	End   uint32
}

// cursor walks a string byte by byte, counting newlines.
type cursor struct {
	src   string
	off   uint32
	limit uint32
	line  int
}

func newCursor(src string) *cursor {
	limit, err := safecast.Conv[uint32](len(src))
	if err != nil {
		panic(fmt.Errorf("block length overflow: %w", err))
	}

	return &cursor{src: src, limit: limit}
}

func (c *cursor) eof() bool {
	return c.off >= c.limit
}

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}

	return c.src[c.off]
}

func (c *cursor) peekAt(n uint32) byte {
	if c.off+n >= c.limit {
		return 0
	}

	return c.src[c.off+n]
}

func (c *cursor) bump() byte {
	if c.eof() {
		return 0
	}

	b := c.src[c.off]
	c.off++

	if b == '\n' {
		c.line++
	}

	return b
}

func (c *cursor) eat(b byte) bool {
	if c.eof() || c.src[c.off] != b {
		return false
	}

	c.bump()

	return true
}

func (c *cursor) skipSpace() {
	for !c.eof() && isSpace(c.peek()) {
		c.bump()
	}
}

// skipLine advances past the next newline.
func (c *cursor) skipLine() {
	for !c.eof() {
		if c.bump() == '\n' {
			return
		}
	}
}

func (c *cursor) slice(start uint32) string {
	return c.src[start:c.off]
}

// prev returns the byte before the cursor, or 0 at the start.
func (c *cursor) prev() byte {
	if c.off == 0 {
		return 0
	}

	return c.src[c.off-1]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '\\' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
