package docblock

import (
	"strconv"
	"strings"

	"go.jacobcolvin.com/oagen/diag"
)

// argument is one resolved entry of an argument list.
type argument struct {
	value any
	name  string
	pos   diag.Position
	named bool
}

// omitted marks a value that was reported and dropped, such as a nested tag
// of an unknown kind.
type omitted struct{}

// argReader resolves the argument text of one invocation. Nested tags are
// built through the owning blockParse as soon as their arguments are read.
type argReader struct {
	c     *cursor
	b     *blockParse
	start diag.Position
}

func newArgReader(b *blockParse, text string, start diag.Position) *argReader {
	return &argReader{c: newCursor(text), b: b, start: start}
}

func (r *argReader) pos() diag.Position {
	return r.start.Offset(r.c.line)
}

// skip consumes whitespace and the leading "*" of continuation lines.
func (r *argReader) skip() {
	lineStart := false

	for !r.c.eof() {
		ch := r.c.peek()

		switch {
		case ch == '\n':
			lineStart = true
		case isSpace(ch):
		case ch == '*' && lineStart && r.c.peekAt(1) != '/':
			lineStart = false
		default:
			return
		}

		r.c.bump()
	}
}

// list reads arguments up to closer, or to the end of the text when closer is
// zero.
func (r *argReader) list(closer byte) ([]argument, error) {
	var args []argument

	for {
		r.skip()

		if closer != 0 && r.c.eat(closer) {
			return args, nil
		}

		if r.c.eof() {
			if closer == 0 {
				return args, nil
			}

			return nil, r.malformed(ErrUnterminated, "missing %q", closer)
		}

		arg, err := r.argument()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		r.skip()

		switch {
		case r.c.eat(','):
			continue
		case closer != 0 && r.c.eat(closer):
			return args, nil
		case closer == 0 && r.c.eof():
			return args, nil
		}

		return nil, r.malformed(ErrMalformed, "expected ',' after argument, found %q", r.c.peek())
	}
}

func (r *argReader) argument() (argument, error) {
	pos := r.pos()

	if ch := r.c.peek(); isIdentStart(ch) && ch != '\\' {
		save := *r.c
		name := r.ident()

		r.skip()

		if r.assign() {
			v, err := r.value()
			if err != nil {
				return argument{}, err
			}

			return argument{name: name, value: v, pos: pos, named: true}, nil
		}

		*r.c = save
	}

	v, err := r.value()
	if err != nil {
		return argument{}, err
	}

	return argument{value: v, pos: pos}, nil
}

// assign consumes "=" or a single ":".
func (r *argReader) assign() bool {
	switch r.c.peek() {
	case '=':
		r.c.bump()

		return true
	case ':':
		if r.c.peekAt(1) == ':' {
			return false
		}

		r.c.bump()

		return true
	}

	return false
}

func (r *argReader) value() (any, error) {
	r.skip()

	ch := r.c.peek()

	switch {
	case ch == '"':
		return r.str()
	case ch == '{':
		return r.array()
	case ch == '@':
		return r.tag()
	case ch == '-' || ch == '+' || isDigit(ch):
		return r.number()
	case isIdentStart(ch):
		return r.identifier()
	case r.c.eof():
		return nil, r.malformed(ErrMalformed, "missing value")
	}

	return nil, r.malformed(ErrMalformed, "unexpected %q", ch)
}

func (r *argReader) ident() string {
	start := r.c.off

	for !r.c.eof() && isIdentContinue(r.c.peek()) {
		r.c.bump()
	}

	return r.c.slice(start)
}

func (r *argReader) str() (string, error) {
	r.c.bump()

	var sb strings.Builder

	for !r.c.eof() {
		ch := r.c.bump()

		switch ch {
		case '\\':
			if next := r.c.peek(); next == '"' || next == '\\' {
				sb.WriteByte(r.c.bump())

				continue
			}

			sb.WriteByte(ch)

		case '"':
			if r.c.peek() != '"' {
				return sb.String(), nil
			}

			sb.WriteByte(r.c.bump())

		default:
			sb.WriteByte(ch)
		}
	}

	return "", r.malformed(ErrUnterminated, "unterminated string")
}

func (r *argReader) number() (any, error) {
	start := r.c.off

	if ch := r.c.peek(); ch == '-' || ch == '+' {
		r.c.bump()
	}

	if !isDigit(r.c.peek()) {
		return nil, r.malformed(ErrMalformed, "invalid number")
	}

	float := false

	r.digits()

	if r.c.peek() == '.' && isDigit(r.c.peekAt(1)) {
		float = true

		r.c.bump()
		r.digits()
	}

	if ch := r.c.peek(); ch == 'e' || ch == 'E' {
		float = true

		r.c.bump()

		if ch := r.c.peek(); ch == '-' || ch == '+' {
			r.c.bump()
		}

		r.digits()
	}

	text := r.c.slice(start)

	if !float {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return i, nil
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, r.malformed(ErrMalformed, "invalid number %q", text)
	}

	return f, nil
}

func (r *argReader) digits() {
	for isDigit(r.c.peek()) {
		r.c.bump()
	}
}

// identifier reads a keyword literal or a constant reference. A bare name
// refers to a constant of the block's own package.
func (r *argReader) identifier() (any, error) {
	pos := r.pos()
	id := r.ident()

	switch strings.ToLower(id) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	}

	if r.c.peek() == ':' && r.c.peekAt(1) == ':' {
		r.c.bump()
		r.c.bump()

		name := r.ident()
		if name == "" {
			return nil, r.malformed(ErrMalformed, "missing constant name after %s::", id)
		}

		return r.b.constant(id, name, pos)
	}

	return r.b.constant("", id, pos)
}

// array reads {a, b} as []any and {k=v, ...} as map[string]any. Positional
// entries of a keyed array are keyed by their index.
func (r *argReader) array() (any, error) {
	r.c.bump()

	var (
		items []any
		keyed map[string]any
	)

	for {
		r.skip()

		if r.c.eat('}') {
			break
		}

		if r.c.eof() {
			return nil, r.malformed(ErrUnterminated, "unterminated array")
		}

		key, hasKey, err := r.arrayKey()
		if err != nil {
			return nil, err
		}

		v, err := r.value()
		if err != nil {
			return nil, err
		}

		if _, skip := v.(omitted); !skip {
			if hasKey {
				if keyed == nil {
					keyed = make(map[string]any)
				}

				keyed[key] = v
			} else {
				items = append(items, v)
			}
		}

		r.skip()

		if r.c.eat(',') {
			continue
		}

		if r.c.eat('}') {
			break
		}

		return nil, r.malformed(ErrMalformed, "expected ',' or '}' in array, found %q", r.c.peek())
	}

	if keyed == nil {
		if items == nil {
			return []any{}, nil
		}

		return items, nil
	}

	for i, item := range items {
		keyed[strconv.Itoa(i)] = item
	}

	return keyed, nil
}

// arrayKey reads an optional key followed by "=" or ":". The cursor is left
// unchanged when there is no key.
func (r *argReader) arrayKey() (string, bool, error) {
	save := *r.c

	var key string

	switch ch := r.c.peek(); {
	case ch == '"':
		s, err := r.str()
		if err != nil {
			return "", false, err
		}

		key = s

	case isIdentStart(ch):
		key = r.ident()
		if r.c.peek() == ':' && r.c.peekAt(1) == ':' {
			*r.c = save

			return "", false, nil
		}

	case isDigit(ch):
		r.digits()
		key = r.c.slice(save.off)

	default:
		return "", false, nil
	}

	r.skip()

	if !r.assign() {
		*r.c = save

		return "", false, nil
	}

	return key, true, nil
}

// tag reads a nested invocation and builds it.
func (r *argReader) tag() (any, error) {
	pos := r.pos()

	r.c.bump()

	name := r.ident()
	if name == "" {
		return nil, r.malformed(ErrMalformed, "missing tag name after '@'")
	}

	var args []argument

	if r.c.eat('(') {
		var err error

		args, err = r.list(')')
		if err != nil {
			return nil, err
		}
	}

	n, err := r.b.build(name, args, pos)
	if err != nil {
		return nil, err
	}

	if n == nil {
		return omitted{}, nil
	}

	return n, nil
}

func (r *argReader) malformed(err error, format string, args ...any) error {
	return newError(err, r.pos(), format, args...)
}
