package docblock

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/node"
)

// Block is one documentation block and what it documents.
type Block struct {
	// Context describes the documented declaration. Nodes built from the
	// block share a copy of it with Doc filled in.
	Context *node.Context
	// Aliases extends the parser's alias table for this block only.
	Aliases map[string]string
	// Constants resolves references to constants declared next to the block,
	// before the parser's own lookup is asked.
	Constants ConstantLookup
	// Text is the comment text with comment markers removed.
	Text string
	// Position is the location of the first line of Text.
	Position diag.Position
}

// Parser turns documentation blocks into annotation nodes.
//
// A Parser is immutable after construction and safe for concurrent use as
// long as its reporter is. Create instances with [NewParser].
type Parser struct {
	registry  *node.Registry
	aliases   *AliasTable
	constants ConstantLookup
	reporter  diag.Reporter
	prefix    string
}

// ParserOption configures a [Parser].
type ParserOption func(*Parser)

// WithAliases sets the alias table. The table must not be modified while the
// parser is in use.
func WithAliases(a *AliasTable) ParserOption {
	return func(p *Parser) {
		p.aliases = a
	}
}

// WithConstants sets the lookup used for constant references.
func WithConstants(c ConstantLookup) ParserOption {
	return func(p *Parser) {
		p.constants = c
	}
}

// WithReporter sets the diagnostic sink.
func WithReporter(r diag.Reporter) ParserOption {
	return func(p *Parser) {
		p.reporter = r
	}
}

// WithTagPrefix sets the alias used when diagnostics name a kind, "OA" by
// default.
func WithTagPrefix(prefix string) ParserOption {
	return func(p *Parser) {
		p.prefix = prefix
	}
}

// NewParser creates a [Parser] for the kinds in reg.
func NewParser(reg *node.Registry, opts ...ParserOption) *Parser {
	p := &Parser{
		registry: reg,
		aliases:  NewAliasTable(),
		reporter: diag.Discard,
		prefix:   "OA",
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Reporting returns a copy of p that reports to r.
func (p *Parser) Reporting(r diag.Reporter) *Parser {
	cp := *p
	cp.reporter = r

	return &cp
}

// Parse returns the top-level nodes declared in the block, in order. Nested
// tags become children or property values of their parent. Problems are
// reported and the offending invocation is skipped.
func (p *Parser) Parse(b Block) []*node.Node {
	bp := &blockParse{
		Parser:  p,
		block:   b,
		aliases: p.aliases.With(b.Aliases),
	}

	invocations := Invocations(b.Text, b.Position, p.reporter)

	ctx := &node.Context{}
	if b.Context != nil {
		*ctx = *b.Context
	}

	ctx.Doc = Prose(b.Text, invocations)

	var out []*node.Node

	for _, inv := range invocations {
		n := bp.invoke(inv)
		if n == nil {
			continue
		}

		node.Walk(n, func(c *node.Node) bool {
			if c.Context == nil {
				c.Context = ctx
			}

			return true
		})

		out = append(out, n)
	}

	return out
}

// TagName names a kind as written in documentation blocks.
func (p *Parser) TagName(kind string) string {
	return "@" + p.prefix + `\` + kind + "()"
}

// blockParse holds the state of one [Parser.Parse] call.
type blockParse struct {
	*Parser

	aliases *AliasTable
	block   Block
}

func (bp *blockParse) invoke(inv Invocation) *node.Node {
	if !inv.HasArgs {
		// Bare names that are not kinds are prose, e.g. an e-mail handle.
		if _, ok := bp.aliases.Resolve(inv.Name, bp.registry.Known); !ok {
			return nil
		}
	}

	args, err := newArgReader(bp, inv.Args, inv.Position).list(0)
	if err != nil {
		bp.fail(inv.Name, err)

		return nil
	}

	n, err := bp.build(inv.Name, args, inv.Position)
	if err != nil {
		bp.fail(inv.Name, err)

		return nil
	}

	return n
}

func (bp *blockParse) fail(tag string, err error) {
	var e *Error
	if errors.As(err, &e) {
		bp.reporter.Report(e.Diagnostic(tag))

		return
	}

	diag.Warnf(bp.reporter, diag.CodeMalformedTag, diag.Position{}, "Skipping @%s: %v", tag, err)
}

// build creates the node for a resolved invocation. It returns a nil node
// when the tag is reported and dropped.
func (bp *blockParse) build(name string, args []argument, pos diag.Position) (*node.Node, error) {
	id, ok := bp.aliases.Resolve(name, bp.registry.Known)
	if !ok {
		diag.Warnf(bp.reporter, diag.CodeUnknownTag, pos, "Unknown tag @%s", name)

		return nil, nil
	}

	spec, _ := bp.registry.Lookup(id)

	if dep := spec.Deprecated; dep != nil {
		msg := fmt.Sprintf("The annotation @%s() is deprecated. Please use %s instead.",
			name, bp.TagName(dep.Replacement))
		if dep.Message != "" {
			msg += " " + dep.Message
		}

		diag.Warnf(bp.reporter, diag.CodeDeprecatedTag, pos, "%s", msg)

		replacement, ok := bp.registry.Kind(dep.Replacement)
		if !ok {
			return nil, nil
		}

		spec = replacement
	}

	n := node.New(spec.Name, pos)
	for k, v := range spec.Fixed {
		n.Set(k, v)
	}

	seen := &argsSeen{names: map[string]bool{}, children: map[string][]*node.Node{}}

	for _, arg := range args {
		if _, skip := arg.value.(omitted); skip {
			continue
		}

		if arg.named {
			bp.named(spec, n, arg, seen)
		} else {
			bp.positional(spec, n, arg, seen)
		}
	}

	return n, nil
}

// argsSeen tracks the arguments already applied to one node, and the
// children each named child collection added.
type argsSeen struct {
	names    map[string]bool
	children map[string][]*node.Node
}

func (bp *blockParse) named(spec *node.KindSpec, n *node.Node, arg argument, seen *argsSeen) {
	if children := nodes(arg.value); children != nil && nestsUnder(spec, arg.name, children) {
		bp.markSeen(spec, arg, arg.name, seen)

		if earlier := seen.children[arg.name]; len(earlier) > 0 {
			n.RemoveChildren(func(c *node.Node) bool { return slices.Contains(earlier, c) })
		}

		seen.children[arg.name] = children
		n.Append(children...)

		return
	}

	if !spec.HasProperty(arg.name) {
		diag.Warnf(bp.reporter, diag.CodeUnknownProperty, arg.pos,
			"Unexpected property %q for %s", arg.name, bp.TagName(spec.Name))

		return
	}

	bp.markSeen(spec, arg, arg.name, seen)
	n.Set(arg.name, arg.value)
}

func (bp *blockParse) positional(spec *node.KindSpec, n *node.Node, arg argument, seen *argsSeen) {
	if children := nodes(arg.value); children != nil {
		for _, c := range children {
			if _, ok := spec.Nest(c.Kind); !ok {
				diag.Warnf(bp.reporter, diag.CodeUnexpectedChild, c.Position,
					"Unexpected %s inside %s", bp.TagName(c.Kind), bp.TagName(spec.Name))

				continue
			}

			n.Append(c)
		}

		return
	}

	if spec.DefaultProperty == "" {
		diag.Warnf(bp.reporter, diag.CodeUnknownProperty, arg.pos,
			"Unexpected positional value for %s", bp.TagName(spec.Name))

		return
	}

	bp.markSeen(spec, arg, spec.DefaultProperty, seen)
	n.Set(spec.DefaultProperty, arg.value)
}

func (bp *blockParse) markSeen(spec *node.KindSpec, arg argument, prop string, seen *argsSeen) {
	if seen.names[prop] {
		diag.Warnf(bp.reporter, diag.CodeDuplicateArgument, arg.pos,
			"Duplicate argument %q for %s, the last value wins", prop, bp.TagName(spec.Name))
	}

	seen.names[prop] = true
}

// constant resolves typ::name, or a bare name of the block's own package
// when typ is empty. typ::class yields the expanded identifier.
func (bp *blockParse) constant(typ, name string, pos diag.Position) (any, error) {
	written := typ + "::" + name

	var candidates []string

	switch {
	case typ == "":
		written = name

		if bp.block.Context != nil && bp.block.Context.Package != "" {
			candidates = append(candidates, bp.block.Context.Package)
		}

		candidates = append(candidates, "")

	case name == "class":
		return bp.aliases.ResolveType(typ), nil

	default:
		resolved := bp.aliases.ResolveType(typ)

		candidates = append(candidates, resolved)
		if resolved != typ {
			candidates = append(candidates, typ)
		}
	}

	lookup := ChainLookup{bp.block.Constants, bp.constants}

	for _, c := range candidates {
		if v, ok := lookup.Lookup(c, name); ok {
			return v, nil
		}
	}

	return nil, newError(ErrUnresolvedConstant, pos, "Couldn't find constant %s", written)
}

// nodes returns v as a list of nodes, or nil if v holds anything else.
func nodes(v any) []*node.Node {
	switch val := v.(type) {
	case *node.Node:
		return []*node.Node{val}
	case []any:
		if len(val) == 0 {
			return nil
		}

		out := make([]*node.Node, 0, len(val))

		for _, item := range val {
			n, ok := item.(*node.Node)
			if !ok {
				return nil
			}

			out = append(out, n)
		}

		return out
	}

	return nil
}

func nestsUnder(spec *node.KindSpec, property string, children []*node.Node) bool {
	for _, c := range children {
		nest, ok := spec.Nest(c.Kind)
		if !ok || nest.Property != property {
			return false
		}
	}

	return true
}

// Prose returns text without its tag invocations: argument-carrying tags are
// cut out, lines starting with a bare tag are dropped, and runs of blank lines
// collapse to one.
func Prose(text string, invocations []Invocation) string {
	var sb strings.Builder

	last := uint32(0)

	for _, inv := range invocations {
		if !inv.HasArgs {
			continue
		}

		sb.WriteString(text[last:inv.Span.Start])
		last = inv.Span.End
	}

	sb.WriteString(text[last:])

	var (
		lines []string
		blank bool
	)

	for line := range strings.SplitSeq(sb.String(), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "*"))

		if strings.HasPrefix(line, "@") {
			continue
		}

		if line == "" {
			if len(lines) > 0 {
				blank = true
			}

			continue
		}

		if blank {
			lines = append(lines, "")
			blank = false
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}
