package processors

import (
	"crypto/md5" //nolint:gosec // Identifiers, not security.
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"go.jacobcolvin.com/oagen/annotations"
	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/node"
	"go.jacobcolvin.com/oagen/sources"
)

// OperationID assigns an operationId to every operation lacking one.
//
// With the "hash" option (the default) the identifier is the MD5 hex digest
// of the method, path and declaring symbol or source position. Otherwise the
// documented function name is used, falling back to the method followed by
// the camel-cased path, e.g. "getPetsId" for GET /pets/{id}.
type OperationID struct {
	hash bool
}

// NewOperationID creates an [OperationID] pass that hashes identifiers.
func NewOperationID() *OperationID {
	return &OperationID{hash: true}
}

// Name implements [Pass].
func (*OperationID) Name() string { return "operationId" }

// Hash reports whether identifiers are hashed.
func (p *OperationID) Hash() bool { return p.hash }

// SetOption implements [Configurable].
func (p *OperationID) SetOption(name string, value any) error {
	if name != "hash" {
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}

	b, err := cast.ToBoolE(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	p.hash = b

	return nil
}

// Process implements [Pass].
func (p *OperationID) Process(doc *node.Document, _ diag.Reporter) {
	used := make(map[string]bool)

	operations(doc, func(_ *node.Node, op *node.Node) {
		if id := op.StringProp("operationId"); id != "" {
			used[id] = true
		}
	})

	title := cases.Title(language.Und, cases.NoLower)

	operations(doc, func(item, op *node.Node) {
		if op.Has("operationId") {
			return
		}

		path := item.StringProp("path")
		method := annotations.Method(op.Kind)

		var id string

		if p.hash {
			id = hashID(method, path, source(op))
		} else {
			id = readableID(title, method, path, op)
			if used[id] {
				id = method + camelPath(title, path)
			}
		}

		used[id] = true
		op.Set("operationId", id)
	})
}

func hashID(method, path, src string) string {
	sum := md5.Sum([]byte(strings.ToUpper(method) + "::" + path + "::" + src)) //nolint:gosec // Identifiers, not security.

	return hex.EncodeToString(sum[:])
}

func readableID(title cases.Caser, method, path string, op *node.Node) string {
	if ctx := op.Context; ctx != nil && ctx.Decl == sources.DeclFunc && ctx.Symbol != "" {
		return ctx.Symbol
	}

	return method + camelPath(title, path)
}

func camelPath(title cases.Caser, path string) string {
	var sb strings.Builder

	for _, part := range strings.FieldsFunc(path, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		sb.WriteString(title.String(part))
	}

	return sb.String()
}

// source identifies where an operation was declared.
func source(op *node.Node) string {
	if ctx := op.Context; ctx != nil && ctx.Symbol != "" {
		return ctx.Symbol
	}

	return op.Position.String()
}

// operations calls fn for each operation nested in a root path item.
func operations(doc *node.Document, fn func(item, op *node.Node)) {
	for _, item := range doc.Root.ChildrenOf(annotations.PathItem) {
		for _, op := range item.Children {
			if annotations.IsOperation(op.Kind) {
				fn(item, op)
			}
		}
	}
}
