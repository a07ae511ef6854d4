package processors

import (
	"go.jacobcolvin.com/oagen/annotations"
	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/node"
	"go.jacobcolvin.com/oagen/sources"
)

// AugmentSchemas names schemas after the types they document and attaches
// properties documented on struct fields to the schema of their type.
type AugmentSchemas struct{}

// NewAugmentSchemas creates an [AugmentSchemas] pass.
func NewAugmentSchemas() *AugmentSchemas {
	return &AugmentSchemas{}
}

// Name implements [Pass].
func (*AugmentSchemas) Name() string { return "augmentSchemas" }

// Process implements [Pass].
func (*AugmentSchemas) Process(doc *node.Document, r diag.Reporter) {
	schemas := make(map[string]*node.Node)

	var all []*node.Node

	if c := componentsOf(doc, false); c != nil {
		all = append(all, c.ChildrenOf(annotations.Schema)...)
	}

	for _, n := range doc.Unmerged {
		if n.Kind == annotations.Schema {
			all = append(all, n)
		}
	}

	for _, s := range all {
		ctx := s.Context
		if ctx != nil && ctx.Decl == sources.DeclType && ctx.Symbol != "" {
			if !s.Has("schema") {
				s.Set("schema", ctx.Symbol)
			}

			if _, ok := schemas[ctx.Symbol]; !ok {
				schemas[ctx.Symbol] = s
			}
		}

		if name := s.StringProp("schema"); name != "" {
			if _, ok := schemas[name]; !ok {
				schemas[name] = s
			}
		}
	}

	props := doc.TakeUnmerged(func(n *node.Node) bool {
		ctx := n.Context

		return n.Kind == annotations.Property && ctx != nil && ctx.Decl == sources.DeclField &&
			schemas[ctx.Parent] != nil
	})

	for _, p := range props {
		if !p.Has("property") && p.Context.Field != "" {
			p.Set("property", p.Context.Field)
		}

		place(doc, schemas[p.Context.Parent], p, r)
	}

	for _, s := range all {
		if len(s.ChildrenOf(annotations.Property)) > 0 && !s.Has("type") && !s.Has("ref") {
			s.Set("type", "object")
		}
	}
}
