package processors

import (
	"strings"

	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/node"
)

// DocBlockDescriptions fills summary and description from the prose of the
// documentation block a node was declared in. Only the first top-level node
// of each block is described, and only when it sets neither property.
type DocBlockDescriptions struct{}

// NewDocBlockDescriptions creates a [DocBlockDescriptions] pass.
func NewDocBlockDescriptions() *DocBlockDescriptions {
	return &DocBlockDescriptions{}
}

// Name implements [Pass].
func (*DocBlockDescriptions) Name() string { return "docBlockDescriptions" }

// Process implements [Pass].
func (*DocBlockDescriptions) Process(doc *node.Document, _ diag.Reporter) {
	seen := make(map[*node.Context]bool)

	for _, n := range doc.Unmerged {
		ctx := n.Context
		if ctx == nil || ctx.Doc == "" || seen[ctx] {
			continue
		}

		spec, ok := doc.Registry.Kind(n.Kind)
		if !ok || !spec.HasProperty("description") {
			continue
		}

		seen[ctx] = true

		if n.Has("summary") || n.Has("description") {
			continue
		}

		if !spec.HasProperty("summary") {
			n.Set("description", ctx.Doc)

			continue
		}

		summary, description := splitDoc(ctx.Doc)
		n.Set("summary", summary)

		if description != "" {
			n.Set("description", description)
		}
	}
}

// splitDoc returns the first paragraph, joined onto one line, and the rest.
func splitDoc(text string) (string, string) {
	first, rest, _ := strings.Cut(strings.TrimSpace(text), "\n\n")

	return strings.Join(strings.Fields(first), " "), strings.TrimSpace(rest)
}
