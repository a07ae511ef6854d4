package processors

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"go.jacobcolvin.com/oagen/annotations"
	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/node"
)

// CleanUnmerged reports and discards the nodes no earlier pass placed.
type CleanUnmerged struct{}

// NewCleanUnmerged creates a [CleanUnmerged] pass.
func NewCleanUnmerged() *CleanUnmerged {
	return &CleanUnmerged{}
}

// Name implements [Pass].
func (*CleanUnmerged) Name() string { return "cleanUnmerged" }

// Process implements [Pass].
func (*CleanUnmerged) Process(doc *node.Document, r diag.Reporter) {
	for _, n := range doc.Unmerged {
		parents := doc.Registry.Parents(n.Kind)
		if len(parents) == 0 {
			diag.Warnf(r, diag.CodeUnmerged, n.Position, "Unexpected %s, it has no place in the document",
				annotations.TagName(n.Kind))

			continue
		}

		names := make([]string, 0, len(parents))
		for _, p := range parents {
			names = append(names, annotations.TagName(p))
		}

		diag.Warnf(r, diag.CodeUnmerged, n.Position, "Unexpected %s, expected to be inside %s",
			annotations.TagName(n.Kind), strings.Join(names, ", "))
	}

	doc.Unmerged = nil
}

// CleanUnusedComponents removes components that no "$ref" points to. It is
// disabled unless the "enabled" option is set. Security schemes are kept
// since requirements name them directly.
type CleanUnusedComponents struct {
	enabled bool
}

// NewCleanUnusedComponents creates a disabled [CleanUnusedComponents] pass.
func NewCleanUnusedComponents() *CleanUnusedComponents {
	return &CleanUnusedComponents{}
}

// Name implements [Pass].
func (*CleanUnusedComponents) Name() string { return "cleanUnusedComponents" }

// Enabled reports whether the pass removes anything.
func (p *CleanUnusedComponents) Enabled() bool { return p.enabled }

// SetOption implements [Configurable].
func (p *CleanUnusedComponents) SetOption(name string, value any) error {
	if name != "enabled" {
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}

	b, err := cast.ToBoolE(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	p.enabled = b

	return nil
}

// Process implements [Pass].
func (p *CleanUnusedComponents) Process(doc *node.Document, _ diag.Reporter) {
	components := componentsOf(doc, false)
	if !p.enabled || components == nil {
		return
	}

	// Removing a component can orphan the ones it referenced.
	for {
		refs := references(doc.Root)

		removed := components.RemoveChildren(func(c *node.Node) bool {
			key, group, ok := annotations.Component(c.Kind)
			if !ok || c.Kind == annotations.SecurityScheme {
				return false
			}

			return !refs["#/components/"+group+"/"+c.StringProp(key)]
		})
		if removed == 0 {
			break
		}
	}

	if len(components.Children) == 0 && len(components.Props) == 0 {
		doc.Root.RemoveChildren(func(n *node.Node) bool { return n == components })
	}
}

// references collects every string value below root that points into
// components.
func references(root *node.Node) map[string]bool {
	refs := make(map[string]bool)

	var collect func(v any)

	collect = func(v any) {
		switch val := v.(type) {
		case string:
			if strings.HasPrefix(val, "#/components/") {
				refs[val] = true
			}

		case []any:
			for _, item := range val {
				collect(item)
			}

		case map[string]any:
			for _, item := range val {
				collect(item)
			}
		}
	}

	node.Walk(root, func(n *node.Node) bool {
		for _, v := range n.Props {
			collect(v)
		}

		return true
	})

	return refs
}
