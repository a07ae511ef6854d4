package processors

import (
	"go.jacobcolvin.com/oagen/annotations"
	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/node"
)

// MergeIntoDocument moves unmerged nodes the root accepts into the root.
type MergeIntoDocument struct{}

// NewMergeIntoDocument creates a [MergeIntoDocument] pass.
func NewMergeIntoDocument() *MergeIntoDocument {
	return &MergeIntoDocument{}
}

// Name implements [Pass].
func (*MergeIntoDocument) Name() string { return "mergeIntoDocument" }

// Process implements [Pass].
func (*MergeIntoDocument) Process(doc *node.Document, r diag.Reporter) {
	spec, ok := doc.Registry.Kind(doc.Root.Kind)
	if !ok {
		return
	}

	taken := doc.TakeUnmerged(func(n *node.Node) bool {
		_, ok := spec.Nest(n.Kind)

		return ok
	})

	for _, n := range taken {
		place(doc, doc.Root, n, r)
	}
}

// MergeIntoComponents moves reusable definitions into the root's
// Components, creating it on demand.
type MergeIntoComponents struct{}

// NewMergeIntoComponents creates a [MergeIntoComponents] pass.
func NewMergeIntoComponents() *MergeIntoComponents {
	return &MergeIntoComponents{}
}

// Name implements [Pass].
func (*MergeIntoComponents) Name() string { return "mergeIntoComponents" }

// Process implements [Pass].
func (*MergeIntoComponents) Process(doc *node.Document, r diag.Reporter) {
	taken := doc.TakeUnmerged(func(n *node.Node) bool {
		_, _, ok := annotations.Component(n.Kind)

		return ok
	})

	var components *node.Node

	for _, n := range taken {
		key, _, _ := annotations.Component(n.Kind)
		if !n.Has(key) {
			diag.Warnf(r, diag.CodeMissingKey, n.Position,
				"%s requires a %q value to be stored in %s",
				annotations.TagName(n.Kind), key, annotations.TagName(annotations.Components))

			continue
		}

		if components == nil {
			components = componentsOf(doc, true)
		}

		place(doc, components, n, r)
	}
}

// BuildPaths nests operations under the path item of their path.
type BuildPaths struct{}

// NewBuildPaths creates a [BuildPaths] pass.
func NewBuildPaths() *BuildPaths {
	return &BuildPaths{}
}

// Name implements [Pass].
func (*BuildPaths) Name() string { return "buildPaths" }

// Process implements [Pass].
func (*BuildPaths) Process(doc *node.Document, r diag.Reporter) {
	root := doc.Root

	// Collapse path items declared more than once.
	items := make(map[string]*node.Node)
	root.RemoveChildren(func(n *node.Node) bool {
		path := n.StringProp("path")
		if n.Kind != annotations.PathItem || path == "" {
			return false
		}

		first, ok := items[path]
		if !ok {
			items[path] = n

			return false
		}

		reportConflicts(r, n, doc.Merge(first, n))

		return true
	})

	ops := doc.TakeUnmerged(func(n *node.Node) bool {
		return annotations.IsOperation(n.Kind) && n.StringProp("path") != ""
	})

	for _, op := range ops {
		path := op.StringProp("path")

		item, ok := items[path]
		if !ok {
			item = node.New(annotations.PathItem, op.Position)
			item.Set("path", path)
			root.Append(item)
			items[path] = item
		}

		place(doc, item, op, r)
	}
}

func place(doc *node.Document, parent, child *node.Node, r diag.Reporter) {
	reportConflicts(r, child, doc.Place(parent, child))
}

func reportConflicts(r diag.Reporter, n *node.Node, conflicts []string) {
	for _, name := range conflicts {
		diag.Warnf(r, diag.CodeMergeConflict, n.Position,
			"Conflicting value for %q in %s, keeping the first", name, annotations.TagName(n.Kind))
	}
}

// componentsOf returns the root's Components node, creating it when create
// is set.
func componentsOf(doc *node.Document, create bool) *node.Node {
	c := doc.Root.FirstChild(annotations.Components)
	if c == nil && create {
		c = node.New(annotations.Components, diag.Position{})
		doc.Root.Append(c)
	}

	return c
}
