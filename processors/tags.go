package processors

import (
	"github.com/spf13/cast"

	"go.jacobcolvin.com/oagen/annotations"
	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/node"
)

// AugmentTags declares every tag used by an operation that has no root Tag.
type AugmentTags struct{}

// NewAugmentTags creates an [AugmentTags] pass.
func NewAugmentTags() *AugmentTags {
	return &AugmentTags{}
}

// Name implements [Pass].
func (*AugmentTags) Name() string { return "augmentTags" }

// Process implements [Pass].
func (*AugmentTags) Process(doc *node.Document, _ diag.Reporter) {
	declared := make(map[string]bool)
	for _, t := range doc.Root.ChildrenOf(annotations.Tag) {
		declared[t.StringProp("name")] = true
	}

	operations(doc, func(_ *node.Node, op *node.Node) {
		for _, name := range operationTags(op) {
			if name == "" || declared[name] {
				continue
			}

			declared[name] = true

			tag := node.New(annotations.Tag, op.Position)
			tag.Set("name", name)
			doc.Root.Append(tag)
		}
	})
}

func operationTags(op *node.Node) []string {
	v, ok := op.Get("tags")
	if !ok {
		return nil
	}

	tags, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil
	}

	return tags
}
