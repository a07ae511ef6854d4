package node

import (
	"fmt"
	"reflect"
	"slices"

	"go.jacobcolvin.com/oagen/diag"
)

// Document is the root of a generated OpenAPI document plus the top-level nodes
// that no pass has placed yet.
type Document struct {
	Root     *Node
	Registry *Registry
	Unmerged []*Node
}

// NewDocument creates a [Document] whose root is an empty node of rootKind.
func NewDocument(reg *Registry, rootKind string) *Document {
	root := New(rootKind, diag.Position{})

	if spec, ok := reg.Kind(rootKind); ok {
		for k, v := range spec.Fixed {
			root.Set(k, v)
		}
	}

	return &Document{Root: root, Registry: reg}
}

// TakeUnmerged removes and returns the unmerged nodes for which match returns
// true, preserving order.
func (d *Document) TakeUnmerged(match func(*Node) bool) []*Node {
	var taken, kept []*Node

	for _, n := range d.Unmerged {
		if match(n) {
			taken = append(taken, n)
		} else {
			kept = append(kept, n)
		}
	}

	d.Unmerged = kept

	return taken
}

// Place nests child under parent, merging it into an identical existing child
// when there is one. It returns the conflicting property names, if any.
func (d *Document) Place(parent, child *Node) []string {
	for _, existing := range parent.Children {
		if d.Registry.Identical(parent.Kind, existing, child) {
			return d.Merge(existing, child)
		}
	}

	parent.Append(child)

	return nil
}

// Merge folds src into dst. Properties missing on dst are copied; differing
// values keep dst's and are returned as conflicts. Children are placed with
// [Document.Place], so identical children merge recursively.
func (d *Document) Merge(dst, src *Node) []string {
	var conflicts []string

	for _, key := range sortedKeys(src.Props) {
		v := src.Props[key]

		cur, ok := dst.Props[key]
		if !ok {
			dst.Set(key, v)

			continue
		}

		if !Equal(cur, v) {
			conflicts = append(conflicts, key)
		}
	}

	for _, c := range src.Children {
		for _, name := range d.Place(dst, c) {
			conflicts = append(conflicts, c.Kind+"."+name)
		}
	}

	if dst.Context == nil {
		dst.Context = src.Context
	}

	return conflicts
}

// Equal compares two property values.
func Equal(a, b any) bool {
	switch av := a.(type) {
	case *Node:
		bv, ok := b.(*Node)

		return ok && av.Kind == bv.Kind && reflect.DeepEqual(av.Props, bv.Props) &&
			slices.EqualFunc(av.Children, bv.Children, func(x, y *Node) bool { return Equal(x, y) })
	case []any:
		bv, ok := b.([]any)

		return ok && slices.EqualFunc(av, bv, Equal)
	case int64, float64:
		return numberString(a) == numberString(b)
	}

	return reflect.DeepEqual(a, b)
}

func numberString(v any) string {
	switch n := v.(type) {
	case int64:
		return fmt.Sprintf("%d", n)
	case float64:
		if n == float64(int64(n)) {
			return fmt.Sprintf("%d", int64(n))
		}

		return fmt.Sprintf("%g", n)
	}

	return fmt.Sprintf("%T:%v", v, v)
}
