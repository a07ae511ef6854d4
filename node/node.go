// Package node holds the annotation tree: nodes, the kind registry and the
// document they are merged and rendered into.
package node

import (
	"slices"

	"go.jacobcolvin.com/oagen/diag"
)

// Context describes the declaration a documentation block is attached to.
// All nodes built from the same block share one Context.
type Context struct {
	// Package is the Go package name of the source file, if any.
	Package string
	// Symbol is the documented declaration (e.g. "Pet" or "Store.ListPets").
	Symbol string
	// Parent is the enclosing type of a documented struct field.
	Parent string
	// Decl is the declaration kind: type, func, field, const, var or file.
	Decl string
	// Field is the JSON name of a documented struct field.
	Field string
	// Doc is the prose of the block with all tags removed.
	Doc string
}

// Node is a typed unit of the output document.
//
// Props values are string, int64, float64, bool, nil, []any,
// map[string]any, or *Node.
type Node struct {
	Props    map[string]any
	Context  *Context
	Kind     string
	Children []*Node
	Position diag.Position
}

// New creates a [Node] of the given kind with an empty property map.
func New(kind string, pos diag.Position) *Node {
	return &Node{
		Kind:     kind,
		Props:    make(map[string]any),
		Position: pos,
	}
}

// Get returns the named property.
func (n *Node) Get(name string) (any, bool) {
	v, ok := n.Props[name]

	return v, ok
}

// StringProp returns the named property if it is a string.
func (n *Node) StringProp(name string) string {
	s, _ := n.Props[name].(string)

	return s
}

// Has reports whether the named property is set.
func (n *Node) Has(name string) bool {
	_, ok := n.Props[name]

	return ok
}

// Set assigns the named property.
func (n *Node) Set(name string, value any) {
	if n.Props == nil {
		n.Props = make(map[string]any)
	}

	n.Props[name] = value
}

// Append adds children in order.
func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// RemoveChildren deletes every direct child for which match returns true and
// returns the number removed.
func (n *Node) RemoveChildren(match func(*Node) bool) int {
	before := len(n.Children)
	n.Children = slices.DeleteFunc(n.Children, match)

	return before - len(n.Children)
}

// ChildrenOf returns the direct children of the given kinds, in order.
func (n *Node) ChildrenOf(kinds ...string) []*Node {
	var out []*Node

	for _, c := range n.Children {
		if slices.Contains(kinds, c.Kind) {
			out = append(out, c)
		}
	}

	return out
}

// FirstChild returns the first direct child of the given kind.
func (n *Node) FirstChild(kind string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}

	return nil
}

// Doc returns the prose of the block the node was built from.
func (n *Node) Doc() string {
	if n.Context == nil {
		return ""
	}

	return n.Context.Doc
}

// Walk calls fn for n and every node below it, depth first in document order.
// Nodes stored in properties are visited after the children. Returning false
// from fn skips the node's descendants.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}

	for _, c := range n.Children {
		Walk(c, fn)
	}

	for _, key := range sortedKeys(n.Props) {
		walkValue(n.Props[key], fn)
	}
}

func walkValue(v any, fn func(*Node) bool) {
	switch val := v.(type) {
	case *Node:
		Walk(val, fn)
	case []any:
		for _, item := range val {
			walkValue(item, fn)
		}

	case map[string]any:
		for _, key := range sortedKeys(val) {
			walkValue(val[key], fn)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}
