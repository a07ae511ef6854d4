package node

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrDuplicateKind is returned when a kind identifier is registered twice.
var ErrDuplicateKind = errors.New("duplicate kind")

// Nest describes how a child kind is placed under a parent when the document
// is rendered and merged.
type Nest struct {
	// Property is the parent property the child is rendered under.
	Property string
	// Key is the child property whose value keys the child in a map. Empty
	// means the children form a list (or a single value, see Single).
	Key string
	// Fixed is a constant map key, used instead of Key (e.g. JsonContent is
	// always rendered under content."application/json").
	Fixed string
	// Wrap nests the rendered child one level deeper under this property.
	Wrap string
	// Single marks a child that may appear at most once; children of the same
	// kind are identical for merging purposes.
	Single bool
}

// Deprecation marks a kind as superseded.
type Deprecation struct {
	// Replacement is the short name of the kind to build instead.
	Replacement string
	// Message is an optional hint appended to the warning.
	Message string
}

// KindSpec declares one node kind.
type KindSpec struct {
	// Fixed properties are applied to every node of this kind.
	Fixed map[string]any
	// Rename maps property names to rendered names (e.g. "ref" to "$ref").
	Rename map[string]string
	// Nested maps child kind names to their placement under this kind.
	Nested map[string]Nest
	// Deprecated is non-nil for superseded kinds.
	Deprecated *Deprecation
	// Name is the short kind name, e.g. "Parameter".
	Name string
	// DefaultProperty receives the positional value argument.
	DefaultProperty string
	// Properties lists the declared properties in render order. Names of
	// nest properties may appear here to position child groups.
	Properties []string
	// Hidden properties are used for identity and keys but not rendered.
	Hidden []string
	// Key lists the identity properties used when merging.
	Key []string
}

// HasProperty reports whether name is a declared property of the kind.
// Vendor extensions ("x") are always allowed.
func (k *KindSpec) HasProperty(name string) bool {
	return name == "x" || slices.Contains(k.Properties, name)
}

// Nest returns the placement rule for the child kind.
func (k *KindSpec) Nest(child string) (Nest, bool) {
	n, ok := k.Nested[child]

	return n, ok
}

// Registry maps fully-qualified kind identifiers to their [KindSpec].
// It is populated before generation starts and only read afterwards.
//
// Create instances with [NewRegistry].
type Registry struct {
	byID   map[string]*KindSpec
	byName map[string]*KindSpec
	ids    map[string]string
}

// NewRegistry creates an empty [Registry].
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*KindSpec),
		byName: make(map[string]*KindSpec),
		ids:    make(map[string]string),
	}
}

// Register adds specs under the namespace. The identifier of each spec is
// namespace + `\` + spec.Name.
func (r *Registry) Register(namespace string, specs ...*KindSpec) error {
	namespace = strings.Trim(namespace, `\`)

	for _, spec := range specs {
		id := spec.Name
		if namespace != "" {
			id = namespace + `\` + spec.Name
		}

		if _, exists := r.byID[id]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateKind, id)
		}

		r.byID[id] = spec
		if _, exists := r.byName[spec.Name]; !exists {
			r.byName[spec.Name] = spec
			r.ids[spec.Name] = id
		}
	}

	return nil
}

// Lookup returns the kind registered under the fully-qualified identifier.
func (r *Registry) Lookup(id string) (*KindSpec, bool) {
	spec, ok := r.byID[strings.TrimPrefix(id, `\`)]

	return spec, ok
}

// Known reports whether id is registered.
func (r *Registry) Known(id string) bool {
	_, ok := r.Lookup(id)

	return ok
}

// Kind returns the kind for a short kind name, as stored in [Node.Kind].
func (r *Registry) Kind(name string) (*KindSpec, bool) {
	spec, ok := r.byName[name]

	return spec, ok
}

// ID returns the fully-qualified identifier of a short kind name.
func (r *Registry) ID(name string) string {
	if id, ok := r.ids[name]; ok {
		return id
	}

	return name
}

// Identical reports whether a and b denote the same document entity when
// nested under parent: same kind and, for keyed kinds, equal identity
// properties (at least one of which is set). Kinds nested as single values
// are identical by kind alone.
func (r *Registry) Identical(parent string, a, b *Node) bool {
	if a.Kind != b.Kind {
		return false
	}

	if ps, ok := r.Kind(parent); ok {
		if nest, ok := ps.Nest(a.Kind); ok && nest.Single {
			return true
		}
	}

	spec, ok := r.Kind(a.Kind)
	if !ok || len(spec.Key) == 0 {
		return false
	}

	set := false

	for _, key := range spec.Key {
		va, oka := a.Props[key]
		vb, okb := b.Props[key]

		if oka != okb || (oka && !Equal(va, vb)) {
			return false
		}

		set = set || oka
	}

	return set
}

// Parents returns the short names of the kinds that accept child as a
// nested kind, sorted. Deprecated kinds are skipped.
func (r *Registry) Parents(child string) []string {
	var out []string

	for _, name := range sortedKeys(r.byName) {
		spec := r.byName[name]
		if spec.Deprecated != nil {
			continue
		}

		if _, ok := spec.Nest(child); ok {
			out = append(out, name)
		}
	}

	return out
}
