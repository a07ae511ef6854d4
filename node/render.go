package node

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/goccy/go-yaml"
)

// Render converts the document root into an ordered tree following each
// kind's nesting rules. The result is stable for identical documents.
func (d *Document) Render() yaml.MapSlice {
	return d.render(d.Root, "")
}

// YAML renders the document as YAML.
func (d *Document) YAML() ([]byte, error) {
	out, err := yaml.MarshalWithOptions(d.Render(), yaml.Indent(2), yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}

	return out, nil
}

// JSON renders the document as indented JSON, preserving key order.
func (d *Document) JSON() ([]byte, error) {
	var buf bytes.Buffer

	err := writeJSON(&buf, d.Render())
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer

	err = json.Indent(&out, buf.Bytes(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("indent json: %w", err)
	}

	out.WriteByte('\n')

	return out.Bytes(), nil
}

type group struct {
	nests    map[string]Nest
	property string
	children []*Node
	single   bool
}

// render renders n, omitting the property used as its map key by the parent.
func (d *Document) render(n *Node, omit string) yaml.MapSlice {
	spec, _ := d.Registry.Kind(n.Kind)
	if spec == nil {
		spec = &KindSpec{Name: n.Kind}
	}

	groups := d.groups(spec, n)

	var (
		out  yaml.MapSlice
		done = make(map[string]bool)
	)

	emitProp := func(name string) {
		if done[name] || name == omit || name == "x" || slices.Contains(spec.Hidden, name) {
			return
		}

		v, ok := n.Props[name]
		if !ok {
			return
		}

		done[name] = true

		key := name
		if renamed, ok := spec.Rename[name]; ok {
			key = renamed
		}

		out = append(out, yaml.MapItem{Key: key, Value: d.renderValue(v)})
	}

	emitGroup := func(g *group) {
		if done[g.property] {
			return
		}

		done[g.property] = true
		out = append(out, yaml.MapItem{Key: g.property, Value: d.renderGroup(g)})
	}

	byProperty := make(map[string]*group, len(groups))
	for _, g := range groups {
		byProperty[g.property] = g
	}

	for _, name := range spec.Properties {
		if g, ok := byProperty[name]; ok && !n.Has(name) {
			emitGroup(g)

			continue
		}

		emitProp(name)
	}

	for _, g := range groups {
		emitGroup(g)
	}

	for _, name := range sortedKeys(n.Props) {
		emitProp(name)
	}

	if ext, ok := n.Props["x"].(map[string]any); ok {
		for _, k := range sortedKeys(ext) {
			out = append(out, yaml.MapItem{Key: "x-" + k, Value: d.renderValue(ext[k])})
		}
	}

	return out
}

// groups buckets the children of n by the property they render under, in order
// of first appearance. Children without a nesting rule are not rendered.
func (d *Document) groups(spec *KindSpec, n *Node) []*group {
	var (
		groups []*group
		index  = make(map[string]*group)
	)

	for _, c := range n.Children {
		nest, ok := spec.Nest(c.Kind)
		if !ok {
			continue
		}

		g, ok := index[nest.Property]
		if !ok {
			g = &group{property: nest.Property, nests: make(map[string]Nest), single: nest.Single}
			index[nest.Property] = g
			groups = append(groups, g)
		}

		g.nests[c.Kind] = nest
		g.children = append(g.children, c)
	}

	return groups
}

// renderGroup renders a child group as a keyed map, a single value, or a list.
// Children of one group may carry different rules (MediaType and JsonContent
// both render under "content").
func (d *Document) renderGroup(g *group) any {
	keyed := false

	for _, nest := range g.nests {
		if nest.Key != "" || nest.Fixed != "" {
			keyed = true
		}
	}

	switch {
	case keyed:
		var out yaml.MapSlice

		for _, c := range g.children {
			nest := g.nests[c.Kind]

			key := nest.Fixed
			omit := ""

			if key == "" {
				key = scalarKey(c.Props[nest.Key])
				omit = nest.Key
			}

			if key == "" {
				continue
			}

			out = append(out, yaml.MapItem{Key: key, Value: d.wrap(nest, d.render(c, omit))})
		}

		return out

	case g.single:
		c := g.children[0]

		return d.wrap(g.nests[c.Kind], d.render(c, ""))
	}

	out := make([]any, 0, len(g.children))
	for _, c := range g.children {
		out = append(out, d.wrap(g.nests[c.Kind], d.render(c, "")))
	}

	return out
}

func (d *Document) wrap(nest Nest, v yaml.MapSlice) any {
	if nest.Wrap == "" {
		return v
	}

	return yaml.MapSlice{{Key: nest.Wrap, Value: v}}
}

func (d *Document) renderValue(v any) any {
	switch val := v.(type) {
	case *Node:
		return d.render(val, "")
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			out = append(out, d.renderValue(item))
		}

		return out

	case map[string]any:
		var out yaml.MapSlice
		for _, k := range sortedKeys(val) {
			out = append(out, yaml.MapItem{Key: k, Value: d.renderValue(val[k])})
		}

		return out
	}

	return v
}

func scalarKey(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	}

	return fmt.Sprint(v)
}

func writeJSON(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case yaml.MapSlice:
		buf.WriteByte('{')

		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}

			err := writeJSON(buf, fmt.Sprint(item.Key))
			if err != nil {
				return err
			}

			buf.WriteByte(':')

			err = writeJSON(buf, item.Value)
			if err != nil {
				return err
			}
		}

		buf.WriteByte('}')

	case []any:
		buf.WriteByte('[')

		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}

			err := writeJSON(buf, item)
			if err != nil {
				return err
			}
		}

		buf.WriteByte(']')

	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}

		buf.Write(b)
	}

	return nil
}
