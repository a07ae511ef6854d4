package processors

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/cast"

	"go.jacobcolvin.com/oagen/annotations"
	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/node"
)

// PathFilter keeps only the operations matching its patterns. The "tags"
// option keeps operations with at least one matching tag; the "paths"
// option keeps operations whose path matches. Path items left without
// operations are removed. Without options the pass does nothing.
type PathFilter struct {
	tags  []*regexp.Regexp
	paths []*regexp.Regexp
}

// NewPathFilter creates a [PathFilter] pass.
func NewPathFilter() *PathFilter {
	return &PathFilter{}
}

// Name implements [Pass].
func (*PathFilter) Name() string { return "pathFilter" }

// SetOption implements [Configurable]. Values are a pattern, a
// comma-separated list of patterns, or a list. Patterns that fail to
// compile are dropped and reported in the returned error; the rest apply.
func (p *PathFilter) SetOption(name string, value any) error {
	var (
		res []*regexp.Regexp
		err error
	)

	switch name {
	case "tags":
		res, err = compile(value)
		p.tags = res
	case "paths":
		res, err = compile(value)
		p.paths = res
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}

	return err
}

func compile(value any) ([]*regexp.Regexp, error) {
	var patterns []string

	if s, ok := value.(string); ok {
		patterns = strings.Split(s, ",")
	} else {
		var err error

		patterns, err = cast.ToStringSliceE(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
	}

	var (
		out  []*regexp.Regexp
		errs []error
	)

	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidOption, err))

			continue
		}

		out = append(out, re)
	}

	return out, errors.Join(errs...)
}

// Process implements [Pass].
func (p *PathFilter) Process(doc *node.Document, _ diag.Reporter) {
	if len(p.tags) == 0 && len(p.paths) == 0 {
		return
	}

	doc.Root.RemoveChildren(func(item *node.Node) bool {
		if item.Kind != annotations.PathItem {
			return false
		}

		path := item.StringProp("path")
		item.RemoveChildren(func(op *node.Node) bool {
			return annotations.IsOperation(op.Kind) && !p.keep(path, op)
		})

		return !slices.ContainsFunc(item.Children, func(c *node.Node) bool {
			return annotations.IsOperation(c.Kind)
		})
	})
}

func (p *PathFilter) keep(path string, op *node.Node) bool {
	if len(p.paths) > 0 && !matchAny(p.paths, path) {
		return false
	}

	if len(p.tags) == 0 {
		return true
	}

	return slices.ContainsFunc(operationTags(op), func(tag string) bool {
		return matchAny(p.tags, tag)
	})
}

func matchAny(res []*regexp.Regexp, s string) bool {
	return slices.ContainsFunc(res, func(re *regexp.Regexp) bool {
		return re.MatchString(s)
	})
}
