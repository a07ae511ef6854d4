package processors

import (
	"errors"
	"log/slog"
	"slices"

	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/node"
)

var (
	// ErrUnknownOption is returned by [Configurable.SetOption] for option
	// names the pass does not accept.
	ErrUnknownOption = errors.New("unknown option")
	// ErrInvalidOption is returned by [Configurable.SetOption] for values
	// of the wrong shape.
	ErrInvalidOption = errors.New("invalid option value")
)

// Pass transforms a [node.Document] in place.
type Pass interface {
	// Name identifies the pass in configuration keys.
	Name() string
	// Process runs the pass, reporting recoverable problems to r.
	Process(doc *node.Document, r diag.Reporter)
}

// Configurable is implemented by passes that accept options.
type Configurable interface {
	// SetOption applies an option value. It returns [ErrUnknownOption]
	// for names the pass does not accept and [ErrInvalidOption] for values
	// it cannot use.
	SetOption(name string, value any) error
}

// Pipeline runs an ordered list of passes. It may be changed between runs
// but is not safe for concurrent modification.
//
// Create instances with [NewPipeline] or [Default].
type Pipeline struct {
	logger *slog.Logger
	passes []Pass
}

// NewPipeline creates a [Pipeline] running passes in the given order.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: slices.Clone(passes), logger: slog.Default()}
}

// SetLogger sets the logger used for option warnings and pass progress.
// A nil logger restores [slog.Default].
func (p *Pipeline) SetLogger(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	p.logger = logger

	return p
}

// Default returns a [Pipeline] holding fresh instances of the built-in passes.
func Default() *Pipeline {
	return NewPipeline(
		NewDocBlockDescriptions(),
		NewMergeIntoDocument(),
		NewAugmentSchemas(),
		NewMergeIntoComponents(),
		NewBuildPaths(),
		NewOperationID(),
		NewAugmentTags(),
		NewPathFilter(),
		NewCleanUnmerged(),
		NewCleanUnusedComponents(),
	)
}

// Add appends passes to the end of the pipeline.
func (p *Pipeline) Add(passes ...Pass) *Pipeline {
	p.passes = append(p.passes, passes...)

	return p
}

// Insert places pass before the first pass matching before, or at the end
// when nothing matches.
func (p *Pipeline) Insert(pass Pass, before func(Pass) bool) *Pipeline {
	i := slices.IndexFunc(p.passes, before)
	if i < 0 {
		p.passes = append(p.passes, pass)

		return p
	}

	p.passes = slices.Insert(p.passes, i, pass)

	return p
}

// Remove deletes every pass matching match and returns how many were
// removed.
func (p *Pipeline) Remove(match func(Pass) bool) int {
	before := len(p.passes)
	p.passes = slices.DeleteFunc(p.passes, match)

	return before - len(p.passes)
}

// Set replaces all passes.
func (p *Pipeline) Set(passes ...Pass) *Pipeline {
	p.passes = slices.Clone(passes)

	return p
}

// Passes returns a copy of the pass list.
func (p *Pipeline) Passes() []Pass {
	return slices.Clone(p.passes)
}

// Walk calls fn for each pass in order.
func (p *Pipeline) Walk(fn func(Pass)) {
	for _, pass := range p.passes {
		fn(pass)
	}
}

// Named returns a matcher for [Pipeline.Insert] and [Pipeline.Remove].
func Named(name string) func(Pass) bool {
	return func(p Pass) bool {
		return p.Name() == name
	}
}

// Configure applies cfg to the passes that accept options. Sections for
// unknown passes and unknown options are ignored. Invalid values are logged
// as warnings.
func (p *Pipeline) Configure(cfg Config) {
	for _, pass := range p.passes {
		c, ok := pass.(Configurable)
		if !ok {
			continue
		}

		opts := cfg[pass.Name()]
		for _, name := range sortedKeys(opts) {
			err := c.SetOption(name, opts[name])

			switch {
			case err == nil:
			case errors.Is(err, ErrUnknownOption):
				p.logger.Debug("ignoring unknown option",
					slog.String("pass", pass.Name()),
					slog.String("option", name),
				)
			default:
				p.logger.Warn("invalid option value",
					slog.String("pass", pass.Name()),
					slog.String("option", name),
					slog.Any("error", err),
				)
			}
		}
	}
}

// Process runs every pass on doc in order.
func (p *Pipeline) Process(doc *node.Document, r diag.Reporter) {
	if r == nil {
		r = diag.Discard
	}

	for _, pass := range p.passes {
		p.logger.Debug("running pass", slog.String("pass", pass.Name()))
		pass.Process(doc, r)
	}
}
