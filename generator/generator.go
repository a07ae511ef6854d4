package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go.jacobcolvin.com/oagen/annotations"
	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/docblock"
	"go.jacobcolvin.com/oagen/node"
	"go.jacobcolvin.com/oagen/processors"
	"go.jacobcolvin.com/oagen/sources"
)

// Sentinel errors returned by the generator.
var (
	ErrStrict            = errors.New("strict mode")
	ErrNothingResolvable = errors.New("nothing resolvable")
	ErrInvalidOption     = errors.New("invalid option")
	ErrReadInput         = errors.New("read input")
	ErrWriteOutput       = errors.New("write output")
)

// constantCacheSize bounds the per-run memo of constant lookups.
const constantCacheSize = 1024

// Generator builds an OpenAPI document from annotated sources.
//
// Aliases, namespaces, pass configuration and the pipeline persist across
// calls to [Generator.Generate]; everything else is per call. Do not change
// a Generator while Generate runs.
//
// Create instances with [NewGenerator].
type Generator struct {
	logger    *slog.Logger
	registry  *node.Registry
	aliases   *docblock.AliasTable
	pipeline  *processors.Pipeline
	config    processors.Config
	constants docblock.ConstantLookup
	cache     *sources.Cache
	version   string
	include   []string
	exclude   []string
	jobs      int
	strict    bool
}

// Option configures a Generator.
type Option func(*Generator)

// NewGenerator creates a Generator with the given options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		logger:   slog.Default(),
		registry: annotations.NewRegistry(),
		aliases:  docblock.NewAliasTable(),
		pipeline: processors.Default(),
		config:   processors.Config{},
		jobs:     runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// WithLogger sets the logger diagnostics are written to.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithStrict makes the first fatal diagnostic abort generation.
func WithStrict(strict bool) Option {
	return func(g *Generator) {
		g.strict = strict
	}
}

// WithConstants sets the lookup used for Type::NAME references that the
// scanned sources do not define.
func WithConstants(c docblock.ConstantLookup) Option {
	return func(g *Generator) {
		g.constants = c
	}
}

// WithJobs sets how many files are parsed concurrently.
func WithJobs(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.jobs = n
		}
	}
}

// WithCache reuses extracted blocks across runs.
func WithCache(c *sources.Cache) Option {
	return func(g *Generator) {
		g.cache = c
	}
}

// WithVersion overrides the OpenAPI version of the document.
func WithVersion(version string) Option {
	return func(g *Generator) {
		g.version = version
	}
}

// WithRegistry replaces the registry of known kinds.
func WithRegistry(reg *node.Registry) Option {
	return func(g *Generator) {
		g.registry = reg
	}
}

// WithPipeline replaces the processor pipeline.
func WithPipeline(p *processors.Pipeline) Option {
	return func(g *Generator) {
		g.pipeline = p
	}
}

// WithAliases adds tag aliases, mapping short names to namespaces.
func WithAliases(aliases map[string]string) Option {
	return func(g *Generator) {
		for name, fq := range aliases {
			g.aliases.AddAlias(name, fq)
		}
	}
}

// WithNamespaces appends namespaces searched for bare tag names.
func WithNamespaces(namespaces ...string) Option {
	return func(g *Generator) {
		for _, ns := range namespaces {
			g.aliases.AddNamespace(ns)
		}
	}
}

// WithPattern sets the file name patterns included when a directory is
// walked. The default is "*.go".
func WithPattern(patterns ...string) Option {
	return func(g *Generator) {
		if len(patterns) > 0 {
			g.include = patterns
		}
	}
}

// WithExclude adds file and directory patterns skipped when a directory is
// walked.
func WithExclude(patterns ...string) Option {
	return func(g *Generator) {
		g.exclude = append(g.exclude, patterns...)
	}
}

// AddAlias maps a short tag prefix to a namespace. A later call with the
// same name wins.
func (g *Generator) AddAlias(name, fq string) {
	g.aliases.AddAlias(name, fq)
}

// AddNamespace appends a namespace to the search order for bare tag names.
func (g *Generator) AddNamespace(prefix string) {
	g.aliases.AddNamespace(prefix)
}

// Aliases returns a copy of the alias mapping.
func (g *Generator) Aliases() map[string]string {
	return g.aliases.Aliases()
}

// Namespaces returns the namespaces in search order.
func (g *Generator) Namespaces() []string {
	return g.aliases.Namespaces()
}

// SetConfig merges pass configuration in any form accepted by
// [processors.NormalizeConfig] and applies it to the pipeline.
func (g *Generator) SetConfig(cfg any) error {
	normalized, err := processors.NormalizeConfig(cfg)
	if err != nil {
		return err
	}

	g.config.Merge(normalized)
	g.pipeline.SetLogger(g.logger).Configure(normalized)

	return nil
}

// Config returns a copy of the stored pass configuration.
func (g *Generator) Config() processors.Config {
	return processors.Config{}.Merge(g.config)
}

// Pipeline returns the live pipeline. Changes affect later runs.
func (g *Generator) Pipeline() *processors.Pipeline {
	return g.pipeline
}

// SetPipeline replaces the pipeline. Stored configuration is applied to it
// on the next run.
func (g *Generator) SetPipeline(p *processors.Pipeline) {
	g.pipeline = p
}

// Registry returns the registry of known kinds.
func (g *Generator) Registry() *node.Registry {
	return g.registry
}

// Parser returns a block parser using the generator's registry, aliases and
// constants, reporting to r.
func (g *Generator) Parser(r diag.Reporter) *docblock.Parser {
	return g.parser(r, g.constants)
}

func (g *Generator) parser(r diag.Reporter, constants docblock.ConstantLookup) *docblock.Parser {
	opts := []docblock.ParserOption{
		docblock.WithAliases(g.aliases),
		docblock.WithReporter(r),
	}

	if constants != nil {
		opts = append(opts, docblock.WithConstants(constants))
	}

	return docblock.NewParser(g.registry, opts...)
}

// Result is the outcome of one [Generator.Generate] call.
type Result struct {
	Document    *node.Document
	RunID       string
	Files       []string
	Diagnostics []diag.Diagnostic
}

// HasErrors reports whether any diagnostic has error severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SevError {
			return true
		}
	}

	return false
}

// Marshal renders the document in the given format.
func (r *Result) Marshal(format Format) ([]byte, error) {
	var (
		out []byte
		err error
	)

	switch format {
	case FormatJSON:
		out, err = r.Document.JSON()
	case FormatYAML:
		out, err = r.Document.YAML()
	default:
		return nil, fmt.Errorf("%w: format %q", ErrInvalidOption, format)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return out, nil
}

type parsedFile struct {
	file  *sources.File
	nodes []*node.Node
	diags diag.List
}

// Generate walks sources, parses every documentation block, merges the
// nodes into one document and runs the pipeline. Sources are any mix of
// files, directories, globs and path collections, see [sources.Walker.Expand].
//
// Recoverable problems become diagnostics on the [Result]. In strict mode
// the first fatal diagnostic is returned as an [ErrStrict] error instead,
// and an [ErrNothingResolvable] error is returned when sources were given
// but no node could be built from them.
func (g *Generator) Generate(srcs ...any) (*Result, error) {
	runID := uuid.New().String()
	logger := g.logger.With(slog.String("run", runID))
	bag := diag.NewBag(logger)

	walker := g.walker()
	files := walker.Expand(bag, srcs...)

	logger.Debug("expanded sources", slog.Int("files", len(files)))

	parsed := g.extract(files)

	constants, err := g.runConstants(parsed)
	if err != nil {
		return nil, err
	}

	g.parse(parsed, constants)

	doc := node.NewDocument(g.registry, annotations.OpenAPI)
	count := 0
	merged := false

	// Info declarations in source order, before merging folds them together.
	var infos []*node.Node

	for _, pf := range parsed {
		bag.Merge(pf.diags)

		for _, n := range pf.nodes {
			count++

			if n.Kind == annotations.Info {
				infos = append(infos, n)
			} else if n.Kind == annotations.OpenAPI {
				infos = append(infos, n.ChildrenOf(annotations.Info)...)
			}

			if n.Kind != annotations.OpenAPI {
				doc.Unmerged = append(doc.Unmerged, n)

				continue
			}

			if !merged {
				// The first document declaration chooses the version.
				if v, ok := n.Get("openapi"); ok {
					doc.Root.Set("openapi", v)
				}

				merged = true
			}

			for _, name := range doc.Merge(doc.Root, n) {
				diag.Warnf(bag, diag.CodeMergeConflict, n.Position,
					"Conflicting value for %q in %s, keeping the first", name, annotations.TagName(n.Kind))
			}
		}
	}

	if g.strict {
		if fatal, ok := bag.FirstFatal(); ok {
			return nil, fmt.Errorf("%w: %w", ErrStrict, fatal)
		}

		if len(srcs) > 0 && count == 0 {
			return nil, fmt.Errorf("%w: %d files", ErrNothingResolvable, len(files))
		}
	}

	if g.version != "" {
		doc.Root.Set("openapi", g.version)
	}

	logger.Debug("running pipeline", slog.Int("nodes", count))

	g.pipeline.SetLogger(logger)
	g.pipeline.Configure(g.config)
	g.pipeline.Process(doc, bag)

	validate(doc, infos, bag)

	return &Result{
		Document:    doc,
		RunID:       runID,
		Files:       files,
		Diagnostics: bag.Items(),
	}, nil
}

func (g *Generator) walker() *sources.Walker {
	var opts []sources.WalkerOption
	if len(g.include) > 0 {
		opts = append(opts, sources.WithInclude(g.include...))
	}

	if len(g.exclude) > 0 {
		opts = append(opts, sources.WithExclude(g.exclude...))
	}

	return sources.NewWalker(opts...)
}

// extract reads and extracts every file concurrently. Results keep the
// order of files.
func (g *Generator) extract(files []string) []*parsedFile {
	parsed := make([]*parsedFile, len(files))

	var eg errgroup.Group
	eg.SetLimit(g.jobs)

	for i, path := range files {
		eg.Go(func() error {
			pf := &parsedFile{}
			parsed[i] = pf

			src, err := os.ReadFile(path)
			if err != nil {
				diag.Warnf(&pf.diags, diag.CodeReadFailed, diag.Position{File: path},
					"Skipping unreadable source %s: %v", path, err)

				return nil
			}

			f, err := g.cache.Extract(path, src)
			if err != nil {
				diag.Warnf(&pf.diags, diag.CodeReadFailed, diag.Position{File: path},
					"Skipping unparsable source %s: %v", path, err)

				return nil
			}

			pf.file = f

			return nil
		})
	}

	_ = eg.Wait()

	return parsed
}

// runConstants collects the literal constants of every scanned package
// ahead of the user lookup, memoised for the run.
func (g *Generator) runConstants(parsed []*parsedFile) (docblock.ConstantLookup, error) {
	pkg := docblock.Constants{}

	for _, pf := range parsed {
		if pf.file == nil || pf.file.Package == "" {
			continue
		}

		for _, c := range pf.file.Constants {
			if _, ok := pkg.Lookup(pf.file.Package, c.Name); !ok {
				pkg.Set(pf.file.Package, c.Name, c.Value())
			}
		}
	}

	cached, err := docblock.NewCachedLookup(docblock.ChainLookup{pkg, g.constants}, constantCacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	return cached, nil
}

// parse builds the nodes of every extracted file concurrently, each file
// reporting into its own list.
func (g *Generator) parse(parsed []*parsedFile, constants docblock.ConstantLookup) {
	var eg errgroup.Group
	eg.SetLimit(g.jobs)

	for _, pf := range parsed {
		if pf.file == nil {
			continue
		}

		eg.Go(func() error {
			p := g.parser(&pf.diags, constants)

			for _, b := range pf.file.DocBlocks() {
				pf.nodes = append(pf.nodes, p.Parse(b)...)
			}

			return nil
		})
	}

	_ = eg.Wait()
}

// validate reports missing required root nodes, and Info declared more
// than once. Merging folds repeated Info declarations into the first, so
// infos holds them as they were parsed.
func validate(doc *node.Document, infos []*node.Node, r diag.Reporter) {
	required := []string{annotations.Info, annotations.PathItem}

	for _, kind := range required {
		found := doc.Root.ChildrenOf(kind)
		if len(found) == 0 {
			diag.Errorf(r, diag.CodeMissingRequired, diag.Position{}, "Required %s not found", annotations.TagName(kind))
		}
	}

	if len(infos) > 1 {
		diag.Warnf(r, diag.CodeMultipleRequired, infos[1].Position,
			"Multiple %s found, merged into the first", annotations.TagName(annotations.Info))
	}
}
