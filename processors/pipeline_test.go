package processors_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/oagen/annotations"
	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/node"
	"go.jacobcolvin.com/oagen/processors"
)

type recordPass struct {
	log  *[]string
	opts map[string]any
	name string
}

func (p *recordPass) Name() string { return p.name }

func (p *recordPass) Process(*node.Document, diag.Reporter) {
	*p.log = append(*p.log, p.name)
}

func (p *recordPass) SetOption(name string, value any) error {
	if name != "level" {
		return fmt.Errorf("%w: %s", processors.ErrUnknownOption, name)
	}

	p.opts[name] = value

	return nil
}

func names(p *processors.Pipeline) []string {
	var out []string

	p.Walk(func(pass processors.Pass) {
		out = append(out, pass.Name())
	})

	return out
}

func TestDefaultOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"docBlockDescriptions",
		"mergeIntoDocument",
		"augmentSchemas",
		"mergeIntoComponents",
		"buildPaths",
		"operationId",
		"augmentTags",
		"pathFilter",
		"cleanUnmerged",
		"cleanUnusedComponents",
	}, names(processors.Default()))
}

func TestPipelineEditing(t *testing.T) {
	t.Parallel()

	var log []string

	a := &recordPass{name: "a", log: &log}
	b := &recordPass{name: "b", log: &log}
	c := &recordPass{name: "c", log: &log}

	p := processors.NewPipeline(a, c)
	p.Insert(b, processors.Named("c"))
	assert.Equal(t, []string{"a", "b", "c"}, names(p))

	p.Insert(&recordPass{name: "d", log: &log}, processors.Named("missing"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(p))

	assert.Equal(t, 1, p.Remove(processors.Named("d")))
	assert.Equal(t, 0, p.Remove(processors.Named("d")))

	passes := p.Passes()
	passes[0] = c
	assert.Equal(t, []string{"a", "b", "c"}, names(p), "Passes returns a copy")

	doc := node.NewDocument(annotations.NewRegistry(), annotations.OpenAPI)
	p.Process(doc, nil)
	assert.Equal(t, []string{"a", "b", "c"}, log)

	p.Set(c).Add(a)
	assert.Equal(t, []string{"c", "a"}, names(p))
}

func TestPipelineConfigure(t *testing.T) {
	t.Parallel()

	var log []string

	pass := &recordPass{name: "rec", log: &log, opts: make(map[string]any)}
	opID := processors.NewOperationID()
	clean := processors.NewCleanUnusedComponents()

	p := processors.NewPipeline(pass, opID, clean, processors.NewAugmentTags())

	cfg, err := processors.NormalizeConfig([]string{
		"rec.level=3",
		"rec.unknown=1",
		"operationId.hash=false",
		"cleanUnusedComponents.enabled=true",
		"nosuchpass.x=1",
	})
	require.NoError(t, err)

	p.Configure(cfg)

	assert.Equal(t, map[string]any{"level": "3"}, pass.opts)
	assert.False(t, opID.Hash())
	assert.True(t, clean.Enabled())
}

func TestPipelineConfigureLogs(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		config  []string
		want    []string
		notWant []string
	}{
		"invalid value": {
			config: []string{"operationId.hash=maybe"},
			want:   []string{"level=WARN", `msg="invalid option value"`, "pass=operationId", "option=hash", "run=r1"},
		},
		"invalid pattern": {
			config: []string{"pathFilter.tags=(["},
			want:   []string{"level=WARN", "pass=pathFilter", "option=tags", "run=r1"},
		},
		"unknown option": {
			config: []string{"operationId.salt=x"},
			want:   []string{"level=DEBUG", `msg="ignoring unknown option"`, "option=salt", "run=r1"},
		},
		"valid options": {
			config:  []string{"operationId.hash=false", "pathFilter.paths=^/pets"},
			notWant: []string{"level=WARN", "level=DEBUG"},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			p := processors.NewPipeline(processors.NewOperationID(), processors.NewPathFilter()).
				SetLogger(logger.With(slog.String("run", "r1")))

			cfg, err := processors.NormalizeConfig(tc.config)
			require.NoError(t, err)

			p.Configure(cfg)

			for _, want := range tc.want {
				assert.Contains(t, buf.String(), want)
			}

			for _, notWant := range tc.notWant {
				assert.NotContains(t, buf.String(), notWant)
			}
		})
	}
}

func TestPipelineProcessLogsToLogger(t *testing.T) {
	t.Parallel()

	var (
		buf bytes.Buffer
		log []string
	)

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := processors.NewPipeline(&recordPass{name: "a", log: &log}).SetLogger(logger)
	p.Process(node.NewDocument(annotations.NewRegistry(), annotations.OpenAPI), nil)

	assert.Contains(t, buf.String(), `msg="running pass" pass=a`)
	assert.Equal(t, []string{"a"}, log)
}
