package generator_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/oagen/annotations"
	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/docblock"
	"go.jacobcolvin.com/oagen/generator"
	"go.jacobcolvin.com/oagen/processors"
	"go.jacobcolvin.com/oagen/sources"
	"go.jacobcolvin.com/oagen/stringtest"
)

func newGenerator(opts ...generator.Option) *generator.Generator {
	opts = append([]generator.Option{generator.WithLogger(slog.New(slog.DiscardHandler))}, opts...)

	return generator.NewGenerator(opts...)
}

// writeSources writes each source as a numbered Go file of package api and
// returns the directory.
func writeSources(t *testing.T, srcs ...[]byte) string {
	t.Helper()

	dir := t.TempDir()

	for i, src := range srcs {
		name := filepath.Join(dir, string(rune('a'+i))+".go")
		require.NoError(t, os.WriteFile(name, src, 0o600))
	}

	return dir
}

func withCode(ds []diag.Diagnostic, code diag.Code) []diag.Diagnostic {
	var out []diag.Diagnostic

	for _, d := range ds {
		if d.Code == code {
			out = append(out, d)
		}
	}

	return out
}

func messages(ds []diag.Diagnostic) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Message)
	}

	return out
}

func TestGenerateGolden(t *testing.T) {
	t.Parallel()

	g := newGenerator()
	require.NoError(t, g.SetConfig(map[string]any{"operationId.hash": false}))

	res, err := g.Generate(filepath.Join("testdata", "petstore"))
	require.NoError(t, err)

	assert.Empty(t, messages(res.Diagnostics))
	assert.Equal(t, []string{
		filepath.Join("testdata", "petstore", "api.go"),
		filepath.Join("testdata", "petstore", "errors.go"),
	}, res.Files)
	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.HasErrors())

	out, err := res.Marshal(generator.FormatJSON)
	require.NoError(t, err)

	assertGolden(t, filepath.Join("testdata", "petstore.golden.json"), out)
}

func TestGenerateDeterministic(t *testing.T) {
	t.Parallel()

	render := func(jobs int, format generator.Format) []byte {
		res, err := newGenerator(generator.WithJobs(jobs)).Generate(filepath.Join("testdata", "petstore"))
		require.NoError(t, err)

		out, err := res.Marshal(format)
		require.NoError(t, err)

		return out
	}

	for _, format := range []generator.Format{generator.FormatJSON, generator.FormatYAML} {
		first := render(1, format)
		assert.Equal(t, first, render(1, format))
		assert.Equal(t, first, render(8, format))
	}
}

func TestGenerateInvalidSource(t *testing.T) {
	t.Parallel()

	missing := filepath.Join("testdata", "does-not-exist")

	res, err := newGenerator().Generate(missing, filepath.Join("testdata", "petstore"))
	require.NoError(t, err)

	var invalid []diag.Diagnostic

	for _, d := range res.Diagnostics {
		if d.Code == diag.CodeInvalidSource {
			invalid = append(invalid, d)
		}
	}

	require.Len(t, invalid, 1)
	assert.Equal(t, "Skipping invalid source: "+missing, invalid[0].Message)

	info := res.Document.Root.FirstChild(annotations.Info)
	require.NotNil(t, info)
	assert.Equal(t, "Petstore", info.StringProp("title"))
}

func TestGenerateEmpty(t *testing.T) {
	t.Parallel()

	res, err := newGenerator().Generate()
	require.NoError(t, err)

	assert.Equal(t, []string{
		`Required @OA\Info() not found`,
		`Required @OA\PathItem() not found`,
	}, messages(res.Diagnostics))

	for _, d := range res.Diagnostics {
		assert.Equal(t, diag.SevError, d.Severity)
		assert.Equal(t, diag.CodeMissingRequired, d.Code)
	}

	assert.True(t, res.HasErrors())
	assert.Nil(t, res.Document.Root.FirstChild(annotations.Info))
	assert.Nil(t, res.Document.Root.FirstChild(annotations.PathItem))
}

func TestGenerateFreshStatePerRun(t *testing.T) {
	t.Parallel()

	g := newGenerator()

	first, err := g.Generate(filepath.Join("testdata", "petstore"))
	require.NoError(t, err)

	second, err := g.Generate()
	require.NoError(t, err)

	assert.NotSame(t, first.Document, second.Document)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Len(t, second.Diagnostics, 2)
}

func TestStrictMode(t *testing.T) {
	t.Parallel()

	dir := filepath.Join("testdata", "unresolved")

	tcs := map[string]struct {
		dir       string
		wantErr   error
		wantCodes []diag.Code
		strict    bool
	}{
		"permissive keeps going": {
			dir: dir,
			wantCodes: []diag.Code{
				diag.CodeUnresolvedConstant,
				diag.CodeMissingRequired,
			},
		},
		"strict fails on the first fatal": {
			dir:     dir,
			strict:  true,
			wantErr: generator.ErrStrict,
		},
		"strict with nothing resolvable": {
			dir:     filepath.Join("testdata", "plain"),
			strict:  true,
			wantErr: generator.ErrNothingResolvable,
		},
		"permissive with nothing resolvable": {
			dir: filepath.Join("testdata", "plain"),
			wantCodes: []diag.Code{
				diag.CodeMissingRequired,
				diag.CodeMissingRequired,
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := newGenerator(generator.WithStrict(tc.strict)).Generate(tc.dir)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, res)

				return
			}

			require.NoError(t, err)

			var codes []diag.Code
			for _, d := range res.Diagnostics {
				codes = append(codes, d.Code)
			}

			assert.Equal(t, tc.wantCodes, codes)
		})
	}
}

func TestStrictErrorCarriesDiagnostic(t *testing.T) {
	t.Parallel()

	_, err := newGenerator(generator.WithStrict(true)).Generate(filepath.Join("testdata", "unresolved"))
	require.ErrorIs(t, err, generator.ErrStrict)

	var d diag.Diagnostic
	require.ErrorAs(t, err, &d)
	assert.Equal(t, "Couldn't find constant Missing::VERSION", d.Message)
	assert.Equal(t, 3, d.Position.Line)
}

func TestConstantsOption(t *testing.T) {
	t.Parallel()

	constants := docblock.Constants{}
	constants.Set("Missing", "VERSION", "9.9.9")

	res, err := newGenerator(generator.WithConstants(constants)).Generate(filepath.Join("testdata", "unresolved"))
	require.NoError(t, err)

	assert.Empty(t, messages(res.Diagnostics))
	assert.Equal(t, "9.9.9", res.Document.Root.FirstChild(annotations.Info).StringProp("version"))
}

func TestAliasesAndNamespaces(t *testing.T) {
	t.Parallel()

	g := newGenerator()
	g.AddAlias("foo", `Foo\Bar`)
	g.AddNamespace(`Foo\Bar\`)

	assert.ElementsMatch(t, []string{"oa", "foo"}, keys(g.Aliases()))
	assert.Equal(t, []string{`OpenApi\Annotations\`, `Foo\Bar\`}, g.Namespaces())

	// A later alias of the same name wins.
	g.AddAlias("foo", `Foo\Baz`)
	assert.Equal(t, `Foo\Baz`, g.Aliases()["foo"])

	g.AddNamespace(`Foo\Bar\`)
	assert.Len(t, g.Namespaces(), 2)
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}

func TestSetConfigForms(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input any
	}{
		"nested":     {input: map[string]any{"operationId": map[string]any{"hash": false}}},
		"dotted":     {input: map[string]any{"operationId.hash": false}},
		"key=value":  {input: []string{"operationId.hash=false"}},
		"unknown ok": {input: []string{"operationId.hash=false", "noSuchPass.option=1"}},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			g := newGenerator()
			require.NoError(t, g.SetConfig(tc.input))

			v, ok := g.Config().Get("operationId", "hash")
			assert.True(t, ok)
			assert.Equal(t, false, v)

			var hash *processors.OperationID

			g.Pipeline().Walk(func(p processors.Pass) {
				if op, ok := p.(*processors.OperationID); ok {
					hash = op
				}
			})

			require.NotNil(t, hash)
			assert.False(t, hash.Hash())
		})
	}

	err := newGenerator().SetConfig([]string{"operationId"})
	require.ErrorIs(t, err, processors.ErrInvalidConfig)
}

func TestSetPipelineAppliesStoredConfig(t *testing.T) {
	t.Parallel()

	g := newGenerator()
	require.NoError(t, g.SetConfig([]string{"operationId.hash=false"}))

	op := processors.NewOperationID()
	g.SetPipeline(processors.NewPipeline(
		processors.NewMergeIntoDocument(),
		processors.NewBuildPaths(),
		op,
	))

	res, err := g.Generate(filepath.Join("testdata", "petstore"))
	require.NoError(t, err)

	assert.False(t, op.Hash())
	assert.Same(t, g.Pipeline(), g.Pipeline())

	item := res.Document.Root.FirstChild(annotations.PathItem)
	require.NotNil(t, item)
	assert.Equal(t, "Store.ListPets", item.FirstChild(annotations.Get).StringProp("operationId"))
}

func TestPipelineEditsAffectLaterRuns(t *testing.T) {
	t.Parallel()

	g := newGenerator()
	removed := g.Pipeline().Remove(processors.Named("augmentTags"))
	require.Equal(t, 1, removed)

	res, err := g.Generate(filepath.Join("testdata", "petstore"))
	require.NoError(t, err)

	assert.Nil(t, res.Document.Root.FirstChild(annotations.Tag))
}

func TestParameterFixture(t *testing.T) {
	t.Parallel()

	path := filepath.Join("testdata", "parameter", "param.go")

	src, err := os.ReadFile(path)
	require.NoError(t, err)

	f, err := sources.Extract(path, src)
	require.NoError(t, err)

	blocks := f.DocBlocks()
	require.Len(t, blocks, 1)

	var list diag.List

	nodes := newGenerator().Parser(&list).Parse(blocks[0])

	require.Len(t, nodes, 1)
	assert.Equal(t, annotations.Parameter, nodes[0].Kind)
	assert.Equal(t, "This is my parameter", nodes[0].StringProp("description"))
	assert.Empty(t, list)
}

func TestGenerateWithCache(t *testing.T) {
	t.Parallel()

	cache, err := sources.NewCache(16, t.TempDir())
	require.NoError(t, err)

	g := newGenerator(generator.WithCache(cache))

	first, err := g.Generate(filepath.Join("testdata", "petstore"))
	require.NoError(t, err)

	second, err := g.Generate(filepath.Join("testdata", "petstore"))
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())

	a, err := first.Marshal(generator.FormatYAML)
	require.NoError(t, err)

	b, err := second.Marshal(generator.FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestVersionOverride(t *testing.T) {
	t.Parallel()

	res, err := newGenerator(generator.WithVersion("3.1.0")).Generate(filepath.Join("testdata", "petstore"))
	require.NoError(t, err)

	assert.Equal(t, "3.1.0", res.Document.Root.StringProp("openapi"))
}

func TestMarshalUnknownFormat(t *testing.T) {
	t.Parallel()

	res, err := newGenerator().Generate()
	require.NoError(t, err)

	_, err = res.Marshal("toml")
	require.ErrorIs(t, err, generator.ErrInvalidOption)
}

func TestGenerateRepeatedInfo(t *testing.T) {
	t.Parallel()

	paths := stringtest.Comment(`@OA\Get(path="/pets", @OA\Response(response=200, description="ok"))`) +
		"\nfunc ListPets() {}"

	tcs := map[string]struct {
		srcs      [][]byte
		wantLines []int
	}{
		"single info": {
			srcs: [][]byte{
				stringtest.GoSource("api", stringtest.Comment(`@OA\Info(title="a", version="1")`)+"\nvar _ = 0", paths),
			},
		},
		"info in two files": {
			srcs: [][]byte{
				stringtest.GoSource("api", stringtest.Comment(`@OA\Info(title="a", version="1")`)+"\nvar _ = 0", paths),
				stringtest.GoSource("api", stringtest.Comment(`@OA\Info(title="a", version="1")`)+"\nvar _ = 1"),
			},
			wantLines: []int{3},
		},
		"info inside document and alone": {
			srcs: [][]byte{
				stringtest.GoSource("api",
					stringtest.Comment(`@OA\OpenApi(@OA\Info(title="a", version="1"))`)+"\nvar _ = 0",
					stringtest.Comment(`@OA\Info(description="more")`)+"\nvar _ = 1",
					paths,
				),
			},
			wantLines: []int{6},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res, err := newGenerator().Generate(writeSources(t, tc.srcs...))
			require.NoError(t, err)

			var lines []int
			for _, d := range withCode(res.Diagnostics, diag.CodeMultipleRequired) {
				assert.Equal(t, diag.SevWarning, d.Severity)
				assert.Equal(t, `Multiple @OA\Info() found, merged into the first`, d.Message)

				lines = append(lines, d.Position.Line)
			}

			assert.Equal(t, tc.wantLines, lines)
			assert.Len(t, res.Document.Root.ChildrenOf(annotations.Info), 1)
			assert.Empty(t, withCode(res.Diagnostics, diag.CodeMissingRequired))
		})
	}
}

func TestGenerateUnterminatedSkipsNestedTags(t *testing.T) {
	t.Parallel()

	src := stringtest.GoSource("api",
		stringtest.Comment(
			`@OA\Info(title="a", version="1")`,
			`@OA\Get(path="/pets",`,
			`  @OA\Response(response=200, description="ok")`,
			`@OA\Tag(name="pets")`,
		)+"\nfunc ListPets() {}",
	)

	res, err := newGenerator().Generate(writeSources(t, src))
	require.NoError(t, err)

	malformed := withCode(res.Diagnostics, diag.CodeMalformedTag)
	require.Len(t, malformed, 1)
	assert.Equal(t, 4, malformed[0].Position.Line)

	root := res.Document.Root
	assert.Nil(t, root.FirstChild(annotations.PathItem))
	assert.Nil(t, root.FirstChild(annotations.Components))
	assert.Len(t, root.ChildrenOf(annotations.Tag), 1)
	assert.Empty(t, res.Document.Unmerged)
}

func TestGenerateLogsOptionsToRunLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	g := generator.NewGenerator(generator.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, g.SetConfig([]string{"operationId.hash=maybe"}))

	res, err := g.Generate(filepath.Join("testdata", "petstore"))
	require.NoError(t, err)

	var found []string

	for line := range strings.Lines(buf.String()) {
		if strings.Contains(line, `msg="invalid option value"`) {
			found = append(found, line)
		}
	}

	require.Len(t, found, 2)
	assert.NotContains(t, found[0], "run=")
	assert.Contains(t, found[1], "run="+res.RunID)
	assert.Contains(t, found[1], "pass=operationId")
}
