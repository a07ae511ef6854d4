package docblock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/docblock"
	"go.jacobcolvin.com/oagen/stringtest"
)

func TestScan(t *testing.T) {
	t.Parallel()

	text := "Lists pets.\n" +
		"@OA\\Get(path=\"/pets\", description=\"a ) in a string\")\n" +
		"  * @OA\\Response(response=200,\n" +
		"    description=\"ok\")\n" +
		"@deprecated\n" +
		"mail me@example.com"

	start := diag.Position{File: "pets.go", Line: 20}

	var list diag.List

	got := docblock.Invocations(text, start, &list)

	require.Len(t, got, 3)
	assert.Empty(t, list)

	assert.Equal(t, `OA\Get`, got[0].Name)
	assert.Equal(t, `path="/pets", description="a ) in a string"`, got[0].Args)
	assert.True(t, got[0].HasArgs)
	assert.Equal(t, 21, got[0].Position.Line)
	assert.Equal(t, "pets.go", got[0].Position.File)

	assert.Equal(t, `OA\Response`, got[1].Name)
	assert.Equal(t, "response=200,\n    description=\"ok\"", got[1].Args)
	assert.Equal(t, 22, got[1].Position.Line)

	assert.Equal(t, "deprecated", got[2].Name)
	assert.False(t, got[2].HasArgs)
	assert.Equal(t, 24, got[2].Position.Line)

	assert.Equal(t, `@OA\Get(path="/pets", description="a ) in a string")`,
		text[got[0].Span.Start:got[0].Span.End])
}

func TestScanRestartable(t *testing.T) {
	t.Parallel()

	seq := docblock.Scan(`@OA\Info() @OA\Tag(name="a") @OA\Tag(name="b")`, diag.Position{}, diag.Discard)

	var first []string

	for inv := range seq {
		first = append(first, inv.Name)
		if len(first) == 2 {
			break
		}
	}

	var second []string
	for inv := range seq {
		second = append(second, inv.Name)
	}

	assert.Equal(t, []string{`OA\Info`, `OA\Tag`}, first)
	assert.Equal(t, []string{`OA\Info`, `OA\Tag`, `OA\Tag`}, second)
}

func TestScanUnterminated(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		text      string
		wantNames []string
	}{
		"open paren": {
			text:      "@OA\\Info(title=\"x\"\n@OA\\Tag()",
			wantNames: []string{`OA\Tag`},
		},
		"open string": {
			text:      "@OA\\Info(title=\"x)\n@OA\\Tag()",
			wantNames: []string{`OA\Tag`},
		},
		"doubled quote": {
			text:      "@OA\\Info(title=\"x\"\")\n@OA\\Tag()",
			wantNames: []string{`OA\Tag`},
		},
		"nested tags": {
			text: stringtest.JoinLF(
				`@OA\Info(title="x",`,
				`  @OA\Contact(name="a"),`,
				`  * @OA\License(name="b")`,
				`@OA\Tag()`,
			),
			wantNames: []string{`OA\Tag`},
		},
		"nested tags in a docblock": {
			text: stringtest.Input(`
				 * @OA\Info(title="x",
				 *   @OA\Contact(name="a")
				 * @OA\Tag()`),
			wantNames: []string{`OA\Tag`},
		},
		"no sibling": {
			text: stringtest.JoinLF(
				`  @OA\Info(title="x",`,
				`    @OA\Contact(name="a")`,
			),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var list diag.List

			var names []string
			for inv := range docblock.Scan(tc.text, diag.Position{Line: 1}, &list) {
				names = append(names, inv.Name)
			}

			assert.Equal(t, tc.wantNames, names)
			require.Len(t, list, 1)
			assert.Equal(t, diag.CodeMalformedTag, list[0].Code)
			assert.Equal(t, diag.SevWarning, list[0].Severity)
			assert.Equal(t, 1, list[0].Position.Line)
			assert.Contains(t, list[0].Message, `@OA\Info`)
		})
	}
}

func TestClean(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  string
	}{
		"line comments": {
			input: "// Pet is a pet.\n// @OA\\Schema()",
			want:  "Pet is a pet.\n@OA\\Schema()",
		},
		"docblock": {
			input: "/**\n * Pet is a pet.\n *\n * @OA\\Schema()\n */",
			want:  "\nPet is a pet.\n\n@OA\\Schema()\n",
		},
		"crlf line comments": {
			input: stringtest.JoinCRLF("// Pet is a pet.", `// @OA\Schema()`),
			want:  "Pet is a pet.\n@OA\\Schema()",
		},
		"built docblock": {
			input: stringtest.DocComment("Pet is a pet.", "", `@OA\Schema()`),
			want:  "\nPet is a pet.\n\n@OA\\Schema()\n",
		},
		"single line block": {
			input: "/** @OA\\Tag(name=\"x\") */",
			want:  "@OA\\Tag(name=\"x\")",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, docblock.Clean(tc.input))
		})
	}
}
