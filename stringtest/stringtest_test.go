package stringtest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/oagen/docblock"
	"go.jacobcolvin.com/oagen/sources"
	"go.jacobcolvin.com/oagen/stringtest"
)

func TestInput(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  string
	}{
		"single tag": {
			input: `
				@OA\Tag(name="pets")`,
			want: `@OA\Tag(name="pets")`,
		},
		"nested tags keep relative indent": {
			input: `
				@OA\Get(path="/pets",
				  @OA\Response(response=200)
				)`,
			want: stringtest.JoinLF(`@OA\Get(path="/pets",`, `  @OA\Response(response=200)`, `)`),
		},
		"blank line between tags": {
			input: "\n\t\t@OA\\Info()\n\t\t  \t\n\t\t@OA\\Tag()\n",
			want:  "@OA\\Info()\n\n@OA\\Tag()",
		},
		"docblock stars": {
			input: `
				 * @OA\Schema()
				 *   @OA\Property()`,
			want: stringtest.JoinLF(`* @OA\Schema()`, `*   @OA\Property()`),
		},
		"no indent": {
			input: `@OA\Info()`,
			want:  `@OA\Info()`,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, stringtest.Input(tc.input))
		})
	}
}

func TestCommentsClean(t *testing.T) {
	t.Parallel()

	lines := []string{"Pet is a pet.", "", `@OA\Schema(`, `  @OA\Property(type="string")`, `)`}

	tcs := map[string]struct {
		comment string
		want    string
	}{
		"line comment": {
			comment: stringtest.Comment(lines...),
			want:    stringtest.JoinLF(lines...),
		},
		"doc comment": {
			comment: stringtest.DocComment(lines...),
			want:    stringtest.JoinLF(append(append([]string{""}, lines...), "")...),
		},
		"crlf line comment": {
			comment: stringtest.JoinCRLF("// Pet is a pet.", `// @OA\Schema()`),
			want:    stringtest.JoinLF("Pet is a pet.", `@OA\Schema()`),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, docblock.Clean(tc.comment))
		})
	}
}

func TestGoSource(t *testing.T) {
	t.Parallel()

	src := stringtest.GoSource("pets",
		`const Version = "1.0.0"`,
		stringtest.Comment("Pet is a pet.", "", `@OA\Schema(schema="Pet")`)+"\ntype Pet struct{}",
		stringtest.DocComment(`@OA\Get(path="/pets")`)+"\nfunc ListPets() {}",
	)

	assert.Equal(t, "package pets\n\n", string(src[:len("package pets\n\n")]))
	assert.Equal(t, byte('\n'), src[len(src)-1])

	f, err := sources.Extract("pets.go", src)
	require.NoError(t, err)

	assert.Equal(t, "pets", f.Package)
	require.Len(t, f.Constants, 1)
	assert.Equal(t, "1.0.0", f.Constants[0].Value())

	require.Len(t, f.Blocks, 2)

	assert.Equal(t, "Pet", f.Blocks[0].Symbol)
	assert.Equal(t, sources.DeclType, f.Blocks[0].Decl)
	assert.Equal(t, 5, f.Blocks[0].Line)
	assert.Equal(t, stringtest.JoinLF("Pet is a pet.", "", `@OA\Schema(schema="Pet")`), f.Blocks[0].Text)

	assert.Equal(t, "ListPets", f.Blocks[1].Symbol)
	assert.Equal(t, sources.DeclFunc, f.Blocks[1].Decl)
	assert.Equal(t, 10, f.Blocks[1].Line)
	assert.Contains(t, f.Blocks[1].Text, `@OA\Get(path="/pets")`)
}
