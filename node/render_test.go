package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/node"
)

func TestRender(t *testing.T) {
	t.Parallel()

	doc := node.NewDocument(testRegistry(t), "Root")

	info := node.New("Info", diag.Position{})
	info.Set("version", "2.0")
	info.Set("title", "Pets")

	ref := item("pet", "")
	ref.Set("ref", "#/items/other")
	ref.Set("x", map[string]any{"internal": true})

	tag := node.New("Tag", diag.Position{})
	tag.Set("name", "pets")

	doc.Root.Append(tag, item("store", "Store"), info, ref)
	doc.Root.Set("extra", int64(3))

	out, err := doc.JSON()
	require.NoError(t, err)

	want := `{
  "version": "1",
  "info": {
    "title": "Pets",
    "version": "2.0"
  },
  "items": {
    "store": {
      "description": "Store"
    },
    "pet": {
      "$ref": "#/items/other",
      "x-internal": true
    }
  },
  "tags": [
    {
      "name": "pets"
    }
  ],
  "extra": 3
}
`
	assert.Equal(t, want, string(out))

	y, err := doc.YAML()
	require.NoError(t, err)
	assert.Contains(t, string(y), "#/items/other")

	again, err := doc.JSON()
	require.NoError(t, err)
	assert.Equal(t, out, again)
}
