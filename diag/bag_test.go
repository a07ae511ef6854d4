package diag_test

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/oagen/diag"
)

func TestPositionString(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		pos  diag.Position
		want string
	}{
		"empty":     {pos: diag.Position{}, want: ""},
		"file only": {pos: diag.Position{File: "a.go"}, want: "a.go"},
		"line only": {pos: diag.Position{Line: 3}, want: "line 3"},
		"both":      {pos: diag.Position{File: "a.go", Line: 3}, want: "a.go:3"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.pos.String())
		})
	}
}

func TestBagLogsEachEntryOnce(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	bag := diag.NewBag(logger)

	diag.Warnf(bag, diag.CodeInvalidSource, diag.Position{}, "Skipping invalid source: %s", "/nope")
	diag.Errorf(bag, diag.CodeMissingRequired, diag.Position{File: "x.go", Line: 2}, "Required @OA\\Info() not found")

	require.Equal(t, 2, bag.Len())
	assert.True(t, bag.HasErrors())
	assert.True(t, bag.Contains("Skipping invalid source: /nope"))

	out := buf.String()
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("Skipping invalid source")))
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "code=missing-required")
	assert.Contains(t, out, "line=2")
}

func TestBagFirstFatal(t *testing.T) {
	t.Parallel()

	bag := diag.NewBag(slog.New(slog.DiscardHandler))

	_, ok := bag.FirstFatal()
	assert.False(t, ok)

	diag.Warnf(bag, diag.CodeUnknownTag, diag.Position{}, "unknown")
	diag.Errorf(bag, diag.CodeUnresolvedConstant, diag.Position{Line: 4}, "first")
	diag.Errorf(bag, diag.CodeUnresolvedConstant, diag.Position{Line: 9}, "second")

	d, ok := bag.FirstFatal()
	require.True(t, ok)
	assert.Equal(t, "first", d.Message)
	assert.Equal(t, "line 4: first (unresolved-constant)", d.Error())
}

func TestBagConcurrentReports(t *testing.T) {
	t.Parallel()

	bag := diag.NewBag(slog.New(slog.DiscardHandler))

	var wg sync.WaitGroup

	for range 32 {
		wg.Go(func() {
			diag.Infof(bag, diag.CodeUnmerged, diag.Position{}, "entry")
		})
	}

	wg.Wait()

	assert.Equal(t, 32, bag.Len())
}

func TestListMergePreservesOrder(t *testing.T) {
	t.Parallel()

	var l diag.List

	diag.Warnf(&l, diag.CodeUnknownTag, diag.Position{}, "a")
	diag.Warnf(&l, diag.CodeUnknownTag, diag.Position{}, "b")

	bag := diag.NewBag(slog.New(slog.DiscardHandler))
	bag.Merge(l)

	items := bag.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Message)
	assert.Equal(t, "b", items[1].Message)
	assert.False(t, bag.HasErrors())
}
