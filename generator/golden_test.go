package generator_test

import (
	"flag"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden files")

// assertGolden compares rendered JSON against a golden file.
// When -update is set, it writes the golden file instead.
// Comparison is semantic (JSON equality) to tolerate formatter differences.
func assertGolden(t *testing.T, goldenPath string, got []byte) {
	t.Helper()

	if *update {
		require.NoError(t, os.WriteFile(goldenPath, got, 0o644))

		return
	}

	want, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "golden file %s not found; run with -update to create", goldenPath)

	assert.JSONEq(t, string(want), string(got))
}
