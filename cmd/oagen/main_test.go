package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/oagen/generator"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "generator", "testdata", name)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stderr bytes.Buffer

	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	cmd.SetOut(&stderr)
	cmd.SetErr(&stderr)

	err := cmd.Execute()

	return stderr.String(), err
}

func TestGenerateToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "openapi.json")

	summary, err := execute(t,
		"--format", "json",
		"-o", out,
		"-c", "operationId.hash=false",
		fixture("petstore"),
	)
	require.NoError(t, err)
	assert.Contains(t, summary, "2 files: ok")

	got, err := os.ReadFile(out)
	require.NoError(t, err)

	want, err := os.ReadFile(filepath.Join("..", "..", "generator", "testdata", "petstore.golden.json"))
	require.NoError(t, err)

	assert.JSONEq(t, string(want), string(got))
}

func TestFailOnError(t *testing.T) {
	out := filepath.Join(t.TempDir(), "openapi.yaml")

	tcs := map[string]struct {
		wantErr error
		args    []string
	}{
		"errors reported": {
			args: []string{"-o", out, fixture("plain")},
		},
		"errors fail": {
			args:    []string{"-o", out, "--fail-on-error", fixture("plain")},
			wantErr: ErrDiagnostics,
		},
		"strict": {
			args:    []string{"-o", out, "--strict", fixture("plain")},
			wantErr: generator.ErrNothingResolvable,
		},
		"bad format": {
			args:    []string{"-o", out, "--format", "xml", fixture("plain")},
			wantErr: generator.ErrInvalidOption,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			summary, err := execute(t, tc.args...)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Contains(t, summary, "1 files: 2 errors, 0 warnings")
		})
	}
}

func TestConfigSchemaCommand(t *testing.T) {
	out, err := execute(t, "config-schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "object", schema["type"])
	assert.Contains(t, schema["properties"], "processors")
}
