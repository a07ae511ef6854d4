package version_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"go.jacobcolvin.com/oagen/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	got := version.String()

	assert.Contains(t, got, runtime.Version())
	assert.Contains(t, got, runtime.GOOS+"/"+runtime.GOARCH)
	assert.Contains(t, got, "revision "+version.Revision)
}
