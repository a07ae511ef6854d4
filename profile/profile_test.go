package profile_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/oagen/profile"
)

func TestRegisterFlags(t *testing.T) {
	t.Parallel()

	cfg := profile.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse([]string{
		"--cpu-profile=cpu.prof",
		"--heap-profile=heap.prof",
	}))

	assert.Equal(t, "cpu.prof", cfg.CPUProfile)
	assert.Equal(t, "heap.prof", cfg.HeapProfile)
	assert.Empty(t, cfg.AllocsProfile)
	assert.Empty(t, cfg.MutexProfile)

	cmd := &cobra.Command{Use: "test"}
	cfg.RegisterFlags(cmd.Flags())
	require.NoError(t, cfg.RegisterCompletions(cmd))

	fn, ok := cmd.GetFlagCompletionFunc("cpu-profile")
	require.True(t, ok)

	_, directive := fn(cmd, nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveFilterFileExt, directive)
}

func TestLoad(t *testing.T) {
	t.Setenv("OAGEN_HEAP_PROFILE", "env-heap.prof")
	t.Setenv("OAGEN_CPU_PROFILE", "env-cpu.prof")

	cfg := profile.NewConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)
	require.NoError(t, flags.Parse([]string{"--cpu-profile=flag-cpu.prof"}))

	require.NoError(t, cfg.Load("OAGEN_", flags))

	assert.Equal(t, "flag-cpu.prof", cfg.CPUProfile)
	assert.Equal(t, "env-heap.prof", cfg.HeapProfile)
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg := profile.NewConfig()
	cfg.HeapProfile = filepath.Join(dir, "heap.prof")
	cfg.AllocsProfile = filepath.Join(dir, "allocs.prof")

	called := false
	err := cfg.NewProfiler().Run(func() error {
		called = true

		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	for _, name := range []string{"heap.prof", "allocs.prof"} {
		info, statErr := os.Stat(filepath.Join(dir, name))
		require.NoError(t, statErr)
		assert.Positive(t, info.Size())
	}
}

func TestRunErrors(t *testing.T) {
	t.Parallel()

	errRun := errors.New("run failed")

	tcs := map[string]struct {
		cfg     func(dir string) *profile.Config
		wantErr error
		wantMsg string
	}{
		"disabled passes the run error through": {
			cfg:     func(string) *profile.Config { return profile.NewConfig() },
			wantErr: errRun,
		},
		"unwritable snapshot joins errors": {
			cfg: func(dir string) *profile.Config {
				cfg := profile.NewConfig()
				cfg.HeapProfile = filepath.Join(dir, "missing", "heap.prof")

				return cfg
			},
			wantErr: errRun,
			wantMsg: "create heap profile",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := tc.cfg(t.TempDir()).NewProfiler().Run(func() error { return errRun })
			require.ErrorIs(t, err, tc.wantErr)

			if tc.wantMsg != "" {
				assert.ErrorContains(t, err, tc.wantMsg)
			}
		})
	}
}
