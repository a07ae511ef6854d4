package profile

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for profiling configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	CPUProfile    string
	HeapProfile   string
	AllocsProfile string
	MutexProfile  string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds profile output paths. A zero-value Config has all profiles
// disabled.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewProfiler] to create a [Profiler].
type Config struct {
	CPUProfile    string `env:"CPU_PROFILE"`
	HeapProfile   string `env:"HEAP_PROFILE"`
	AllocsProfile string `env:"ALLOCS_PROFILE"`
	// MutexProfile also enables mutex sampling, which shows contention
	// between parse workers.
	MutexProfile string `env:"MUTEX_PROFILE"`
	Flags        Flags  `env:"-"`
}

// NewConfig creates a new [Config] with default flag names and all profiles
// disabled.
func NewConfig() *Config {
	f := Flags{
		CPUProfile:    "cpu-profile",
		HeapProfile:   "heap-profile",
		AllocsProfile: "allocs-profile",
		MutexProfile:  "mutex-profile",
	}

	return f.NewConfig()
}

// RegisterFlags adds profiling flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.CPUProfile, c.Flags.CPUProfile, "", "write a CPU profile of the run to file")
	flags.StringVar(&c.HeapProfile, c.Flags.HeapProfile, "", "write a heap profile after the run to file")
	flags.StringVar(&c.AllocsProfile, c.Flags.AllocsProfile, "", "write an allocs profile after the run to file")
	flags.StringVar(&c.MutexProfile, c.Flags.MutexProfile, "", "write a mutex profile after the run to file")
}

// RegisterCompletions registers shell completions for profile flags on cmd.
// Every flag is a path, so files are completed.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	for _, flag := range []string{c.Flags.CPUProfile, c.Flags.HeapProfile, c.Flags.AllocsProfile, c.Flags.MutexProfile} {
		err := cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions([]string{"prof", "pprof"}, cobra.ShellCompDirectiveFilterFileExt))
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", flag, err)
		}
	}

	return nil
}

// Load fills paths not given as flags from prefix-named environment
// variables, e.g. OAGEN_CPU_PROFILE. flags may be nil.
func (c *Config) Load(prefix string, flags *pflag.FlagSet) error {
	var fromEnv Config

	err := env.ParseWithOptions(&fromEnv, env.Options{Prefix: prefix})
	if err != nil {
		return fmt.Errorf("profile environment: %w", err)
	}

	for _, f := range []struct {
		dst  *string
		flag string
		val  string
	}{
		{&c.CPUProfile, c.Flags.CPUProfile, fromEnv.CPUProfile},
		{&c.HeapProfile, c.Flags.HeapProfile, fromEnv.HeapProfile},
		{&c.AllocsProfile, c.Flags.AllocsProfile, fromEnv.AllocsProfile},
		{&c.MutexProfile, c.Flags.MutexProfile, fromEnv.MutexProfile},
	} {
		if f.val != "" && (flags == nil || !flags.Changed(f.flag)) {
			*f.dst = f.val
		}
	}

	return nil
}

// NewProfiler creates a new [Profiler] using this [Config].
func (c *Config) NewProfiler() *Profiler {
	return &Profiler{
		Config: *c,
	}
}
