package generator

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/oagen/processors"
	"go.jacobcolvin.com/oagen/sources"
)

// EnvPrefix prefixes every environment variable read by [Config.Load].
const EnvPrefix = "OAGEN_"

// cacheEntries bounds the in-memory block cache created for --cache-dir.
const cacheEntries = 4096

// Format is the output format of the document.
type Format string

const (
	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"
	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"
)

// GetAllFormatStrings returns the accepted output format names.
func GetAllFormatStrings() []string {
	return []string{string(FormatYAML), string(FormatJSON)}
}

// ParseFormat parses an output format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if !slices.Contains([]Format{FormatYAML, FormatJSON}, f) {
		return "", fmt.Errorf("%w: unknown format %q", ErrInvalidOption, s)
	}

	return f, nil
}

// Flags holds CLI flag names for generator configuration, allowing callers
// to customize flag names while keeping sensible defaults.
type Flags struct {
	Output     string
	Format     string
	Processors string
	Aliases    string
	Namespaces string
	Exclude    string
	Pattern    string
	Strict     string
	Jobs       string
	CacheDir   string
	Version    string
	ConfigFile string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f, Format: string(FormatYAML), Output: "-"}
}

// Config holds generator settings from flags, the environment and a config
// file.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Call [Config.Load] once flags are parsed, then
// use [Config.NewGenerator] to create a [Generator].
type Config struct {
	Output     string   `env:"OUTPUT"`
	Format     string   `env:"FORMAT"`
	CacheDir   string   `env:"CACHE_DIR"`
	Version    string   `env:"OPENAPI_VERSION"`
	ConfigFile string   `env:"CONFIG_FILE"`
	Processors []string `env:"CONFIG"`
	Aliases    []string `env:"ALIASES"`
	Namespaces []string `env:"NAMESPACES"`
	Exclude    []string `env:"EXCLUDE"`
	Pattern    []string `env:"PATTERN"`
	Flags      Flags    `env:"-"`
	// passes holds the processors section of the config file, applied
	// before Processors.
	passes processors.Config
	Jobs   int  `env:"JOBS"`
	Strict bool `env:"STRICT"`
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		Output:     "output",
		Format:     "format",
		Processors: "config",
		Aliases:    "alias",
		Namespaces: "namespace",
		Exclude:    "exclude",
		Pattern:    "pattern",
		Strict:     "strict",
		Jobs:       "jobs",
		CacheDir:   "cache-dir",
		Version:    "openapi-version",
		ConfigFile: "config-file",
	}

	return f.NewConfig()
}

// RegisterFlags adds generator flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Output, c.Flags.Output, "o", c.Output,
		"output file path (- for stdout)")
	flags.StringVar(&c.Format, c.Flags.Format, c.Format,
		fmt.Sprintf("output format, one of: %s", GetAllFormatStrings()))
	flags.StringArrayVarP(&c.Processors, c.Flags.Processors, "c", nil,
		"pass option as pass.option=value (repeatable)")
	flags.StringArrayVar(&c.Aliases, c.Flags.Aliases, nil,
		"tag alias as name=namespace (repeatable)")
	flags.StringArrayVar(&c.Namespaces, c.Flags.Namespaces, nil,
		"namespace searched for bare tag names (repeatable)")
	flags.StringArrayVar(&c.Exclude, c.Flags.Exclude, nil,
		"file or directory pattern to skip (repeatable)")
	flags.StringArrayVar(&c.Pattern, c.Flags.Pattern, nil,
		"file name pattern to scan in directories (default *.go)")
	flags.BoolVar(&c.Strict, c.Flags.Strict, false,
		"fail on the first unresolvable constant")
	flags.IntVar(&c.Jobs, c.Flags.Jobs, 0,
		"files parsed concurrently (0 for one per CPU)")
	flags.StringVar(&c.CacheDir, c.Flags.CacheDir, "",
		"directory for the extracted block cache")
	flags.StringVar(&c.Version, c.Flags.Version, "",
		"override the OpenAPI version of the document")
	flags.StringVar(&c.ConfigFile, c.Flags.ConfigFile, "",
		"YAML or TOML config file")
}

// RegisterCompletions registers shell completions for generator flags on
// cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Format,
		cobra.FixedCompletions(GetAllFormatStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Format, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.ConfigFile,
		cobra.FixedCompletions([]string{"yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.ConfigFile, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.CacheDir,
		cobra.FixedCompletions(nil, cobra.ShellCompDirectiveFilterDirs))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.CacheDir, err)
	}

	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, flag := range []string{
		c.Flags.Processors, c.Flags.Aliases, c.Flags.Namespaces,
		c.Flags.Pattern, c.Flags.Jobs, c.Flags.Version,
	} {
		regErr := cmd.RegisterFlagCompletionFunc(flag, noFileComp)
		if regErr != nil {
			return fmt.Errorf("registering %s completion: %w", flag, regErr)
		}
	}

	return nil
}

// Load fills every setting not given as a flag from the environment, then
// from the config file. Repeatable settings accumulate instead, in the
// order file, environment, flags. flags may be nil when no flags were
// parsed. Call Load once.
func (c *Config) Load(flags *pflag.FlagSet) error {
	var fromEnv Config

	err := env.ParseWithOptions(&fromEnv, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return fmt.Errorf("%w: environment: %w", ErrInvalidOption, err)
	}

	changed := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}

	inEnv := func(name string) bool {
		_, ok := os.LookupEnv(EnvPrefix + name)

		return ok
	}

	if !changed(c.Flags.ConfigFile) && inEnv("CONFIG_FILE") {
		c.ConfigFile = fromEnv.ConfigFile
	}

	file := &FileConfig{}
	if c.ConfigFile != "" {
		file, err = LoadFile(c.ConfigFile)
		if err != nil {
			return err
		}
	}

	scalar := func(flag, envName string, fromEnvFn, fromFileFn func()) {
		switch {
		case changed(flag):
		case inEnv(envName):
			fromEnvFn()
		case fromFileFn != nil:
			fromFileFn()
		}
	}

	scalar(c.Flags.Output, "OUTPUT", func() { c.Output = fromEnv.Output }, nil)
	scalar(c.Flags.Format, "FORMAT", func() { c.Format = fromEnv.Format }, nil)
	scalar(c.Flags.CacheDir, "CACHE_DIR", func() { c.CacheDir = fromEnv.CacheDir }, nil)
	scalar(c.Flags.Version, "OPENAPI_VERSION", func() { c.Version = fromEnv.Version }, func() {
		if file.Version != "" {
			c.Version = file.Version
		}
	})
	scalar(c.Flags.Jobs, "JOBS", func() { c.Jobs = fromEnv.Jobs }, func() {
		if file.Jobs != nil {
			c.Jobs = *file.Jobs
		}
	})
	scalar(c.Flags.Strict, "STRICT", func() { c.Strict = fromEnv.Strict }, func() {
		if file.Strict != nil {
			c.Strict = *file.Strict
		}
	})

	fileAliases := make([]string, 0, len(file.Aliases))
	for _, name := range slices.Sorted(maps.Keys(file.Aliases)) {
		fileAliases = append(fileAliases, name+"="+file.Aliases[name])
	}

	c.Aliases = slices.Concat(fileAliases, fromEnv.Aliases, c.Aliases)
	c.Namespaces = slices.Concat(file.Namespaces, fromEnv.Namespaces, c.Namespaces)
	c.Exclude = slices.Concat(file.Exclude, fromEnv.Exclude, c.Exclude)
	c.Pattern = slices.Concat(file.Pattern, fromEnv.Pattern, c.Pattern)
	c.Processors = slices.Concat(fromEnv.Processors, c.Processors)
	c.passes = processors.Config(file.Processors)

	return nil
}

// OutputFormat returns the parsed output format.
func (c *Config) OutputFormat() (Format, error) {
	return ParseFormat(c.Format)
}

// NewGenerator creates a [Generator] using this [Config]. Extra options are
// applied last.
func (c *Config) NewGenerator(extra ...Option) (*Generator, error) {
	_, err := c.OutputFormat()
	if err != nil {
		return nil, err
	}

	aliases, err := parseAliases(c.Aliases)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		WithStrict(c.Strict),
		WithJobs(c.Jobs),
		WithVersion(c.Version),
		WithAliases(aliases),
		WithNamespaces(c.Namespaces...),
		WithPattern(c.Pattern...),
		WithExclude(c.Exclude...),
	}

	if c.CacheDir != "" {
		cache, cacheErr := sources.NewCache(cacheEntries, c.CacheDir)
		if cacheErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOption, cacheErr)
		}

		opts = append(opts, WithCache(cache))
	}

	g := NewGenerator(append(opts, extra...)...)

	for _, cfg := range []any{c.passes, c.Processors} {
		err = g.SetConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
	}

	return g, nil
}

func parseAliases(entries []string) (map[string]string, error) {
	out := make(map[string]string, len(entries))

	for _, entry := range entries {
		name, fq, ok := strings.Cut(entry, "=")
		name = strings.TrimSpace(name)
		fq = strings.TrimSpace(fq)

		if !ok || name == "" || fq == "" {
			return nil, fmt.Errorf("%w: alias %q is not name=namespace", ErrInvalidOption, entry)
		}

		out[name] = fq
	}

	return out, nil
}
