// Package main provides the CLI entry point for oagen, a tool that generates
// an OpenAPI document from annotations in Go source comments.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/oagen/diag"
	"go.jacobcolvin.com/oagen/generator"
	"go.jacobcolvin.com/oagen/log"
	"go.jacobcolvin.com/oagen/profile"
	"go.jacobcolvin.com/oagen/version"
)

// ErrDiagnostics is returned with --fail-on-error when the document has
// error diagnostics.
var ErrDiagnostics = errors.New("document has errors")

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	okColor      = color.New(color.FgGreen)
)

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := generator.NewConfig()
	logCfg := log.NewConfig()
	profCfg := profile.NewConfig()

	var failOnError bool

	rootCmd := &cobra.Command{
		Use:   "oagen [flags] <path> [path ...]",
		Short: "Generate an OpenAPI document from annotated Go sources",
		Long: `oagen scans Go sources for @OA\... annotations in doc comments and merges
them into one OpenAPI document. Paths may be files, directories or glob
patterns. Settings are read from flags, OAGEN_* environment variables and an
optional YAML or TOML config file, in that order of precedence.`,
		Version:       version.String(),
		Args:          cobra.MinimumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := logCfg.Load(generator.EnvPrefix, cmd.Flags())
			if err != nil {
				return err
			}

			handler, err := logCfg.NewHandler(os.Stderr)
			if err != nil {
				return err
			}

			slog.SetDefault(slog.New(handler))

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cfg.Load(cmd.Flags())
			if err != nil {
				return err
			}

			err = profCfg.Load(generator.EnvPrefix, cmd.Flags())
			if err != nil {
				return err
			}

			return profCfg.NewProfiler().Run(func() error {
				return run(cfg, args, failOnError, cmd.ErrOrStderr())
			})
		},
	}

	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	cfg.RegisterFlags(rootCmd.Flags())
	profCfg.RegisterFlags(rootCmd.Flags())
	rootCmd.Flags().BoolVar(&failOnError, "fail-on-error", false,
		"exit non-zero when the document has error diagnostics")

	for _, register := range []func(*cobra.Command) error{
		logCfg.RegisterCompletions, cfg.RegisterCompletions, profCfg.RegisterCompletions,
	} {
		completionErr := register(rootCmd)
		if completionErr != nil {
			fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
		}
	}

	rootCmd.AddCommand(newConfigSchemaCmd())

	return rootCmd
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-schema",
		Short: "Print the JSON Schema of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := json.MarshalIndent(generator.ConfigSchema(), "", "  ")
			if err != nil {
				return fmt.Errorf("%w: %w", generator.ErrWriteOutput, err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
			if err != nil {
				return fmt.Errorf("%w: %w", generator.ErrWriteOutput, err)
			}

			return nil
		},
	}
}

func run(cfg *generator.Config, args []string, failOnError bool, summary io.Writer) error {
	format, err := cfg.OutputFormat()
	if err != nil {
		return err
	}

	gen, err := cfg.NewGenerator()
	if err != nil {
		return err
	}

	srcs := make([]any, 0, len(args))
	for _, arg := range args {
		srcs = append(srcs, arg)
	}

	res, err := gen.Generate(srcs...)
	if err != nil {
		return err
	}

	out, err := res.Marshal(format)
	if err != nil {
		return err
	}

	if cfg.Output == "" || cfg.Output == "-" {
		_, err = os.Stdout.Write(out)
		if err != nil {
			return fmt.Errorf("%w: %w", generator.ErrWriteOutput, err)
		}
	} else {
		err := os.WriteFile(cfg.Output, out, 0o644) //nolint:gosec // Generated documents are not secret.
		if err != nil {
			return fmt.Errorf("%w: %w", generator.ErrWriteOutput, err)
		}
	}

	printSummary(summary, res)

	if failOnError && res.HasErrors() {
		return ErrDiagnostics
	}

	return nil
}

func printSummary(w io.Writer, res *generator.Result) {
	var errs, warnings int

	for _, d := range res.Diagnostics {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warnings++
		case diag.SevInfo:
		}
	}

	files := fmt.Sprintf("%d files", len(res.Files))

	switch {
	case errs > 0:
		errorColor.Fprintf(w, "%s: %d errors, %d warnings\n", files, errs, warnings)
	case warnings > 0:
		warningColor.Fprintf(w, "%s: %d warnings\n", files, warnings)
	default:
		okColor.Fprintf(w, "%s: ok\n", files)
	}
}
