// Package profile writes runtime profiles of a generation run.
//
// Register the flags on the command that runs the generator, then wrap the
// run:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(cmd.Flags())
//
//	err := cfg.NewProfiler().Run(func() error {
//		return generate()
//	})
//
// Profiles are disabled unless an output path is set.
package profile
