package profile

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// Profiler writes the profiles enabled in its [Config] around one run.
//
// Create instances with [Config.NewProfiler].
type Profiler struct {
	cpuFile *os.File
	Config
}

// Run starts profiling, calls fn and writes the snapshot profiles. Errors
// from fn and from profiling are joined.
func (p *Profiler) Run(fn func() error) error {
	err := p.Start()
	if err != nil {
		return err
	}

	runErr := fn()

	return errors.Join(runErr, p.Stop())
}

// Start starts CPU profiling and mutex sampling if enabled.
// Call [Profiler.Stop] when the run is complete.
func (p *Profiler) Start() error {
	if p.MutexProfile != "" {
		runtime.SetMutexProfileFraction(1)
	}

	if p.CPUProfile == "" {
		return nil
	}

	f, err := os.Create(p.CPUProfile) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("creating CPU profile: %w", err)
	}

	err = pprof.StartCPUProfile(f)
	if err != nil {
		return errors.Join(fmt.Errorf("starting CPU profile: %w", err), f.Close())
	}

	p.cpuFile = f

	return nil
}

// Stop stops CPU profiling and writes every enabled snapshot profile.
func (p *Profiler) Stop() error {
	var errs []error

	if p.cpuFile != nil {
		pprof.StopCPUProfile()

		err := p.cpuFile.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("closing CPU profile: %w", err))
		}

		p.cpuFile = nil
	}

	if p.MutexProfile != "" {
		defer runtime.SetMutexProfileFraction(0)
	}

	for _, snap := range []struct {
		name string
		path string
	}{
		{"heap", p.HeapProfile},
		{"allocs", p.AllocsProfile},
		{"mutex", p.MutexProfile},
	} {
		if snap.path == "" {
			continue
		}

		err := writeProfile(snap.name, snap.path)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func writeProfile(name, path string) error {
	if name == "heap" {
		runtime.GC()
	}

	f, err := os.Create(path) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("create %s profile: %w", name, err)
	}

	err = pprof.Lookup(name).WriteTo(f, 0)
	if err != nil {
		return errors.Join(fmt.Errorf("write %s profile: %w", name, err), f.Close())
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("write %s profile: %w", name, err)
	}

	return nil
}
