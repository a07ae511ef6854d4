// Package sources finds source files and extracts their documentation blocks.
package sources

import (
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"go.jacobcolvin.com/oagen/diag"
)

// FileList is a pre-expanded collection of files, as returned by
// [Walker.Find]. [Walker.Expand] takes its entries as they are.
type FileList []string

// Walker expands source inputs into an ordered list of files.
//
// Create instances with [NewWalker].
type Walker struct {
	include []string
	exclude []string
}

// WalkerOption configures a [Walker].
type WalkerOption func(*Walker)

// WithInclude sets the patterns a file name must match when a directory is
// walked. The default is "*.go".
func WithInclude(patterns ...string) WalkerOption {
	return func(w *Walker) {
		w.include = patterns
	}
}

// WithExclude adds patterns for files and directories to skip. Patterns are
// matched against the base name and against the slash-separated path relative
// to the walked directory; "**" is supported.
func WithExclude(patterns ...string) WalkerOption {
	return func(w *Walker) {
		w.exclude = append(w.exclude, patterns...)
	}
}

// NewWalker creates a [Walker] that includes "*.go" and excludes
// "*_test.go" unless configured otherwise.
func NewWalker(opts ...WalkerOption) *Walker {
	w := &Walker{
		include: []string{"*.go"},
		exclude: []string{"*_test.go"},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Expand normalises inputs into a deduplicated list of files. Each input may
// be a string (a file, a directory or a glob), a []string, a []any, an
// iter.Seq[string] or a [FileList], nested in any combination.
//
// Explicit paths keep their input order; directories expand in lexical order.
// Missing paths and unsupported values are reported to r and skipped.
func (w *Walker) Expand(r diag.Reporter, inputs ...any) []string {
	e := &expansion{walker: w, reporter: r, seen: make(map[string]bool)}

	for _, input := range inputs {
		e.add(input)
	}

	return e.files
}

// Find walks root and returns the matching files.
func (w *Walker) Find(root string) (FileList, error) {
	var files FileList

	err := w.walk(root, func(path string) {
		files = append(files, path)
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

type expansion struct {
	walker   *Walker
	reporter diag.Reporter
	seen     map[string]bool
	files    []string
}

func (e *expansion) add(input any) {
	switch v := input.(type) {
	case string:
		e.addPath(v)
	case FileList:
		for _, f := range v {
			e.addFile(f)
		}

	case []string:
		for _, s := range v {
			e.addPath(s)
		}

	case []any:
		for _, item := range v {
			e.add(item)
		}

	case iter.Seq[string]:
		for s := range v {
			e.addPath(s)
		}

	default:
		diag.Warnf(e.reporter, diag.CodeInvalidSource, diag.Position{},
			"Skipping invalid source: unsupported input %T", input)
	}
}

func (e *expansion) addPath(path string) {
	if path == "" {
		return
	}

	if hasMeta(path) {
		matches, err := doublestar.FilepathGlob(path)
		if err != nil || len(matches) == 0 {
			diag.Warnf(e.reporter, diag.CodeInvalidSource, diag.Position{}, "Skipping invalid source: %s", path)

			return
		}

		for _, m := range matches {
			e.addExisting(m)
		}

		return
	}

	e.addExisting(path)
}

func (e *expansion) addExisting(path string) {
	info, err := os.Stat(path)
	if err != nil {
		diag.Warnf(e.reporter, diag.CodeInvalidSource, diag.Position{}, "Skipping invalid source: %s", path)

		return
	}

	if !info.IsDir() {
		e.addFile(path)

		return
	}

	err = e.walker.walk(path, e.addFile)
	if err != nil {
		diag.Warnf(e.reporter, diag.CodeInvalidSource, diag.Position{}, "Skipping invalid source: %s: %v", path, err)
	}
}

func (e *expansion) addFile(path string) {
	path = filepath.Clean(path)
	if e.seen[path] {
		return
	}

	e.seen[path] = true
	e.files = append(e.files, path)
}

// walk calls fn for each matching file below root in lexical order.
func (w *Walker) walk(root string, fn func(string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && (skipDir(d.Name()) || w.excluded(rel, d.Name())) {
				return filepath.SkipDir
			}

			return nil
		}

		if w.included(d.Name()) && !w.excluded(rel, d.Name()) {
			fn(path)
		}

		return nil
	})
}

func (w *Walker) included(name string) bool {
	return slices.ContainsFunc(w.include, func(p string) bool {
		ok, _ := doublestar.Match(p, name)

		return ok
	})
}

func (w *Walker) excluded(rel, name string) bool {
	return slices.ContainsFunc(w.exclude, func(p string) bool {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}

		ok, _ := doublestar.Match(p, rel)

		return ok
	})
}

func skipDir(name string) bool {
	return name == "vendor" || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

func hasMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
