package diag

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// List collects diagnostics in report order. It is not safe for concurrent
// use; each parse task owns its own List.
type List []Diagnostic

// Report implements [Reporter].
func (l *List) Report(d Diagnostic) {
	*l = append(*l, d)
}

// Bag is the run-wide diagnostic sink. Every reported entry is appended and
// logged exactly once. Safe for concurrent use.
//
// Create instances with [NewBag].
type Bag struct {
	logger *slog.Logger
	items  []Diagnostic
	mu     sync.Mutex
}

// NewBag creates a [Bag] logging through logger. A nil logger uses
// [slog.Default].
func NewBag(logger *slog.Logger) *Bag {
	if logger == nil {
		logger = slog.Default()
	}

	return &Bag{logger: logger}
}

// Report implements [Reporter].
func (b *Bag) Report(d Diagnostic) {
	b.mu.Lock()
	b.items = append(b.items, d)
	b.mu.Unlock()

	attrs := []slog.Attr{slog.String("code", string(d.Code))}
	if d.Position.File != "" {
		attrs = append(attrs, slog.String("file", d.Position.File))
	}

	if d.Position.Line > 0 {
		attrs = append(attrs, slog.Int("line", d.Position.Line))
	}

	b.logger.LogAttrs(context.Background(), d.Severity.Level(), d.Message, attrs...)
}

// Merge reports every entry of l, in order.
func (b *Bag) Merge(l List) {
	for _, d := range l {
		b.Report(d)
	}
}

// Items returns a copy of the collected diagnostics in report order.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)

	return out
}

// Len returns the number of collected diagnostics.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.items)
}

// HasErrors reports whether any diagnostic has [SevError].
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.items {
		if b.items[i].Severity >= SevError {
			return true
		}
	}

	return false
}

// FirstFatal returns the first diagnostic whose code is fatal.
func (b *Bag) FirstFatal() (Diagnostic, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, d := range b.items {
		if d.Code.Fatal() {
			return d, true
		}
	}

	return Diagnostic{}, false
}

// Contains reports whether any diagnostic message contains substr.
func (b *Bag) Contains(substr string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, d := range b.items {
		if strings.Contains(d.Message, substr) {
			return true
		}
	}

	return false
}
