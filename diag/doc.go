// Package diag defines the diagnostics reported while generating a document.
//
// A [Diagnostic] is a severity-tagged report of an anomaly at a [Position].
// Components report through the [Reporter] interface and never fail hard for
// recoverable conditions: unknown or deprecated tags, invalid sources, and
// missing root nodes are all reported and processing continues.
//
// Two reporters are provided. [List] is an unsynchronized collector used while
// parsing a single file; [Bag] is the synchronized run-wide sink that logs each
// entry once through a [log/slog.Logger] at the entry's severity.
//
// Only [CodeUnresolvedConstant] is fatal. In strict mode the generator turns
// the first fatal diagnostic into an error; see [Bag.FirstFatal].
package diag
