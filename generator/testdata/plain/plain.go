// Package plain has no annotations.
package plain
