// Package stringtest builds annotated comment and source text for tests.
package stringtest

import (
	"strings"
)

// Input removes the common indentation of s, plus one leading and one
// trailing newline, so test input can be written as an indented raw string.
// Whitespace-only lines become empty.
//
// Example:
//
//	src := stringtest.Input(`
//		package pets
//
//		// @OA\Tag(name="pets")
//		var _ = 0`)
func Input(s string) string {
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")

	lines := strings.Split(s, "\n")
	indent := -1

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""

			continue
		}

		lines[i] = line[max(indent, 0):]
	}

	return strings.Join(lines, "\n")
}

// JoinLF joins multiple strings with LF line endings.
// Use this to construct expected test output with explicit line endings.
//
// Example:
//
//	want := stringtest.JoinLF(
//		"line1",
//		"line2",
//		"line3",
//	) // -> "line1\nline2\nline3"
func JoinLF(ss ...string) string {
	return strings.Join(ss, "\n")
}

// JoinCRLF joins multiple strings with CRLF line endings, as found in
// sources checked out on Windows.
func JoinCRLF(ss ...string) string {
	return strings.Join(ss, "\r\n")
}

// Comment renders lines as a Go line comment. Empty lines become a bare
// "//".
//
// Example:
//
//	stringtest.Comment("Pet is a pet.", `@OA\Schema()`)
//	// -> "// Pet is a pet.\n// @OA\\Schema()"
func Comment(lines ...string) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		if line == "" {
			out[i] = "//"

			continue
		}

		out[i] = "// " + line
	}

	return JoinLF(out...)
}

// DocComment renders lines as a "/** ... */" block comment with a leading
// " * " on every line.
func DocComment(lines ...string) string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, "/**")

	for _, line := range lines {
		if line == "" {
			out = append(out, " *")

			continue
		}

		out = append(out, " * "+line)
	}

	out = append(out, " */")

	return JoinLF(out...)
}

// GoSource renders a Go file of package pkg holding the given declarations,
// separated by blank lines.
func GoSource(pkg string, decls ...string) []byte {
	parts := append([]string{"package " + pkg}, decls...)

	return []byte(strings.Join(parts, "\n\n") + "\n")
}
