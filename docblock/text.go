package docblock

import (
	"strings"
)

// Clean strips comment markers from raw comment text: "//" line prefixes,
// the "/*" and "*/" delimiters, and the leading "*" of block comment lines.
// Line structure is preserved so positions stay accurate.
func Clean(raw string) string {
	lines := strings.Split(raw, "\n")

	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")

		switch {
		case strings.HasPrefix(trimmed, "//"):
			trimmed = trimmed[2:]
		case strings.HasPrefix(trimmed, "/**"):
			trimmed = trimmed[3:]
		case strings.HasPrefix(trimmed, "/*"):
			trimmed = trimmed[2:]
		case strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "*/"):
			trimmed = trimmed[1:]
		}

		trimmed = strings.TrimSuffix(strings.TrimRight(trimmed, " \t\r"), "*/")
		trimmed = strings.TrimRight(trimmed, " \t")

		lines[i] = strings.TrimPrefix(trimmed, " ")
	}

	return strings.Join(lines, "\n")
}
