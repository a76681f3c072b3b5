package tui

import (
	"regexp"
	"strings"
)

// ansiRegex matches ANSI escape sequences for color and formatting.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// stripAnsiCodes removes ANSI escape sequences, leaving only plain text.
func stripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// normalizeOutput trims trailing whitespace from every line and drops
// trailing empty lines so snapshots do not depend on terminal width.
func normalizeOutput(s string) string {
	lines := strings.Split(s, "\n")

	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n")
}
