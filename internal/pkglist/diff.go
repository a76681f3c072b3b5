package pkglist

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns a line diff from previous to next, one line per entry
// prefixed with "- ", "+ ", or two spaces. It returns "" when both are equal.
func Diff(previous, next []byte) string {
	if string(previous) == string(next) {
		return ""
	}

	dmp := diffmatchpatch.New()

	a, b, lineArray := dmp.DiffLinesToChars(string(previous), string(next))
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var sb strings.Builder

	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}

		prefix := "  "

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range lines {
			sb.WriteString(prefix + line + "\n")
		}
	}

	return sb.String()
}
