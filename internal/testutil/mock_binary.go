// Package testutil provides test helpers for code that shells out to brew.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// CreateMockBinary creates a fake executable in dir that prints stdout and
// stderr and exits with the given code. Returns the full path to the binary.
func CreateMockBinary(t *testing.T, dir, name string, exitCode int, stdout, stderr string) string {
	t.Helper()

	var script string

	if stdout != "" {
		script += fmt.Sprintf("printf '%%s\\n' %s\n", shellQuote(stdout))
	}

	if stderr != "" {
		script += fmt.Sprintf("printf '%%s\\n' %s >&2\n", shellQuote(stderr))
	}

	script += fmt.Sprintf("exit %d\n", exitCode)

	return CreateScriptBinary(t, dir, name, script)
}

// CreateScriptBinary creates an executable /bin/sh script in dir with the given body.
// The test is skipped on Windows.
func CreateScriptBinary(t *testing.T, dir, name, body string) string {
	t.Helper()
	SkipOnWindows(t)

	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body

	if err := os.WriteFile(path, []byte(script), 0o755); err != nil { //nolint:gosec // test helper: mock binary must be executable
		t.Fatalf("failed to create script binary %s: %v", name, err)
	}

	return path
}

// SkipOnWindows skips tests that rely on /bin/sh scripts.
func SkipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script binaries are not supported on windows")
	}
}

// PrependPath returns the current PATH with dir prepended, using the
// OS-appropriate path list separator.
func PrependPath(t *testing.T, dir string) string {
	t.Helper()

	return dir + string(os.PathListSeparator) + os.Getenv("PATH")
}
