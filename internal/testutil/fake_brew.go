package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// FakeBrewOptions describes how a fake brew binary behaves.
type FakeBrewOptions struct {
	// FailUninstall maps a package name to the stderr printed before exiting 1.
	FailUninstall map[string]string
	Casks         []string
	Formulae      []string
	Search        []string
	FailInstall   []string
	FailCasks     bool
	FailFormulae  bool
	FailSearch    bool
}

// FakeBrew is a scripted stand-in for the brew binary. Every invocation is
// appended to a call log so tests can assert which commands ran.
type FakeBrew struct {
	Path    string
	LogPath string
}

// NewFakeBrew writes a fake brew script into a temp directory.
func NewFakeBrew(t *testing.T, opts FakeBrewOptions) *FakeBrew {
	t.Helper()

	dir := t.TempDir()
	logPath := filepath.Join(dir, "calls.log")

	var b strings.Builder
	fmt.Fprintf(&b, "echo \"$*\" >> %s\n", shellQuote(logPath))
	b.WriteString("case \"$1\" in\n")

	b.WriteString("list)\n")
	b.WriteString("  case \"$2\" in\n")
	writeListCase(&b, "--cask", opts.Casks, opts.FailCasks)
	writeListCase(&b, "--formula", opts.Formulae, opts.FailFormulae)
	b.WriteString("  esac\n")
	b.WriteString("  ;;\n")

	b.WriteString("search)\n")
	if opts.FailSearch {
		b.WriteString("  echo 'Error: No formulae or casks found.' >&2\n  exit 1\n")
	} else {
		b.WriteString("  echo '==> Formulae'\n")
		writeEcho(&b, opts.Search)
		b.WriteString("  echo ''\n")
	}
	b.WriteString("  ;;\n")

	b.WriteString("install)\n")
	b.WriteString("  case \"$2\" in\n")
	for _, name := range opts.FailInstall {
		fmt.Fprintf(&b, "    %s) echo 'Error: install failed' >&2; exit 1 ;;\n", shellQuote(name))
	}
	b.WriteString("  esac\n")
	b.WriteString("  echo \"==> Installing $2\"\n")
	b.WriteString("  ;;\n")

	b.WriteString("uninstall)\n")
	b.WriteString("  case \"$3\" in\n")
	names := make([]string, 0, len(opts.FailUninstall))
	for name := range opts.FailUninstall {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "    %s) echo %s >&2; exit 1 ;;\n", shellQuote(name), shellQuote(opts.FailUninstall[name]))
	}
	b.WriteString("  esac\n")
	b.WriteString("  echo \"Uninstalling $3\"\n")
	b.WriteString("  ;;\n")

	b.WriteString("esac\n")
	b.WriteString("exit 0\n")

	return &FakeBrew{
		Path:    CreateScriptBinary(t, dir, "brew", b.String()),
		LogPath: logPath,
	}
}

// Calls returns every recorded invocation as its space-joined arguments.
func (f *FakeBrew) Calls(t *testing.T) []string {
	t.Helper()

	data, err := os.ReadFile(f.LogPath)
	if os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		t.Fatalf("reading fake brew call log: %v", err)
	}

	var calls []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line != "" {
			calls = append(calls, line)
		}
	}

	return calls
}

func writeListCase(b *strings.Builder, flag string, names []string, fail bool) {
	fmt.Fprintf(b, "    %s)\n", flag)
	if fail {
		b.WriteString("      echo 'Error: listing failed' >&2\n      exit 1\n")
	} else {
		writeEcho(b, names)
	}
	b.WriteString("      ;;\n")
}

func writeEcho(b *strings.Builder, names []string) {
	for _, name := range names {
		fmt.Fprintf(b, "      echo %s\n", shellQuote(name))
	}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
