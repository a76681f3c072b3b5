// Package batch runs install and uninstall operations over a list of
// packages, one after another, collecting a per-package outcome.
package batch

import (
	"context"
	"fmt"
	"strings"

	"github.com/AntoineGS/tidybrew/internal/brew"
	"github.com/AntoineGS/tidybrew/internal/pkgset"
)

// Operation is the kind of change a batch applies.
type Operation int

// Batch operations.
const (
	// OpInstall installs every target
	OpInstall Operation = iota
	// OpUninstall force-uninstalls every target
	OpUninstall
)

func (o Operation) String() string {
	switch o {
	case OpInstall:
		return "install"
	case OpUninstall:
		return "uninstall"
	}

	return "unknown"
}

// pastTense is the verb used in summaries for a successful target.
func (o Operation) pastTense() string {
	if o == OpUninstall {
		return "Uninstalled"
	}

	return "Installed"
}

// ParseOperation converts "install" or "uninstall" to an Operation.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "install":
		return OpInstall, nil
	case "uninstall":
		return OpUninstall, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

// Runner applies a single-package change. *brew.Client satisfies it.
type Runner interface {
	Install(ctx context.Context, name string) error
	Uninstall(ctx context.Context, name string) error
}

var _ Runner = (*brew.Client)(nil)

// Progress reports one finished target while a batch is running.
type Progress struct {
	Name  string
	Index int // 0-based
	Total int
	OK    bool
}

// Result is the outcome of one batch. Succeeded and Failed are disjoint and
// together hold every submitted target exactly once.
type Result struct {
	Details   map[string]string // failed target -> diagnostic text
	Succeeded []string
	Failed    []string
	Operation Operation
}

// Total returns the number of targets in the batch.
func (r Result) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// HasFailures reports whether at least one target failed.
func (r Result) HasFailures() bool {
	return len(r.Failed) > 0
}

// Partial reports whether some, but not all, targets failed.
func (r Result) Partial() bool {
	return len(r.Failed) > 0 && len(r.Succeeded) > 0
}

// Summary returns the short user-facing outcome, e.g.
//
//	Installed: a, c
//	Failed: b
//
// or "Done." for an empty batch.
func (r Result) Summary() string {
	var lines []string

	if len(r.Succeeded) > 0 {
		lines = append(lines, fmt.Sprintf("%s: %s", r.Operation.pastTense(), strings.Join(r.Succeeded, ", ")))
	}

	if len(r.Failed) > 0 {
		lines = append(lines, fmt.Sprintf("Failed: %s", strings.Join(r.Failed, ", ")))
	}

	if len(lines) == 0 {
		return "Done."
	}

	return strings.Join(lines, "\n")
}

// Report returns a longer outcome with a headline, the summary, and the
// diagnostic text of each failure that carries more than its own name.
func (r Result) Report() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s complete: %d successful, %d failed\n", capitalize(r.Operation.String()), len(r.Succeeded), len(r.Failed))
	b.WriteString(r.Summary())

	for _, name := range r.Failed {
		detail := r.Details[name]
		if detail == "" || detail == name {
			continue
		}

		for i, line := range strings.Split(detail, "\n") {
			if i == 0 {
				fmt.Fprintf(&b, "\n  %s: %s", name, line)
			} else {
				fmt.Fprintf(&b, "\n    %s", line)
			}
		}
	}

	if r.Operation == OpUninstall && r.HasFailures() {
		b.WriteString("\n\nThis may be due to permissions or a cancelled password prompt.")
	}

	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}

// Run applies op to each target in order, one at a time. A failure never
// stops the batch. Exact repeats are attempted once; blank or padded names
// fail without reaching runner and are reported as given. targets is not
// modified. An empty batch returns immediately without calling runner.
// onProgress may be nil.
func Run(ctx context.Context, runner Runner, op Operation, targets []string, onProgress func(Progress)) Result {
	targets = Distinct(targets)

	result := Result{
		Operation: op,
		Succeeded: []string{},
		Failed:    []string{},
		Details:   map[string]string{},
	}

	for i, name := range targets {
		err := attempt(ctx, runner, op, name)
		if err == nil {
			result.Succeeded = append(result.Succeeded, name)
		} else {
			result.Failed = append(result.Failed, name)
			result.Details[name] = brew.DetailOf(err)
		}

		if onProgress != nil {
			onProgress(Progress{Name: name, Index: i, Total: len(targets), OK: err == nil})
		}
	}

	return result
}

// Distinct drops exact repeats, keeping the first occurrence. It is the
// target list Run works through.
func Distinct(targets []string) []string {
	seen := make(pkgset.Set, len(targets))

	out := make([]string, 0, len(targets))
	for _, name := range targets {
		if seen.Has(name) {
			continue
		}

		seen.Add(name)
		out = append(out, name)
	}

	return out
}

// attempt runs one target and turns a panic in the runner into an error so
// the target still gets an outcome.
func attempt(ctx context.Context, runner Runner, op Operation, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrRunnerPanic, r)
		}
	}()

	if name == "" || strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	switch op {
	case OpInstall:
		return runner.Install(ctx, name)
	case OpUninstall:
		return runner.Uninstall(ctx, name)
	}

	return fmt.Errorf("%w: %d", ErrUnknownOperation, op)
}
