package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/AntoineGS/tidybrew/internal/batch"
	"github.com/AntoineGS/tidybrew/internal/manager"
	"github.com/AntoineGS/tidybrew/internal/pkglist"
	"github.com/AntoineGS/tidybrew/internal/pkgset"
	"github.com/AntoineGS/tidybrew/internal/reconcile"
	"github.com/AntoineGS/tidybrew/internal/state"
	"github.com/AntoineGS/tidybrew/internal/tui"
	"github.com/spf13/cobra"
)

const historyTimeLayout = "2006-01-02 15:04"

func runList(cmd *cobra.Command, _ []string) error {
	mgr, _, err := createManager(cmd, false)
	if err != nil {
		return err
	}
	defer mgr.Close() //nolint:errcheck // best-effort cleanup

	installed := mgr.Refresh(cmd.Context())
	out := cmd.OutOrStdout()

	if jsonOutput {
		if listFilter != "" {
			return errors.New("--filter cannot be combined with --json")
		}

		data, err := pkglist.Marshal(pkglist.FromInstalled(installed))
		if err != nil {
			return err
		}

		_, err = out.Write(data)

		return err
	}

	printSection(out, "Casks", pkgset.Filter(listFilter, installed.Casks))
	printSection(out, "Formulae", pkgset.Filter(listFilter, installed.Formulae))

	return nil
}

func printSection(w io.Writer, title string, names []string) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(names))

	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	mgr, _, err := createManager(cmd, false)
	if err != nil {
		return err
	}
	defer mgr.Close() //nolint:errcheck // best-effort cleanup

	query := strings.Join(args, " ")
	entries := mgr.Search(cmd.Context(), query)
	out := cmd.OutOrStdout()

	if len(entries) == 0 {
		fmt.Fprintf(out, "No results for %q\n", query)
		return nil
	}

	for _, e := range entries {
		fmt.Fprintln(out, e.Label())
	}

	return nil
}

func runInstall(cmd *cobra.Command, args []string) error {
	return runBatchCommand(cmd, batch.OpInstall, args)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	return runBatchCommand(cmd, batch.OpUninstall, args)
}

func runBatchCommand(cmd *cobra.Command, op batch.Operation, names []string) error {
	mgr, _, err := createManager(cmd, true)
	if err != nil {
		return err
	}
	defer mgr.Close() //nolint:errcheck // best-effort cleanup

	ch, err := mgr.SubmitBatch(cmd.Context(), op, names)

	return waitForBatch(cmd.OutOrStdout(), ch, err)
}

// waitForBatch prints the report of the batch on ch, or a notice when
// nothing was submitted.
func waitForBatch(out io.Writer, ch <-chan batch.Result, err error) error {
	if errors.Is(err, manager.ErrNoSelection) {
		fmt.Fprintln(out, tui.MsgNoSelection)
		return nil
	}

	if err != nil {
		return err
	}

	res := <-ch

	fmt.Fprintln(out)
	fmt.Fprintln(out, res.Report())

	if res.HasFailures() {
		return fmt.Errorf("%w: %d of %d", errFailures, len(res.Failed), res.Total())
	}

	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	mgr, cfg, err := createManager(cmd, false)
	if err != nil {
		return err
	}
	defer mgr.Close() //nolint:errcheck // best-effort cleanup

	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		path, err = defaultExportPath(cfg, mgr.Platform)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()

	if showDiff {
		diff, err := mgr.ExportDiff(cmd.Context(), path)
		if err != nil {
			return err
		}

		if diff == "" {
			fmt.Fprintf(out, "%s is up to date\n", path)
		} else {
			fmt.Fprint(out, diff)
		}

		return nil
	}

	doc, err := mgr.Export(cmd.Context(), path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Exported %d casks and %d formulae to %s\n", len(doc.Cask), len(doc.Formula), path)

	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	mgr, _, err := createManager(cmd, true)
	if err != nil {
		return err
	}
	defer mgr.Close() //nolint:errcheck // best-effort cleanup

	s, err := mgr.Import(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSession(out, s)

	if dryRun {
		return nil
	}

	if len(s.Selection()) == 0 {
		fmt.Fprintln(out, tui.MsgNoSelection)
		return nil
	}

	if !assumeYes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Install %d packages?", len(s.Selection()))) {
		fmt.Fprintln(out, "Nothing installed.")
		return nil
	}

	ch, err := s.SubmitInstall(cmd.Context())

	return waitForBatch(out, ch, err)
}

func printSession(w io.Writer, s *manager.Session) {
	selectable, locked := s.Counts()
	fmt.Fprintf(w, "%s: %d to install, %d already installed\n", filepath.Base(s.Source), selectable, locked)

	for _, e := range s.Entries() {
		fmt.Fprintf(w, "  %s %s\n", checkbox(e), e.Label())
	}
}

func checkbox(e reconcile.Entry) string {
	switch {
	case !e.Selectable:
		return tui.CheckboxLocked
	case e.Selected:
		return tui.CheckboxChecked
	default:
		return tui.CheckboxUnchecked
	}
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		fmt.Fprintln(out)
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))

	return answer == "y" || answer == "yes"
}

func runHistory(cmd *cobra.Command, _ []string) error {
	var op batch.Operation

	if historyOp != "" {
		parsed, err := batch.ParseOperation(historyOp)
		if err != nil {
			return err
		}

		op = parsed
	}

	mgr, _, err := createManager(cmd, false)
	if err != nil {
		return err
	}
	defer mgr.Close() //nolint:errcheck // best-effort cleanup

	var records []state.BatchRecord
	if historyOp != "" {
		records, err = mgr.OperationHistory(cmd.Context(), op, historyLimit)
	} else {
		records, err = mgr.History(cmd.Context(), historyLimit)
	}
	if errors.Is(err, manager.ErrHistoryDisabled) {
		return fmt.Errorf("%w; set history: true in the configuration", err)
	}

	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if len(records) == 0 {
		fmt.Fprintln(out, "No batches recorded yet.")
		return nil
	}

	for _, rec := range records {
		printRecord(out, rec)
	}

	return nil
}

func printRecord(w io.Writer, rec state.BatchRecord) {
	fmt.Fprintf(w, "#%d  %s  %s on %s: %d ok, %d failed\n",
		rec.ID,
		rec.StartedAt.Local().Format(historyTimeLayout),
		rec.Operation,
		rec.Host,
		len(rec.Succeeded()),
		len(rec.Failed()))

	for _, o := range rec.Outcomes {
		if o.OK {
			fmt.Fprintf(w, "  ✓ %s\n", o.Package)
			continue
		}

		detail, _, _ := strings.Cut(o.Detail, "\n")
		if detail == "" {
			fmt.Fprintf(w, "  ✗ %s\n", o.Package)
		} else {
			fmt.Fprintf(w, "  ✗ %s: %s\n", o.Package, detail)
		}
	}
}
