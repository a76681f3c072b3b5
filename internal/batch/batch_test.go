package batch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/AntoineGS/tidybrew/internal/brew"
	"github.com/sebdah/goldie/v2"
)

// fakeRunner records calls and fails the names listed in fail.
type fakeRunner struct {
	fail    map[string]error
	panicOn string
	block   chan struct{}

	mu    sync.Mutex
	calls []string
}

func (f *fakeRunner) do(verb, name string) error {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	f.calls = append(f.calls, verb+" "+name)
	f.mu.Unlock()

	if name == f.panicOn {
		panic("boom")
	}

	if err, ok := f.fail[name]; ok {
		return err
	}

	return nil
}

func (f *fakeRunner) Install(_ context.Context, name string) error {
	return f.do("install", name)
}

func (f *fakeRunner) Uninstall(_ context.Context, name string) error {
	return f.do("uninstall", name)
}

func (f *fakeRunner) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.calls))
	copy(out, f.calls)

	return out
}

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		op            Operation
		targets       []string
		fail          map[string]error
		wantSucceeded []string
		wantFailed    []string
		wantCalls     []string
		wantSummary   string
	}{
		{
			name:          "one failure does not stop the batch",
			op:            OpInstall,
			targets:       []string{"a", "b", "c"},
			fail:          map[string]error{"b": brew.NewToolError(brew.OpInstall, "b", "b", 1, errors.New("exit status 1"))},
			wantSucceeded: []string{"a", "c"},
			wantFailed:    []string{"b"},
			wantCalls:     []string{"install a", "install b", "install c"},
			wantSummary:   "Installed: a, c\nFailed: b",
		},
		{
			name:          "empty batch",
			op:            OpUninstall,
			targets:       nil,
			wantSucceeded: []string{},
			wantFailed:    []string{},
			wantCalls:     []string{},
			wantSummary:   "Done.",
		},
		{
			name:          "all uninstalled",
			op:            OpUninstall,
			targets:       []string{"wget", "jq"},
			wantSucceeded: []string{"wget", "jq"},
			wantFailed:    []string{},
			wantCalls:     []string{"uninstall wget", "uninstall jq"},
			wantSummary:   "Uninstalled: wget, jq",
		},
		{
			name:          "all failed",
			op:            OpInstall,
			targets:       []string{"x"},
			fail:          map[string]error{"x": errors.New("nope")},
			wantSucceeded: []string{},
			wantFailed:    []string{"x"},
			wantCalls:     []string{"install x"},
			wantSummary:   "Failed: x",
		},
		{
			name:          "repeated names attempted once",
			op:            OpInstall,
			targets:       []string{"a", "a", "b"},
			wantSucceeded: []string{"a", "b"},
			wantFailed:    []string{},
			wantCalls:     []string{"install a", "install b"},
			wantSummary:   "Installed: a, b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			runner := &fakeRunner{fail: tt.fail}
			got := Run(context.Background(), runner, tt.op, tt.targets, nil)

			if !reflect.DeepEqual(got.Succeeded, tt.wantSucceeded) {
				t.Errorf("Succeeded = %v, want %v", got.Succeeded, tt.wantSucceeded)
			}

			if !reflect.DeepEqual(got.Failed, tt.wantFailed) {
				t.Errorf("Failed = %v, want %v", got.Failed, tt.wantFailed)
			}

			if calls := runner.recorded(); !reflect.DeepEqual(calls, tt.wantCalls) {
				t.Errorf("runner calls = %v, want %v", calls, tt.wantCalls)
			}

			if s := got.Summary(); s != tt.wantSummary {
				t.Errorf("Summary() = %q, want %q", s, tt.wantSummary)
			}

			if got.Operation != tt.op {
				t.Errorf("Operation = %v, want %v", got.Operation, tt.op)
			}
		})
	}
}

func TestRun_OutcomesPartitionTargets(t *testing.T) {
	t.Parallel()

	targets := []string{"p1", "p2", "p3", "p4", "p5"}
	runner := &fakeRunner{fail: map[string]error{
		"p2": errors.New("x"),
		"p5": errors.New("y"),
	}}

	got := Run(context.Background(), runner, OpInstall, targets, nil)

	seen := map[string]int{}
	for _, n := range got.Succeeded {
		seen[n]++
	}

	for _, n := range got.Failed {
		seen[n]++
	}

	if len(seen) != len(targets) {
		t.Fatalf("outcomes cover %d names, want %d", len(seen), len(targets))
	}

	for _, n := range targets {
		if seen[n] != 1 {
			t.Errorf("%s appears %d times across outcomes, want 1", n, seen[n])
		}
	}

	if got.Total() != len(targets) {
		t.Errorf("Total() = %d, want %d", got.Total(), len(targets))
	}

	if !got.Partial() {
		t.Error("Partial() = false, want true")
	}
}

func TestRun_DoesNotModifyTargets(t *testing.T) {
	t.Parallel()

	targets := []string{"b", "a", "b"}
	Run(context.Background(), &fakeRunner{}, OpInstall, targets, nil)

	if want := []string{"b", "a", "b"}; !reflect.DeepEqual(targets, want) {
		t.Errorf("targets = %v after Run, want %v", targets, want)
	}
}

func TestRun_MalformedNamesReportedVerbatim(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	got := Run(context.Background(), runner, OpInstall, []string{" a", "", "b", ""}, nil)

	if want := []string{"b"}; !reflect.DeepEqual(got.Succeeded, want) {
		t.Errorf("Succeeded = %q, want %q", got.Succeeded, want)
	}

	if want := []string{" a", ""}; !reflect.DeepEqual(got.Failed, want) {
		t.Errorf("Failed = %q, want %q", got.Failed, want)
	}

	if want := []string{"install b"}; !reflect.DeepEqual(runner.recorded(), want) {
		t.Errorf("calls = %q, want %q", runner.recorded(), want)
	}

	for _, name := range got.Failed {
		if got.Details[name] == "" {
			t.Errorf("Details[%q] is empty", name)
		}
	}
}

func TestDistinct(t *testing.T) {
	t.Parallel()

	got := Distinct([]string{"a", "a ", "b", "a", ""})

	if want := []string{"a", "a ", "b", ""}; !reflect.DeepEqual(got, want) {
		t.Errorf("Distinct() = %q, want %q", got, want)
	}
}

func TestRun_RecoversRunnerPanic(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{panicOn: "b"}
	got := Run(context.Background(), runner, OpUninstall, []string{"a", "b", "c"}, nil)

	if want := []string{"a", "c"}; !reflect.DeepEqual(got.Succeeded, want) {
		t.Errorf("Succeeded = %v, want %v", got.Succeeded, want)
	}

	if want := []string{"b"}; !reflect.DeepEqual(got.Failed, want) {
		t.Errorf("Failed = %v, want %v", got.Failed, want)
	}
}

func TestRun_Progress(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{fail: map[string]error{"b": errors.New("x")}}

	var got []Progress
	Run(context.Background(), runner, OpInstall, []string{"a", "b"}, func(p Progress) {
		got = append(got, p)
	})

	want := []Progress{
		{Name: "a", Index: 0, Total: 2, OK: true},
		{Name: "b", Index: 1, Total: 2, OK: false},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("progress = %+v, want %+v", got, want)
	}
}

func TestRun_DetailsCarryToolDetail(t *testing.T) {
	t.Parallel()

	stderr := "Error: Permission denied @ apply2files"
	runner := &fakeRunner{fail: map[string]error{
		"docker": brew.NewToolError(brew.OpUninstall, "docker", stderr, 1, errors.New("exit status 1")),
	}}

	got := Run(context.Background(), runner, OpUninstall, []string{"docker"}, nil)

	if got.Details["docker"] != stderr {
		t.Errorf("Details[docker] = %q, want %q", got.Details["docker"], stderr)
	}
}

func TestReport_Golden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result Result
	}{
		{
			name: "report_install_partial",
			result: Result{
				Operation: OpInstall,
				Succeeded: []string{"a", "c"},
				Failed:    []string{"b"},
				Details:   map[string]string{"b": "b"},
			},
		},
		{
			name: "report_uninstall_failed",
			result: Result{
				Operation: OpUninstall,
				Succeeded: []string{"jq"},
				Failed:    []string{"docker"},
				Details: map[string]string{
					"docker": "Error: Permission denied @ apply2files\nsudo: a password is required",
				},
			},
		},
		{
			name:   "report_empty",
			result: Result{Operation: OpInstall},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := goldie.New(t)
			g.Assert(t, tt.name, []byte(tt.result.Report()))
		})
	}
}

func TestParseOperation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Operation
		wantErr bool
	}{
		{"install", OpInstall, false},
		{"Uninstall", OpUninstall, false},
		{" install ", OpInstall, false},
		{"upgrade", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOperation(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownOperation) {
					t.Errorf("ParseOperation(%q) error = %v, want ErrUnknownOperation", tt.input, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("ParseOperation(%q) unexpected error: %v", tt.input, err)
			}

			if got != tt.want {
				t.Errorf("ParseOperation(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExecutor_SubmitDeliversOneResult(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{fail: map[string]error{"b": errors.New("x")}}

	var hooked Result

	exec := NewExecutor(runner, WithCompletionHook(func(r Result, _ time.Time) {
		hooked = r
	}))

	ch, err := exec.Submit(context.Background(), OpInstall, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	got := <-ch

	if want := []string{"a", "c"}; !reflect.DeepEqual(got.Succeeded, want) {
		t.Errorf("Succeeded = %v, want %v", got.Succeeded, want)
	}

	if _, ok := <-ch; ok {
		t.Error("channel delivered a second value, want closed")
	}

	if !reflect.DeepEqual(hooked, got) {
		t.Errorf("completion hook saw %+v, want %+v", hooked, got)
	}

	if exec.Busy() {
		t.Error("Busy() = true after result delivered")
	}
}

func TestExecutor_EmptyBatch(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	exec := NewExecutor(runner)

	ch, err := exec.Submit(context.Background(), OpUninstall, nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	select {
	case got := <-ch:
		if got.Total() != 0 || got.Summary() != "Done." {
			t.Errorf("empty batch result = %+v", got)
		}
	default:
		t.Fatal("empty batch result not available immediately")
	}

	if calls := runner.recorded(); len(calls) != 0 {
		t.Errorf("runner called for empty batch: %v", calls)
	}
}

func TestExecutor_RejectsWhileBusy(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{block: make(chan struct{})}
	exec := NewExecutor(runner)

	first, err := exec.Submit(context.Background(), OpInstall, []string{"a"})
	if err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}

	if !exec.Busy() {
		t.Error("Busy() = false while a batch is running")
	}

	if _, err := exec.Submit(context.Background(), OpUninstall, []string{"z"}); !errors.Is(err, ErrBusy) {
		t.Errorf("second Submit() error = %v, want ErrBusy", err)
	}

	close(runner.block)
	got := <-first

	if want := []string{"a"}; !reflect.DeepEqual(got.Succeeded, want) {
		t.Errorf("Succeeded = %v, want %v", got.Succeeded, want)
	}

	if calls := runner.recorded(); !reflect.DeepEqual(calls, []string{"install a"}) {
		t.Errorf("runner calls = %v, rejected batch must not run", calls)
	}

	// Accepts new work once idle
	next, err := exec.Submit(context.Background(), OpUninstall, []string{"a"})
	if err != nil {
		t.Fatalf("Submit() after completion error = %v", err)
	}

	<-next
}

func TestExecutor_CopiesTargets(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{block: make(chan struct{})}
	exec := NewExecutor(runner)

	targets := []string{"a", "b"}

	ch, err := exec.Submit(context.Background(), OpInstall, targets)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	targets[0] = "mutated"
	close(runner.block)

	got := <-ch
	if want := []string{"a", "b"}; !reflect.DeepEqual(got.Succeeded, want) {
		t.Errorf("Succeeded = %v, want %v", got.Succeeded, want)
	}
}

func ExampleResult_Summary() {
	r := Result{Operation: OpInstall, Succeeded: []string{"a", "c"}, Failed: []string{"b"}}
	fmt.Println(r.Summary())
	// Output:
	// Installed: a, c
	// Failed: b
}
