package testutil

import (
	"context"
	"os/exec"
	"reflect"
	"strings"
	"testing"
)

func TestNewFakeBrew_ListAndLog(t *testing.T) {
	t.Parallel()

	fb := NewFakeBrew(t, FakeBrewOptions{
		Casks:    []string{"firefox"},
		Formulae: []string{"git", "wget"},
	})

	out, err := exec.CommandContext(context.Background(), fb.Path, "list", "--formula", "-1").Output()
	if err != nil {
		t.Fatalf("fake brew list failed: %v", err)
	}

	if got := strings.TrimSpace(string(out)); got != "git\nwget" {
		t.Errorf("list --formula output = %q", got)
	}

	want := []string{"list --formula -1"}
	if got := fb.Calls(t); !reflect.DeepEqual(got, want) {
		t.Errorf("Calls() = %v, want %v", got, want)
	}
}

func TestNewFakeBrew_Failures(t *testing.T) {
	t.Parallel()

	fb := NewFakeBrew(t, FakeBrewOptions{
		FailInstall:   []string{"broken"},
		FailUninstall: map[string]string{"stuck": "Error: permission denied"},
	})

	if err := exec.CommandContext(context.Background(), fb.Path, "install", "broken").Run(); err == nil {
		t.Error("install broken: expected non-zero exit")
	}

	if err := exec.CommandContext(context.Background(), fb.Path, "install", "fine").Run(); err != nil {
		t.Errorf("install fine: unexpected error %v", err)
	}

	cmd := exec.CommandContext(context.Background(), fb.Path, "uninstall", "--force", "stuck")
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err == nil {
		t.Error("uninstall stuck: expected non-zero exit")
	}

	if got := strings.TrimSpace(stderr.String()); got != "Error: permission denied" {
		t.Errorf("uninstall stderr = %q", got)
	}
}

func TestFakeBrew_CallsEmptyBeforeUse(t *testing.T) {
	t.Parallel()

	fb := NewFakeBrew(t, FakeBrewOptions{})

	if calls := fb.Calls(t); len(calls) != 0 {
		t.Errorf("Calls() = %v, want none", calls)
	}
}
