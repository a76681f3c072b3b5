package pkgset

import (
	"reflect"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "empty",
			input: nil,
			want:  []string{},
		},
		{
			name:  "duplicates collapse",
			input: []string{"wget", "wget"},
			want:  []string{"wget"},
		},
		{
			name:  "blank names skipped",
			input: []string{"", "  ", "git"},
			want:  []string{"git"},
		},
		{
			name:  "names are trimmed",
			input: []string{" firefox\t", "firefox"},
			want:  []string{"firefox"},
		},
		{
			name:  "sorted output",
			input: []string{"vscode", "alacritty", "jq"},
			want:  []string{"alacritty", "jq", "vscode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := New(tt.input...).Sorted()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("New(%v).Sorted() = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestUnion(t *testing.T) {
	t.Parallel()

	a := New("firefox", "wget")
	b := New("wget", "jq")

	u := a.Union(b)

	want := []string{"firefox", "jq", "wget"}
	if got := u.Sorted(); !reflect.DeepEqual(got, want) {
		t.Errorf("Union = %v, want %v", got, want)
	}

	// Inputs are left untouched
	if a.Len() != 2 || b.Len() != 2 {
		t.Errorf("Union mutated inputs: a=%d b=%d", a.Len(), b.Len())
	}
}

func TestHas(t *testing.T) {
	t.Parallel()

	s := New("git")

	if !s.Has("git") {
		t.Error("Has(git) = false, want true")
	}

	if s.Has("Git") {
		t.Error("Has(Git) = true, identifiers are case-sensitive")
	}
}

func TestUnique(t *testing.T) {
	t.Parallel()

	in := []string{"b", "a", "b", " ", "c", "a"}
	got := Unique(in)

	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Unique() = %v, want %v", got, want)
	}

	if len(in) != 6 || in[0] != "b" {
		t.Errorf("Unique mutated its input: %v", in)
	}
}

func TestFilter(t *testing.T) {
	t.Parallel()

	names := []string{"firefox", "github-cli", "git", "wget"}

	tests := []struct {
		name    string
		pattern string
		want    []string
	}{
		{"empty pattern keeps everything", "  ", names},
		{"no match", "zzz", []string{}},
		{"exact name ranks first", "git", []string{"git", "github-cli"}},
		{"subsequence", "ffx", []string{"firefox"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Filter(tt.pattern, names); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Filter(%q) = %v, want %v", tt.pattern, got, tt.want)
			}
		})
	}
}
