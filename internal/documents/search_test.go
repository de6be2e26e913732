package documents

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobmcallan/answerd/internal/common"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestSearcher(t *testing.T, dir string) *Searcher {
	t.Helper()
	triggers := []string{"document", "documents", "dokument", "file"}
	return NewSearcher(dir, 1, triggers, common.NewSilentLogger())
}

func TestStripTriggers(t *testing.T) {
	s := newTestSearcher(t, t.TempDir())

	cases := []struct {
		in   string
		want string
	}{
		{"search my documents for pancake recipe", "search my for pancake recipe"},
		{"dokument om semester", "om semester"},
		{"file notes?", "notes"},
	}
	for _, tc := range cases {
		if got := s.StripTriggers(tc.in); got != tc.want {
			t.Errorf("StripTriggers(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestSearchFindsCaseInsensitiveMatches(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "recipes.txt", "Breakfast ideas\nPancake Recipe with eggs\nServe warm\nUnrelated line")
	writeDoc(t, dir, "notes.md", "pancake recipe again\nmore text")
	writeDoc(t, dir, "ignored.pdf", "pancake recipe binary")

	s := newTestSearcher(t, dir)
	matches, err := s.Search("pancake recipe")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches across txt and md only, got %d", len(matches))
	}
}

func TestSearchIncludesContextWindow(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "doc.txt", "line one\nline two\nTARGET line\nline four\nline five")

	s := newTestSearcher(t, dir)
	matches, err := s.Search("target")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Line != 3 {
		t.Errorf("expected line 3, got %d", m.Line)
	}
	want := "line two\nTARGET line\nline four"
	if m.Excerpt != want {
		t.Errorf("expected excerpt %q, got %q", want, m.Excerpt)
	}
}

func TestSearchContextClampedAtFileEdges(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "doc.txt", "TARGET first\nsecond")

	s := newTestSearcher(t, dir)
	matches, err := s.Search("target")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if matches[0].Excerpt != "TARGET first\nsecond" {
		t.Errorf("unexpected excerpt %q", matches[0].Excerpt)
	}
}

func TestResolveJoinsExcerptsWithRule(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.txt", "pancake here")
	writeDoc(t, dir, "b.txt", "pancake there")

	s := newTestSearcher(t, dir)
	answer, err := s.Resolve("documents pancake")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(answer, "\n---\n") {
		t.Errorf("expected rule between excerpts, got %q", answer)
	}
	if !strings.Contains(answer, "a.txt") || !strings.Contains(answer, "b.txt") {
		t.Errorf("expected both files named, got %q", answer)
	}
}

func TestResolveNoMatches(t *testing.T) {
	s := newTestSearcher(t, t.TempDir())
	answer, err := s.Resolve("documents nothing here")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(answer, "couldn't find") {
		t.Errorf("expected miss message, got %q", answer)
	}
}
