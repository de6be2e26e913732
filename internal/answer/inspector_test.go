package answer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"
)

func newTestInspector() *Inspector {
	return NewInspector(NewScorer(nil), nil)
}

func TestInspect_PrefersStructuredData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
<script type="application/ld+json">{"name":"weather report for oslo"}</script>
<meta content="weather in oslo is cold">
</head><body>weather text</body></html>`)
	}))
	defer srv.Close()

	ext := newTestInspector().Inspect(context.Background(), srv.URL, "weather oslo")
	if ext == nil {
		t.Fatal("expected an extraction")
	}
	if ext.Origin != OriginStructuredData {
		t.Errorf("expected structured data origin, got %s", ext.Origin)
	}
	if !strings.Contains(ext.Text, "weather report") {
		t.Errorf("unexpected extraction text: %q", ext.Text)
	}
}

func TestInspect_FallsBackToContentAttr(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
<meta content="Weather in Oslo is cold today">
</head><body>unrelated body</body></html>`)
	}))
	defer srv.Close()

	ext := newTestInspector().Inspect(context.Background(), srv.URL, "weather oslo")
	if ext == nil {
		t.Fatal("expected an extraction")
	}
	if ext.Origin != OriginTaggedElement {
		t.Errorf("expected tagged element origin, got %s", ext.Origin)
	}
	if ext.Text != "weather in oslo is cold today" {
		t.Errorf("content attr extraction should be lower-cased, got %q", ext.Text)
	}
}

func TestInspect_FallsBackToPageText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>The weather in Oslo is cold.</p></body></html>`)
	}))
	defer srv.Close()

	ext := newTestInspector().Inspect(context.Background(), srv.URL, "weather oslo")
	if ext == nil {
		t.Fatal("expected an extraction")
	}
	if ext.Origin != OriginPageText {
		t.Errorf("expected page text origin, got %s", ext.Origin)
	}
}

func TestInspect_NothingRelevant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>gardening tips</p></body></html>`)
	}))
	defer srv.Close()

	if ext := newTestInspector().Inspect(context.Background(), srv.URL, "quantum flux"); ext != nil {
		t.Errorf("expected nil extraction, got %+v", ext)
	}
}

func TestInspect_TruncatesTo500(t *testing.T) {
	long := strings.Repeat("weather ", 200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body><p>%s</p></body></html>`, long)
	}))
	defer srv.Close()

	ext := newTestInspector().Inspect(context.Background(), srv.URL, "weather")
	if ext == nil {
		t.Fatal("expected an extraction")
	}
	if len(ext.Text) != 500 {
		t.Errorf("expected exactly 500 chars, got %d", len(ext.Text))
	}
}

func TestTruncateKeepsRuneBoundary(t *testing.T) {
	// "aå" is three bytes, so byte 500 lands inside a rune.
	long := strings.Repeat("aå", 300)

	got := truncate(long)
	if len(got) > 500 {
		t.Errorf("expected at most 500 bytes, got %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("expected truncated text to remain valid UTF-8")
	}
	if !strings.HasSuffix(got, "a") {
		t.Errorf("expected the split rune to be dropped, got trailing %q", got[len(got)-1:])
	}
}

func TestInspect_RetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `<html><body><p>weather is fine</p></body></html>`)
	}))
	defer srv.Close()

	ext := newTestInspector().Inspect(context.Background(), srv.URL, "weather")
	if ext == nil {
		t.Fatal("expected an extraction after retries")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 fetch attempts, got %d", got)
	}
}

func TestInspect_GivesUpAfterThreeAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if ext := newTestInspector().Inspect(context.Background(), srv.URL, "weather"); ext != nil {
		t.Errorf("expected nil extraction, got %+v", ext)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", got)
	}
}
