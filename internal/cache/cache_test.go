package cache

import (
	"testing"
	"time"
)

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"What is the Apple price", "what is the apple price"},
		{"  spaced   out\tquery ", "spaced out query"},
		{"already normal", "already normal"},
	}
	for _, tc := range cases {
		if got := NormalizeKey(tc.in); got != tc.want {
			t.Errorf("NormalizeKey(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	c := New(time.Minute, 10)
	c.Set("apple price", "AAPL is at $189.75.")

	got, ok := c.Get("apple price")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got != "AAPL is at $189.75." {
		t.Errorf("unexpected answer %q", got)
	}

	if _, ok := c.Get("unknown"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestExpiredEntryIsRemoved(t *testing.T) {
	c := New(10*time.Millisecond, 10)
	c.Set("q", "a")

	time.Sleep(20 * time.Millisecond)
	if _, ok := c.Get("q"); ok {
		t.Error("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Errorf("expected lazy removal, still %d entries", c.Len())
	}
}

func TestEvictsOldestAtCapacity(t *testing.T) {
	c := New(time.Minute, 2)
	c.Set("first", "1")
	c.Set("second", "2")
	c.Set("third", "3")

	if _, ok := c.Get("first"); ok {
		t.Error("expected oldest entry to be evicted")
	}
	if _, ok := c.Get("second"); !ok {
		t.Error("expected second entry to survive")
	}
	if _, ok := c.Get("third"); !ok {
		t.Error("expected newest entry to survive")
	}
}

func TestUpdateInPlaceKeepsCapacity(t *testing.T) {
	c := New(time.Minute, 2)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("a", "updated")

	if got, _ := c.Get("a"); got != "updated" {
		t.Errorf("expected updated value, got %q", got)
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected update in place not to evict")
	}
}
