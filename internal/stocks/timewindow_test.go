package stocks

import (
	"testing"
	"time"
)

func TestParseWindowNumericPhrases(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		query    string
		language string
		days     int
	}{
		{"english months", "how did apple do over the last 3 months", "english", 90},
		{"english six months stays numeric", "tesla over the last 6 months", "english", 180},
		{"english weeks", "microsoft last 2 weeks", "english", 14},
		{"english years", "nvidia last 2 years", "english", 730},
		{"swedish weeks", "volvo senaste 2 veckorna", "swedish", 14},
		{"german days", "bmw in den letzten 5 Tagen", "german", 5},
		{"french months", "renault sur les derniers 4 mois", "french", 120},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ParseWindow(tc.query, tc.language, now)
			if !w.IsRange() {
				t.Fatalf("expected a date range, got period %q", w.Period)
			}
			if got := w.Days(); got != tc.days {
				t.Errorf("expected %d days, got %d", tc.days, got)
			}
			if !w.End.Equal(now) {
				t.Errorf("expected range to end at now, got %v", w.End)
			}
		})
	}
}

func TestParseWindowNamedPhrases(t *testing.T) {
	now := time.Now()

	cases := []struct {
		query    string
		language string
		period   string
	}{
		{"apple last year", "english", "1y"},
		{"apple last week", "english", "1w"},
		{"hur gick volvo senaste året", "swedish", "1y"},
		{"volvo senaste månaden", "swedish", "1mo"},
		{"volvo senaste halvåret", "swedish", "6mo"},
		{"enel ultimo mese", "italian", "1mo"},
		{"gazprom последний год", "russian", "1y"},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			w := ParseWindow(tc.query, tc.language, now)
			if w.Period != tc.period {
				t.Errorf("expected period %q, got %q", tc.period, w.Period)
			}
		})
	}
}

func TestParseWindowDefaultsToOneMonth(t *testing.T) {
	w := ParseWindow("what is the apple stock price", "english", time.Now())
	if w.Period != "1mo" {
		t.Errorf("expected default period 1mo, got %q", w.Period)
	}
}

func TestParseWindowUnknownLanguageUsesEnglish(t *testing.T) {
	now := time.Now()
	w := ParseWindow("apple last 2 weeks", "finnish", now)
	if !w.IsRange() || w.Days() != 14 {
		t.Errorf("expected 14 day range, got %+v", w)
	}
}

func TestWindowCacheKey(t *testing.T) {
	named := Window{Period: "1mo"}
	if named.CacheKey() != "1mo" {
		t.Errorf("expected 1mo, got %s", named.CacheKey())
	}

	ranged := Window{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if ranged.CacheKey() != "2025-01-01_2025-03-01" {
		t.Errorf("unexpected cache key %s", ranged.CacheKey())
	}
}
