package stocks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/answerd/internal/common"
	"github.com/bobmcallan/answerd/internal/lang"
)

func newTestResolver(t *testing.T, names map[string]string, provider Provider) *Resolver {
	t.Helper()
	logger := common.NewSilentLogger()
	symbols := NewSymbolResolver(names, nil, nil, logger)
	fetcher := newTestFetcher(provider, newMemCache())
	r := NewResolver(symbols, fetcher, lang.NewDetector("english"), logger)
	r.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestResolveSwedishAppleQuestion(t *testing.T) {
	provider := &fakeProvider{points: seriesOf(100, 110).Points}
	r := newTestResolver(t, map[string]string{"apple": "AAPL"}, provider)

	answer, err := r.Resolve(context.Background(), "vad är priset på apple aktien senaste månaden?")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if answer.Symbol != "AAPL" {
		t.Errorf("expected AAPL, got %s", answer.Symbol)
	}
	if answer.Language != "swedish" {
		t.Errorf("expected swedish, got %s", answer.Language)
	}
	if answer.Window.Period != "1mo" {
		t.Errorf("expected 1mo window, got %q", answer.Window.Period)
	}
	if answer.PctChange != 10.0 {
		t.Errorf("expected 10.0 change, got %.2f", answer.PctChange)
	}
	// AAPL is not a Stockholm listing, so the swedish answer prices in
	// dollars.
	if !strings.Contains(answer.Text, "110.00 dollar") {
		t.Errorf("unexpected answer text %q", answer.Text)
	}
	if !strings.Contains(answer.Text, "gått upp") {
		t.Errorf("expected rise wording, got %q", answer.Text)
	}
}

func TestResolveStripsPunctuationBeforeMatching(t *testing.T) {
	provider := &fakeProvider{points: seriesOf(50, 45).Points}
	r := newTestResolver(t, map[string]string{"tesla!": "WRONG", "tesla": "TSLA"}, provider)

	answer, err := r.Resolve(context.Background(), "tesla price?!")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if answer.Symbol != "TSLA" {
		t.Errorf("expected TSLA, got %s", answer.Symbol)
	}
	if answer.PctChange != -10.0 {
		t.Errorf("expected -10.0 change, got %.2f", answer.PctChange)
	}
}

func TestResolveUnknownCompany(t *testing.T) {
	r := newTestResolver(t, nil, &fakeProvider{})
	_, err := r.Resolve(context.Background(), "price of some unknown thing")
	if !errors.Is(err, ErrSymbolNotRecognized) {
		t.Errorf("expected ErrSymbolNotRecognized, got %v", err)
	}
}

func TestResolveNoPriceData(t *testing.T) {
	r := newTestResolver(t, map[string]string{"apple": "AAPL"}, &fakeProvider{})
	_, err := r.Resolve(context.Background(), "apple stock price")
	if !errors.Is(err, ErrNoPriceData) {
		t.Errorf("expected ErrNoPriceData, got %v", err)
	}
}
