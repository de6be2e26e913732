package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bobmcallan/answerd/internal/common"
	"github.com/bobmcallan/answerd/internal/config"
	"github.com/bobmcallan/answerd/internal/intent"
	"github.com/bobmcallan/answerd/internal/stocks"
	"github.com/bobmcallan/answerd/internal/transit"
)

type fakeWeb struct {
	answer string
	calls  int
}

func (f *fakeWeb) Resolve(ctx context.Context, query string) string {
	f.calls++
	return f.answer
}

type fakeStocks struct {
	answer *stocks.Answer
	err    error
}

func (f *fakeStocks) Resolve(ctx context.Context, query string) (*stocks.Answer, error) {
	return f.answer, f.err
}

type fakeTransit struct {
	answer string
	err    error
}

func (f *fakeTransit) Resolve(ctx context.Context, query string) (string, error) {
	return f.answer, f.err
}

func testClassifier() *intent.Classifier {
	return intent.NewClassifier(config.IntentsConfig{
		TransportEnabled:  true,
		StockEnabled:      true,
		TransportTriggers: []string{"buss", "tåg"},
		StockTriggers:     []string{"stock", "aktie"},
	})
}

func newTestRouter(web *fakeWeb) *Router {
	return New(testClassifier(), web, common.NewSilentLogger())
}

func TestDefaultIntentUsesWebPipeline(t *testing.T) {
	web := &fakeWeb{answer: "Paris is the capital of France."}
	r := newTestRouter(web)

	got, err := r.Resolve(context.Background(), "what is the capital of france")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Intent != intent.Default {
		t.Errorf("expected default intent, got %s", got.Intent)
	}
	if got.Text != web.answer {
		t.Errorf("unexpected answer %q", got.Text)
	}
}

func TestStockIntentCarriesStockAnswer(t *testing.T) {
	stockAnswer := &stocks.Answer{Symbol: "AAPL", Price: 110, Text: "AAPL is up."}
	r := newTestRouter(&fakeWeb{}).WithStocks(&fakeStocks{answer: stockAnswer})

	got, err := r.Resolve(context.Background(), "apple stock please")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Intent != intent.Stock {
		t.Errorf("expected stock intent, got %s", got.Intent)
	}
	if got.Stock == nil || got.Stock.Symbol != "AAPL" {
		t.Errorf("expected stock details on the answer, got %+v", got.Stock)
	}
}

func TestStockErrorsBecomeSpokenAnswers(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"unknown symbol", stocks.ErrSymbolNotRecognized, "which company"},
		{"no price data", stocks.ErrNoPriceData, "no price data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&fakeWeb{}).WithStocks(&fakeStocks{err: tc.err})
			got, err := r.Resolve(context.Background(), "mystery stock")
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if !strings.Contains(got.Text, tc.want) {
				t.Errorf("expected %q in answer, got %q", tc.want, got.Text)
			}
		})
	}
}

func TestStockUpstreamErrorSurfaces(t *testing.T) {
	r := newTestRouter(&fakeWeb{}).WithStocks(&fakeStocks{err: errors.New("provider down")})
	if _, err := r.Resolve(context.Background(), "apple stock"); err == nil {
		t.Fatal("expected upstream error to surface")
	}
}

func TestUnwiredIntentFallsBackToWeb(t *testing.T) {
	web := &fakeWeb{answer: "fallback"}
	r := newTestRouter(web)

	got, err := r.Resolve(context.Background(), "apple stock price")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.Intent != intent.Default || web.calls != 1 {
		t.Errorf("expected web fallback for unwired stock resolver, got %+v", got)
	}
}

func TestTransitUnparsableQueryBecomesHint(t *testing.T) {
	r := newTestRouter(&fakeWeb{}).WithTransit(&fakeTransit{err: transit.ErrUnparsableQuery})

	got, err := r.Resolve(context.Background(), "när går bussen")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.Contains(got.Text, "från Slussen till Nacka") {
		t.Errorf("expected phrasing hint, got %q", got.Text)
	}
}

func TestCancelledContextSurfaces(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newTestRouter(&fakeWeb{}).WithStocks(&fakeStocks{err: context.Canceled})
	if _, err := r.Resolve(ctx, "apple stock"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context error, got %v", err)
	}
}
