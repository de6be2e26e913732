package stocks

import (
	"context"
	"strings"
	"time"

	"github.com/bobmcallan/answerd/internal/common"
	"github.com/bobmcallan/answerd/internal/lang"
)

// Answer is a fully resolved price question.
type Answer struct {
	Symbol      string
	Price       float64
	PctChange   float64
	Window      Window
	Language    string
	ResolvedVia ResolvedVia
	Text        string
}

// Resolver answers natural language stock price questions: it detects
// the language, parses the time window, resolves the symbol, fetches
// the series and renders the localized sentence.
type Resolver struct {
	symbols  *SymbolResolver
	fetcher  *Fetcher
	detector *lang.Detector
	logger   *common.Logger
	now      func() time.Time
}

// NewResolver wires the resolution stages together.
func NewResolver(symbols *SymbolResolver, fetcher *Fetcher, detector *lang.Detector, logger *common.Logger) *Resolver {
	return &Resolver{
		symbols:  symbols,
		fetcher:  fetcher,
		detector: detector,
		logger:   logger,
		now:      time.Now,
	}
}

var queryPunctuation = strings.NewReplacer("?", "", "!", "")

// Resolve answers one price question. It returns ErrSymbolNotRecognized
// or ErrNoPriceData when the respective stage comes up empty.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Answer, error) {
	query = queryPunctuation.Replace(query)
	language := r.detector.Detect(query)
	window := ParseWindow(query, language, r.now())

	ticker, err := r.symbols.Resolve(ctx, query, language)
	if err != nil {
		return nil, err
	}

	series, err := r.fetcher.Fetch(ctx, ticker.Symbol, window)
	if err != nil {
		return nil, err
	}

	price := series.Last().Close
	pct := series.PctChange()
	r.logger.Info().
		Str("symbol", ticker.Symbol).
		Str("language", language).
		Str("window", window.CacheKey()).
		Float64("pct_change", pct).
		Msg("Price question resolved")

	return &Answer{
		Symbol:      ticker.Symbol,
		Price:       price,
		PctChange:   pct,
		Window:      window,
		Language:    language,
		ResolvedVia: ticker.ResolvedVia,
		Text:        FormatAnswer(ticker.Symbol, price, pct, window, language),
	}, nil
}
