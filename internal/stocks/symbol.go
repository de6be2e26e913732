package stocks

import (
	"context"
	"regexp"
	"sort"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/bobmcallan/answerd/internal/common"
)

// ResolvedVia names the resolution stage that produced a ticker.
type ResolvedVia string

const (
	ViaExact          ResolvedVia = "exact"
	ViaFuzzy          ResolvedVia = "fuzzy"
	ViaExternalLookup ResolvedVia = "external_lookup"
)

// Ticker is a resolved stock symbol together with how it was found.
type Ticker struct {
	Symbol      string
	ResolvedVia ResolvedVia
	MatchScore  int
}

// ChatFunc asks the conversational fallback a single question.
type ChatFunc func(ctx context.Context, prompt string) (string, error)

const defaultFuzzyThreshold = 80

// tickerPattern matches exchange-style symbols such as AAPL or VOLV-B.
var tickerPattern = regexp.MustCompile(`\b[A-Z0-9]{2,5}(?:-[A-Z])?\b`)

// languageSuffixes maps a detected query language to the exchange
// suffix appended to symbols found by the fuzzy and lookup stages.
var languageSuffixes = map[string]string{
	"swedish":    ".ST",
	"german":     ".DE",
	"french":     ".PA",
	"spanish":    ".MC",
	"italian":    ".MI",
	"portuguese": ".LS",
	"dutch":      ".AS",
	"polish":     ".WA",
}

type exactEntry struct {
	name   string
	symbol string
}

// SymbolResolver maps free-form queries to ticker symbols using three
// stages in order: configured exact names, fuzzy matching against the
// bundled universe, then a conversational lookup.
type SymbolResolver struct {
	exact          []exactEntry
	universe       *Universe
	chat           ChatFunc
	fuzzyThreshold int
	logger         *common.Logger
}

// NewSymbolResolver builds a resolver over the configured name table
// and the bundled universe. chat may be nil to disable the last stage.
func NewSymbolResolver(nameToSymbol map[string]string, universe *Universe, chat ChatFunc, logger *common.Logger) *SymbolResolver {
	entries := make([]exactEntry, 0, len(nameToSymbol))
	for name, symbol := range nameToSymbol {
		entries = append(entries, exactEntry{name: strings.ToLower(name), symbol: symbol})
	}
	// Longer names first so "volvo cars" wins over "volvo".
	sort.Slice(entries, func(i, j int) bool {
		if len(entries[i].name) != len(entries[j].name) {
			return len(entries[i].name) > len(entries[j].name)
		}
		return entries[i].name < entries[j].name
	})
	return &SymbolResolver{
		exact:          entries,
		universe:       universe,
		chat:           chat,
		fuzzyThreshold: defaultFuzzyThreshold,
		logger:         logger,
	}
}

// Resolve runs the stages in order and returns the first hit, or
// ErrSymbolNotRecognized when every stage comes up empty.
func (r *SymbolResolver) Resolve(ctx context.Context, query, language string) (*Ticker, error) {
	if t := r.exactMatch(query); t != nil {
		r.logger.Debug().Str("symbol", t.Symbol).Msg("Symbol resolved by exact name")
		return t, nil
	}
	if t := r.fuzzyMatch(query); t != nil {
		t.Symbol = applySuffix(t.Symbol, language)
		r.logger.Debug().Str("symbol", t.Symbol).Int("score", t.MatchScore).Msg("Symbol resolved by fuzzy match")
		return t, nil
	}
	t, err := r.externalLookup(ctx, query)
	if err != nil {
		return nil, err
	}
	t.Symbol = applySuffix(t.Symbol, language)
	r.logger.Debug().Str("symbol", t.Symbol).Msg("Symbol resolved by external lookup")
	return t, nil
}

func (r *SymbolResolver) exactMatch(query string) *Ticker {
	lowered := strings.ToLower(query)
	for _, e := range r.exact {
		if strings.Contains(lowered, e.name) {
			return &Ticker{Symbol: e.symbol, ResolvedVia: ViaExact}
		}
	}
	return nil
}

// fuzzyMatch scores every contiguous word subsequence of the query
// against the universe names. Longer subsequences are tried first so a
// tied score keeps the more specific phrase.
func (r *SymbolResolver) fuzzyMatch(query string) *Ticker {
	if r.universe == nil || r.universe.Len() == 0 {
		return nil
	}
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 {
		return nil
	}

	bestScore := 0
	bestName := ""
	for length := len(words); length >= 1; length-- {
		for start := 0; start+length <= len(words); start++ {
			phrase := strings.Join(words[start:start+length], " ")
			for _, name := range r.universe.AllCompanyNames() {
				score := fuzzy.PartialRatio(phrase, strings.ToLower(name))
				if score > bestScore {
					bestScore = score
					bestName = name
				}
			}
		}
	}
	if bestScore < r.fuzzyThreshold {
		return nil
	}
	symbol, ok := r.universe.SymbolForName(bestName)
	if !ok {
		return nil
	}
	return &Ticker{Symbol: symbol, ResolvedVia: ViaFuzzy, MatchScore: bestScore}
}

func (r *SymbolResolver) externalLookup(ctx context.Context, query string) (*Ticker, error) {
	if r.chat == nil {
		return nil, ErrSymbolNotRecognized
	}
	reply, err := r.chat(ctx, query+" stock symbol")
	if err != nil {
		r.logger.Warn().Err(err).Msg("Symbol lookup via chat failed")
		return nil, ErrSymbolNotRecognized
	}
	match := tickerPattern.FindString(reply)
	if match == "" {
		return nil, ErrSymbolNotRecognized
	}
	return &Ticker{Symbol: match, ResolvedVia: ViaExternalLookup}, nil
}

// applySuffix appends the language's exchange suffix unless the symbol
// already names an exchange.
func applySuffix(symbol, language string) string {
	suffix, ok := languageSuffixes[language]
	if !ok || strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + suffix
}
