package answer

import (
	"context"

	"github.com/bobmcallan/answerd/internal/common"
	"github.com/bobmcallan/answerd/internal/search"
)

// Fixed user-facing texts. Upstream failures are always recovered into one
// of these; the pipeline never surfaces a hard error to its caller.
const (
	NoResultsAnswer = "No search results were found."
	NoAnswerText    = "I searched the web but couldn't find a clear answer to your question."
	ChatApology     = "I couldn't find the information directly, and the AI Chat also encountered an issue."
)

// Config bounds the search/inspect loop.
type Config struct {
	// Depth caps both the number of candidate URLs inspected per pass and
	// the number of passes before the terminal fallback.
	Depth             int
	MaxResults        int
	MinScoreThreshold int
	FallbackToChat    bool
	// LoopUntilSuccess retries passes indefinitely. The loop is still
	// bounded by the caller's context deadline; without one it would spin
	// forever, so callers must supply a deadline when enabling this.
	LoopUntilSuccess bool
}

// Resolver orchestrates search, snippet scoring, page inspection and the
// generative fallback for free-text questions.
type Resolver struct {
	search    search.Client
	inspector *Inspector
	scorer    *Scorer
	cfg       Config
	logger    *common.Logger
}

// NewResolver wires the pipeline components together.
func NewResolver(sc search.Client, inspector *Inspector, scorer *Scorer, cfg Config, logger *common.Logger) *Resolver {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Resolver{
		search:    sc,
		inspector: inspector,
		scorer:    scorer,
		cfg:       cfg,
		logger:    logger,
	}
}

// Resolve answers a free-text query. It always returns an answer string;
// every upstream failure is recovered into a fixed text or the generative
// fallback.
func (r *Resolver) Resolve(ctx context.Context, query string) string {
	results, err := r.search.Text(ctx, query, r.cfg.MaxResults)
	if err != nil {
		r.logger.Warn().Str("error", err.Error()).Msg("web search failed")
		return r.terminalFallback(ctx, query)
	}
	if len(results) == 0 {
		return NoResultsAnswer
	}

	queryWords := QueryWords(query)

	attempts := 0
	for attempts < r.cfg.Depth || r.cfg.LoopUntilSuccess {
		if ctx.Err() != nil {
			break
		}

		if snippet, ok := r.bestSnippet(results, queryWords); ok {
			return snippet
		}

		limit := r.cfg.Depth
		if limit > len(results) {
			limit = len(results)
		}
		for _, candidate := range results[:limit] {
			if ctx.Err() != nil {
				break
			}
			ext := r.inspector.Inspect(ctx, candidate.URL, query)
			if ext == nil {
				continue
			}
			r.logger.Debug().
				Str("url", ext.SourceURL).
				Str("origin", string(ext.Origin)).
				Msg("page extraction found, escalating to chat")
			// Raw page text is never trusted as a final answer; it is
			// always routed through the generative step as grounding.
			return r.chat(ctx, query, ext.Text)
		}

		attempts++
		if !r.cfg.LoopUntilSuccess {
			break
		}
	}

	return r.terminalFallback(ctx, query)
}

func (r *Resolver) terminalFallback(ctx context.Context, query string) string {
	if r.cfg.FallbackToChat {
		return r.chat(ctx, query, "")
	}
	return NoAnswerText
}

// bestSnippet scores candidate snippets in rank order and accepts the best
// one the moment it reaches the threshold. The scan is greedy: the first
// candidate, in search-rank order, to reach the threshold wins.
func (r *Resolver) bestSnippet(results []search.Candidate, queryWords []string) (string, bool) {
	bestScore := 0
	best := ""

	for _, result := range results {
		score := r.scorer.Score(result.Snippet, queryWords)
		if score > bestScore {
			bestScore = score
			best = result.Snippet
		}
		if bestScore >= r.cfg.MinScoreThreshold {
			return best, true
		}
	}
	return "", false
}

// chat sends the query, optionally grounded with an extracted data block,
// to the generative backend. Failures become a fixed apology string.
func (r *Resolver) chat(ctx context.Context, query, dataBlock string) string {
	prompt := query
	if dataBlock != "" {
		prompt = query + "\n\nData Block:\n" + dataBlock
	}

	response, err := r.search.Chat(ctx, prompt)
	if err != nil {
		r.logger.Warn().Str("error", err.Error()).Msg("chat fallback failed")
		return ChatApology
	}
	return response
}
