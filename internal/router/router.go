package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/answerd/internal/common"
	"github.com/bobmcallan/answerd/internal/intent"
	"github.com/bobmcallan/answerd/internal/stocks"
	"github.com/bobmcallan/answerd/internal/transit"
)

// WebResolver answers general questions through the search pipeline.
type WebResolver interface {
	Resolve(ctx context.Context, query string) string
}

// StockResolver answers price questions.
type StockResolver interface {
	Resolve(ctx context.Context, query string) (*stocks.Answer, error)
}

// TransitResolver answers departure questions.
type TransitResolver interface {
	Resolve(ctx context.Context, query string) (string, error)
}

// DocumentResolver answers questions over the local document store.
type DocumentResolver interface {
	Resolve(query string) (string, error)
}

// PhotoResolver answers photo library questions.
type PhotoResolver interface {
	Resolve(query string) (string, error)
}

// Answer is one routed and resolved query.
type Answer struct {
	Intent intent.Intent
	Text   string
	Stock  *stocks.Answer
}

// Router classifies queries and dispatches them to the matching
// resolver. A specialised resolver that is not wired falls back to the
// web pipeline, so a partially configured service still answers.
type Router struct {
	classifier *intent.Classifier
	web        WebResolver
	stocks     StockResolver
	transit    TransitResolver
	documents  DocumentResolver
	photos     PhotoResolver
	logger     *common.Logger
}

// New builds a router. web and classifier are required; the
// specialised resolvers may be nil when their intent is disabled.
func New(classifier *intent.Classifier, web WebResolver, logger *common.Logger) *Router {
	return &Router{
		classifier: classifier,
		web:        web,
		logger:     logger,
	}
}

// WithStocks wires the stock resolver.
func (r *Router) WithStocks(s StockResolver) *Router {
	r.stocks = s
	return r
}

// WithTransit wires the transit resolver.
func (r *Router) WithTransit(t TransitResolver) *Router {
	r.transit = t
	return r
}

// WithDocuments wires the document resolver.
func (r *Router) WithDocuments(d DocumentResolver) *Router {
	r.documents = d
	return r
}

// WithPhotos wires the photo resolver.
func (r *Router) WithPhotos(p PhotoResolver) *Router {
	r.photos = p
	return r
}

// Resolve classifies the query and runs the matching resolver. Known
// resolution failures come back as spoken answers; only transport and
// context errors surface as errors.
func (r *Router) Resolve(ctx context.Context, query string) (*Answer, error) {
	matched := r.classifier.Classify(query)
	r.logger.Debug().Str("intent", string(matched)).Str("query", query).Msg("Query classified")

	switch matched {
	case intent.Stock:
		if r.stocks != nil {
			return r.resolveStock(ctx, query)
		}
	case intent.Transport:
		if r.transit != nil {
			return r.resolveTransit(ctx, query)
		}
	case intent.Document:
		if r.documents != nil {
			text, err := r.documents.Resolve(query)
			if err != nil {
				return nil, err
			}
			return &Answer{Intent: intent.Document, Text: text}, nil
		}
	case intent.Photos:
		if r.photos != nil {
			text, err := r.photos.Resolve(query)
			if err != nil {
				return nil, err
			}
			return &Answer{Intent: intent.Photos, Text: text}, nil
		}
	}

	return &Answer{Intent: intent.Default, Text: r.web.Resolve(ctx, query)}, nil
}

func (r *Router) resolveStock(ctx context.Context, query string) (*Answer, error) {
	stockAnswer, err := r.stocks.Resolve(ctx, query)
	if err == nil {
		return &Answer{Intent: intent.Stock, Text: stockAnswer.Text, Stock: stockAnswer}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	switch {
	case errors.Is(err, stocks.ErrSymbolNotRecognized):
		return &Answer{
			Intent: intent.Stock,
			Text:   "I couldn't figure out which company you meant.",
		}, nil
	case errors.Is(err, stocks.ErrNoPriceData):
		return &Answer{
			Intent: intent.Stock,
			Text:   "I found the company but there was no price data for the period you asked about.",
		}, nil
	}
	r.logger.Warn().Err(err).Msg("Stock resolution failed")
	return nil, fmt.Errorf("router: resolve stock query: %w", err)
}

func (r *Router) resolveTransit(ctx context.Context, query string) (*Answer, error) {
	text, err := r.transit.Resolve(ctx, query)
	if err == nil {
		return &Answer{Intent: intent.Transport, Text: text}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	switch {
	case errors.Is(err, transit.ErrUnparsableQuery):
		return &Answer{
			Intent: intent.Transport,
			Text:   "Jag förstod inte resan. Fråga till exempel: när går bussen från Slussen till Nacka?",
		}, nil
	case errors.Is(err, transit.ErrNoStopFound):
		return &Answer{
			Intent: intent.Transport,
			Text:   "Jag hittade inte någon av hållplatserna du frågade om.",
		}, nil
	}
	r.logger.Warn().Err(err).Msg("Transit resolution failed")
	return nil, fmt.Errorf("router: resolve transit query: %w", err)
}
