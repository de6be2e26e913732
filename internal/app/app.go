package app

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bobmcallan/answerd/internal/answer"
	"github.com/bobmcallan/answerd/internal/cache"
	"github.com/bobmcallan/answerd/internal/common"
	"github.com/bobmcallan/answerd/internal/config"
	"github.com/bobmcallan/answerd/internal/documents"
	"github.com/bobmcallan/answerd/internal/handlers"
	"github.com/bobmcallan/answerd/internal/intent"
	"github.com/bobmcallan/answerd/internal/lang"
	"github.com/bobmcallan/answerd/internal/photos"
	"github.com/bobmcallan/answerd/internal/router"
	"github.com/bobmcallan/answerd/internal/search"
	"github.com/bobmcallan/answerd/internal/stocks"
	"github.com/bobmcallan/answerd/internal/storage/badger"
	"github.com/bobmcallan/answerd/internal/transit"
)

const answerCacheEntries = 512

// App wires configuration, storage and the resolvers into the handler
// set the server exposes.
type App struct {
	config atomic.Pointer[config.Config]

	Logger *common.Logger
	DB     *badger.BadgerDB
	Search search.Client
	Router *router.Router

	QueryHandler   *handlers.QueryHandler
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
}

// New builds the application from the configuration. Disabled intents
// leave their resolvers unwired so the router falls back to the web
// pipeline for those queries.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{Logger: logger}
	a.config.Store(cfg)

	db, err := badger.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("app: open storage: %w", err)
	}
	a.DB = db

	searchClient := search.NewDuckDuckGo(cfg.Search.Region)
	a.Search = searchClient

	scorer := answer.NewScorer(cfg.Search.ImportantPhrases)
	inspector := answer.NewInspector(scorer, logger)
	webResolver := answer.NewResolver(searchClient, inspector, scorer, answer.Config{
		Depth:             cfg.Search.Depth,
		MaxResults:        cfg.Search.MaxResults,
		MinScoreThreshold: cfg.Search.MinScoreThreshold,
		FallbackToChat:    cfg.Search.FallbackToChat,
		LoopUntilSuccess:  cfg.Search.LoopUntilSuccess,
	}, logger)

	classifier := intent.NewClassifier(cfg.Intents)
	rt := router.New(classifier, webResolver, logger)

	if cfg.Intents.StockEnabled {
		stockResolver, err := buildStockResolver(cfg, db, searchClient, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		rt.WithStocks(stockResolver)
	}
	if cfg.Intents.TransportEnabled && cfg.Transit.APIKey != "" {
		rt.WithTransit(transit.NewClient(cfg.Transit.BaseURL, cfg.Transit.APIKey, logger))
	} else if cfg.Intents.TransportEnabled {
		logger.Warn().Msg("Transport intent enabled without an API token, falling back to web answers")
	}
	if cfg.Intents.DocumentEnabled {
		rt.WithDocuments(documents.NewSearcher(
			cfg.Documents.Dir, cfg.Documents.ContextLines, cfg.Intents.DocumentTriggers, logger))
	}
	if cfg.Intents.PhotoEnabled {
		rt.WithPhotos(photos.NewScanner(cfg.Photos.Dir, logger))
	}
	a.Router = rt

	answers := cache.New(common.FreshnessAnswer, answerCacheEntries)
	a.QueryHandler = handlers.NewQueryHandler(rt, answers, logger)
	a.HealthHandler = handlers.NewHealthHandler(logger)
	a.VersionHandler = handlers.NewVersionHandler(logger)

	return a, nil
}

func buildStockResolver(cfg *config.Config, db *badger.BadgerDB, sc search.Client, logger *common.Logger) (*stocks.Resolver, error) {
	universe, err := stocks.LoadUniverse()
	if err != nil {
		return nil, fmt.Errorf("app: load symbol universe: %w", err)
	}

	ttl := common.FreshnessPriceSeries
	if cfg.Stocks.CacheTTL != "" {
		parsed, err := time.ParseDuration(cfg.Stocks.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("app: invalid stocks cache_ttl: %w", err)
		}
		ttl = parsed
	}

	symbols := stocks.NewSymbolResolver(cfg.Stocks.NameToSymbol, universe, sc.Chat, logger)
	provider := stocks.NewYahooProvider(cfg.Stocks.ProviderURL, nil)
	store := badger.NewPriceStore(db, logger)
	if removed, err := store.Prune(ttl); err != nil {
		logger.Warn().Err(err).Msg("Pruning stale price series failed")
	} else if removed > 0 {
		logger.Info().Int("removed", removed).Msg("Pruned stale price series")
	}
	fetcher := stocks.NewFetcher(provider, store, ttl, logger)
	detector := lang.NewDetector(cfg.Stocks.DefaultLanguage)

	return stocks.NewResolver(symbols, fetcher, detector, logger), nil
}

// Config returns the current configuration.
func (a *App) Config() *config.Config {
	return a.config.Load()
}

// SetConfig swaps in a new configuration for subsequent reads.
func (a *App) SetConfig(cfg *config.Config) {
	a.config.Store(cfg)
}

// Close releases held resources.
func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
