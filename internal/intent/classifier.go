package intent

import (
	"strings"

	"github.com/bobmcallan/answerd/internal/config"
)

// Intent names the handler a query is routed to.
type Intent string

const (
	Transport Intent = "transport"
	Document  Intent = "document"
	Stock     Intent = "stock"
	Photos    Intent = "photos"
	Default   Intent = "default"
)

// Classifier routes queries by trigger words. Intents are checked in a
// fixed priority order and a disabled intent never matches, so its
// queries fall through to the web answer pipeline.
type Classifier struct {
	transport checker
	document  checker
	stock     checker
	photos    checker
}

type checker struct {
	enabled  bool
	triggers []string
}

func (c checker) matches(lowered string) bool {
	if !c.enabled {
		return false
	}
	for _, trigger := range c.triggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}

func newChecker(enabled bool, triggers []string) checker {
	lowered := make([]string, len(triggers))
	for i, t := range triggers {
		lowered[i] = strings.ToLower(t)
	}
	return checker{enabled: enabled, triggers: lowered}
}

// NewClassifier builds a classifier from the intent configuration.
func NewClassifier(cfg config.IntentsConfig) *Classifier {
	return &Classifier{
		transport: newChecker(cfg.TransportEnabled, cfg.TransportTriggers),
		document:  newChecker(cfg.DocumentEnabled, cfg.DocumentTriggers),
		stock:     newChecker(cfg.StockEnabled, cfg.StockTriggers),
		photos:    newChecker(cfg.PhotoEnabled, cfg.PhotoTriggers),
	}
}

// Classify returns the first matching intent in priority order:
// transport, document, stock, photos, then default.
func (c *Classifier) Classify(query string) Intent {
	lowered := strings.ToLower(query)
	switch {
	case c.transport.matches(lowered):
		return Transport
	case c.document.matches(lowered):
		return Document
	case c.stock.matches(lowered):
		return Stock
	case c.photos.matches(lowered):
		return Photos
	}
	return Default
}
