package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bobmcallan/answerd/internal/cache"
	"github.com/bobmcallan/answerd/internal/common"
	"github.com/bobmcallan/answerd/internal/router"
)

// QueryResolver routes and answers one query.
type QueryResolver interface {
	Resolve(ctx context.Context, query string) (*router.Answer, error)
}

// QueryHandler answers natural language questions. The request body is
// JSON with a single "query" field; the response is the spoken answer
// as plain text.
type QueryHandler struct {
	resolver QueryResolver
	answers  *cache.AnswerCache
	logger   *common.Logger
}

// NewQueryHandler creates the query handler. answers may be nil to
// disable response caching.
func NewQueryHandler(resolver QueryResolver, answers *cache.AnswerCache, logger *common.Logger) *QueryHandler {
	return &QueryHandler{
		resolver: resolver,
		answers:  answers,
		logger:   logger,
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

// ServeHTTP handles POST /.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		WriteError(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	key := cache.NormalizeKey(query)
	if h.answers != nil {
		if cached, ok := h.answers.Get(key); ok {
			h.logger.Debug().Str("query", query).Msg("Answer served from cache")
			writeAnswer(w, cached)
			return
		}
	}

	resolved, err := h.resolver.Resolve(r.Context(), query)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		h.logger.Error().Err(err).Str("query", query).Msg("Query resolution failed")
		WriteError(w, http.StatusBadGateway, "the service had trouble answering that, please try again")
		return
	}

	if h.answers != nil {
		h.answers.Set(key, resolved.Text)
	}
	h.logger.Info().Str("query", query).Str("intent", string(resolved.Intent)).Msg("Query answered")
	writeAnswer(w, resolved.Text)
}

func writeAnswer(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}
