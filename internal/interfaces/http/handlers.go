package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/bxxd/mcp-yfinance-ux/internal/app"
	"github.com/bxxd/mcp-yfinance-ux/internal/cache"
	"github.com/bxxd/mcp-yfinance-ux/internal/marketdata"
)

// Handlers bundles the endpoint implementations over the app services
// and the cache diagnostics surface.
type Handlers struct {
	service *app.Service
	store   *cache.Service
	started time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(service *app.Service, store *cache.Service) *Handlers {
	return &Handlers{
		service: service,
		store:   store,
		started: time.Now(),
	}
}

// Health reports liveness and uptime.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": time.Since(h.started).Seconds(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

// Markets serves the board snapshot, optionally restricted by the
// categories query parameter.
func (h *Handlers) Markets(w http.ResponseWriter, r *http.Request) {
	var categories []string
	if raw := r.URL.Query().Get("categories"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				categories = append(categories, name)
			}
		}
	}

	snapshot, err := h.service.Snapshot(r.Context(), categories...)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// Ticker serves the screen payload for the path symbol.
func (h *Handlers) Ticker(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	payload, err := h.service.Ticker(r.Context(), symbol)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

// Tickers serves a batch of screen payloads for the symbols query
// parameter.
func (h *Handlers) Tickers(w http.ResponseWriter, r *http.Request) {
	symbols := strings.Split(r.URL.Query().Get("symbols"), ",")

	payloads, stats, err := h.service.Tickers(r.Context(), symbols)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tickers": payloads,
		"stats":   stats,
	})
}

// History serves the daily OHLCV series for the path symbol.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1mo"
	}

	series, err := h.service.History(r.Context(), symbol, period)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol": strings.ToUpper(strings.TrimSpace(symbol)),
		"period": period,
		"bars":   series,
	})
}

// Greeks computes Black-Scholes sensitivities for the posted contract
// terms.
func (h *Handlers) Greeks(w http.ResponseWriter, r *http.Request) {
	var req app.GreeksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.service.OptionGreeks(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CacheStats serves the diagnostics snapshot of every live entry.
func (h *Handlers) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}

// CacheClear empties the cache.
func (h *Handlers) CacheClear(w http.ResponseWriter, r *http.Request) {
	h.store.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

// NotFound is the JSON 404 handler.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeError(w, http.StatusNotFound, "not found: "+r.URL.Path)
}

// writeServiceError maps service errors onto status codes: caller
// mistakes are 400s, everything else is a 502 from the upstream.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNoSymbols),
		errors.Is(err, app.ErrUnknownCategory),
		errors.Is(err, marketdata.ErrInvalidPeriod):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
