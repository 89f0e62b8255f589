package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Stream refresh bounds. Clients pick an interval between these with
// the interval query parameter.
const (
	minStreamInterval     = 5 * time.Second
	defaultStreamInterval = 30 * time.Second
	streamWriteTimeout    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" ||
			strings.Contains(origin, "localhost") ||
			strings.Contains(origin, "127.0.0.1")
	},
}

// streamFrame is one websocket push: the refreshed payloads plus the
// batch cache accounting.
type streamFrame struct {
	Timestamp string `json:"timestamp"`
	Tickers   any    `json:"tickers"`
	Stats     any    `json:"stats"`
}

// Stream upgrades the connection and pushes ticker refreshes for the
// requested symbols until the client disconnects. Repeated pushes
// inside a TTL window are served from cache, so a short interval does
// not hammer the provider.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	symbolsParam := r.URL.Query().Get("symbols")
	if strings.TrimSpace(symbolsParam) == "" {
		writeError(w, http.StatusBadRequest, "symbols query parameter is required")
		return
	}
	symbols := strings.Split(symbolsParam, ",")

	interval := defaultStreamInterval
	if raw := r.URL.Query().Get("interval"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid interval: "+raw)
			return
		}
		interval = parsed
		if interval < minStreamInterval {
			interval = minStreamInterval
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	log.Info().
		Str("remote", conn.RemoteAddr().String()).
		Str("symbols", symbolsParam).
		Dur("interval", interval).
		Msg("quote stream opened")

	// Drain client frames so close handshakes are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		payloads, stats, err := h.service.Tickers(r.Context(), symbols)
		if err != nil {
			log.Warn().Err(err).Msg("quote stream fetch failed")
			return
		}

		frame := streamFrame{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Tickers:   payloads,
			Stats:     stats,
		}
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			log.Debug().Err(err).Msg("quote stream write failed")
			return
		}

		select {
		case <-ticker.C:
		case <-closed:
			log.Info().Msg("quote stream closed by client")
			return
		case <-r.Context().Done():
			return
		}
	}
}
