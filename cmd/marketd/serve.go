package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bxxd/mcp-yfinance-ux/internal/app"
	"github.com/bxxd/mcp-yfinance-ux/internal/cache"
	"github.com/bxxd/mcp-yfinance-ux/internal/config"
	httpserver "github.com/bxxd/mcp-yfinance-ux/internal/interfaces/http"
	"github.com/bxxd/mcp-yfinance-ux/internal/market"
	"github.com/bxxd/mcp-yfinance-ux/internal/provider/yahoo"
)

func newServeCmd() *cobra.Command {
	var (
		configPath  string
		symbolsPath string
		port        int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Starts the marketd HTTP server: board and ticker endpoints, cache diagnostics, Prometheus metrics, and a websocket quote stream.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, symbolsPath, port)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to the application config YAML")
	cmd.Flags().StringVar(&symbolsPath, "symbols", "", "Path to the symbol-table config YAML")
	cmd.Flags().IntVar(&port, "port", 0, "Override the configured listen port")
	return cmd
}

func runServe(configPath, symbolsPath string, portOverride int) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if portOverride != 0 {
		cfg.Server.Port = portOverride
	}

	symbols, err := config.LoadSymbols(symbolsPath)
	if err != nil {
		return err
	}

	clock, err := market.NewClock(cfg.Cache.Timezone)
	if err != nil {
		return err
	}
	classifier := market.NewClassifier(symbols.Futures, symbols.Crypto)

	metrics := httpserver.NewMetricsRegistry()

	policy := cache.NewPolicy(clock, classifier, cache.TTLConfig{
		Futures: cfg.Cache.FuturesTTL.Std(),
		Crypto:  cfg.Cache.CryptoTTL.Std(),
		Session: cfg.Cache.SessionTTL.Std(),
	})
	store := cache.New(policy, cache.WithMetrics(metrics))

	provider, err := yahoo.New(yahoo.Config{
		BaseURL:        cfg.Provider.BaseURL,
		RequestTimeout: cfg.Provider.RequestTimeout.Std(),
		RateLimitRPS:   cfg.Provider.RateLimitRPS,
		RateLimitBurst: cfg.Provider.RateLimitBurst,
		MaxRetries:     cfg.Provider.MaxRetries,
		RetryBackoff:   cfg.Provider.RetryBackoff.Std(),
		Breaker: yahoo.BreakerConfig{
			MaxRequests:         cfg.Provider.Breaker.MaxRequests,
			Interval:            cfg.Provider.Breaker.Interval.Std(),
			Timeout:             cfg.Provider.Breaker.Timeout.Std(),
			ConsecutiveFailures: cfg.Provider.Breaker.ConsecutiveFailures,
		},
	}, yahoo.WithMetrics(metrics))
	if err != nil {
		return err
	}

	appOpts := []app.Option{app.WithFetchMetrics(metrics)}
	if board := boardFromConfig(symbols.Categories); board != nil {
		appOpts = append(appOpts, app.WithBoard(board))
	}
	service := app.New(store, provider, clock, classifier, cfg.Fetch.Workers, appOpts...)

	server, err := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
		IdleTimeout:  cfg.Server.IdleTimeout.Std(),
	}, service, store, metrics)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info().
		Str("addr", server.Address()).
		Str("version", version).
		Msg("marketd up")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// boardFromConfig converts the YAML board layout into the app's board
// type. A config without categories keeps the built-in layout.
func boardFromConfig(categories []config.CategoryConfig) app.Board {
	if len(categories) == 0 {
		return nil
	}
	board := make(app.Board, 0, len(categories))
	for _, category := range categories {
		entries := make([]app.Entry, 0, len(category.Entries))
		for _, entry := range category.Entries {
			entries = append(entries, app.Entry{Key: entry.Key, Symbol: entry.Symbol})
		}
		board = append(board, app.Category{Name: category.Name, Entries: entries})
	}
	return board
}
