// marketd serves enriched market quotes over HTTP and ships a small
// client for poking a running instance from the shell.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	appName = "marketd"
	version = "v1.0.0"
)

var (
	flagLogLevel string
	flagServer   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Market-data refresh pipeline with a session-aware cache",
		Version: version,
		Long: `marketd enriches raw market quotes with derived analytics
(momentum, RSI, idiosyncratic volatility, relative volume, option
greeks) and serves them through a short-lived, market-session-aware
cache.

Run 'marketd serve' to start the HTTP API, or use the client
subcommands (markets, ticker, history, cache) against a running
instance.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(flagLogLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info",
		"Log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://127.0.0.1:8080",
		"Base URL of a running marketd instance (client subcommands)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMarketsCmd())
	rootCmd.AddCommand(newTickerCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newGreeksCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// setupLogging routes zerolog to stderr: console format on a TTY,
// JSON otherwise. Results go to stdout, logs to stderr, so piping the
// JSON output stays clean.
func setupLogging(level string) error {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(parsed)
	zerolog.TimeFieldFormat = time.RFC3339

	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = log.Output(os.Stderr)
	}
	return nil
}
