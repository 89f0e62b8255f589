package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// clientTimeout bounds one client call against a running server.
const clientTimeout = 60 * time.Second

func newMarketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "markets [categories...]",
		Short: "Print the market-board snapshot",
		Long:  "Fetches the board snapshot from a running marketd instance. With no arguments the full board is returned.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/markets"
			if len(args) > 0 {
				path += "?categories=" + url.QueryEscape(strings.Join(args, ","))
			}
			return clientGet(path)
		},
	}
}

func newTickerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ticker <symbols>",
		Short: "Print screen payloads for one or more symbols",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbols := strings.Join(args, ",")
			if !strings.Contains(symbols, ",") {
				return clientGet("/api/v1/tickers/" + url.PathEscape(symbols))
			}
			return clientGet("/api/v1/tickers?symbols=" + url.QueryEscape(symbols))
		},
	}
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <symbol> [period]",
		Short: "Print the daily OHLCV history for a symbol",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			period := "1mo"
			if len(args) == 2 {
				period = args[1]
			}
			return clientGet("/api/v1/tickers/" + url.PathEscape(args[0]) +
				"/history?period=" + url.QueryEscape(period))
		},
	}
	return cmd
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the server's quote cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print the cache diagnostics snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clientGet("/api/v1/cache")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return clientDo(http.MethodDelete, "/api/v1/cache")
		},
	})

	return cmd
}

func clientGet(path string) error {
	return clientDo(http.MethodGet, path)
}

// clientDo calls the running server and pretty-prints the JSON body
// to stdout. Non-2xx responses become errors carrying the body.
func clientDo(method, path string) error {
	client := &http.Client{Timeout: clientTimeout}

	req, err := http.NewRequest(method, strings.TrimRight(flagServer, "/")+path, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed (is marketd serving at %s?): %w", flagServer, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return printJSON(body)
}

func printJSON(body []byte) error {
	var pretty any
	if err := json.Unmarshal(body, &pretty); err != nil {
		// Not JSON; print as-is.
		fmt.Println(string(body))
		return nil
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(pretty)
}
