package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/bxxd/mcp-yfinance-ux/internal/fetch"
	"github.com/bxxd/mcp-yfinance-ux/internal/marketdata"
)

// ErrUnknownCategory is returned when a requested board category does
// not exist.
var ErrUnknownCategory = fmt.Errorf("unknown board category")

// Entry is one board slot: a stable display key and the ticker behind
// it.
type Entry struct {
	Key    string
	Symbol string
}

// Category is a named, ordered group of board entries.
type Category struct {
	Name    string
	Entries []Entry
}

// Board is the ordered category layout of the market snapshot.
type Board []Category

// DefaultBoard returns the built-in market-board layout.
func DefaultBoard() Board {
	return Board{
		{Name: "indices", Entries: []Entry{
			{Key: "sp500", Symbol: "^GSPC"},
			{Key: "nasdaq", Symbol: "^IXIC"},
			{Key: "dow", Symbol: "^DJI"},
			{Key: "russell2000", Symbol: "^RUT"},
		}},
		{Name: "futures", Entries: []Entry{
			{Key: "es", Symbol: "ES=F"},
			{Key: "nq", Symbol: "NQ=F"},
			{Key: "ym", Symbol: "YM=F"},
		}},
		{Name: "asia", Entries: []Entry{
			{Key: "nikkei", Symbol: "^N225"},
			{Key: "hangseng", Symbol: "^HSI"},
			{Key: "shanghai", Symbol: "000001.SS"},
			{Key: "kospi", Symbol: "^KS11"},
			{Key: "nifty50", Symbol: "^NSEI"},
			{Key: "asx200", Symbol: "^AXJO"},
			{Key: "taiwan", Symbol: "^TWII"},
		}},
		{Name: "europe", Entries: []Entry{
			{Key: "stoxx50", Symbol: "^STOXX50E"},
		}},
		{Name: "americas", Entries: []Entry{
			{Key: "bovespa", Symbol: "^BVSP"},
		}},
		{Name: "crypto", Entries: []Entry{
			{Key: "btc", Symbol: "BTC-USD"},
			{Key: "eth", Symbol: "ETH-USD"},
			{Key: "sol", Symbol: "SOL-USD"},
		}},
		{Name: "sectors", Entries: []Entry{
			{Key: "tech", Symbol: "XLK"},
			{Key: "financials", Symbol: "XLF"},
			{Key: "healthcare", Symbol: "XLV"},
			{Key: "energy", Symbol: "XLE"},
			{Key: "consumer_disc", Symbol: "XLY"},
			{Key: "consumer_stpl", Symbol: "XLP"},
			{Key: "industrials", Symbol: "XLI"},
			{Key: "utilities", Symbol: "XLU"},
			{Key: "materials", Symbol: "XLB"},
			{Key: "real_estate", Symbol: "XLRE"},
			{Key: "communication", Symbol: "XLC"},
		}},
		{Name: "styles", Entries: []Entry{
			{Key: "momentum", Symbol: "MTUM"},
			{Key: "value", Symbol: "VTV"},
			{Key: "growth", Symbol: "VUG"},
			{Key: "quality", Symbol: "QUAL"},
			{Key: "small_cap", Symbol: "IWM"},
			{Key: "private_credit", Symbol: "BIZD"},
		}},
		{Name: "commodities", Entries: []Entry{
			{Key: "gold", Symbol: "GC=F"},
			{Key: "silver", Symbol: "SI=F"},
			{Key: "platinum", Symbol: "PL=F"},
			{Key: "copper", Symbol: "HG=F"},
			{Key: "oil_wti", Symbol: "CL=F"},
			{Key: "natgas", Symbol: "NG=F"},
		}},
		{Name: "volatility", Entries: []Entry{
			{Key: "vix", Symbol: "^VIX"},
		}},
		{Name: "rates", Entries: []Entry{
			{Key: "us10y", Symbol: "^TNX"},
		}},
	}
}

// Categories returns the ordered category names.
func (b Board) Categories() []string {
	names := make([]string, len(b))
	for i, category := range b {
		names[i] = category.Name
	}
	return names
}

// find returns the category with the given name.
func (b Board) find(name string) (Category, bool) {
	for _, category := range b {
		if category.Name == name {
			return category, true
		}
	}
	return Category{}, false
}

// BoardSnapshot maps category name to board key to payload.
type BoardSnapshot struct {
	Categories map[string]map[string]marketdata.Payload `json:"categories"`
	Stats      fetch.Stats                              `json:"stats"`
}

// Snapshot fetches the board in one batch over the union of the
// requested categories' symbols. An empty category list means the
// whole board. Per-symbol failures surface as error payloads in their
// board slots.
func (s *Service) Snapshot(ctx context.Context, categories ...string) (BoardSnapshot, error) {
	selected := make([]Category, 0, len(s.board))
	if len(categories) == 0 {
		selected = append(selected, s.board...)
	} else {
		for _, name := range categories {
			category, ok := s.board.find(strings.ToLower(strings.TrimSpace(name)))
			if !ok {
				return BoardSnapshot{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
			}
			selected = append(selected, category)
		}
	}

	var symbols []string
	for _, category := range selected {
		for _, entry := range category.Entries {
			symbols = append(symbols, entry.Symbol)
		}
	}

	payloads, stats := s.boardOrch.FetchBatch(ctx, symbols)

	snapshot := BoardSnapshot{
		Categories: make(map[string]map[string]marketdata.Payload, len(selected)),
		Stats:      stats,
	}
	for _, category := range selected {
		slots := make(map[string]marketdata.Payload, len(category.Entries))
		for _, entry := range category.Entries {
			slots[entry.Key] = payloads[entry.Symbol]
		}
		snapshot.Categories[category.Name] = slots
	}
	return snapshot, nil
}
