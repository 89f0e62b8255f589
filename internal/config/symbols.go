package config

import (
	"fmt"
	"os"

	yamlv2 "gopkg.in/yaml.v2"
)

// SymbolsConfig overrides the built-in symbol classification tables
// and the market-board layout.
type SymbolsConfig struct {
	Futures    []string         `yaml:"futures"`
	Crypto     []string         `yaml:"crypto"`
	Categories []CategoryConfig `yaml:"categories,omitempty"`
}

// CategoryConfig is one named board category with ordered entries.
type CategoryConfig struct {
	Name    string        `yaml:"name"`
	Entries []EntryConfig `yaml:"entries"`
}

// EntryConfig maps a board key to its ticker symbol.
type EntryConfig struct {
	Key    string `yaml:"key"`
	Symbol string `yaml:"symbol"`
}

// DefaultSymbols returns the built-in classification tables with no
// board override.
func DefaultSymbols() SymbolsConfig {
	return SymbolsConfig{
		Futures: []string{
			"ES=F", "NQ=F", "YM=F",
			"GC=F", "SI=F", "PL=F", "HG=F", "CL=F", "NG=F",
		},
		Crypto: []string{"BTC-USD", "ETH-USD", "SOL-USD"},
	}
}

// LoadSymbols reads the symbol tables from path. An empty path or a
// missing file yields the defaults; a malformed file is an error.
func LoadSymbols(path string) (SymbolsConfig, error) {
	if path == "" {
		return DefaultSymbols(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSymbols(), nil
		}
		return SymbolsConfig{}, fmt.Errorf("failed to read symbols config: %w", err)
	}

	var config SymbolsConfig
	if err := yamlv2.Unmarshal(data, &config); err != nil {
		return SymbolsConfig{}, fmt.Errorf("failed to parse symbols YAML: %w", err)
	}

	defaults := DefaultSymbols()
	if len(config.Futures) == 0 {
		config.Futures = defaults.Futures
	}
	if len(config.Crypto) == 0 {
		config.Crypto = defaults.Crypto
	}

	return config, nil
}

// SaveSymbols writes the symbol tables to path.
func SaveSymbols(config SymbolsConfig, path string) error {
	data, err := yamlv2.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal symbols config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write symbols config: %w", err)
	}

	return nil
}
