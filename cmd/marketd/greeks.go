package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/bxxd/mcp-yfinance-ux/internal/analytics"
)

func newGreeksCmd() *cobra.Command {
	var (
		spot       float64
		strike     float64
		expiry     float64
		volatility float64
		rate       float64
		dividend   float64
		optionType string
	)

	cmd := &cobra.Command{
		Use:   "greeks",
		Short: "Compute Black-Scholes option greeks locally",
		Long:  "Computes delta, gamma, vega, theta, and rho for a European option from caller-supplied contract terms. Runs locally, no server needed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := analytics.Greeks(spot, strike, expiry, volatility,
				rate, dividend, analytics.OptionType(optionType))
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		},
	}

	cmd.Flags().Float64Var(&spot, "spot", 0, "Underlying spot price")
	cmd.Flags().Float64Var(&strike, "strike", 0, "Option strike price")
	cmd.Flags().Float64Var(&expiry, "expiry", 0, "Time to expiry in years")
	cmd.Flags().Float64Var(&volatility, "vol", 0, "Annualized volatility (decimal)")
	cmd.Flags().Float64Var(&rate, "rate", 0.045, "Risk-free rate (decimal)")
	cmd.Flags().Float64Var(&dividend, "dividend", 0, "Dividend yield (decimal)")
	cmd.Flags().StringVar(&optionType, "type", "call", "Option type (call|put)")

	cmd.MarkFlagRequired("spot")
	cmd.MarkFlagRequired("strike")
	cmd.MarkFlagRequired("vol")

	return cmd
}
