package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/vitwit/tokensmith/coordinator"
	"github.com/vitwit/tokensmith/gateway"
	"github.com/vitwit/tokensmith/pricing"
	"github.com/vitwit/tokensmith/types"
)

func NewPricesCmd() *cobra.Command {
	var (
		network    string
		address    string
		gatewayURL string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Show generation fees",
		Long: `Show the generation fees of a fee network, from the local configuration or
from a running gateway with --gateway.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			networks := []types.FeeNetwork{types.FeeNetwork(network)}
			if network == "" {
				networks[0] = loadedConfig.Payment.DefaultNetwork
			}
			if all {
				networks = types.Networks()
			}

			var quoter gateway.Quoter = pricing.NewOracle(loadedConfig.Payment)
			if gatewayURL != "" {
				quoter = coordinator.NewHTTPGateway(gatewayURL)
			}

			out := cmd.OutOrStdout()
			for _, n := range networks {
				q, err := quoter.QuoteFor(cmd.Context(), n, address)
				if err != nil {
					if all {
						fmt.Fprintf(out, "%-16s %s\n", n, color.YellowString("no price data"))
						continue
					}
					return err
				}
				fmt.Fprintf(out, "%-16s Standard %s  Liquidity Generator %s\n",
					color.CyanString(string(n)),
					color.GreenString("%s %s", q.Standard, q.Currency),
					color.GreenString("%s %s", q.Liquidity, q.Currency),
				)
				if q.Treasury != "" && !all {
					fmt.Fprintf(out, "%-16s treasury %s\n", "", q.Treasury)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&network, "network", "n", "", "Fee network (default from config)")
	cmd.Flags().StringVar(&address, "address", "", "Wallet address to quote for")
	cmd.Flags().StringVar(&gatewayURL, "gateway", "", "Query a running gateway instead of the local config")
	cmd.Flags().BoolVar(&all, "all", false, "Show every fee network")

	return cmd
}
