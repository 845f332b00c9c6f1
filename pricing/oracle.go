// Package pricing quotes generation fees per fee network.
package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vitwit/tokensmith/types"
)

// usdDivisionPrecision is the number of decimal places kept when converting
// USD fees into native currency.
const usdDivisionPrecision = 8

// Oracle serves fee quotes from static configuration.
type Oracle struct {
	networks map[types.FeeNetwork]types.NetworkConfig
}

// NewOracle creates an oracle over the configured fee networks.
func NewOracle(cfg types.PaymentConfig) *Oracle {
	networks := make(map[types.FeeNetwork]types.NetworkConfig, len(cfg.Networks))
	for n, nc := range cfg.Networks {
		networks[n] = nc
	}
	return &Oracle{networks: networks}
}

// Quote returns the fees of network in its native currency.
func (o *Oracle) Quote(_ context.Context, network types.FeeNetwork) (types.FeeQuote, error) {
	info, err := types.LookupNetwork(network)
	if err != nil {
		return types.FeeQuote{}, fmt.Errorf("%w: %v", types.ErrNoPriceData, err)
	}

	nc, ok := o.networks[network]
	if !ok {
		return types.FeeQuote{}, fmt.Errorf("%w: network %s is not configured", types.ErrNoPriceData, network)
	}

	quote := types.FeeQuote{
		Currency: info.NativeSymbol,
		Network:  network,
		Treasury: nc.Treasury,
	}

	p := nc.Pricing
	switch p.Mode {
	case types.PricingFixed:
		quote.Standard, quote.Liquidity = p.Standard, p.Liquidity

	case types.PricingUSD:
		if !p.NativePriceUSD.IsPositive() {
			return types.FeeQuote{}, fmt.Errorf("%w: no %s/USD price for %s", types.ErrNoPriceData, info.NativeSymbol, network)
		}
		quote.Standard = p.Standard.DivRound(p.NativePriceUSD, usdDivisionPrecision)
		quote.Liquidity = p.Liquidity.DivRound(p.NativePriceUSD, usdDivisionPrecision)

	case "":
		return types.FeeQuote{}, fmt.Errorf("%w: network %s has no pricing", types.ErrNoPriceData, network)

	default:
		return types.FeeQuote{}, fmt.Errorf("unknown pricing mode %q for %s", p.Mode, network)
	}

	if quote.Standard.IsNegative() || quote.Liquidity.IsNegative() {
		return types.FeeQuote{}, fmt.Errorf("negative fee configured for %s", network)
	}

	return quote, nil
}

// QuoteFor returns the quote for the wallet at address. The treasury wallet
// itself pays nothing, even on networks without price data.
func (o *Oracle) QuoteFor(ctx context.Context, network types.FeeNetwork, address string) (types.FeeQuote, error) {
	nc := o.networks[network]
	if IsAdmin(network, address, nc.Treasury) {
		info, _ := types.LookupNetwork(network)
		return types.FeeQuote{
			Standard:  decimal.Zero,
			Liquidity: decimal.Zero,
			Currency:  info.NativeSymbol,
			Network:   network,
			Treasury:  nc.Treasury,
		}, nil
	}
	return o.Quote(ctx, network)
}

// Treasury returns the configured treasury of network.
func (o *Oracle) Treasury(network types.FeeNetwork) string {
	return o.networks[network].Treasury
}

// IsAdmin reports whether address is the treasury of network.
func IsAdmin(network types.FeeNetwork, address, treasury string) bool {
	return types.SameAddress(network.Family(), address, treasury)
}
