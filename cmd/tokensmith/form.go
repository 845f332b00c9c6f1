package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vitwit/tokensmith/types"
)

// formFlags collects a token form from command line flags.
type formFlags struct {
	tokenType string
	chain     string

	name        string
	symbol      string
	decimals    string
	totalSupply string

	router          string
	marketingWallet string
	liquidityFee    string
	marketingFee    string
}

func (f *formFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.tokenType, "type", "t", "standard", `Token type: "standard" or "liquidity"`)
	fl.StringVar(&f.chain, "chain", "", "Target chain of the contract (default from config)")
	fl.StringVar(&f.name, "name", "", "Token name")
	fl.StringVar(&f.symbol, "symbol", "", "Token symbol")
	fl.StringVar(&f.decimals, "decimals", types.DefaultDecimals, "Token decimals")
	fl.StringVar(&f.totalSupply, "supply", "", "Total supply")
	fl.StringVar(&f.router, "router", "", "DEX router address (default: the chain's router)")
	fl.StringVar(&f.marketingWallet, "marketing-wallet", "", "Marketing wallet (default: the paying wallet on EVM)")
	fl.StringVar(&f.liquidityFee, "liquidity-fee", types.DefaultLiquidityFee, "Liquidity fee percent")
	fl.StringVar(&f.marketingFee, "marketing-fee", types.DefaultMarketingFee, "Marketing fee percent")
}

// spec builds the token spec. wallet prefills the marketing wallet of a
// liquidity token when no --marketing-wallet is given.
func (f *formFlags) spec(defaultChain types.Chain, wallet string) (types.TokenSpec, types.Chain, error) {
	tokenType, err := parseTokenType(f.tokenType)
	if err != nil {
		return nil, "", err
	}
	chain, err := parseChain(f.chain, defaultChain)
	if err != nil {
		return nil, "", err
	}

	base := types.StandardToken{
		Name:        f.name,
		Symbol:      f.symbol,
		Decimals:    f.decimals,
		TotalSupply: f.totalSupply,
	}
	spec := types.Reshape(base, tokenType, chain, wallet)

	if l, ok := spec.(types.LiquidityToken); ok {
		if f.router != "" {
			l.RouterAddress = f.router
		}
		if f.marketingWallet != "" {
			l.MarketingWallet = f.marketingWallet
		}
		l.LiquidityFee = f.liquidityFee
		l.MarketingFee = f.marketingFee
		spec = l
	}
	return spec, chain, nil
}

func parseTokenType(s string) (types.TokenType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "":
		return types.TokenTypeStandard, nil
	case "liquidity", "liquidity generator", "liquidity-generator":
		return types.TokenTypeLiquidityGenerator, nil
	default:
		return "", fmt.Errorf("unknown token type %q", s)
	}
}

func parseChain(s string, def types.Chain) (types.Chain, error) {
	if s == "" {
		return def, nil
	}
	for _, info := range types.Chains() {
		if strings.EqualFold(string(info.Chain), s) {
			return info.Chain, nil
		}
	}
	names := make([]string, 0)
	for _, info := range types.Chains() {
		if info.Selectable {
			names = append(names, string(info.Chain))
		}
	}
	return "", fmt.Errorf("unknown chain %q, expected one of: %s", s, strings.Join(names, ", "))
}
