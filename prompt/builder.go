// Package prompt turns a token form into the instruction sent to the
// generative model. Output depends only on the inputs.
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/vitwit/tokensmith/types"
)

var (
	standardTmpl  = template.Must(template.New("standard").Option("missingkey=error").Parse(standardTemplate))
	liquidityTmpl = template.Must(template.New("liquidity").Option("missingkey=error").Parse(liquidityTemplate))
)

type templateData struct {
	Chain        types.Chain
	NativeSymbol string
	ContractName string

	Name        string
	Symbol      string
	Decimals    string
	TotalSupply string

	RouterAddress   string
	MarketingWallet string
	LiquidityFee    string
	MarketingFee    string
}

// ContractName strips all whitespace from the token name.
func ContractName(tokenName string) string {
	return strings.Join(strings.Fields(tokenName), "")
}

// Build renders the prompt for tokenType. spec must be the matching variant
// of types.TokenSpec; a StandardToken is rejected for a liquidity prompt.
func Build(tokenType types.TokenType, spec types.TokenSpec, chain types.Chain) (string, error) {
	if spec == nil {
		return "", fmt.Errorf("token spec is required")
	}

	base := spec.Base()
	data := templateData{
		Chain:        chain,
		NativeSymbol: nativeSymbol(chain),
		ContractName: ContractName(base.Name),
		Name:         base.Name,
		Symbol:       base.Symbol,
		Decimals:     base.Decimals,
		TotalSupply:  base.TotalSupply,
	}

	var tmpl *template.Template
	switch tokenType {
	case types.TokenTypeStandard:
		tmpl = standardTmpl
	case types.TokenTypeLiquidityGenerator:
		lt, ok := spec.(types.LiquidityToken)
		if !ok {
			return "", fmt.Errorf("liquidity prompt requires a liquidity token spec, got %s", spec.Type())
		}
		data.RouterAddress = lt.RouterAddress
		data.MarketingWallet = lt.MarketingWallet
		data.LiquidityFee = lt.LiquidityFee
		data.MarketingFee = lt.MarketingFee
		tmpl = liquidityTmpl
	default:
		return "", fmt.Errorf("unknown token type %q", tokenType)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", tokenType, err)
	}
	return sb.String(), nil
}

func nativeSymbol(chain types.Chain) string {
	if info, ok := chain.Info(); ok {
		return info.NativeSymbol
	}
	return "the native currency"
}
