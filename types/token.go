package types

import "fmt"

// TokenType selects the contract template.
type TokenType string

const (
	TokenTypeStandard           TokenType = "Standard"
	TokenTypeLiquidityGenerator TokenType = "Liquidity Generator"
)

func (t TokenType) IsValid() bool {
	return t == TokenTypeStandard || t == TokenTypeLiquidityGenerator
}

func (t TokenType) String() string {
	return string(t)
}

// Default liquidity form values.
const (
	DefaultLiquidityFee = "2"
	DefaultMarketingFee = "3"
	DefaultDecimals     = "18"
)

// TokenSpec is the user supplied description of the contract to generate.
// It is either a StandardToken or a LiquidityToken.
type TokenSpec interface {
	Type() TokenType
	Base() StandardToken
	// FormData returns the wire representation.
	FormData() FormData
}

// StandardToken holds the fields shared by every token type.
// Numeric fields are decimal strings.
type StandardToken struct {
	Name        string
	Symbol      string
	Decimals    string
	TotalSupply string
}

func (s StandardToken) Type() TokenType     { return TokenTypeStandard }
func (s StandardToken) Base() StandardToken { return s }

func (s StandardToken) FormData() FormData {
	return FormData{
		Name:        s.Name,
		Symbol:      s.Symbol,
		Decimals:    s.Decimals,
		TotalSupply: s.TotalSupply,
	}
}

// LiquidityToken adds the fee and DEX settings of a liquidity generator token.
type LiquidityToken struct {
	StandardToken
	RouterAddress   string
	MarketingWallet string
	LiquidityFee    string // percent
	MarketingFee    string // percent
}

func (l LiquidityToken) Type() TokenType     { return TokenTypeLiquidityGenerator }
func (l LiquidityToken) Base() StandardToken { return l.StandardToken }

func (l LiquidityToken) FormData() FormData {
	f := l.StandardToken.FormData()
	f.RouterAddress = l.RouterAddress
	f.MarketingWallet = l.MarketingWallet
	f.LiquidityFee = l.LiquidityFee
	f.MarketingFee = l.MarketingFee
	return f
}

// FormData is the flat JSON shape of a TokenSpec as sent to the gateway.
type FormData struct {
	Name            string `json:"name" validate:"required"`
	Symbol          string `json:"symbol" validate:"required"`
	Decimals        string `json:"decimals" validate:"required,nonnegdecimal"`
	TotalSupply     string `json:"totalSupply" validate:"required,nonnegdecimal"`
	RouterAddress   string `json:"routerAddress,omitempty"`
	MarketingWallet string `json:"marketingWallet,omitempty"`
	LiquidityFee    string `json:"liquidityFee,omitempty"`
	MarketingFee    string `json:"marketingFee,omitempty"`
}

// liquidityFields is validated only for liquidity generator tokens.
type liquidityFields struct {
	RouterAddress   string `validate:"required,eth_addr"`
	MarketingWallet string `validate:"required,eth_addr"`
	LiquidityFee    string `validate:"required,nonnegdecimal"`
	MarketingFee    string `validate:"required,nonnegdecimal"`
}

// LiquidityFields exposes the liquidity-only fields for validation.
func (f FormData) LiquidityFields() any {
	return liquidityFields{
		RouterAddress:   f.RouterAddress,
		MarketingWallet: f.MarketingWallet,
		LiquidityFee:    f.LiquidityFee,
		MarketingFee:    f.MarketingFee,
	}
}

// DecodeTokenSpec builds the union variant matching tokenType.
func DecodeTokenSpec(tokenType TokenType, f FormData) (TokenSpec, error) {
	base := StandardToken{
		Name:        f.Name,
		Symbol:      f.Symbol,
		Decimals:    f.Decimals,
		TotalSupply: f.TotalSupply,
	}

	switch tokenType {
	case TokenTypeStandard:
		return base, nil
	case TokenTypeLiquidityGenerator:
		return LiquidityToken{
			StandardToken:   base,
			RouterAddress:   f.RouterAddress,
			MarketingWallet: f.MarketingWallet,
			LiquidityFee:    f.LiquidityFee,
			MarketingFee:    f.MarketingFee,
		}, nil
	default:
		return nil, fmt.Errorf("unknown token type %q", tokenType)
	}
}

// NewTokenSpec returns an empty form for tokenType.
func NewTokenSpec(tokenType TokenType, chain Chain, wallet string) TokenSpec {
	return Reshape(StandardToken{Decimals: DefaultDecimals}, tokenType, chain, wallet)
}

// Reshape converts a form to another token type when the user switches tabs.
// Common fields survive; liquidity fields are dropped for Standard and
// defaulted for Liquidity Generator. An existing marketing wallet wins over
// the connected wallet address.
func Reshape(current TokenSpec, to TokenType, chain Chain, wallet string) TokenSpec {
	var base StandardToken
	if current != nil {
		base = current.Base()
	}

	if to != TokenTypeLiquidityGenerator {
		return base
	}

	router := pancakeRouterV2
	if info, ok := chain.Info(); ok {
		router = info.DefaultRouter
	}

	next := LiquidityToken{
		StandardToken: base,
		RouterAddress: router,
		LiquidityFee:  DefaultLiquidityFee,
		MarketingFee:  DefaultMarketingFee,
	}

	if prev, ok := current.(LiquidityToken); ok {
		next.RouterAddress = prev.RouterAddress
		next.LiquidityFee = prev.LiquidityFee
		next.MarketingFee = prev.MarketingFee
		next.MarketingWallet = prev.MarketingWallet
	}
	if next.MarketingWallet == "" {
		next.MarketingWallet = wallet
	}

	return next
}
