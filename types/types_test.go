package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wallet = "0x1111111111111111111111111111111111111111"

func TestDecodeTokenSpec(t *testing.T) {
	f := FormData{
		Name:            "Test Token",
		Symbol:          "TST",
		Decimals:        "18",
		TotalSupply:     "1000000",
		RouterAddress:   pancakeRouterV2,
		MarketingWallet: wallet,
		LiquidityFee:    "2",
		MarketingFee:    "3",
	}

	std, err := DecodeTokenSpec(TokenTypeStandard, f)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeStandard, std.Type())
	assert.IsType(t, StandardToken{}, std)
	assert.Empty(t, std.FormData().RouterAddress)

	liq, err := DecodeTokenSpec(TokenTypeLiquidityGenerator, f)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeLiquidityGenerator, liq.Type())
	assert.Equal(t, f, liq.FormData())
	assert.Equal(t, "Test Token", liq.Base().Name)

	_, err = DecodeTokenSpec("Meme", f)
	assert.Error(t, err)
}

func TestReshape(t *testing.T) {
	base := StandardToken{Name: "A", Symbol: "A", Decimals: "9", TotalSupply: "5"}

	liq, ok := Reshape(base, TokenTypeLiquidityGenerator, ChainPolygon, wallet).(LiquidityToken)
	require.True(t, ok)
	assert.Equal(t, base, liq.StandardToken)
	assert.Equal(t, "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff", liq.RouterAddress)
	assert.Equal(t, DefaultLiquidityFee, liq.LiquidityFee)
	assert.Equal(t, DefaultMarketingFee, liq.MarketingFee)
	assert.Equal(t, wallet, liq.MarketingWallet)

	liq.MarketingWallet = "0x2222222222222222222222222222222222222222"
	liq.LiquidityFee = "5"
	again := Reshape(liq, TokenTypeLiquidityGenerator, ChainBsc, wallet).(LiquidityToken)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", again.MarketingWallet)
	assert.Equal(t, "5", again.LiquidityFee)

	std := Reshape(liq, TokenTypeStandard, ChainPolygon, wallet)
	assert.Equal(t, base, std)

	unknown := Reshape(nil, TokenTypeLiquidityGenerator, "Unknown", "").(LiquidityToken)
	assert.Equal(t, pancakeRouterV2, unknown.RouterAddress)
	assert.Empty(t, unknown.MarketingWallet)
}

func TestNewTokenSpec(t *testing.T) {
	spec := NewTokenSpec(TokenTypeStandard, ChainEthereum, wallet)
	assert.Equal(t, StandardToken{Decimals: DefaultDecimals}, spec)
}

func TestChains(t *testing.T) {
	info, ok := ChainFitochain.Info()
	require.True(t, ok)
	assert.False(t, info.Selectable)
	assert.Equal(t, "FITO", info.NativeSymbol)

	assert.False(t, Chain("Solana").IsValid())
	assert.Len(t, Chains(), 5)
}

func TestNetworks(t *testing.T) {
	info, err := LookupNetwork(NetworkFitochain)
	require.NoError(t, err)
	assert.Equal(t, int64(1233), info.ChainID)
	assert.Equal(t, int32(18), info.Exponent)

	assert.True(t, NetworkSolanaDevnet.IsSolana())
	assert.True(t, NetworkSolanaDevnet.IsTestnet())
	assert.True(t, NetworkBase.IsEVM())
	assert.Equal(t, ChainSolana, NetworkSolanaMainnet.Family())

	_, err = LookupNetwork("cosmoshub")
	assert.Error(t, err)

	all := Networks()
	assert.Len(t, all, 10)
	assert.Equal(t, NetworkAvalanche, all[0])
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress(ChainEVM, DefaultTreasury, "0x294722F0BAB2717E14B7C10AC3933D068D363F4F"))
	assert.False(t, SameAddress(ChainSolana, "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin", "9xqewvg816bux9epjhmat23yvvm2zwbrrpzb9pusvfin"))
	assert.True(t, SameAddress(ChainSolana, " 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin", "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"))
	assert.False(t, SameAddress(ChainEVM, "", ""))
}

func TestFeeQuote(t *testing.T) {
	q := FeeQuote{
		Standard:  decimal.RequireFromString("0.37"),
		Liquidity: decimal.RequireFromString("0.62"),
		Currency:  "SOL",
		Network:   NetworkSolanaDevnet,
	}
	assert.Equal(t, "0.37", q.Amount(TokenTypeStandard).String())
	assert.Equal(t, "0.62", q.Amount(TokenTypeLiquidityGenerator).String())

	waived := q.Waived()
	assert.True(t, waived.Standard.IsZero())
	assert.True(t, waived.Liquidity.IsZero())
	assert.Equal(t, "SOL", waived.Currency)
	assert.Equal(t, "0.37", q.Standard.String())

	wire := NewPricesResponse(q)
	assert.Equal(t, 0.37, wire.Standard)
	assert.True(t, wire.Quote().Liquidity.Equal(q.Liquidity))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodeInvalidRequest, http.StatusBadRequest},
		{ErrCodePaymentRequired, http.StatusPaymentRequired},
		{ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{ErrCodeUpstreamFormatError, http.StatusBadGateway},
		{ErrCodeConfigError, http.StatusInternalServerError},
		{ErrCodeUpstreamError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, NewError(tt.code, "x", nil).Status(), tt.code)
	}

	err := fmt.Errorf("generate: %w", NewError(ErrCodeConfigError, "Missing API key.", ErrMissingCredential))
	assert.Equal(t, ErrCodeConfigError, CodeOf(err))
	assert.True(t, errors.Is(err, ErrMissingCredential))
	assert.Equal(t, ErrCodeUnknown, CodeOf(errors.New("boom")))
}

func TestWaiverMessage(t *testing.T) {
	msg := WaiverMessage(TokenTypeStandard, FormData{Name: "Test Token", Symbol: "TST"})
	assert.Equal(t, "tokensmith fee waiver\ntype: Standard\nname: Test Token\nsymbol: TST", msg)
}
