package pricing

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/tokensmith/types"
)

func TestQuoteFixed(t *testing.T) {
	o := NewOracle(types.DefaultConfig().Payment)

	q, err := o.Quote(context.Background(), types.NetworkSolanaMainnet)
	require.NoError(t, err)
	assert.True(t, q.Standard.Equal(decimal.RequireFromString("0.37")))
	assert.True(t, q.Liquidity.Equal(decimal.RequireFromString("0.62")))
	assert.Equal(t, "SOL", q.Currency)
	assert.Equal(t, types.NetworkSolanaMainnet, q.Network)
}

func TestQuoteUSD(t *testing.T) {
	o := NewOracle(types.DefaultConfig().Payment)

	q, err := o.Quote(context.Background(), types.NetworkFitochain)
	require.NoError(t, err)
	assert.True(t, q.Standard.Equal(decimal.NewFromInt(120)), q.Standard.String())
	assert.True(t, q.Liquidity.Equal(decimal.NewFromInt(200)), q.Liquidity.String())
	assert.Equal(t, "FITO", q.Currency)
	assert.Equal(t, types.DefaultTreasury, q.Treasury)
}

func TestQuoteNoPriceData(t *testing.T) {
	cfg := types.DefaultConfig().Payment
	cfg.Networks[types.NetworkPolygon] = types.NetworkConfig{RPCURL: "https://polygon-rpc.com"}
	cfg.Networks[types.NetworkBSC] = types.NetworkConfig{Pricing: types.PricingConfig{Mode: types.PricingUSD, Standard: decimal.NewFromInt(10)}}
	o := NewOracle(cfg)

	for _, n := range []types.FeeNetwork{types.NetworkEthereum, types.NetworkPolygon, types.NetworkBSC, "unknown"} {
		_, err := o.Quote(context.Background(), n)
		assert.ErrorIs(t, err, types.ErrNoPriceData, n)
	}
}

func TestQuoteForAdmin(t *testing.T) {
	o := NewOracle(types.DefaultConfig().Payment)

	q, err := o.QuoteFor(context.Background(), types.NetworkFitochain, strings.ToLower(types.DefaultTreasury))
	require.NoError(t, err)
	assert.True(t, q.Standard.IsZero())
	assert.True(t, q.Liquidity.IsZero())

	q, err = o.QuoteFor(context.Background(), types.NetworkFitochain, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	require.NoError(t, err)
	assert.False(t, q.Standard.IsZero())
}

func TestQuoteForAdminWithoutPrices(t *testing.T) {
	cfg := types.DefaultConfig().Payment
	cfg.Networks[types.NetworkEthereum] = types.NetworkConfig{Treasury: types.DefaultTreasury}
	o := NewOracle(cfg)

	q, err := o.QuoteFor(context.Background(), types.NetworkEthereum, types.DefaultTreasury)
	require.NoError(t, err)
	assert.True(t, q.Amount(types.TokenTypeStandard).IsZero())

	_, err = o.QuoteFor(context.Background(), types.NetworkEthereum, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	assert.ErrorIs(t, err, types.ErrNoPriceData)
}

func TestIsAdminSolanaIsCaseSensitive(t *testing.T) {
	treasury := "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"
	assert.True(t, IsAdmin(types.NetworkSolanaDevnet, treasury, treasury))
	assert.False(t, IsAdmin(types.NetworkSolanaDevnet, strings.ToLower(treasury), treasury))
	assert.False(t, IsAdmin(types.NetworkSolanaDevnet, "", ""))
}
