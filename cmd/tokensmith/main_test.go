package main

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/wallet"
)

func TestFormSpec(t *testing.T) {
	f := &formFlags{
		tokenType:    "liquidity",
		chain:        "bnb smart chain",
		name:         "Test Token",
		symbol:       "TST",
		decimals:     "18",
		totalSupply:  "1000000",
		liquidityFee: "2",
		marketingFee: "3",
	}

	spec, chain, err := f.spec(types.ChainEthereum, types.DefaultTreasury)
	require.NoError(t, err)
	assert.Equal(t, types.ChainBsc, chain)

	l, ok := spec.(types.LiquidityToken)
	require.True(t, ok)
	assert.Equal(t, "Test Token", l.Name)
	assert.Equal(t, types.DefaultTreasury, l.MarketingWallet)
	info, _ := types.ChainBsc.Info()
	assert.Equal(t, info.DefaultRouter, l.RouterAddress)

	f.marketingWallet = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	spec, _, err = f.spec(types.ChainEthereum, types.DefaultTreasury)
	require.NoError(t, err)
	assert.Equal(t, f.marketingWallet, spec.(types.LiquidityToken).MarketingWallet)
}

func TestFormSpecDefaults(t *testing.T) {
	f := &formFlags{name: "A", symbol: "A", decimals: "18", totalSupply: "1"}
	spec, chain, err := f.spec(types.ChainPolygon, "")
	require.NoError(t, err)
	assert.Equal(t, types.ChainPolygon, chain)
	assert.Equal(t, types.TokenTypeStandard, spec.Type())

	f.tokenType = "nft"
	_, _, err = f.spec(types.ChainPolygon, "")
	assert.Error(t, err)

	f.tokenType = "standard"
	f.chain = "Cardano"
	_, _, err = f.spec(types.ChainPolygon, "")
	assert.ErrorContains(t, err, "Ethereum")
}

func TestDescribeSignRequest(t *testing.T) {
	info, err := types.LookupNetwork(types.NetworkSolanaDevnet)
	require.NoError(t, err)

	label := describeSignRequest(wallet.SignRequest{To: "treasury", Amount: big.NewInt(370_000_000)}, info)
	assert.Equal(t, "Send 0.37 SOL to treasury on solana-devnet", label)

	label = describeSignRequest(wallet.SignRequest{From: "me", Message: []byte("x")}, info)
	assert.Contains(t, label, "fee waiver")
}

func TestConfirmFuncAssumeYes(t *testing.T) {
	info, err := types.LookupNetwork(types.NetworkFitochain)
	require.NoError(t, err)

	var out bytes.Buffer
	ok, err := newConfirmFunc(true, info, &out)(context.Background(), wallet.SignRequest{To: "0xabc", Amount: big.NewInt(1e18)})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), "Send 1 FITO to 0xabc")
}

func TestVersionCmd(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "tokensmith 1.0.0")
}

func TestPromptCmd(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"prompt", "--name", "Test Token", "--symbol", "TST", "--supply", "1000000"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "TestToken")
	assert.Contains(t, out.String(), "TST")
}

func TestPricesCmd(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--no-color", "prices", "--network", "fitochain"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "120 FITO")
	assert.Contains(t, out.String(), "200 FITO")
	assert.Contains(t, out.String(), types.DefaultTreasury)
}
