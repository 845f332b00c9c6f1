package types

// Chain is the deployment target of a generated contract. It only changes
// prompt wording and the default router address; nothing is executed on it.
type Chain string

const (
	ChainEthereum  Chain = "Ethereum"
	ChainPolygon   Chain = "Polygon"
	ChainBsc       Chain = "BNB Smart Chain"
	ChainFitochain Chain = "Fitochain"
	ChainAvalanche Chain = "Avalanche C-Chain"
)

// ChainInfo describes a deployment target.
type ChainInfo struct {
	Chain        Chain
	NativeSymbol string
	// DefaultRouter is a Uniswap V2 compatible router used to prefill liquidity forms.
	DefaultRouter string
	// Selectable is false for chains that are known but not offered to users yet.
	Selectable bool
}

// pancakeRouterV2 is used where no better default is known.
const pancakeRouterV2 = "0x10ED43C718714eb63d5aA57B78B54704E256024E"

var chains = []ChainInfo{
	{Chain: ChainEthereum, NativeSymbol: "ETH", DefaultRouter: "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D", Selectable: true},
	{Chain: ChainPolygon, NativeSymbol: "MATIC", DefaultRouter: "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff", Selectable: true},
	{Chain: ChainBsc, NativeSymbol: "BNB", DefaultRouter: pancakeRouterV2, Selectable: true},
	// TODO: replace with the Fitochain DEX router once it is published.
	{Chain: ChainFitochain, NativeSymbol: "FITO", DefaultRouter: pancakeRouterV2, Selectable: false},
	{Chain: ChainAvalanche, NativeSymbol: "AVAX", DefaultRouter: "0x60aE616a2155Ee3d9A68541Ba4544862310933d4", Selectable: true},
}

// Chains returns all known deployment targets in display order.
func Chains() []ChainInfo {
	out := make([]ChainInfo, len(chains))
	copy(out, chains)
	return out
}

// Info returns the metadata of c. ok is false for unknown chains.
func (c Chain) Info() (ChainInfo, bool) {
	for _, info := range chains {
		if info.Chain == c {
			return info, true
		}
	}
	return ChainInfo{}, false
}

func (c Chain) IsValid() bool {
	_, ok := c.Info()
	return ok
}

func (c Chain) String() string {
	return string(c)
}
