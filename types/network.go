package types

import (
	"fmt"
	"sort"
)

// ChainFamily classifies a fee network into a wallet family.
type ChainFamily string

const (
	ChainEVM    ChainFamily = "evm"
	ChainSolana ChainFamily = "solana"
)

// FeeNetwork is the network on which generation fees are paid.
// It is independent of the Chain the generated contract targets.
type FeeNetwork string

const (
	// Solana networks
	NetworkSolanaMainnet FeeNetwork = "solana-mainnet"
	NetworkSolanaDevnet  FeeNetwork = "solana-devnet" // testnet

	// EVM networks
	NetworkFitochain   FeeNetwork = "fitochain"
	NetworkEthereum    FeeNetwork = "ethereum"
	NetworkPolygon     FeeNetwork = "polygon"
	NetworkPolygonAmoy FeeNetwork = "polygon-amoy" // testnet
	NetworkBSC         FeeNetwork = "bsc"
	NetworkAvalanche   FeeNetwork = "avalanche"
	NetworkBase        FeeNetwork = "base"
	NetworkBaseSepolia FeeNetwork = "base-sepolia" // testnet
)

// NetworkInfo holds the static definition of a fee network.
type NetworkInfo struct {
	Network      FeeNetwork
	Family       ChainFamily
	ChainID      int64 // EVM only
	NativeSymbol string
	// Exponent converts one native unit into the smallest on-chain unit (wei, lamports).
	Exponent int32
	Testnet  bool
	// GenesisHash identifies Solana clusters.
	GenesisHash string
}

var networks = map[FeeNetwork]NetworkInfo{
	NetworkSolanaMainnet: {Network: NetworkSolanaMainnet, Family: ChainSolana, NativeSymbol: "SOL", Exponent: 9, GenesisHash: "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdpKuc147dw2N9d"},
	NetworkSolanaDevnet:  {Network: NetworkSolanaDevnet, Family: ChainSolana, NativeSymbol: "SOL", Exponent: 9, Testnet: true, GenesisHash: "EtWTRABZaYq6iMfeYKouRu166VU2xqa1wcaWoxPkrZBG"},
	NetworkFitochain:     {Network: NetworkFitochain, Family: ChainEVM, ChainID: 1233, NativeSymbol: "FITO", Exponent: 18},
	NetworkEthereum:      {Network: NetworkEthereum, Family: ChainEVM, ChainID: 1, NativeSymbol: "ETH", Exponent: 18},
	NetworkPolygon:       {Network: NetworkPolygon, Family: ChainEVM, ChainID: 137, NativeSymbol: "POL", Exponent: 18},
	NetworkPolygonAmoy:   {Network: NetworkPolygonAmoy, Family: ChainEVM, ChainID: 80002, NativeSymbol: "POL", Exponent: 18, Testnet: true},
	NetworkBSC:           {Network: NetworkBSC, Family: ChainEVM, ChainID: 56, NativeSymbol: "BNB", Exponent: 18},
	NetworkAvalanche:     {Network: NetworkAvalanche, Family: ChainEVM, ChainID: 43114, NativeSymbol: "AVAX", Exponent: 18},
	NetworkBase:          {Network: NetworkBase, Family: ChainEVM, ChainID: 8453, NativeSymbol: "ETH", Exponent: 18},
	NetworkBaseSepolia:   {Network: NetworkBaseSepolia, Family: ChainEVM, ChainID: 84532, NativeSymbol: "ETH", Exponent: 18, Testnet: true},
}

// Networks returns all supported fee networks sorted by name.
func Networks() []FeeNetwork {
	out := make([]FeeNetwork, 0, len(networks))
	for n := range networks {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// LookupNetwork returns the definition of a fee network.
func LookupNetwork(n FeeNetwork) (NetworkInfo, error) {
	info, ok := networks[n]
	if !ok {
		return NetworkInfo{}, fmt.Errorf("unsupported fee network: %s", n)
	}
	return info, nil
}

// Helper functions for network classification
func (n FeeNetwork) IsEVM() bool {
	info, ok := networks[n]
	return ok && info.Family == ChainEVM
}

func (n FeeNetwork) IsSolana() bool {
	info, ok := networks[n]
	return ok && info.Family == ChainSolana
}

func (n FeeNetwork) IsTestnet() bool {
	return networks[n].Testnet
}

func (n FeeNetwork) Family() ChainFamily {
	return networks[n].Family
}

func (n FeeNetwork) String() string {
	return string(n)
}
