package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTreasury receives generation fees on EVM networks.
const DefaultTreasury = "0x294722f0BaB2717E14B7C10ac3933d068d363f4F"

// Config contains the complete configuration of a tokensmith deployment.
type Config struct {
	Server     ServerConfig     `json:"server" toml:"server"`
	Model      ModelConfig      `json:"model" toml:"model"`
	Generation GenerationConfig `json:"generation" toml:"generation"`
	Payment    PaymentConfig    `json:"payment" toml:"payment"`
	Logging    LoggingConfig    `json:"logging" toml:"logging"`
	Metrics    MetricsConfig    `json:"metrics" toml:"metrics"`
}

// ServerConfig configures the HTTP gateway.
type ServerConfig struct {
	Host         string        `json:"host" toml:"host"`
	Port         int           `json:"port" toml:"port" validate:"min=1,max=65535"`
	ReadTimeout  time.Duration `json:"readTimeout" toml:"read_timeout"`
	WriteTimeout time.Duration `json:"writeTimeout" toml:"write_timeout"`
	// Mode is the gin mode: debug, release or test.
	Mode string `json:"mode" toml:"mode" validate:"omitempty,oneof=debug release test"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ModelConfig configures the external generative model.
type ModelConfig struct {
	// APIKey may be empty at load time; the gateway reports a ConfigError per request.
	APIKey      string        `json:"apiKey" toml:"api_key"`
	Name        string        `json:"name" toml:"name" validate:"required"`
	Temperature float32       `json:"temperature" toml:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `json:"timeout" toml:"timeout"`
}

// GenerationConfig configures prompt defaults.
type GenerationConfig struct {
	DefaultChain Chain `json:"defaultChain" toml:"default_chain" validate:"required"`
}

// PaymentConfig configures fee collection.
type PaymentConfig struct {
	DefaultNetwork FeeNetwork                   `json:"defaultNetwork" toml:"default_network" validate:"required"`
	Networks       map[FeeNetwork]NetworkConfig `json:"networks" toml:"networks" validate:"dive"`
	// Verify enables on-chain verification of payment proofs by the gateway.
	Verify bool `json:"verify" toml:"verify"`
	// ConfirmationTimeout bounds how long a wallet waits for a transfer receipt.
	ConfirmationTimeout time.Duration `json:"confirmationTimeout" toml:"confirmation_timeout"`
}

// NetworkConfig holds per fee network settings.
type NetworkConfig struct {
	RPCURL   string        `json:"rpcUrl" toml:"rpc_url" validate:"omitempty,url"`
	Treasury string        `json:"treasury" toml:"treasury"`
	Pricing  PricingConfig `json:"pricing" toml:"pricing"`
}

// PricingMode selects how fees are quoted.
type PricingMode string

const (
	// PricingFixed quotes fees directly in the native currency.
	PricingFixed PricingMode = "fixed"
	// PricingUSD quotes fees in USD and converts with NativePriceUSD.
	PricingUSD PricingMode = "usd"
)

// PricingConfig describes the fee schedule of a network.
type PricingConfig struct {
	Mode           PricingMode     `json:"mode" toml:"mode" validate:"omitempty,oneof=fixed usd"`
	Standard       decimal.Decimal `json:"standard" toml:"standard"`
	Liquidity      decimal.Decimal `json:"liquidity" toml:"liquidity"`
	NativePriceUSD decimal.Decimal `json:"nativePriceUsd" toml:"native_price_usd"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `json:"level" toml:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `json:"development" toml:"development"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" toml:"enabled"`
	Path    string `json:"path" toml:"path"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			Mode:         "release",
		},
		Model: ModelConfig{
			Name:        "gemini-2.5-flash",
			Temperature: 0.1,
			Timeout:     50 * time.Second,
		},
		Generation: GenerationConfig{
			DefaultChain: ChainEthereum,
		},
		Payment: PaymentConfig{
			DefaultNetwork:      NetworkSolanaMainnet,
			ConfirmationTimeout: 2 * time.Minute,
			Networks: map[FeeNetwork]NetworkConfig{
				NetworkSolanaMainnet: {
					RPCURL: "https://api.mainnet-beta.solana.com",
					Pricing: PricingConfig{
						Mode:      PricingFixed,
						Standard:  decimal.RequireFromString("0.37"),
						Liquidity: decimal.RequireFromString("0.62"),
					},
				},
				NetworkSolanaDevnet: {
					RPCURL: "https://api.devnet.solana.com",
					Pricing: PricingConfig{
						Mode:      PricingFixed,
						Standard:  decimal.RequireFromString("0.37"),
						Liquidity: decimal.RequireFromString("0.62"),
					},
				},
				NetworkFitochain: {
					RPCURL:   "https://rpc.fitochain.com",
					Treasury: DefaultTreasury,
					Pricing: PricingConfig{
						Mode:           PricingUSD,
						Standard:       decimal.NewFromInt(60),
						Liquidity:      decimal.NewFromInt(100),
						NativePriceUSD: decimal.RequireFromString("0.50"),
					},
				},
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
