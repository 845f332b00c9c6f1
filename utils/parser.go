package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/vitwit/tokensmith/types"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom validators
	validate.RegisterValidation("nonnegdecimal", validateNonNegativeDecimal)
}

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	return validate
}

func validateNonNegativeDecimal(fl validator.FieldLevel) bool {
	_, err := ValidateAmount(fl.Field().String())
	return err == nil
}

// LoadConfig builds the configuration from defaults, an optional JSON or TOML
// file, an optional .env file and TOKENSMITH_* environment variables, in that
// order, and validates the result.
func LoadConfig(path string) (*types.Config, error) {
	cfg := types.DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := ParseConfig(data, filepath.Ext(path), cfg); err != nil {
			return nil, err
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseConfig decodes data into cfg. ext selects the format (".toml" or JSON).
func ParseConfig(data []byte, ext string, cfg *types.Config) error {
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(cfg)
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	}
	if err != nil {
		return types.NewError(types.ErrCodeConfigError, fmt.Sprintf("failed to parse config: %v", err), err)
	}
	return nil
}

// ValidateConfig checks struct tags and cross-field rules.
func ValidateConfig(cfg *types.Config) error {
	if err := validate.Struct(cfg); err != nil {
		return types.NewError(types.ErrCodeConfigError, fmt.Sprintf("validation failed: %v", err), err)
	}

	if !cfg.Generation.DefaultChain.IsValid() {
		return types.NewError(types.ErrCodeConfigError,
			fmt.Sprintf("unknown default chain: %s", cfg.Generation.DefaultChain), nil)
	}

	if _, err := types.LookupNetwork(cfg.Payment.DefaultNetwork); err != nil {
		return types.NewError(types.ErrCodeConfigError, err.Error(), err)
	}

	for network, nc := range cfg.Payment.Networks {
		info, err := types.LookupNetwork(network)
		if err != nil {
			return types.NewError(types.ErrCodeConfigError, err.Error(), err)
		}
		if nc.Treasury != "" {
			if err := ValidateAddressForNetwork(nc.Treasury, info.Family); err != nil {
				return types.NewError(types.ErrCodeConfigError,
					fmt.Sprintf("invalid treasury for %s: %v", network, err), err)
			}
		}
		if nc.Pricing.Mode == types.PricingUSD && !nc.Pricing.NativePriceUSD.IsPositive() {
			return types.NewError(types.ErrCodeConfigError,
				fmt.Sprintf("usd pricing for %s requires a positive native price", network), nil)
		}
	}

	return nil
}

func overrideWithEnv(cfg *types.Config) error {
	if key := firstEnv("TOKENSMITH_API_KEY", "API_KEY"); key != "" {
		cfg.Model.APIKey = key
	}
	if model := os.Getenv("TOKENSMITH_MODEL"); model != "" {
		cfg.Model.Name = model
	}
	if host := os.Getenv("TOKENSMITH_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("TOKENSMITH_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return types.NewError(types.ErrCodeConfigError, fmt.Sprintf("invalid TOKENSMITH_PORT: %v", err), err)
		}
		cfg.Server.Port = p
	}
	if level := os.Getenv("TOKENSMITH_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if network := os.Getenv("TOKENSMITH_FEE_NETWORK"); network != "" {
		cfg.Payment.DefaultNetwork = types.FeeNetwork(network)
	}
	if verify := os.Getenv("TOKENSMITH_VERIFY_PAYMENTS"); verify != "" {
		v, err := strconv.ParseBool(verify)
		if err != nil {
			return types.NewError(types.ErrCodeConfigError, fmt.Sprintf("invalid TOKENSMITH_VERIFY_PAYMENTS: %v", err), err)
		}
		cfg.Payment.Verify = v
	}
	if timeout := os.Getenv("TOKENSMITH_CONFIRMATION_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return types.NewError(types.ErrCodeConfigError, fmt.Sprintf("invalid TOKENSMITH_CONFIRMATION_TIMEOUT: %v", err), err)
		}
		cfg.Payment.ConfirmationTimeout = d
	}
	if treasury := os.Getenv("TOKENSMITH_TREASURY"); treasury != "" {
		nc := cfg.Payment.Networks[cfg.Payment.DefaultNetwork]
		nc.Treasury = treasury
		if cfg.Payment.Networks == nil {
			cfg.Payment.Networks = make(map[types.FeeNetwork]types.NetworkConfig)
		}
		cfg.Payment.Networks[cfg.Payment.DefaultNetwork] = nc
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
