package utils

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"github.com/vitwit/tokensmith/types"
)

// ValidateAmount checks if an amount string is a valid non-negative decimal
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if amount == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if dec.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}

	return &dec, nil
}

// ToBaseUnits converts an amount of native currency into the smallest unit
// of a network (10^exponent), rounded to the nearest integer unit.
func ToBaseUnits(amount decimal.Decimal, exponent int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("amount cannot be negative")
	}
	return amount.Shift(exponent).Round(0).BigInt(), nil
}

// FromBaseUnits formats a base unit amount as a decimal string of native currency.
func FromBaseUnits(amount *big.Int, exponent int32) string {
	return decimal.NewFromBigInt(amount, -exponent).String()
}

// ValidateTransactionHash validates transaction hashes of a chain family
func ValidateTransactionHash(hash string, family types.ChainFamily) error {
	if hash == "" {
		return fmt.Errorf("transaction hash cannot be empty")
	}

	switch family {
	case types.ChainEVM:
		// 0x + 64 hex
		if !strings.HasPrefix(hash, "0x") {
			return fmt.Errorf("EVM transaction hash must start with 0x")
		}
		if len(hash) != 66 {
			return fmt.Errorf("EVM transaction hash must be 66 characters long")
		}
		if !isHexString(hash[2:]) {
			return fmt.Errorf("EVM transaction hash must be valid hex")
		}

	case types.ChainSolana:
		// base58 encoded 64 byte signature
		raw, err := base58.Decode(hash)
		if err != nil {
			return fmt.Errorf("Solana transaction signature must be valid base58")
		}
		if len(raw) != 64 {
			return fmt.Errorf("Solana transaction signature must decode to 64 bytes")
		}

	default:
		return fmt.Errorf("unsupported chain family for transaction hash validation")
	}

	return nil
}

// ValidateAddressForNetwork validates addresses of a chain family
func ValidateAddressForNetwork(address string, family types.ChainFamily) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	switch family {
	case types.ChainEVM:
		if !strings.HasPrefix(address, "0x") {
			return fmt.Errorf("Ethereum address must start with 0x")
		}
		if len(address) != 42 {
			return fmt.Errorf("Ethereum address must be 42 characters long")
		}
		if !isHexString(address[2:]) {
			return fmt.Errorf("Ethereum address must be valid hex")
		}

	case types.ChainSolana:
		// 32 byte ed25519 public key
		raw, err := base58.Decode(address)
		if err != nil {
			return fmt.Errorf("Solana address must be valid base58")
		}
		if len(raw) != 32 {
			return fmt.Errorf("Solana address must decode to 32 bytes")
		}

	default:
		return fmt.Errorf("unsupported chain family for address validation")
	}

	return nil
}

var hexPattern = regexp.MustCompile("^[0-9a-fA-F]+$")

// Helper function to check if a string is valid hexadecimal
func isHexString(s string) bool {
	return hexPattern.MatchString(s)
}
