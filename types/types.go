package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GenerationRequest is the payload of POST /api/generate-token.
type GenerationRequest struct {
	TokenType TokenType `json:"tokenType"`
	FormData  *FormData `json:"formData"`

	// SelectedChain is optional; the gateway falls back to its default chain.
	SelectedChain Chain `json:"selectedChain,omitempty"`

	// Payment proves the fee was paid or waived. Only checked when the
	// gateway runs with payment verification enabled.
	Payment *PaymentProof `json:"payment,omitempty"`
}

// PaymentProof references the on-chain fee transfer, or carries the
// treasury's signature over WaiverMessage for the admin waiver.
type PaymentProof struct {
	Network        FeeNetwork `json:"network"`
	Payer          string     `json:"payer"`
	TxHash         string     `json:"txHash,omitempty"`
	AdminSignature string     `json:"adminSignature,omitempty"`
}

// IsWaiver reports whether the proof claims the admin waiver.
func (p *PaymentProof) IsWaiver() bool {
	return p != nil && p.TxHash == "" && p.AdminSignature != ""
}

// WaiverMessage is the text the treasury wallet signs to waive the fee for a request.
func WaiverMessage(tokenType TokenType, f FormData) string {
	return fmt.Sprintf("tokensmith fee waiver\ntype: %s\nname: %s\nsymbol: %s", tokenType, f.Name, f.Symbol)
}

// GenerationResult is the successful response of the gateway.
type GenerationResult struct {
	SolidityCode string `json:"solidityCode"`
}

// ErrorResponse is the JSON body of every failed gateway response.
type ErrorResponse struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code,omitempty"`
}

// FeeQuote holds the generation fees in the fee network's native currency.
type FeeQuote struct {
	Standard  decimal.Decimal
	Liquidity decimal.Decimal
	Currency  string
	Network   FeeNetwork
	Treasury  string
}

// Amount returns the fee for tokenType.
func (q FeeQuote) Amount(tokenType TokenType) decimal.Decimal {
	if tokenType == TokenTypeStandard {
		return q.Standard
	}
	return q.Liquidity
}

// Waived returns a copy of the quote with both fees set to zero.
func (q FeeQuote) Waived() FeeQuote {
	q.Standard = decimal.Zero
	q.Liquidity = decimal.Zero
	return q
}

// PricesResponse is the body of GET /api/get-prices.
type PricesResponse struct {
	Standard  float64    `json:"standard"`
	Liquidity float64    `json:"liquidity"`
	Currency  string     `json:"currency,omitempty"`
	Network   FeeNetwork `json:"network,omitempty"`
	Treasury  string     `json:"treasury,omitempty"`
}

// NewPricesResponse converts a quote to its wire form.
func NewPricesResponse(q FeeQuote) PricesResponse {
	return PricesResponse{
		Standard:  q.Standard.InexactFloat64(),
		Liquidity: q.Liquidity.InexactFloat64(),
		Currency:  q.Currency,
		Network:   q.Network,
		Treasury:  q.Treasury,
	}
}

// Quote converts the wire form back to a FeeQuote.
func (p PricesResponse) Quote() FeeQuote {
	return FeeQuote{
		Standard:  decimal.NewFromFloat(p.Standard),
		Liquidity: decimal.NewFromFloat(p.Liquidity),
		Currency:  p.Currency,
		Network:   p.Network,
		Treasury:  p.Treasury,
	}
}

// Confirmation is returned by a wallet once a transfer is confirmed on chain.
type Confirmation struct {
	TxHash      string     `json:"txHash"`
	Network     FeeNetwork `json:"network"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	Amount      string     `json:"amount"` // base units
	BlockNumber uint64     `json:"blockNumber,omitempty"`
	ConfirmedAt time.Time  `json:"confirmedAt"`
}

// SameAddress compares two addresses of family. EVM addresses are hex and
// compared case-insensitively; Solana addresses are base58 and case-sensitive.
func SameAddress(family ChainFamily, a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if family == ChainEVM {
		return strings.EqualFold(a, b)
	}
	return a == b
}
