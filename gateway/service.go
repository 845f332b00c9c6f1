// Package gateway turns generation requests into Solidity source through an
// external generative model, and serves fee quotes.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitwit/tokensmith/llm"
	"github.com/vitwit/tokensmith/logger"
	"github.com/vitwit/tokensmith/metrics"
	"github.com/vitwit/tokensmith/prompt"
	"github.com/vitwit/tokensmith/types"
)

const (
	missingKeyMessage   = "Server configuration error: Missing API key."
	upstreamPrefix      = "Failed to communicate with the AI model. "
	formatErrorMessage  = "Invalid response format from AI. Expected a JSON object with a 'solidityCode' key."
	pricesErrorMessage  = "Could not retrieve prices from server."
	responseMIMEType    = "application/json"
	defaultModelTimeout = 50 * time.Second
)

// PaymentVerifier checks the payment proof attached to a request.
// Failures are *types.Error with ErrCodePaymentRequired or ErrCodeUpstreamError.
type PaymentVerifier interface {
	Verify(ctx context.Context, req *types.GenerationRequest) error
}

// Quoter returns the fee quote for a wallet on a fee network.
type Quoter interface {
	QuoteFor(ctx context.Context, network types.FeeNetwork, address string) (types.FeeQuote, error)
}

// Service validates requests, calls the model and unwraps its answer.
// It is safe for concurrent use.
type Service struct {
	model          llm.Model
	quoter         Quoter
	verifier       PaymentVerifier
	defaultChain   types.Chain
	defaultNetwork types.FeeNetwork
	temperature    float32
	timeout        time.Duration
	logger         logger.Logger
	metrics        metrics.Recorder
}

type Option func(*Service)

func WithVerifier(v PaymentVerifier) Option {
	return func(s *Service) {
		s.verifier = v
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *Service) {
		s.metrics = r
	}
}

// NewService creates a gateway service.
func NewService(model llm.Model, quoter Quoter, cfg *types.Config, opts ...Option) *Service {
	s := &Service{
		model:          model,
		quoter:         quoter,
		defaultChain:   cfg.Generation.DefaultChain,
		defaultNetwork: cfg.Payment.DefaultNetwork,
		temperature:    cfg.Model.Temperature,
		timeout:        cfg.Model.Timeout,
		logger:         logger.NoopLogger{},
		metrics:        metrics.NoopRecorder{},
	}
	if s.timeout <= 0 {
		s.timeout = defaultModelTimeout
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready reports a ConfigError when the model cannot be used.
func (s *Service) Ready() error {
	if err := s.model.Ready(); err != nil {
		s.logger.Error("model is not configured", map[string]any{"error": err})
		return types.NewError(types.ErrCodeConfigError, missingKeyMessage, err)
	}
	return nil
}

// Generate runs one generation attempt. Every error is a *types.Error.
func (s *Service) Generate(ctx context.Context, req *types.GenerationRequest) (*types.GenerationResult, error) {
	s.metrics.IncCounter(metrics.EventGenerateRequest, nil)

	res, err := s.generate(ctx, req)
	if err != nil {
		s.metrics.IncCounter(metrics.EventGenerateFailure, map[string]string{"code": string(types.CodeOf(err))})
		return nil, err
	}
	return res, nil
}

func (s *Service) generate(ctx context.Context, req *types.GenerationRequest) (*types.GenerationResult, error) {
	if err := s.Ready(); err != nil {
		return nil, err
	}

	spec, chain, err := validateRequest(req, s.defaultChain)
	if err != nil {
		return nil, err
	}

	if s.verifier != nil {
		if err := s.verifier.Verify(ctx, req); err != nil {
			return nil, paymentError(err)
		}
	}

	text, err := prompt.Build(req.TokenType, spec, chain)
	if err != nil {
		return nil, invalidRequest(err.Error(), err)
	}

	log := s.logger.With(map[string]any{
		"token_type": req.TokenType,
		"chain":      chain,
	})

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.model.Generate(genCtx, text, llm.Options{
		Temperature:      s.temperature,
		ResponseMIMEType: responseMIMEType,
	})
	s.metrics.ObserveLatency(metrics.OpModelGenerate, time.Since(start), nil)
	if err != nil {
		log.Error("model call failed", map[string]any{"error": err})
		return nil, types.NewError(types.ErrCodeUpstreamError, upstreamPrefix+err.Error(), err)
	}

	code, err := UnwrapSolidity(raw)
	if err != nil {
		log.Warn("unexpected model response", map[string]any{"error": err, "response_bytes": len(raw)})
		return nil, types.NewError(types.ErrCodeUpstreamFormatError, formatErrorMessage, err)
	}

	log.Info("contract generated", map[string]any{"code_bytes": len(code)})
	return &types.GenerationResult{SolidityCode: code}, nil
}

func paymentError(err error) *types.Error {
	var e *types.Error
	if errors.As(err, &e) {
		return e
	}
	return types.NewError(types.ErrCodePaymentRequired, fmt.Sprintf("Payment required: %v", err), err)
}

// Prices returns the fee quote of network for the wallet at address.
// An empty network selects the default fee network.
func (s *Service) Prices(ctx context.Context, network types.FeeNetwork, address string) (*types.PricesResponse, error) {
	if network == "" {
		network = s.defaultNetwork
	}
	s.metrics.IncCounter(metrics.EventPricesRequest, map[string]string{"network": string(network)})

	if _, err := types.LookupNetwork(network); err != nil {
		return nil, invalidRequest(fmt.Sprintf("Unknown fee network %q.", network), err)
	}

	quote, err := s.quoter.QuoteFor(ctx, network, address)
	if err != nil {
		s.logger.Error("failed to quote prices", map[string]any{"network": network, "error": err})
		code := types.ErrCodeUnknown
		if errors.Is(err, types.ErrNoPriceData) {
			code = types.ErrCodeNoPriceData
		}
		return nil, types.NewError(code, pricesErrorMessage, err)
	}

	resp := types.NewPricesResponse(quote)
	return &resp, nil
}
