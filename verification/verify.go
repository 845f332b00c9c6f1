package verification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vitwit/tokensmith/logger"
	"github.com/vitwit/tokensmith/metrics"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/utils"
)

// Quoter supplies the fee schedule and treasury of a fee network.
type Quoter interface {
	Quote(ctx context.Context, network types.FeeNetwork) (types.FeeQuote, error)
	Treasury(network types.FeeNetwork) string
}

// VerificationService checks payment proofs against the chain before a
// contract is generated.
type VerificationService struct {
	quoter         Quoter
	defaultNetwork types.FeeNetwork
	evmClients     map[types.FeeNetwork]*EVMVerifier
	solanaClients  map[types.FeeNetwork]*SolanaVerifier
	timeout        time.Duration
	logger         logger.Logger
	metrics        metrics.Recorder

	mu   sync.Mutex
	used map[string]struct{}
}

type Option func(*VerificationService)

func WithLogger(l logger.Logger) Option {
	return func(s *VerificationService) {
		s.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(s *VerificationService) {
		s.metrics = r
	}
}

func WithTimeout(t time.Duration) Option {
	return func(s *VerificationService) {
		s.timeout = t
	}
}

// NewVerificationService creates a new verification service
func NewVerificationService(quoter Quoter, defaultNetwork types.FeeNetwork, opts ...Option) *VerificationService {
	s := &VerificationService{
		quoter:         quoter,
		defaultNetwork: defaultNetwork,
		evmClients:     make(map[types.FeeNetwork]*EVMVerifier),
		solanaClients:  make(map[types.FeeNetwork]*SolanaVerifier),
		timeout:        30 * time.Second,
		logger:         logger.NoopLogger{},
		metrics:        metrics.NoopRecorder{},
		used:           make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddEVMClient adds an EVM verifier for a specific network
func (s *VerificationService) AddEVMClient(network types.FeeNetwork, client *EVMVerifier) error {
	if !network.IsEVM() {
		return fmt.Errorf("network %s is not an EVM network", network)
	}
	s.evmClients[network] = client
	return nil
}

// AddSolanaClient adds a Solana verifier for a specific network
func (s *VerificationService) AddSolanaClient(network types.FeeNetwork, client *SolanaVerifier) error {
	if !network.IsSolana() {
		return fmt.Errorf("network %s is not a Solana network", network)
	}
	s.solanaClients[network] = client
	return nil
}

// AddNetwork dials the RPC endpoint of network and registers its verifier.
func (s *VerificationService) AddNetwork(network types.FeeNetwork, rpcURL string) error {
	switch {
	case network.IsEVM():
		client, err := NewEVMVerifier(network, rpcURL)
		if err != nil {
			return fmt.Errorf("failed to create EVM verifier for %s: %w", network, err)
		}
		return s.AddEVMClient(network, client)
	case network.IsSolana():
		client, err := NewSolanaVerifier(network, rpcURL)
		if err != nil {
			return fmt.Errorf("failed to create Solana verifier for %s: %w", network, err)
		}
		return s.AddSolanaClient(network, client)
	default:
		return fmt.Errorf("unsupported network: %s", network)
	}
}

// Verify checks the payment proof attached to req. It returns nil when the
// proof is valid, a PaymentRequired error when it is missing or invalid, and
// an UpstreamError or ConfigError when the check itself could not run.
func (s *VerificationService) Verify(ctx context.Context, req *types.GenerationRequest) error {
	start := time.Now()
	network := s.defaultNetwork
	if req != nil && req.Payment != nil && req.Payment.Network != "" {
		network = req.Payment.Network
	}
	labels := map[string]string{"network": string(network)}

	err := s.verify(ctx, network, req)
	s.metrics.ObserveLatency(metrics.OpVerifyPayment, time.Since(start), labels)

	if err != nil {
		labels["code"] = string(types.CodeOf(err))
		s.metrics.IncCounter(metrics.EventPaymentRejected, labels)
		s.logger.Warn("payment not accepted", map[string]any{"network": network, "error": err})
		return err
	}

	s.metrics.IncCounter(metrics.EventPaymentVerified, labels)
	return nil
}

func (s *VerificationService) verify(ctx context.Context, network types.FeeNetwork, req *types.GenerationRequest) error {
	if req == nil || req.Payment == nil {
		return paymentRequired("no payment proof attached")
	}
	proof := req.Payment

	info, err := types.LookupNetwork(network)
	if err != nil {
		return paymentRequired(err.Error())
	}

	treasury := s.quoter.Treasury(network)
	if proof.IsWaiver() {
		return s.verifyWaiver(info, treasury, req)
	}

	quote, err := s.quoter.Quote(ctx, network)
	if err != nil {
		return types.NewError(types.ErrCodeConfigError, fmt.Sprintf("cannot price %s: %v", network, err), err)
	}
	required, err := utils.ToBaseUnits(quote.Amount(req.TokenType), info.Exponent)
	if err != nil {
		return types.NewError(types.ErrCodeConfigError, err.Error(), err)
	}
	if required.Sign() == 0 {
		return nil
	}

	if treasury == "" {
		return types.NewError(types.ErrCodeConfigError, fmt.Sprintf("no treasury configured for %s", network), nil)
	}
	if err := utils.ValidateTransactionHash(proof.TxHash, info.Family); err != nil {
		return paymentRequired(err.Error())
	}
	if err := utils.ValidateAddressForNetwork(proof.Payer, info.Family); err != nil {
		return paymentRequired(fmt.Sprintf("invalid payer: %v", err))
	}

	key := replayKey(info.Family, network, proof.TxHash)
	if !s.claim(key) {
		return paymentRequired(fmt.Sprintf("transaction %s was already used", proof.TxHash))
	}

	verifyCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var reason string
	switch info.Family {
	case types.ChainEVM:
		client, ok := s.evmClients[network]
		if !ok {
			err = fmt.Errorf("no EVM client configured for network %s", network)
			break
		}
		reason, err = client.VerifyTransfer(verifyCtx, proof.TxHash, proof.Payer, treasury, required)
	case types.ChainSolana:
		client, ok := s.solanaClients[network]
		if !ok {
			err = fmt.Errorf("no Solana client configured for network %s", network)
			break
		}
		reason, err = client.VerifyTransfer(verifyCtx, proof.TxHash, proof.Payer, treasury, required)
	}

	if err != nil {
		s.release(key)
		return types.NewError(types.ErrCodeUpstreamError, fmt.Sprintf("Could not verify payment: %v", err), err)
	}
	if reason != "" {
		s.release(key)
		return paymentRequired(reason)
	}
	return nil
}

func (s *VerificationService) verifyWaiver(info types.NetworkInfo, treasury string, req *types.GenerationRequest) error {
	if treasury == "" {
		return paymentRequired(fmt.Sprintf("fee waivers are not available on %s", info.Network))
	}
	if req.FormData == nil {
		return paymentRequired("fee waiver does not match the request")
	}

	msg := []byte(types.WaiverMessage(req.TokenType, *req.FormData))
	ok, err := VerifyWaiverSignature(info.Family, treasury, msg, req.Payment.AdminSignature)
	if err != nil {
		return paymentRequired(fmt.Sprintf("invalid fee waiver: %v", err))
	}
	if !ok {
		return paymentRequired("fee waiver is not signed by the treasury")
	}
	return nil
}

func paymentRequired(reason string) *types.Error {
	return types.NewError(types.ErrCodePaymentRequired, "Payment required: "+reason, nil)
}

func replayKey(family types.ChainFamily, network types.FeeNetwork, hash string) string {
	if family == types.ChainEVM {
		hash = strings.ToLower(hash)
	}
	return string(network) + "/" + hash
}

func (s *VerificationService) claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.used[key]; ok {
		return false
	}
	s.used[key] = struct{}{}
	return true
}

func (s *VerificationService) release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.used, key)
}

// GetSupportedNetworks returns all networks that have configured clients
func (s *VerificationService) GetSupportedNetworks() []types.FeeNetwork {
	var networks []types.FeeNetwork
	for network := range s.evmClients {
		networks = append(networks, network)
	}
	for network := range s.solanaClients {
		networks = append(networks, network)
	}
	sort.Slice(networks, func(i, j int) bool { return networks[i] < networks[j] })
	return networks
}

// IsNetworkSupported checks if a network is supported
func (s *VerificationService) IsNetworkSupported(network types.FeeNetwork) bool {
	if _, ok := s.evmClients[network]; ok {
		return true
	}
	_, ok := s.solanaClients[network]
	return ok
}

// Close closes all client connections
func (s *VerificationService) Close() {
	for _, client := range s.evmClients {
		client.Close()
	}
	for _, client := range s.solanaClients {
		client.Close()
	}
}

var errUnsupportedFamily = errors.New("unsupported chain family")
