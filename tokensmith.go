// Package tokensmith generates Solidity token contracts behind an on-chain
// fee payment.
//
// A Tokensmith wires the fee oracle, the generative model, the optional
// payment verifier and the generation gateway from a types.Config. Clients
// pay and generate through a coordinator.Coordinator, either in-process or
// against a remote gateway.
package tokensmith

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vitwit/tokensmith/coordinator"
	"github.com/vitwit/tokensmith/gateway"
	"github.com/vitwit/tokensmith/llm"
	"github.com/vitwit/tokensmith/logger"
	"github.com/vitwit/tokensmith/metrics"
	"github.com/vitwit/tokensmith/pricing"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/verification"
	"github.com/vitwit/tokensmith/wallet"
)

// Version information
const Version = "1.0.0"

// Tokensmith is the main struct that provides all tokensmith functionality
type Tokensmith struct {
	config   *types.Config
	oracle   *pricing.Oracle
	model    llm.Model
	verifier gateway.PaymentVerifier
	service  *gateway.Service

	// closer is set when the verifier was created from the config.
	closer interface{ Close() }

	logger  logger.Logger
	metrics metrics.Recorder
	timeout time.Duration
}

// New creates a Tokensmith from cfg. A nil cfg uses types.DefaultConfig.
func New(cfg *types.Config, opts ...Option) (*Tokensmith, error) {
	if cfg == nil {
		cfg = types.DefaultConfig()
	}

	t := &Tokensmith{
		config:  cfg,
		oracle:  pricing.NewOracle(cfg.Payment),
		logger:  logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.model == nil {
		t.model = llm.NewGemini(cfg.Model, t.logger)
	}

	if t.verifier == nil && cfg.Payment.Verify {
		v, err := t.newVerifier()
		if err != nil {
			return nil, err
		}
		t.verifier = v
		t.closer = v
	}

	serviceOpts := []gateway.Option{
		gateway.WithLogger(t.logger),
		gateway.WithMetrics(t.metrics),
	}
	if t.verifier != nil {
		serviceOpts = append(serviceOpts, gateway.WithVerifier(t.verifier))
	}
	t.service = gateway.NewService(t.model, t.oracle, cfg, serviceOpts...)

	return t, nil
}

// newVerifier registers every configured network that has an RPC endpoint.
func (t *Tokensmith) newVerifier() (*verification.VerificationService, error) {
	v := verification.NewVerificationService(t.oracle, t.config.Payment.DefaultNetwork,
		verification.WithLogger(t.logger),
		verification.WithMetrics(t.metrics),
		verification.WithTimeout(t.timeout),
	)

	for _, network := range types.Networks() {
		nc, ok := t.config.Payment.Networks[network]
		if !ok || nc.RPCURL == "" {
			continue
		}
		if err := v.AddNetwork(network, nc.RPCURL); err != nil {
			v.Close()
			return nil, err
		}
		t.logger.Debug("payment verification enabled", map[string]any{"network": network})
	}
	return v, nil
}

// Config returns the configuration in use.
func (t *Tokensmith) Config() *types.Config {
	return t.config
}

// Service returns the generation gateway service.
func (t *Tokensmith) Service() *gateway.Service {
	return t.service
}

// Oracle returns the fee oracle.
func (t *Tokensmith) Oracle() *pricing.Oracle {
	return t.oracle
}

// Router builds the gin engine serving the gateway.
func (t *Tokensmith) Router() *gin.Engine {
	return gateway.NewRouter(gateway.NewHandler(t.service, t.logger))
}

// Prices returns the fee quote of network for the wallet at address.
func (t *Tokensmith) Prices(ctx context.Context, network types.FeeNetwork, address string) (*types.PricesResponse, error) {
	return t.service.Prices(ctx, network, address)
}

// Generate runs one generation through the local gateway service.
func (t *Tokensmith) Generate(ctx context.Context, req *types.GenerationRequest) (string, error) {
	res, err := t.service.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return res.SolidityCode, nil
}

var _ coordinator.Generator = (*Tokensmith)(nil)

func (t *Tokensmith) sessionOptions() []wallet.SessionOption {
	return []wallet.SessionOption{
		wallet.WithConfirmationTimeout(t.config.Payment.ConfirmationTimeout),
		wallet.WithLogger(t.logger),
		wallet.WithMetrics(t.metrics),
	}
}

func (t *Tokensmith) rpcURL(network types.FeeNetwork) (string, error) {
	nc, ok := t.config.Payment.Networks[network]
	if !ok || nc.RPCURL == "" {
		return "", fmt.Errorf("no RPC URL configured for %s", network)
	}
	return nc.RPCURL, nil
}

// NewEVMSession creates a disconnected wallet session on an EVM fee network.
func (t *Tokensmith) NewEVMSession(network types.FeeNetwork) (*wallet.EVMSession, error) {
	url, err := t.rpcURL(network)
	if err != nil {
		return nil, err
	}
	return wallet.NewEVMSession(network, url, t.sessionOptions()...)
}

// NewSolanaSession creates a disconnected wallet session on a Solana cluster.
func (t *Tokensmith) NewSolanaSession(network types.FeeNetwork) (*wallet.SolanaSession, error) {
	url, err := t.rpcURL(network)
	if err != nil {
		return nil, err
	}
	return wallet.NewSolanaSession(network, url, t.sessionOptions()...)
}

// NewCoordinator creates a coordinator paying from session and generating
// in-process. Use coordinator.New with a coordinator.HTTPGateway to generate
// through a remote gateway instead.
func (t *Tokensmith) NewCoordinator(session wallet.Session, opts ...coordinator.Option) *coordinator.Coordinator {
	base := []coordinator.Option{
		coordinator.WithLogger(t.logger),
		coordinator.WithMetrics(t.metrics),
		coordinator.WithTreasury(t.oracle.Treasury(session.Network())),
	}
	return coordinator.New(session, t.oracle, t, append(base, opts...)...)
}

// Close closes the RPC connections of the payment verifier.
func (t *Tokensmith) Close() {
	if t.closer != nil {
		t.closer.Close()
	}
}
