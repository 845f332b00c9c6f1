// Package coordinator runs a paid generation: it quotes the fee, pays it from
// the connected wallet, waits for confirmation and then asks the gateway for
// the contract.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vitwit/tokensmith/gateway"
	"github.com/vitwit/tokensmith/logger"
	"github.com/vitwit/tokensmith/metrics"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/utils"
	"github.com/vitwit/tokensmith/wallet"
)

const (
	notConnectedMessage = "Please connect your wallet to proceed."
	rejectedMessage     = "Transaction was rejected by the user."
	noPriceDataMessage  = "Could not retrieve prices from server."
	generateFailPrefix  = "Failed to generate smart contract. Reason: "
	feesWaivedMessage   = "Admin wallet detected: generation fees were waived."
	generatedMessage    = "Smart contract generated."
)

// ErrSubmissionInFlight is returned by Submit while another submission runs.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// QuoteSource returns the fee quote of a fee network.
type QuoteSource interface {
	Quote(ctx context.Context, network types.FeeNetwork) (types.FeeQuote, error)
}

// Generator turns a paid request into Solidity source.
type Generator interface {
	Generate(ctx context.Context, req *types.GenerationRequest) (string, error)
}

// Observer is called synchronously on every state change.
type Observer func(Transition)

// Submission is one generation the user asked for.
type Submission struct {
	Spec  types.TokenSpec
	Chain types.Chain
}

// Outcome is the result of a submission. Failed outcomes carry a Code and
// never carry SolidityCode.
type Outcome struct {
	State        State
	Code         types.ErrorCode
	Message      string
	SolidityCode string
	FileName     string
	FeesWaived   bool
	Confirmation *types.Confirmation
}

func (o *Outcome) Succeeded() bool {
	return o.State == StateSuccess
}

// Coordinator gates generation behind a fee transfer from one wallet session.
// Only one submission runs at a time.
type Coordinator struct {
	session   wallet.Session
	quotes    QuoteSource
	generator Generator
	treasury  string
	logger    logger.Logger
	metrics   metrics.Recorder
	observers []Observer

	inFlight atomic.Bool

	mu    sync.Mutex
	state State
	quote *types.FeeQuote
}

type Option func(*Coordinator)

func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(c *Coordinator) {
		c.metrics = r
	}
}

// WithObserver registers fn for state changes.
func WithObserver(fn Observer) Option {
	return func(c *Coordinator) {
		c.observers = append(c.observers, fn)
	}
}

// WithTreasury sets the treasury used when the quote does not name one.
// It also lets the treasury wallet generate while no quote is available.
func WithTreasury(address string) Option {
	return func(c *Coordinator) {
		c.treasury = address
	}
}

// New creates a coordinator paying from session.
func New(session wallet.Session, quotes QuoteSource, generator Generator, opts ...Option) *Coordinator {
	c := &Coordinator{
		session:   session,
		quotes:    quotes,
		generator: generator,
		logger:    logger.NoopLogger{},
		metrics:   metrics.NoopRecorder{},
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LoadQuote fetches the quote of the session's fee network once and caches
// it. Failed fetches are not cached.
func (c *Coordinator) LoadQuote(ctx context.Context) (types.FeeQuote, error) {
	c.mu.Lock()
	cached := c.quote
	c.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	if c.quotes == nil {
		return types.FeeQuote{}, types.ErrNoPriceData
	}

	network := c.session.Network()
	quote, err := c.quotes.Quote(ctx, network)
	if err != nil {
		return types.FeeQuote{}, err
	}
	if quote.Network != "" && quote.Network != network {
		return types.FeeQuote{}, fmt.Errorf("%w: quote is for %s, wallet is on %s", types.ErrNoPriceData, quote.Network, network)
	}
	if quote.Treasury == "" {
		quote.Treasury = c.treasury
	}

	c.mu.Lock()
	c.quote = &quote
	c.mu.Unlock()
	return quote, nil
}

// IsAdmin reports whether the connected account is the treasury of quote.
func (c *Coordinator) IsAdmin(quote types.FeeQuote) bool {
	treasury := quote.Treasury
	if treasury == "" {
		treasury = c.treasury
	}
	return types.SameAddress(c.session.Family(), c.session.Address(), treasury)
}

// Submit runs one paid generation. The returned error is only
// ErrSubmissionInFlight or a programming error; every other failure is
// reported in the Outcome. The coordinator is Idle again when Submit returns.
func (c *Coordinator) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	if sub.Spec == nil {
		return nil, errors.New("token spec is required")
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer c.inFlight.Store(false)

	start := time.Now()
	out := c.run(ctx, sub)
	c.transition(out.State, "")
	c.transition(StateIdle, "")

	labels := map[string]string{"code": string(out.Code)}
	if c.session != nil {
		labels["network"] = string(c.session.Network())
	}
	c.metrics.IncCounter(metrics.EventSubmission, labels)
	c.metrics.ObserveLatency(metrics.OpSubmission, time.Since(start), labels)

	fields := map[string]any{"state": out.State, "token": sub.Spec.Base().Name}
	if out.Confirmation != nil {
		fields["tx_hash"] = out.Confirmation.TxHash
	}
	if out.Succeeded() {
		c.logger.Info("submission finished", fields)
	} else {
		fields["code"] = out.Code
		fields["message"] = out.Message
		c.logger.Warn("submission failed", fields)
	}
	return out, nil
}

func (c *Coordinator) run(ctx context.Context, sub Submission) *Outcome {
	c.transition(StateValidating, "")

	if c.session == nil || !c.session.IsConnected() {
		return &Outcome{State: StateNotConnected, Code: types.ErrCodeNotConnected, Message: notConnectedMessage}
	}

	tokenType := sub.Spec.Type()
	req := &types.GenerationRequest{
		TokenType:     tokenType,
		FormData:      formData(sub.Spec),
		SelectedChain: sub.Chain,
	}
	// nothing is paid for a form the gateway would reject
	if err := gateway.ValidateRequest(req, types.ChainEthereum); err != nil {
		return &Outcome{State: StateGenerationFailed, Code: types.CodeOf(err), Message: err.Error()}
	}

	network := c.session.Network()
	info, err := types.LookupNetwork(network)
	if err != nil {
		return &Outcome{State: StateNoPriceData, Code: types.ErrCodeNoPriceData, Message: err.Error()}
	}

	quote, quoteErr := c.LoadQuote(ctx)
	if quoteErr != nil {
		quote = types.FeeQuote{Network: network, Treasury: c.treasury}
	}
	admin := c.IsAdmin(quote)
	if quoteErr != nil && !admin {
		c.logger.Warn("no price data", map[string]any{"network": network, "error": quoteErr})
		return &Outcome{State: StateNoPriceData, Code: types.ErrCodeNoPriceData, Message: noPriceDataMessage}
	}

	c.transition(StatePaying, "")

	fee := quote.Amount(tokenType)
	if admin {
		fee = quote.Waived().Amount(tokenType)
	}
	amount, err := utils.ToBaseUnits(fee, info.Exponent)
	if err != nil {
		return paymentFailed(types.ErrCodeConfigError, err.Error())
	}

	proof := &types.PaymentProof{Network: network, Payer: c.session.Address()}
	var conf *types.Confirmation

	if amount.Sign() > 0 {
		conf, err = c.pay(ctx, amount, quote.Treasury)
		if err != nil {
			return paymentOutcome(err)
		}
		proof.TxHash = conf.TxHash
	} else if admin {
		sig, err := c.signWaiver(ctx, sub.Spec)
		if err != nil {
			return paymentOutcome(err)
		}
		proof.AdminSignature = sig
	}

	c.transition(StateGenerating, "")

	req.Payment = proof
	code, err := c.generator.Generate(ctx, req)
	if err == nil && code == "" {
		err = types.NewError(types.ErrCodeUpstreamFormatError, invalidResponseMessage, nil)
	}
	if err != nil {
		errCode := types.CodeOf(err)
		if errCode == types.ErrCodeUnknown {
			errCode = types.ErrCodeUpstreamError
		}
		return &Outcome{
			State:        StateGenerationFailed,
			Code:         errCode,
			Message:      generateFailPrefix + err.Error(),
			Confirmation: conf,
		}
	}

	out := &Outcome{
		State:        StateSuccess,
		Message:      generatedMessage,
		SolidityCode: code,
		FileName:     FileName(sub.Spec.Base().Name),
		Confirmation: conf,
	}
	if admin {
		out.FeesWaived = true
		out.Message = feesWaivedMessage
	}
	return out
}

func (c *Coordinator) pay(ctx context.Context, amount *big.Int, treasury string) (*types.Confirmation, error) {
	if treasury == "" {
		return nil, types.NewError(types.ErrCodeConfigError, fmt.Sprintf("No treasury address configured for %s.", c.session.Network()), nil)
	}

	c.logger.Info("paying generation fee", map[string]any{
		"network":  c.session.Network(),
		"treasury": treasury,
		"amount":   amount.String(),
	})

	ctx = wallet.WithBroadcastHook(ctx, func(txHash string) {
		c.transition(StateAwaitingConfirmation, txHash)
	})
	return c.session.SendNativeTransfer(ctx, amount, treasury)
}

// signWaiver proves the treasury wallet asked for the generation. Sessions
// that cannot sign messages send an unsigned proof.
func (c *Coordinator) signWaiver(ctx context.Context, spec types.TokenSpec) (string, error) {
	signer, ok := c.session.(wallet.MessageSigner)
	if !ok {
		return "", nil
	}
	msg := types.WaiverMessage(spec.Type(), spec.FormData())
	return signer.SignMessage(ctx, []byte(msg))
}

func formData(spec types.TokenSpec) *types.FormData {
	f := spec.FormData()
	return &f
}

// paymentOutcome normalizes a wallet failure.
func paymentOutcome(err error) *Outcome {
	switch {
	case errors.Is(err, types.ErrUserRejected):
		return paymentFailed(types.ErrCodePaymentRejected, rejectedMessage)
	case errors.Is(err, types.ErrNotConnected):
		return paymentFailed(types.ErrCodeNotConnected, notConnectedMessage)
	}

	var e *types.Error
	if errors.As(err, &e) {
		return paymentFailed(e.Code, e.Message)
	}
	return paymentFailed(types.ErrCodePaymentFailed, "Payment failed: "+err.Error())
}

func paymentFailed(code types.ErrorCode, msg string) *Outcome {
	return &Outcome{State: StatePaymentFailed, Code: code, Message: msg}
}

func (c *Coordinator) transition(to State, txHash string) {
	c.mu.Lock()
	from := c.state
	c.state = to
	c.mu.Unlock()

	t := Transition{From: from, To: to, TxHash: txHash}
	for _, fn := range c.observers {
		fn(t)
	}
}
