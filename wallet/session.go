// Package wallet implements the wallet sessions used to pay generation fees.
//
// A Session holds a connected account on one fee network and sends native
// currency transfers from it. EVMSession and SolanaSession are the two
// families; both report account changes to subscribers.
package wallet

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/vitwit/tokensmith/logger"
	"github.com/vitwit/tokensmith/metrics"
	"github.com/vitwit/tokensmith/types"
)

const (
	defaultPollInterval        = 2 * time.Second
	defaultConfirmationTimeout = 2 * time.Minute
)

// Session is the wallet capability consumed by the payment coordinator.
type Session interface {
	Family() types.ChainFamily
	Network() types.FeeNetwork
	IsConnected() bool
	Address() string

	// SendNativeTransfer signs, broadcasts and waits for confirmation of a
	// transfer of amount base units to to. A declined signature is reported
	// as types.ErrUserRejected.
	SendNativeTransfer(ctx context.Context, amount *big.Int, to string) (*types.Confirmation, error)
}

// MessageSigner is implemented by sessions able to sign arbitrary messages.
type MessageSigner interface {
	SignMessage(ctx context.Context, msg []byte) (string, error)
}

// AccountEvent reports the active account of a session. An empty Address
// means the session was disconnected.
type AccountEvent struct {
	Network types.FeeNetwork
	Address string
}

func (e AccountEvent) Connected() bool {
	return e.Address != ""
}

// accounts tracks the active address and its subscribers.
type accounts struct {
	network types.FeeNetwork

	mu      sync.RWMutex
	address string
	subs    map[uint64]func(AccountEvent)
	nextID  uint64
}

func newAccounts(network types.FeeNetwork) *accounts {
	return &accounts{network: network, subs: make(map[uint64]func(AccountEvent))}
}

func (a *accounts) Network() types.FeeNetwork {
	return a.network
}

func (a *accounts) Address() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.address
}

func (a *accounts) IsConnected() bool {
	return a.Address() != ""
}

// Subscribe registers fn for account changes and returns a function that
// removes it. fn is called synchronously and must not block.
func (a *accounts) Subscribe(fn func(AccountEvent)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			a.mu.Unlock()
		})
	}
}

func (a *accounts) setAddress(address string) {
	a.mu.Lock()
	if a.address == address {
		a.mu.Unlock()
		return
	}
	a.address = address
	subs := make([]func(AccountEvent), 0, len(a.subs))
	for _, fn := range a.subs {
		subs = append(subs, fn)
	}
	a.mu.Unlock()

	event := AccountEvent{Network: a.network, Address: address}
	for _, fn := range subs {
		fn(event)
	}
}

type broadcastHookKey struct{}

// WithBroadcastHook returns a context that makes SendNativeTransfer call fn
// with the transaction hash once the transfer is broadcast, before waiting
// for its confirmation.
func WithBroadcastHook(ctx context.Context, fn func(txHash string)) context.Context {
	return context.WithValue(ctx, broadcastHookKey{}, fn)
}

func notifyBroadcast(ctx context.Context, txHash string) {
	if fn, ok := ctx.Value(broadcastHookKey{}).(func(string)); ok && fn != nil {
		fn(txHash)
	}
}

type sessionOptions struct {
	pollInterval time.Duration
	timeout      time.Duration
	logger       logger.Logger
	metrics      metrics.Recorder
}

type SessionOption func(*sessionOptions)

// WithPollInterval sets how often confirmation status is polled.
func WithPollInterval(d time.Duration) SessionOption {
	return func(o *sessionOptions) {
		o.pollInterval = d
	}
}

// WithConfirmationTimeout bounds the wait for a transfer confirmation.
func WithConfirmationTimeout(d time.Duration) SessionOption {
	return func(o *sessionOptions) {
		o.timeout = d
	}
}

func WithLogger(l logger.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = l
	}
}

func WithMetrics(r metrics.Recorder) SessionOption {
	return func(o *sessionOptions) {
		o.metrics = r
	}
}

func buildOptions(opts []SessionOption) sessionOptions {
	o := sessionOptions{
		pollInterval: defaultPollInterval,
		timeout:      defaultConfirmationTimeout,
		logger:       logger.NoopLogger{},
		metrics:      metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pollInterval <= 0 {
		o.pollInterval = defaultPollInterval
	}
	if o.timeout <= 0 {
		o.timeout = defaultConfirmationTimeout
	}
	return o
}
