package wallet

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/vitwit/tokensmith/metrics"
	"github.com/vitwit/tokensmith/types"
)

// solanaBackend is the subset of *rpc.Client used by SolanaSession.
type solanaBackend interface {
	GetGenesisHash(ctx context.Context) (solana.Hash, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	Close() error
}

var _ solanaBackend = (*rpc.Client)(nil)

// SolanaSession is a wallet session on a Solana cluster.
type SolanaSession struct {
	*accounts
	info   types.NetworkInfo
	rpcURL string
	opts   sessionOptions
	dial   func() solanaBackend

	mu      sync.Mutex
	backend solanaBackend
	signer  SolanaSigner
}

var (
	_ Session       = (*SolanaSession)(nil)
	_ MessageSigner = (*SolanaSession)(nil)
)

// NewSolanaSession creates a disconnected session for network.
func NewSolanaSession(network types.FeeNetwork, rpcURL string, opts ...SessionOption) (*SolanaSession, error) {
	info, err := types.LookupNetwork(network)
	if err != nil {
		return nil, err
	}
	if info.Family != types.ChainSolana {
		return nil, fmt.Errorf("network %s is not a Solana network", network)
	}
	if rpcURL == "" {
		return nil, fmt.Errorf("no RPC URL configured for %s", network)
	}

	s := &SolanaSession{
		accounts: newAccounts(network),
		info:     info,
		rpcURL:   rpcURL,
		opts:     buildOptions(opts),
	}
	s.dial = func() solanaBackend {
		return rpc.New(s.rpcURL)
	}
	return s, nil
}

func (s *SolanaSession) Family() types.ChainFamily {
	return types.ChainSolana
}

// Connect checks that the RPC endpoint serves the session's cluster and
// activates signer's account.
func (s *SolanaSession) Connect(ctx context.Context, signer SolanaSigner) error {
	if signer == nil {
		return types.ErrNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend == nil {
		s.backend = s.dial()
	}

	genesis, err := s.backend.GetGenesisHash(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to %s RPC: %w", s.network, err)
	}
	if s.info.GenesisHash != "" && genesis.String() != s.info.GenesisHash {
		return fmt.Errorf("%w: RPC serves cluster %s, expected %s", types.ErrWrongChain, genesis, s.network)
	}

	s.signer = signer
	s.setAddress(signer.PublicKey().String())

	s.opts.logger.Info("wallet connected", map[string]any{
		"network": s.network,
		"address": signer.PublicKey().String(),
	})
	return nil
}

// SwitchAccount replaces the active signer of a connected session.
func (s *SolanaSession) SwitchAccount(signer SolanaSigner) error {
	if signer == nil {
		return types.ErrNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend == nil {
		return types.ErrNotConnected
	}
	s.signer = signer
	s.setAddress(signer.PublicKey().String())
	return nil
}

// Disconnect drops the signer and closes the RPC client.
func (s *SolanaSession) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		_ = s.backend.Close()
		s.backend = nil
	}
	s.signer = nil
	s.setAddress("")
}

func (s *SolanaSession) state() (solanaBackend, SolanaSigner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend == nil || s.signer == nil {
		return nil, nil, types.ErrNotConnected
	}
	return s.backend, s.signer, nil
}

func (s *SolanaSession) SendNativeTransfer(ctx context.Context, amount *big.Int, to string) (*types.Confirmation, error) {
	backend, signer, err := s.state()
	if err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 || !amount.IsUint64() {
		return nil, fmt.Errorf("invalid transfer amount %v", amount)
	}

	toKey, err := solana.PublicKeyFromBase58(to)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	from := signer.PublicKey()

	recent, err := backend.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(amount.Uint64(), from, toKey).Build(),
		},
		recent.Value.Blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer: %w", err)
	}

	if err := signer.SignTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to sign transfer: %w", err)
	}

	sig, err := backend.SendTransaction(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("broadcast failed: %w", err)
	}

	labels := map[string]string{"network": string(s.network)}
	s.opts.metrics.IncCounter(metrics.EventTransferSent, labels)
	s.opts.logger.Info("transfer broadcast", map[string]any{
		"network":   s.network,
		"signature": sig.String(),
		"to":        toKey.String(),
		"lamports":  amount.String(),
	})
	notifyBroadcast(ctx, sig.String())

	start := time.Now()
	slot, err := s.waitForConfirmation(ctx, backend, sig)
	s.opts.metrics.ObserveLatency(metrics.OpTransferConfirm, time.Since(start), labels)
	if err != nil {
		return nil, err
	}

	return &types.Confirmation{
		TxHash:      sig.String(),
		Network:     s.network,
		From:        from.String(),
		To:          toKey.String(),
		Amount:      amount.String(),
		BlockNumber: slot,
		ConfirmedAt: time.Now().UTC(),
	}, nil
}

// waitForConfirmation polls the signature status until it is confirmed or
// finalized and returns its slot.
func (s *SolanaSession) waitForConfirmation(ctx context.Context, backend solanaBackend, sig solana.Signature) (uint64, error) {
	ticker := time.NewTicker(s.opts.pollInterval)
	defer ticker.Stop()

	timer := time.NewTimer(s.opts.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
			return 0, fmt.Errorf("transaction %s not confirmed in time", sig)
		case <-ticker.C:
			out, err := backend.GetSignatureStatuses(ctx, false, sig)
			if err != nil || out == nil || len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}
			status := out.Value[0]
			if status.Err != nil {
				return 0, fmt.Errorf("transaction %s failed: %v", sig, status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return status.Slot, nil
			}
		}
	}
}

// SignMessage signs msg with the active account and returns a base58 signature.
func (s *SolanaSession) SignMessage(ctx context.Context, msg []byte) (string, error) {
	_, signer, err := s.state()
	if err != nil {
		return "", err
	}
	return signer.SignMessage(ctx, msg)
}
