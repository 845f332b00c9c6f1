package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/vitwit/tokensmith/metrics"
	"github.com/vitwit/tokensmith/types"
)

// nativeTransferGas is the fixed gas cost of a plain value transfer.
const nativeTransferGas = 21000

// evmBackend is the subset of *ethclient.Client used by EVMSession.
type evmBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	Close()
}

var _ evmBackend = (*ethclient.Client)(nil)

// EVMSession is a wallet session on an EVM fee network.
type EVMSession struct {
	*accounts
	info   types.NetworkInfo
	rpcURL string
	opts   sessionOptions
	dial   func(ctx context.Context) (evmBackend, error)

	mu      sync.Mutex
	backend evmBackend
	signer  EVMSigner
	chainID *big.Int
}

var (
	_ Session       = (*EVMSession)(nil)
	_ MessageSigner = (*EVMSession)(nil)
)

// NewEVMSession creates a disconnected session for network.
func NewEVMSession(network types.FeeNetwork, rpcURL string, opts ...SessionOption) (*EVMSession, error) {
	info, err := types.LookupNetwork(network)
	if err != nil {
		return nil, err
	}
	if info.Family != types.ChainEVM {
		return nil, fmt.Errorf("network %s is not an EVM network", network)
	}
	if rpcURL == "" {
		return nil, fmt.Errorf("no RPC URL configured for %s", network)
	}

	s := &EVMSession{
		accounts: newAccounts(network),
		info:     info,
		rpcURL:   rpcURL,
		opts:     buildOptions(opts),
	}
	s.dial = func(ctx context.Context) (evmBackend, error) {
		return ethclient.DialContext(ctx, s.rpcURL)
	}
	return s, nil
}

func (s *EVMSession) Family() types.ChainFamily {
	return types.ChainEVM
}

// Connect dials the RPC endpoint, checks that it serves the session's chain
// and activates signer's account.
func (s *EVMSession) Connect(ctx context.Context, signer EVMSigner) error {
	if signer == nil {
		return types.ErrNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend == nil {
		backend, err := s.dial(ctx)
		if err != nil {
			return fmt.Errorf("failed to connect to %s RPC: %w", s.network, err)
		}
		s.backend = backend
	}

	chainID, err := s.backend.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain ID: %w", err)
	}
	if chainID.Int64() != s.info.ChainID {
		return fmt.Errorf("%w: expected chain %d for %s, RPC serves %s",
			types.ErrWrongChain, s.info.ChainID, s.network, chainID)
	}

	s.chainID = chainID
	s.signer = signer
	s.setAddress(signer.Address().Hex())

	s.opts.logger.Info("wallet connected", map[string]any{
		"network": s.network,
		"address": signer.Address().Hex(),
	})
	return nil
}

// SwitchAccount replaces the active signer of a connected session.
func (s *EVMSession) SwitchAccount(signer EVMSigner) error {
	if signer == nil {
		return types.ErrNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend == nil {
		return types.ErrNotConnected
	}
	s.signer = signer
	s.setAddress(signer.Address().Hex())
	return nil
}

// Disconnect drops the signer and closes the RPC connection.
func (s *EVMSession) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		s.backend.Close()
		s.backend = nil
	}
	s.signer = nil
	s.setAddress("")
}

func (s *EVMSession) state() (evmBackend, EVMSigner, *big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend == nil || s.signer == nil {
		return nil, nil, nil, types.ErrNotConnected
	}
	return s.backend, s.signer, s.chainID, nil
}

func (s *EVMSession) SendNativeTransfer(ctx context.Context, amount *big.Int, to string) (*types.Confirmation, error) {
	backend, signer, chainID, err := s.state()
	if err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("transfer amount must be positive")
	}
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("invalid recipient address %q", to)
	}

	from := signer.Address()
	toAddr := common.HexToAddress(to)

	nonce, err := backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &toAddr,
		Value:    amount,
		Gas:      nativeTransferGas,
		GasPrice: gasPrice,
	})

	signed, err := signer.SignTx(ctx, tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transfer: %w", err)
	}

	if err := backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}

	labels := map[string]string{"network": string(s.network)}
	s.opts.metrics.IncCounter(metrics.EventTransferSent, labels)
	s.opts.logger.Info("transfer broadcast", map[string]any{
		"network": s.network,
		"tx_hash": signed.Hash().Hex(),
		"to":      toAddr.Hex(),
		"amount":  amount.String(),
	})
	notifyBroadcast(ctx, signed.Hash().Hex())

	start := time.Now()
	receipt, err := s.waitForReceipt(ctx, backend, signed.Hash())
	s.opts.metrics.ObserveLatency(metrics.OpTransferConfirm, time.Since(start), labels)
	if err != nil {
		return nil, err
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("transaction %s reverted", signed.Hash().Hex())
	}

	conf := &types.Confirmation{
		TxHash:      signed.Hash().Hex(),
		Network:     s.network,
		From:        from.Hex(),
		To:          toAddr.Hex(),
		Amount:      amount.String(),
		ConfirmedAt: time.Now().UTC(),
	}
	if receipt.BlockNumber != nil {
		conf.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return conf, nil
}

// waitForReceipt polls until the transaction is mined, the confirmation
// timeout elapses or ctx is done.
func (s *EVMSession) waitForReceipt(ctx context.Context, backend evmBackend, hash common.Hash) (*ethtypes.Receipt, error) {
	ticker := time.NewTicker(s.opts.pollInterval)
	defer ticker.Stop()

	timer := time.NewTimer(s.opts.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, fmt.Errorf("timeout waiting for transaction %s", hash.Hex())
		case <-ticker.C:
			receipt, err := backend.TransactionReceipt(ctx, hash)
			if err != nil {
				if !errors.Is(err, ethereum.NotFound) {
					s.opts.logger.Debug("receipt lookup failed", map[string]any{"tx_hash": hash.Hex(), "error": err})
				}
				// Transaction not yet mined, continue waiting
				continue
			}
			return receipt, nil
		}
	}
}

// SignMessage signs msg with the active account using personal_sign.
func (s *EVMSession) SignMessage(ctx context.Context, msg []byte) (string, error) {
	_, signer, _, err := s.state()
	if err != nil {
		return "", err
	}
	return signer.SignMessage(ctx, msg)
}
