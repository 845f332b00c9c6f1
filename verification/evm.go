package verification

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/vitwit/tokensmith/types"
)

// evmReader is the subset of *ethclient.Client used to verify transfers.
type evmReader interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*ethtypes.Transaction, bool, error)
	Close()
}

var _ evmReader = (*ethclient.Client)(nil)

// EVMVerifier checks native value transfers on an EVM network.
type EVMVerifier struct {
	network types.FeeNetwork
	chainID *big.Int
	client  evmReader
}

// NewEVMVerifier creates a verifier backed by the RPC endpoint at rpcURL.
func NewEVMVerifier(network types.FeeNetwork, rpcURL string) (*EVMVerifier, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, err
	}
	return newEVMVerifier(network, client)
}

func newEVMVerifier(network types.FeeNetwork, client evmReader) (*EVMVerifier, error) {
	info, err := types.LookupNetwork(network)
	if err != nil {
		return nil, err
	}
	return &EVMVerifier{network: network, chainID: big.NewInt(info.ChainID), client: client}, nil
}

// VerifyTransfer checks that txHash is a successful transfer of at least
// required wei from payer to treasury. A non-empty reason means the proof is
// invalid; err means the chain could not be queried.
func (v *EVMVerifier) VerifyTransfer(ctx context.Context, txHash, payer, treasury string, required *big.Int) (reason string, err error) {
	hash := common.HexToHash(txHash)

	receipt, err := v.client.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return "transaction not found or not yet mined", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get receipt: %w", err)
	}
	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return "transaction failed", nil
	}

	tx, pending, err := v.client.TransactionByHash(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return "transaction not found", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get transaction: %w", err)
	}
	if pending {
		return "transaction is pending", nil
	}

	if tx.To() == nil || !types.SameAddress(types.ChainEVM, tx.To().Hex(), treasury) {
		return "transaction is not sent to the treasury", nil
	}
	if tx.Value().Cmp(required) < 0 {
		return fmt.Sprintf("transferred %s wei, %s required", tx.Value(), required), nil
	}

	if tx.ChainId().Sign() != 0 && tx.ChainId().Cmp(v.chainID) != 0 {
		return fmt.Sprintf("transaction is for chain %s", tx.ChainId()), nil
	}
	sender, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(v.chainID), tx)
	if err != nil {
		return fmt.Sprintf("cannot recover sender: %v", err), nil
	}
	if !types.SameAddress(types.ChainEVM, sender.Hex(), payer) {
		return "transaction is not sent by the payer", nil
	}

	return "", nil
}

func (v *EVMVerifier) Close() {
	v.client.Close()
}
