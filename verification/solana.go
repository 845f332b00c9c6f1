package verification

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/utils"
)

// solanaFetcher loads a confirmed transaction and its execution error.
type solanaFetcher interface {
	FetchTransaction(ctx context.Context, sig solana.Signature) (*solana.Transaction, interface{}, error)
	Close() error
}

// errTxNotFound is returned by fetchers for unknown signatures.
var errTxNotFound = errors.New("transaction not found")

type rpcFetcher struct {
	client *rpc.Client
}

func (f *rpcFetcher) FetchTransaction(ctx context.Context, sig solana.Signature) (*solana.Transaction, interface{}, error) {
	maxVersion := uint64(0)
	out, err := f.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentConfirmed,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, nil, errTxNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	if out == nil || out.Transaction == nil {
		return nil, nil, errTxNotFound
	}

	tx, err := out.Transaction.GetTransaction()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode transaction: %w", err)
	}

	var txErr interface{}
	if out.Meta != nil {
		txErr = out.Meta.Err
	}
	return tx, txErr, nil
}

func (f *rpcFetcher) Close() error {
	return f.client.Close()
}

// SolanaVerifier checks SOL transfers on a Solana cluster.
type SolanaVerifier struct {
	network types.FeeNetwork
	client  solanaFetcher
}

// NewSolanaVerifier creates a verifier backed by the RPC endpoint at rpcURL.
func NewSolanaVerifier(network types.FeeNetwork, rpcURL string) (*SolanaVerifier, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("no RPC URL for %s", network)
	}
	return &SolanaVerifier{network: network, client: &rpcFetcher{client: rpc.New(rpcURL)}}, nil
}

// VerifyTransfer checks that txHash is a successful transaction paid by
// payer whose system transfers to treasury add up to at least required
// lamports.
func (v *SolanaVerifier) VerifyTransfer(ctx context.Context, txHash, payer, treasury string, required *big.Int) (reason string, err error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return "invalid transaction signature", nil
	}
	payerKey, err := solana.PublicKeyFromBase58(payer)
	if err != nil {
		return "invalid payer", nil
	}
	treasuryKey, err := solana.PublicKeyFromBase58(treasury)
	if err != nil {
		return "", fmt.Errorf("invalid treasury %q: %w", treasury, err)
	}

	tx, txErr, err := v.client.FetchTransaction(ctx, sig)
	if errors.Is(err, errTxNotFound) {
		return "transaction not found or not yet confirmed", nil
	}
	if err != nil {
		return "", err
	}
	if txErr != nil {
		return fmt.Sprintf("transaction failed: %v", txErr), nil
	}

	// the fee payer is the first account
	if len(tx.Message.AccountKeys) == 0 || !tx.Message.AccountKeys[0].Equals(payerKey) {
		return "transaction is not paid by the payer", nil
	}

	transfers, err := utils.SystemTransfers(tx)
	if err != nil {
		return fmt.Sprintf("failed to decode transaction: %v", err), nil
	}

	total := new(big.Int)
	for _, t := range transfers {
		if t.From.Equals(payerKey) && t.To.Equals(treasuryKey) {
			total.Add(total, new(big.Int).SetUint64(t.Lamports))
		}
	}
	if total.Sign() == 0 {
		return "no SOL transfer to the treasury found", nil
	}
	if total.Cmp(required) < 0 {
		return fmt.Sprintf("transferred %s lamports, %s required", total, required), nil
	}

	return "", nil
}

func (v *SolanaVerifier) Close() {
	_ = v.client.Close()
}
