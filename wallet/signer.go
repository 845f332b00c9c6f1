package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/gagliardetto/solana-go"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/utils"
)

// SignRequest describes what a signer is about to sign, for confirmation.
type SignRequest struct {
	Family types.ChainFamily
	From   string
	To     string
	// Amount is in base units; nil when signing a message.
	Amount  *big.Int
	Message []byte
}

// ConfirmFunc asks the user to approve a signature. Returning false declines it.
type ConfirmFunc func(ctx context.Context, req SignRequest) (bool, error)

// EVMSigner signs EVM transactions and personal messages.
type EVMSigner interface {
	Address() common.Address
	SignTx(ctx context.Context, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error)
	SignMessage(ctx context.Context, msg []byte) (string, error)
}

// SolanaSigner signs Solana transactions and messages.
type SolanaSigner interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
	SignMessage(ctx context.Context, msg []byte) (string, error)
}

// EVMKeySigner signs with an in-memory secp256k1 key.
type EVMKeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

var _ EVMSigner = (*EVMKeySigner)(nil)

// NewEVMKeySigner parses a hex private key, with or without 0x.
func NewEVMKeySigner(hexKey string) (*EVMKeySigner, error) {
	key, err := utils.PrivateKeyFromHex(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid EVM private key: %w", err)
	}
	return NewEVMKeySignerFromKey(key), nil
}

func NewEVMKeySignerFromKey(key *ecdsa.PrivateKey) *EVMKeySigner {
	return &EVMKeySigner{key: key, address: utils.AddressFromPrivateKey(key)}
}

func (s *EVMKeySigner) Address() common.Address {
	return s.address
}

func (s *EVMKeySigner) SignTx(_ context.Context, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	return ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(chainID), s.key)
}

func (s *EVMKeySigner) SignMessage(_ context.Context, msg []byte) (string, error) {
	return utils.SignPersonalMessage(msg, s.key)
}

// SolanaKeySigner signs with an in-memory ed25519 key.
type SolanaKeySigner struct {
	key solana.PrivateKey
}

var _ SolanaSigner = (*SolanaKeySigner)(nil)

// NewSolanaKeySigner parses a base58 encoded 64 byte private key.
func NewSolanaKeySigner(base58Key string) (*SolanaKeySigner, error) {
	key, err := solana.PrivateKeyFromBase58(base58Key)
	if err != nil {
		return nil, fmt.Errorf("invalid Solana private key: %w", err)
	}
	return &SolanaKeySigner{key: key}, nil
}

func NewSolanaKeySignerFromKey(key solana.PrivateKey) *SolanaKeySigner {
	return &SolanaKeySigner{key: key}
}

func (s *SolanaKeySigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

func (s *SolanaKeySigner) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	_, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(s.key.PublicKey()) {
			return &s.key
		}
		return nil
	})
	return err
}

// SignMessage returns the base58 encoded ed25519 signature of msg.
func (s *SolanaKeySigner) SignMessage(_ context.Context, msg []byte) (string, error) {
	sig, err := s.key.Sign(msg)
	if err != nil {
		return "", err
	}
	return sig.String(), nil
}

func confirm(ctx context.Context, fn ConfirmFunc, req SignRequest) error {
	ok, err := fn(ctx, req)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return types.ErrUserRejected
	}
	return nil
}

// ConfirmingEVMSigner asks for approval before every signature.
type ConfirmingEVMSigner struct {
	EVMSigner
	confirm ConfirmFunc
}

// NewConfirmingEVMSigner wraps inner so that every signature goes through fn.
func NewConfirmingEVMSigner(inner EVMSigner, fn ConfirmFunc) *ConfirmingEVMSigner {
	return &ConfirmingEVMSigner{EVMSigner: inner, confirm: fn}
}

func (s *ConfirmingEVMSigner) SignTx(ctx context.Context, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	req := SignRequest{
		Family: types.ChainEVM,
		From:   s.Address().Hex(),
		Amount: tx.Value(),
	}
	if tx.To() != nil {
		req.To = tx.To().Hex()
	}
	if err := confirm(ctx, s.confirm, req); err != nil {
		return nil, err
	}
	return s.EVMSigner.SignTx(ctx, tx, chainID)
}

func (s *ConfirmingEVMSigner) SignMessage(ctx context.Context, msg []byte) (string, error) {
	req := SignRequest{Family: types.ChainEVM, From: s.Address().Hex(), Message: msg}
	if err := confirm(ctx, s.confirm, req); err != nil {
		return "", err
	}
	return s.EVMSigner.SignMessage(ctx, msg)
}

// ConfirmingSolanaSigner asks for approval before every signature.
type ConfirmingSolanaSigner struct {
	SolanaSigner
	confirm ConfirmFunc
}

// NewConfirmingSolanaSigner wraps inner so that every signature goes through fn.
func NewConfirmingSolanaSigner(inner SolanaSigner, fn ConfirmFunc) *ConfirmingSolanaSigner {
	return &ConfirmingSolanaSigner{SolanaSigner: inner, confirm: fn}
}

func (s *ConfirmingSolanaSigner) SignTransaction(ctx context.Context, tx *solana.Transaction) error {
	transfers, err := utils.SystemTransfers(tx)
	if err != nil {
		return err
	}

	req := SignRequest{Family: types.ChainSolana, From: s.PublicKey().String()}
	if len(transfers) > 0 {
		total := new(big.Int)
		for _, t := range transfers {
			total.Add(total, new(big.Int).SetUint64(t.Lamports))
		}
		req.To = transfers[0].To.String()
		req.Amount = total
	}

	if err := confirm(ctx, s.confirm, req); err != nil {
		return err
	}
	return s.SolanaSigner.SignTransaction(ctx, tx)
}

func (s *ConfirmingSolanaSigner) SignMessage(ctx context.Context, msg []byte) (string, error) {
	req := SignRequest{Family: types.ChainSolana, From: s.PublicKey().String(), Message: msg}
	if err := confirm(ctx, s.confirm, req); err != nil {
		return "", err
	}
	return s.SolanaSigner.SignMessage(ctx, msg)
}
