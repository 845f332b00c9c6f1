package verification

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/vitwit/tokensmith/types"
	"github.com/vitwit/tokensmith/utils"
)

// VerifyWaiverSignature reports whether signature over msg was produced by
// the treasury account. EVM signatures are personal_sign hex strings, Solana
// signatures are base58 ed25519 signatures.
func VerifyWaiverSignature(family types.ChainFamily, treasury string, msg []byte, signature string) (bool, error) {
	switch family {
	case types.ChainEVM:
		if !common.IsHexAddress(treasury) {
			return false, fmt.Errorf("invalid treasury address %q", treasury)
		}
		return utils.VerifyPersonalMessage(msg, signature, common.HexToAddress(treasury))

	case types.ChainSolana:
		pub, err := solana.PublicKeyFromBase58(treasury)
		if err != nil {
			return false, fmt.Errorf("invalid treasury address %q: %w", treasury, err)
		}
		sig, err := solana.SignatureFromBase58(signature)
		if err != nil {
			return false, fmt.Errorf("invalid signature: %w", err)
		}
		return sig.Verify(pub, msg), nil

	default:
		return false, errUnsupportedFamily
	}
}
