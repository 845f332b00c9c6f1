package utils

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// SystemTransfer is a native SOL transfer instruction.
type SystemTransfer struct {
	From     solana.PublicKey
	To       solana.PublicKey
	Lamports uint64
}

// SystemTransfers decodes every system program transfer in tx.
func SystemTransfers(tx *solana.Transaction) ([]SystemTransfer, error) {
	var transfers []SystemTransfer
	keys := tx.Message.AccountKeys

	for _, inst := range tx.Message.Instructions {
		if int(inst.ProgramIDIndex) >= len(keys) {
			return nil, fmt.Errorf("program index %d out of range", inst.ProgramIDIndex)
		}
		if !keys[inst.ProgramIDIndex].Equals(solana.SystemProgramID) {
			continue
		}

		// Build account metas from the instruction
		accountMetas := make([]*solana.AccountMeta, len(inst.Accounts))
		for i, accIdx := range inst.Accounts {
			if int(accIdx) >= len(keys) {
				return nil, fmt.Errorf("account index %d out of range", accIdx)
			}
			pub := keys[accIdx]
			writable, err := tx.Message.IsWritable(pub)
			if err != nil {
				return nil, fmt.Errorf("failed to decode transaction: %w", err)
			}
			accountMetas[i] = &solana.AccountMeta{
				PublicKey:  pub,
				IsSigner:   tx.Message.IsSigner(pub),
				IsWritable: writable,
			}
		}

		sysInst, err := system.DecodeInstruction(accountMetas, inst.Data)
		if err != nil {
			// not every system instruction is a transfer
			continue
		}
		transfer, ok := sysInst.Impl.(*system.Transfer)
		if !ok || transfer.Lamports == nil || len(accountMetas) < 2 {
			continue
		}

		transfers = append(transfers, SystemTransfer{
			From:     accountMetas[0].PublicKey,
			To:       accountMetas[1].PublicKey,
			Lamports: *transfer.Lamports,
		})
	}

	return transfers, nil
}
