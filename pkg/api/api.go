// Package api provides the high-level public API for multisig note
// transactions.
//
// This is the main entry point for applications embedding the library. Every
// function takes and returns transactions in their serialized envelope form,
// so the surface maps one-to-one onto an export/import workflow:
//
//  1. AssembleTransaction - notes + outputs into an unsigned transaction
//  2. GetSpendDigest - the value a signer must sign for one spend
//  3. AppendSignature - attach one collected signature
//  4. GetSigningStatus - one spend's progress toward its threshold
//  5. ValidateTransaction - broadcast readiness with per-spend reasons
//  6. CombineTransactions - merge independently signed copies
//
// Callers that hold live *note.Transaction values can use pkg/roles
// directly; this package just adds the envelope plumbing.
package api

import (
	"github.com/suffix-labs/multinote/pkg/note"
	"github.com/suffix-labs/multinote/pkg/roles"
)

// AssembleTransaction builds an unsigned transaction from notes and outputs
// and returns it serialized. Fails if either list is empty, any lock is
// invalid, or the values do not balance.
func AssembleTransaction(notes []note.Note, outputs []note.Output) ([]byte, error) {
	tx, err := roles.Assemble(notes, outputs)
	if err != nil {
		return nil, err
	}
	return note.Serialize(tx)
}

// GetSpendDigest returns the message hash a signer must sign for one spend.
//
// The hash was fixed at assembly time; this accessor exists so a caller can
// hand it to a signing backend or display it without digging through the
// envelope.
func GetSpendDigest(data []byte, spendIndex int) (string, error) {
	tx, err := note.Parse(data)
	if err != nil {
		return "", err
	}
	if spendIndex < 0 || spendIndex >= len(tx.Spends) {
		return "", &note.SpendIndexError{Index: spendIndex, SpendCount: len(tx.Spends)}
	}
	return tx.Spends[spendIndex].Seeds.MessageHash, nil
}

// AppendSignature attaches a signature to one spend and returns the updated
// serialized transaction. Re-signing with the same key replaces the previous
// entry. Fails on an invalid index or a signer the spend's policy does not
// name.
func AppendSignature(data []byte, spendIndex int, pk note.PublicKey, sig note.Signature) ([]byte, error) {
	tx, err := note.Parse(data)
	if err != nil {
		return nil, err
	}
	updated, err := roles.AddSignature(tx, spendIndex, pk, sig)
	if err != nil {
		return nil, err
	}
	return note.Serialize(updated)
}

// GetSigningStatus reports one spend's signed, pending, and complete state.
func GetSigningStatus(data []byte, spendIndex int) (*note.SigningStatus, error) {
	tx, err := note.Parse(data)
	if err != nil {
		return nil, err
	}
	return roles.SigningStatus(tx, spendIndex)
}

// ValidateTransaction reports whether the transaction is ready to broadcast
// and, when it is not, every reason why.
func ValidateTransaction(data []byte) (*roles.Report, error) {
	tx, err := note.Parse(data)
	if err != nil {
		return nil, err
	}
	return roles.Validate(tx), nil
}

// CombineTransactions merges serialized copies of the same transaction that
// were signed independently, returning the union of their signatures.
func CombineTransactions(datas ...[]byte) ([]byte, error) {
	txs := make([]*note.Transaction, 0, len(datas))
	for _, data := range datas {
		tx, err := note.Parse(data)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	merged, err := roles.Combine(txs...)
	if err != nil {
		return nil, err
	}
	return note.Serialize(merged)
}
