package roles

import (
	"github.com/suffix-labs/multinote/pkg/note"
)

// AddSignature records a signer's signature on one spend and returns the
// updated transaction.
//
// The returned value is a fresh deep copy with only the addressed spend's
// signatures changed; the caller's transaction is never mutated. Go has no
// enforced immutability, so copy-on-write is the explicit choice here - it
// is what lets two signers work from independently exported copies and merge
// later without either clobbering the other.
//
// Fails with SpendIndexError if spendIndex is out of range, and with
// UnauthorizedSignerError if pk is not named by the spend's policy. A key
// that already signed is updated in place in the entry list (last write
// wins); entry order for distinct keys is arrival order.
//
// The signature is never checked cryptographically. The ledger validates
// authorization and bounds, nothing else; verifying curve math is the
// signing backend's business.
func AddSignature(tx *note.Transaction, spendIndex int, pk note.PublicKey, sig note.Signature) (*note.Transaction, error) {
	if spendIndex < 0 || spendIndex >= len(tx.Spends) {
		return nil, &note.SpendIndexError{Index: spendIndex, SpendCount: len(tx.Spends)}
	}

	spend := &tx.Spends[spendIndex]
	if spend.Note.Lock.Kind != note.LockKindPkh || !spend.Note.Lock.Pkh.Contains(pk) {
		return nil, &note.UnauthorizedSignerError{SpendIndex: spendIndex, PubKey: pk}
	}

	out := tx.Clone()
	out.Spends[spendIndex].Seeds.SetSignature(pk, sig)
	return out, nil
}

// SigningStatus reports one spend's progress toward its threshold: which
// policy keys have signed, which are pending, and whether the threshold is
// met. Keys are listed in policy order. Signature entries from keys outside
// the policy (possible only in imported data) are ignored here and flagged
// by the validator.
//
// Fails with SpendIndexError on an invalid index.
func SigningStatus(tx *note.Transaction, spendIndex int) (*note.SigningStatus, error) {
	if spendIndex < 0 || spendIndex >= len(tx.Spends) {
		return nil, &note.SpendIndexError{Index: spendIndex, SpendCount: len(tx.Spends)}
	}

	spend := &tx.Spends[spendIndex]
	pkh := &spend.Note.Lock.Pkh

	status := &note.SigningStatus{
		SpendIndex: spendIndex,
		Threshold:  pkh.Threshold,
		Signed:     []note.PublicKey{},
		Pending:    []note.PublicKey{},
	}
	for _, pk := range pkh.PubKeys {
		if spend.Seeds.HasSignature(pk) {
			status.Signed = append(status.Signed, pk)
		} else {
			status.Pending = append(status.Pending, pk)
		}
	}
	status.Complete = len(status.Signed) >= pkh.Threshold
	return status, nil
}
