package roles

import (
	"fmt"

	"github.com/suffix-labs/multinote/pkg/note"
)

// Combine merges independently signed copies of the same transaction.
//
// This is the off-band concurrency model: signers export a transaction, sign
// their spends on their own machines in any order, and the copies are merged
// by taking the union of each spend's signature entries. The first copy's
// entry order is kept; entries only present in later copies are appended in
// their order of appearance.
//
// All copies must describe the same transaction - same spends (note, lock,
// message hash) and same outputs in the same order. Two copies carrying
// different signatures for the same key on the same spend cannot be merged;
// neither can silently win, so the caller must resolve it.
//
// Fails with CombineError on incompatible or conflicting copies. The inputs
// are never mutated; the result is a fresh value.
func Combine(txs ...*note.Transaction) (*note.Transaction, error) {
	if len(txs) == 0 {
		return nil, &note.CombineError{Message: "no transactions to combine"}
	}

	result := txs[0].Clone()
	for i := 1; i < len(txs); i++ {
		if err := mergeInto(result, txs[i]); err != nil {
			return nil, &note.CombineError{
				Message: fmt.Sprintf("copy %d: %v", i, err),
			}
		}
	}
	return result, nil
}

// mergeInto folds src's signatures into dst after checking compatibility.
func mergeInto(dst, src *note.Transaction) error {
	if err := checkCompatible(dst, src); err != nil {
		return err
	}

	for i := range dst.Spends {
		dstSeeds := &dst.Spends[i].Seeds
		for _, entry := range src.Spends[i].Seeds.Signatures {
			existing, found := signatureFor(dstSeeds, entry.PubKey)
			if found {
				if existing != entry.Signature {
					return fmt.Errorf("spend %d: conflicting signatures for pubkey %s", i, entry.PubKey)
				}
				continue
			}
			dstSeeds.Signatures = append(dstSeeds.Signatures, entry)
		}
	}
	return nil
}

// checkCompatible verifies two copies describe the same transaction.
//
// Message hash equality per spend covers the entire cleared structure, but
// the note fields are compared explicitly as well so a corrupted copy is
// reported precisely rather than as a bare hash mismatch.
func checkCompatible(a, b *note.Transaction) error {
	if len(a.Spends) != len(b.Spends) {
		return fmt.Errorf("spend counts differ: %d != %d", len(a.Spends), len(b.Spends))
	}
	if len(a.Outputs) != len(b.Outputs) {
		return fmt.Errorf("output counts differ: %d != %d", len(a.Outputs), len(b.Outputs))
	}
	for i := range a.Spends {
		an, bn := &a.Spends[i].Note, &b.Spends[i].Note
		if an.Name != bn.Name {
			return fmt.Errorf("spend %d consumes different notes", i)
		}
		if an.Value != bn.Value {
			return fmt.Errorf("spend %d has different note values: %d != %d", i, an.Value, bn.Value)
		}
		if a.Spends[i].Seeds.MessageHash != b.Spends[i].Seeds.MessageHash {
			return fmt.Errorf("spend %d has different message hashes", i)
		}
	}
	for i := range a.Outputs {
		if a.Outputs[i].Recipient != b.Outputs[i].Recipient || a.Outputs[i].Value != b.Outputs[i].Value {
			return fmt.Errorf("output %d differs", i)
		}
	}
	return nil
}

func signatureFor(s *note.Seeds, pk note.PublicKey) (note.Signature, bool) {
	for i := range s.Signatures {
		if s.Signatures[i].PubKey == pk {
			return s.Signatures[i].Signature, true
		}
	}
	return "", false
}
