// Package digest computes the deterministic per-spend signing digest.
//
// Every authorized signer of a spend signs the same value: the BLAKE2b-256
// hash of a canonically encoded payload containing the spend's index and the
// transaction with all signature state cleared. Clearing every spend's seeds
// (not just the one being hashed) makes the digest independent of how many
// signatures have been collected anywhere in the transaction, so it can be
// computed once at assembly time and never changes afterward. That stability
// is what allows asynchronous, any-order, multi-party signing without a
// coordination server.
//
// Including the spend index disambiguates spends that consume structurally
// identical notes.
package digest

import (
	"encoding/hex"
	"hash"

	blake2b "github.com/minio/blake2b-simd"

	"github.com/suffix-labs/multinote/pkg/note"
)

// Personalization distinguishes spend digests from any other BLAKE2b use.
// BLAKE2b personalization strings are at most 16 bytes; this one is exactly 16.
const Personalization = "MultinoteSigHash"

// blake2bNew256 creates a BLAKE2b-256 hash with the given personalization.
// The personalization is not a key; it is a distinct parameter that yields
// an unrelated hash function per domain.
func blake2bNew256(personalization []byte) (hash.Hash, error) {
	config := &blake2b.Config{
		Size:   32,
		Person: personalization,
	}
	return blake2b.New(config)
}

// SpendDigest computes the signing digest for one spend.
//
// The transaction is deep-copied and every spend's seeds are reset to the
// zero value before encoding, so the result is a pure function of the
// transaction's structural content (notes, outputs, ordering) and the spend
// index. The caller's transaction is never touched.
//
// Returns the digest as lowercase hex, or a SpendIndexError if spendIndex
// does not address a spend.
func SpendDigest(spendIndex int, tx *note.Transaction) (string, error) {
	if spendIndex < 0 || spendIndex >= len(tx.Spends) {
		return "", &note.SpendIndexError{Index: spendIndex, SpendCount: len(tx.Spends)}
	}

	cleared := Cleared(tx)
	payload := CanonicalPayload(spendIndex, cleared)

	h, err := blake2bNew256([]byte(Personalization))
	if err != nil {
		return "", err
	}
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Cleared returns a deep copy of tx with every spend's seeds reset to the
// zero value (empty message hash, no signatures). This is the structural
// skeleton the digest commits to.
func Cleared(tx *note.Transaction) *note.Transaction {
	out := tx.Clone()
	for i := range out.Spends {
		out.Spends[i].Seeds = note.Seeds{}
	}
	return out
}
