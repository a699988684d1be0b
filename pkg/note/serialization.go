// Package note serialization implements the textual export/import surface.
//
// Transactions travel between signers as a versioned JSON envelope:
//
//	{"format":"multinote/v1","transaction":{...}}
//
// The envelope exists for the same reason a binary format carries magic
// bytes and a version word: an importer must be able to reject foreign or
// future data before trusting any of it. Round-tripping is lossless - spends,
// outputs, message hashes, and per-spend signature order all survive intact.
//
// Export/import is the only whole-value replacement in the model; there is
// no partial import. Parse therefore re-checks the structural invariants
// that Assemble enforced at construction time, because imported data never
// went through Assemble.
package note

import (
	"encoding/json"
)

// FormatV1 is the envelope format identifier for the current encoding.
const FormatV1 = "multinote/v1"

type envelope struct {
	Format      string       `json:"format"`
	Transaction *Transaction `json:"transaction"`
}

// Serialize encodes a transaction into its textual envelope.
func Serialize(tx *Transaction) ([]byte, error) {
	if tx == nil {
		return nil, &ParseError{Message: "nil transaction"}
	}
	return json.Marshal(envelope{Format: FormatV1, Transaction: tx})
}

// Parse decodes a transaction from its textual envelope.
//
// Beyond JSON well-formedness it checks the envelope format tag, lock
// validity on every spend and output, and per-spend signature-key
// uniqueness. It does not check balance or signer authorization - those are
// the validator's concern, and a half-signed or even imbalanced import must
// still parse so the caller can display what is wrong with it.
func Parse(data []byte) (*Transaction, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ParseError{Message: "malformed envelope", Cause: err}
	}
	if env.Format != FormatV1 {
		return nil, &ParseError{Message: "unsupported format: " + env.Format}
	}
	if env.Transaction == nil {
		return nil, &ParseError{Message: "envelope missing transaction"}
	}
	tx := env.Transaction
	if err := checkStructure(tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// checkStructure verifies the invariants an importer cannot take on faith.
func checkStructure(tx *Transaction) error {
	for i := range tx.Spends {
		if err := tx.Spends[i].Note.Lock.Validate(); err != nil {
			return &ParseError{Message: "spend lock invalid", Cause: err}
		}
		seen := make(map[PublicKey]struct{}, len(tx.Spends[i].Seeds.Signatures))
		for _, entry := range tx.Spends[i].Seeds.Signatures {
			if _, dup := seen[entry.PubKey]; dup {
				return &ParseError{Message: "duplicate signature entry for one pubkey"}
			}
			seen[entry.PubKey] = struct{}{}
		}
	}
	for i := range tx.Outputs {
		if err := tx.Outputs[i].Lock.Validate(); err != nil {
			return &ParseError{Message: "output lock invalid", Cause: err}
		}
	}
	return nil
}
