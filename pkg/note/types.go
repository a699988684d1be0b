// Package note defines the value model for multisig note transactions.
//
// A note is a UTXO-style unit of value guarded by an M-of-N public-key-hash
// threshold lock. A transaction consumes notes (spends) and creates new ones
// (outputs). Each spend carries the unlocking material collected so far: the
// deterministic message hash every signer commits to, and the ordered list of
// (pubkey, signature) pairs gathered from the authorized signers.
//
// All types in this package are plain values. Operations elsewhere in the
// module never mutate a caller-held Transaction; they deep-copy and return a
// new value, which is what makes off-band, any-order, multi-party signing
// safe without a coordination server.
package note

// PublicKey identifies a signer's verification key.
//
// The format is opaque to this package; equality is exact byte equality with
// no normalization. Wallets in this module use lowercase hex of a compressed
// secp256k1 point, but nothing here depends on that.
type PublicKey string

// Signature is an opaque signature string produced by a signer over a spend's
// message hash. The core never verifies it cryptographically; format
// validation, if any, belongs to the signing backend.
type Signature string

// NoteName is the pair of labels identifying a note's origin.
type NoteName struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// PkhCondition is an M-of-N public-key-hash threshold policy.
//
// Threshold distinct keys from PubKeys must provide signatures before the
// guarded note may be spent. Key order is preserved and significant for
// serialization and digests, but irrelevant to threshold satisfaction.
type PkhCondition struct {
	Threshold int         `json:"threshold"`
	PubKeys   []PublicKey `json:"pubkeys"`
}

// Validate checks the structural invariants of the policy:
// 1 <= Threshold <= len(PubKeys), and no duplicate keys.
//
// Duplicate keys are rejected outright: a duplicated key would let one
// real-world signer count twice toward the threshold, which defeats the
// point of a multisig policy.
func (c *PkhCondition) Validate() error {
	if c.Threshold < 1 {
		return &LockError{Reason: "threshold must be >= 1"}
	}
	if c.Threshold > len(c.PubKeys) {
		return &LockError{Reason: "threshold exceeds number of pubkeys"}
	}
	seen := make(map[PublicKey]struct{}, len(c.PubKeys))
	for _, pk := range c.PubKeys {
		if _, dup := seen[pk]; dup {
			return &LockError{Reason: "duplicate public key in multisig set"}
		}
		seen[pk] = struct{}{}
	}
	return nil
}

// Contains reports whether pk is a member of the policy.
func (c *PkhCondition) Contains(pk PublicKey) bool {
	for _, candidate := range c.PubKeys {
		if candidate == pk {
			return true
		}
	}
	return false
}

// LockKind tags the spending policy variant carried by a Lock.
//
// Only the public-key-hash threshold policy exists today. The kind tag keeps
// the set of policies closed but extensible: a time-based or hash-based lock
// later is a new kind plus one validator branch.
type LockKind string

const (
	// LockKindPkh is the M-of-N public-key-hash threshold policy.
	LockKindPkh LockKind = "pkh"
)

// Lock wraps exactly one spending policy.
type Lock struct {
	Kind LockKind     `json:"kind"`
	Pkh  PkhCondition `json:"pkh"`
}

// NewPkhLock builds a threshold lock over the given keys.
func NewPkhLock(threshold int, pubkeys ...PublicKey) Lock {
	return Lock{
		Kind: LockKindPkh,
		Pkh:  PkhCondition{Threshold: threshold, PubKeys: pubkeys},
	}
}

// Validate checks that the lock carries a known kind and a well-formed policy.
func (l *Lock) Validate() error {
	switch l.Kind {
	case LockKindPkh:
		return l.Pkh.Validate()
	default:
		return &LockError{Reason: "unknown lock kind: " + string(l.Kind)}
	}
}

// Note is a unit of value being consumed or created.
type Note struct {
	Name  NoteName `json:"name"`
	Value uint64   `json:"value"`
	Lock  Lock     `json:"lock"`
}

// SignatureEntry is one collected (pubkey, signature) pair.
type SignatureEntry struct {
	PubKey    PublicKey `json:"pubkey"`
	Signature Signature `json:"signature"`
}

// Seeds is the unlocking material accumulated for one spend: the message
// hash signers commit to, and the signatures collected so far. Entries are
// ordered by arrival and unique per pubkey.
type Seeds struct {
	MessageHash string           `json:"message_hash"`
	Signatures  []SignatureEntry `json:"signatures"`
}

// SetSignature records a signature for pk, replacing any previous entry for
// the same key in place. Re-signing updates, never accumulates.
func (s *Seeds) SetSignature(pk PublicKey, sig Signature) {
	for i := range s.Signatures {
		if s.Signatures[i].PubKey == pk {
			s.Signatures[i].Signature = sig
			return
		}
	}
	s.Signatures = append(s.Signatures, SignatureEntry{PubKey: pk, Signature: sig})
}

// HasSignature reports whether a signature from pk has been collected.
func (s *Seeds) HasSignature(pk PublicKey) bool {
	for i := range s.Signatures {
		if s.Signatures[i].PubKey == pk {
			return true
		}
	}
	return false
}

// SignatureCount returns the number of collected entries.
func (s *Seeds) SignatureCount() int { return len(s.Signatures) }

// Spend pairs a consumed note with its in-progress unlocking material.
type Spend struct {
	Note  Note  `json:"note"`
	Seeds Seeds `json:"seeds"`
}

// Output is a note under construction: a recipient label, a value, and the
// lock the new note will carry.
type Output struct {
	Recipient string `json:"recipient"`
	Value     uint64 `json:"value"`
	Lock      Lock   `json:"lock"`
}

// Transaction is an ordered set of spends balanced against an ordered set of
// outputs.
type Transaction struct {
	Spends  []Spend  `json:"spends"`
	Outputs []Output `json:"outputs"`
}

// TotalInput sums the values of all consumed notes.
func (t *Transaction) TotalInput() uint64 {
	var sum uint64
	for i := range t.Spends {
		sum += t.Spends[i].Note.Value
	}
	return sum
}

// TotalOutput sums the values of all created notes.
func (t *Transaction) TotalOutput() uint64 {
	var sum uint64
	for i := range t.Outputs {
		sum += t.Outputs[i].Value
	}
	return sum
}

// Clone returns a deep copy sharing no mutable state with the receiver.
// Every mutating operation in this module works on a clone, so previously
// returned Transaction values are never disturbed.
func (t *Transaction) Clone() *Transaction {
	out := &Transaction{
		Spends:  make([]Spend, len(t.Spends)),
		Outputs: make([]Output, len(t.Outputs)),
	}
	for i := range t.Spends {
		out.Spends[i] = t.Spends[i]
		out.Spends[i].Note.Lock = cloneLock(t.Spends[i].Note.Lock)
		out.Spends[i].Seeds.Signatures = append([]SignatureEntry(nil), t.Spends[i].Seeds.Signatures...)
	}
	for i := range t.Outputs {
		out.Outputs[i] = t.Outputs[i]
		out.Outputs[i].Lock = cloneLock(t.Outputs[i].Lock)
	}
	return out
}

func cloneLock(l Lock) Lock {
	l.Pkh.PubKeys = append([]PublicKey(nil), l.Pkh.PubKeys...)
	return l
}

// SigningStatus describes one spend's progress toward its threshold. It is
// derived on demand, never stored.
type SigningStatus struct {
	SpendIndex int         `json:"spend_index"`
	Threshold  int         `json:"threshold"`
	Signed     []PublicKey `json:"signed"`
	Pending    []PublicKey `json:"pending"`
	Complete   bool        `json:"complete"`
}
