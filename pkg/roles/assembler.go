// Package roles implements the operations of the multisig transaction
// workflow as distinct responsibilities:
//
//   - Assembler: combines selected notes and requested outputs into an
//     unsigned transaction with every spend's message hash precomputed
//   - Signature ledger (AddSignature): attaches one signature to one spend
//   - Validator: decides per-spend and transaction-wide broadcast readiness
//   - Combiner: merges independently signed copies of the same transaction
//
// Each role can be executed by a different party at a different time; the
// only values that travel between them are Transaction envelopes. All
// operations are pure: they deep-copy their input and return a new value,
// never mutating what the caller holds.
package roles

import (
	"github.com/suffix-labs/multinote/pkg/digest"
	"github.com/suffix-labs/multinote/pkg/note"
)

// Assembler accumulates the notes to consume and the outputs to create,
// then produces the unsigned transaction.
type Assembler struct {
	notes   []note.Note
	outputs []note.Output
}

// NewAssembler creates an empty Assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// AddNote queues a note for consumption. Input order is preserved and
// significant: it fixes spend indices and therefore message hashes.
func (a *Assembler) AddNote(n note.Note) *Assembler {
	a.notes = append(a.notes, n)
	return a
}

// AddOutput queues an output for creation. Order is preserved.
func (a *Assembler) AddOutput(o note.Output) *Assembler {
	a.outputs = append(a.outputs, o)
	return a
}

// Assemble builds the unsigned transaction.
//
// Preconditions: at least one note and one output, every lock structurally
// valid, and total input value equal to total output value. Violations fail
// with AssembleError, LockError, or ImbalancedError respectively.
//
// For each note, in input order, a spend is created with empty signatures
// and its message hash computed from the note's position. Given the same
// note and output sequences the result is byte-identical on every call and
// platform.
func (a *Assembler) Assemble() (*note.Transaction, error) {
	return Assemble(a.notes, a.outputs)
}

// Assemble is the one-shot form of the Assembler role.
func Assemble(notes []note.Note, outputs []note.Output) (*note.Transaction, error) {
	if len(notes) == 0 {
		return nil, &note.AssembleError{Message: "no notes to spend"}
	}
	if len(outputs) == 0 {
		return nil, &note.AssembleError{Message: "no outputs to create"}
	}

	for i := range notes {
		if err := notes[i].Lock.Validate(); err != nil {
			return nil, err
		}
	}
	for i := range outputs {
		if err := outputs[i].Lock.Validate(); err != nil {
			return nil, err
		}
	}

	tx := &note.Transaction{
		Spends:  make([]note.Spend, len(notes)),
		Outputs: make([]note.Output, len(outputs)),
	}
	for i, n := range notes {
		tx.Spends[i] = note.Spend{Note: n}
	}
	copy(tx.Outputs, outputs)

	// Clone to cut ties with the caller's slices before the value escapes.
	tx = tx.Clone()

	if in, out := tx.TotalInput(), tx.TotalOutput(); in != out {
		return nil, &note.ImbalancedError{InputTotal: in, OutputTotal: out}
	}

	// Message hashes depend only on the cleared structure, so computing them
	// one by one here cannot observe partially filled seeds.
	for i := range tx.Spends {
		h, err := digest.SpendDigest(i, tx)
		if err != nil {
			return nil, err
		}
		tx.Spends[i].Seeds.MessageHash = h
	}

	return tx, nil
}
