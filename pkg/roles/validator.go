package roles

import (
	"fmt"

	"github.com/suffix-labs/multinote/pkg/note"
)

// Report is the validator's structured result.
//
// Incomplete signing and imbalance are expected, frequent states while a
// transaction circulates among signers, so the validator returns a value
// describing them rather than an error. Valid is true only when the
// transaction is ready to broadcast.
type Report struct {
	InputTotal  uint64 // Sum of spend note values
	OutputTotal uint64 // Sum of output values
	Balanced    bool   // InputTotal == OutputTotal

	// Spends holds one signing status per spend, in spend order.
	Spends []note.SigningStatus

	// StrayedSigners lists, per spend index, signature entries from keys the
	// spend's policy does not name. Empty for transactions built by the
	// Assembler and mutated only through AddSignature; imported data can
	// carry them.
	StraySigners map[int][]note.PublicKey

	Valid bool
}

// Reasons enumerates everything standing between this transaction and
// broadcast, one human-readable line per problem. Empty when Valid.
func (r *Report) Reasons() []string {
	var reasons []string
	if !r.Balanced {
		reasons = append(reasons, fmt.Sprintf(
			"inputs total %d but outputs total %d", r.InputTotal, r.OutputTotal))
	}
	for _, st := range r.Spends {
		if !st.Complete {
			reasons = append(reasons, fmt.Sprintf(
				"spend %d has %d of %d required signatures (pending: %v)",
				st.SpendIndex, len(st.Signed), st.Threshold, st.Pending))
		}
	}
	for idx, keys := range r.StraySigners {
		reasons = append(reasons, fmt.Sprintf(
			"spend %d carries signatures from unauthorized keys %v", idx, keys))
	}
	return reasons
}

// Validate decides broadcast readiness for the whole transaction.
//
// It recomputes the balance invariant even though the Assembler enforced it,
// because imported transactions never passed through the Assembler. Per
// spend it derives the signing status and checks that every collected
// signature comes from a key the policy names. The transaction is valid when
// it balances, every spend meets its threshold, and no stray signatures are
// present.
//
// Pure function, no side effects; cheap enough to call after every ledger
// mutation.
func Validate(tx *note.Transaction) *Report {
	report := &Report{
		InputTotal:   tx.TotalInput(),
		OutputTotal:  tx.TotalOutput(),
		Spends:       make([]note.SigningStatus, 0, len(tx.Spends)),
		StraySigners: make(map[int][]note.PublicKey),
	}
	report.Balanced = report.InputTotal == report.OutputTotal

	allComplete := true
	for i := range tx.Spends {
		// Index is always in range here, so the error cannot occur.
		st, _ := SigningStatus(tx, i)
		report.Spends = append(report.Spends, *st)
		if !st.Complete {
			allComplete = false
		}

		pkh := &tx.Spends[i].Note.Lock.Pkh
		for _, entry := range tx.Spends[i].Seeds.Signatures {
			if !pkh.Contains(entry.PubKey) {
				report.StraySigners[i] = append(report.StraySigners[i], entry.PubKey)
			}
		}
	}

	report.Valid = report.Balanced && allComplete && len(report.StraySigners) == 0
	return report
}
