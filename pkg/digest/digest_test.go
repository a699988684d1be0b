package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/multinote/pkg/note"
)

func twoSpendTransaction() *note.Transaction {
	return &note.Transaction{
		Spends: []note.Spend{
			{Note: note.Note{
				Name:  note.NoteName{First: "origin", Last: "0"},
				Value: 600,
				Lock:  note.NewPkhLock(2, "pkA", "pkB", "pkC"),
			}},
			{Note: note.Note{
				Name:  note.NoteName{First: "origin", Last: "1"},
				Value: 400,
				Lock:  note.NewPkhLock(1, "pkD"),
			}},
		},
		Outputs: []note.Output{
			{Recipient: "x", Value: 700, Lock: note.NewPkhLock(1, "pkX")},
			{Recipient: "y", Value: 300, Lock: note.NewPkhLock(1, "pkY")},
		},
	}
}

func TestSpendDigestDeterministic(t *testing.T) {
	tx := twoSpendTransaction()

	first, err := SpendDigest(0, tx)
	require.NoError(t, err)
	second, err := SpendDigest(0, tx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "BLAKE2b-256 hex digest should be 64 chars")
	assert.Regexp(t, "^[0-9a-f]{64}$", first)
}

func TestSpendDigestIndexMatters(t *testing.T) {
	tx := twoSpendTransaction()

	d0, err := SpendDigest(0, tx)
	require.NoError(t, err)
	d1, err := SpendDigest(1, tx)
	require.NoError(t, err)

	// Same structure, different index: spends over structurally identical
	// notes must still sign different values.
	assert.NotEqual(t, d0, d1)
}

func TestSpendDigestIgnoresSignatureState(t *testing.T) {
	tx := twoSpendTransaction()

	before0, err := SpendDigest(0, tx)
	require.NoError(t, err)
	before1, err := SpendDigest(1, tx)
	require.NoError(t, err)

	// Simulate in-progress signing on both spends plus a stored hash.
	tx.Spends[0].Seeds.MessageHash = before0
	tx.Spends[0].Seeds.SetSignature("pkA", "sigA")
	tx.Spends[0].Seeds.SetSignature("pkB", "sigB")
	tx.Spends[1].Seeds.MessageHash = before1
	tx.Spends[1].Seeds.SetSignature("pkD", "sigD")

	after0, err := SpendDigest(0, tx)
	require.NoError(t, err)
	after1, err := SpendDigest(1, tx)
	require.NoError(t, err)

	assert.Equal(t, before0, after0, "digest for spend 0 moved with signature state")
	assert.Equal(t, before1, after1, "digest for spend 1 moved with signature state")
}

func TestSpendDigestStructureMatters(t *testing.T) {
	tx := twoSpendTransaction()
	base, err := SpendDigest(0, tx)
	require.NoError(t, err)

	changed := tx.Clone()
	changed.Outputs[0].Value = 699
	moved, err := SpendDigest(0, changed)
	require.NoError(t, err)

	assert.NotEqual(t, base, moved, "output change must change every spend digest")
}

func TestSpendDigestOutOfRange(t *testing.T) {
	tx := twoSpendTransaction()

	for _, idx := range []int{-1, 2, 100} {
		_, err := SpendDigest(idx, tx)
		var idxErr *note.SpendIndexError
		require.ErrorAs(t, err, &idxErr)
		assert.Equal(t, idx, idxErr.Index)
		assert.Equal(t, 2, idxErr.SpendCount)
	}
}

func TestSpendDigestDoesNotTouchInput(t *testing.T) {
	tx := twoSpendTransaction()
	tx.Spends[0].Seeds.SetSignature("pkA", "sigA")

	_, err := SpendDigest(0, tx)
	require.NoError(t, err)

	assert.Equal(t, 1, tx.Spends[0].Seeds.SignatureCount(), "caller's transaction was mutated")
}

// The canonical form is a wire contract: field order, separators, and escape
// rules are all normative. A byte-level golden value pins them down.
func TestCanonicalPayloadGolden(t *testing.T) {
	tx := &note.Transaction{
		Spends: []note.Spend{{
			Note: note.Note{
				Name:  note.NoteName{First: "f", Last: "l"},
				Value: 5,
				Lock:  note.NewPkhLock(1, "a"),
			},
		}},
		Outputs: []note.Output{
			{Recipient: "r", Value: 5, Lock: note.NewPkhLock(1, "b")},
		},
	}

	want := `{"spend_index":0,"transaction":{"spends":[{"note":{"name":{"first":"f","last":"l"},"value":5,` +
		`"lock":{"kind":"pkh","pkh":{"threshold":1,"pubkeys":["a"]}}},` +
		`"seeds":{"message_hash":"","signatures":[]}}],` +
		`"outputs":[{"recipient":"r","value":5,"lock":{"kind":"pkh","pkh":{"threshold":1,"pubkeys":["b"]}}}]}}`

	got := CanonicalPayload(0, Cleared(tx))
	assert.Equal(t, want, string(got))
}

func TestCanonicalPayloadEscapes(t *testing.T) {
	tx := &note.Transaction{
		Spends: []note.Spend{{
			Note: note.Note{
				Name:  note.NoteName{First: `quo"te`, Last: "tab\there"},
				Value: 1,
				Lock:  note.NewPkhLock(1, "a"),
			},
		}},
		Outputs: []note.Output{
			{Recipient: "line\nbreak", Value: 1, Lock: note.NewPkhLock(1, "b")},
		},
	}

	got := string(CanonicalPayload(0, Cleared(tx)))
	assert.Contains(t, got, `"first":"quo\"te"`)
	assert.Contains(t, got, `"last":"tab\there"`)
	assert.Contains(t, got, `"recipient":"line\nbreak"`)
	assert.NotContains(t, got, " ", "canonical form must contain no whitespace")
}

func TestClearedResetsEverySpend(t *testing.T) {
	tx := twoSpendTransaction()
	tx.Spends[0].Seeds.MessageHash = "h0"
	tx.Spends[0].Seeds.SetSignature("pkA", "sigA")
	tx.Spends[1].Seeds.MessageHash = "h1"

	cleared := Cleared(tx)
	for i := range cleared.Spends {
		assert.Empty(t, cleared.Spends[i].Seeds.MessageHash)
		assert.Empty(t, cleared.Spends[i].Seeds.Signatures)
	}
	// Original untouched.
	assert.Equal(t, "h0", tx.Spends[0].Seeds.MessageHash)
	assert.Equal(t, 1, tx.Spends[0].Seeds.SignatureCount())
}
