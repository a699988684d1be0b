package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suffix-labs/multinote/pkg/note"
)

func assembled(t *testing.T) *note.Transaction {
	t.Helper()
	tx, err := Assemble(
		[]note.Note{testNote("0", 1000, 2, "pkA", "pkB", "pkC")},
		[]note.Output{testOutput("x", 700, "pkX"), testOutput("y", 300, "pkY")},
	)
	require.NoError(t, err)
	return tx
}

func TestAddSignature(t *testing.T) {
	tx := assembled(t)

	signed, err := AddSignature(tx, 0, "pkA", "sigA")
	require.NoError(t, err)

	require.Len(t, signed.Spends[0].Seeds.Signatures, 1)
	assert.Equal(t, note.PublicKey("pkA"), signed.Spends[0].Seeds.Signatures[0].PubKey)
	assert.Equal(t, note.Signature("sigA"), signed.Spends[0].Seeds.Signatures[0].Signature)
}

func TestAddSignatureLeavesOriginalUntouched(t *testing.T) {
	tx := assembled(t)

	signed, err := AddSignature(tx, 0, "pkA", "sigA")
	require.NoError(t, err)

	assert.Empty(t, tx.Spends[0].Seeds.Signatures, "caller's transaction was mutated")
	assert.NotSame(t, tx, signed)
	assert.Equal(t, tx.Spends[0].Seeds.MessageHash, signed.Spends[0].Seeds.MessageHash)
}

func TestAddSignatureUnauthorized(t *testing.T) {
	tx := assembled(t)

	_, err := AddSignature(tx, 0, "pkZ", "sigZ")
	var unauthorized *note.UnauthorizedSignerError
	require.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, 0, unauthorized.SpendIndex)
	assert.Equal(t, note.PublicKey("pkZ"), unauthorized.PubKey)
}

func TestAddSignatureOutOfRange(t *testing.T) {
	tx := assembled(t)

	for _, idx := range []int{-1, 1, 42} {
		_, err := AddSignature(tx, idx, "pkA", "sigA")
		var idxErr *note.SpendIndexError
		require.ErrorAs(t, err, &idxErr, "index %d", idx)
	}
}

func TestReSigningReplaces(t *testing.T) {
	tx := assembled(t)

	tx1, err := AddSignature(tx, 0, "pkA", "first")
	require.NoError(t, err)
	tx2, err := AddSignature(tx1, 0, "pkA", "second")
	require.NoError(t, err)

	require.Len(t, tx2.Spends[0].Seeds.Signatures, 1, "re-signing must not accumulate entries")
	assert.Equal(t, note.Signature("second"), tx2.Spends[0].Seeds.Signatures[0].Signature)
}

func TestAddSignaturePreservesArrivalOrder(t *testing.T) {
	tx := assembled(t)

	tx, err := AddSignature(tx, 0, "pkC", "sigC")
	require.NoError(t, err)
	tx, err = AddSignature(tx, 0, "pkA", "sigA")
	require.NoError(t, err)

	sigs := tx.Spends[0].Seeds.Signatures
	require.Len(t, sigs, 2)
	assert.Equal(t, note.PublicKey("pkC"), sigs[0].PubKey)
	assert.Equal(t, note.PublicKey("pkA"), sigs[1].PubKey)
}

func TestSigningStatusProgression(t *testing.T) {
	tx := assembled(t)

	st, err := SigningStatus(tx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, st.SpendIndex)
	assert.Equal(t, 2, st.Threshold)
	assert.Empty(t, st.Signed)
	assert.Equal(t, []note.PublicKey{"pkA", "pkB", "pkC"}, st.Pending)
	assert.False(t, st.Complete)

	tx, err = AddSignature(tx, 0, "pkA", "sigA")
	require.NoError(t, err)
	st, err = SigningStatus(tx, 0)
	require.NoError(t, err)
	assert.Equal(t, []note.PublicKey{"pkA"}, st.Signed)
	assert.Equal(t, []note.PublicKey{"pkB", "pkC"}, st.Pending)
	assert.False(t, st.Complete)

	tx, err = AddSignature(tx, 0, "pkC", "sigC")
	require.NoError(t, err)
	st, err = SigningStatus(tx, 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []note.PublicKey{"pkA", "pkC"}, st.Signed)
	assert.Equal(t, []note.PublicKey{"pkB"}, st.Pending)
	assert.True(t, st.Complete)
}

func TestSigningStatusOutOfRange(t *testing.T) {
	tx := assembled(t)
	_, err := SigningStatus(tx, 5)
	var idxErr *note.SpendIndexError
	require.ErrorAs(t, err, &idxErr)
}
