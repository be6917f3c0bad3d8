package solana

import (
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssociatedTokenAccount(t *testing.T) {
	owner := solanago.NewWallet().PublicKey()
	mintA := solanago.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	mintB := solanago.SolMint

	a1, err := AssociatedTokenAccount(owner, mintA)
	require.NoError(t, err)
	a2, err := AssociatedTokenAccount(owner, mintA)
	require.NoError(t, err)

	// deterministic: same owner and mint always derive the same account
	assert.Equal(t, a1, a2)

	// distinct per mint and per owner, and never the owner itself
	b, err := AssociatedTokenAccount(owner, mintB)
	require.NoError(t, err)
	assert.NotEqual(t, a1, b)
	assert.NotEqual(t, owner, a1)

	other, err := AssociatedTokenAccount(solanago.NewWallet().PublicKey(), mintA)
	require.NoError(t, err)
	assert.NotEqual(t, a1, other)
}

func TestParseCommitment(t *testing.T) {
	assert.Equal(t, "processed", string(parseCommitment("processed")))
	assert.Equal(t, "finalized", string(parseCommitment("finalized")))
	assert.Equal(t, "confirmed", string(parseCommitment("confirmed")))
	assert.Equal(t, "confirmed", string(parseCommitment("")))
}
