package solana

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelfi/solswap/internal/domain/entity"
)

type nopSigner struct{}

func (nopSigner) PublicKey() solanago.PublicKey { return solanago.PublicKey{} }
func (nopSigner) Sign(*solanago.Transaction) error { return nil }

func TestSignAndSubmit_BadPayloadIsAResultNotAnError(t *testing.T) {
	client := NewClient(Config{RPCURL: "http://127.0.0.1:1"}, nil)
	ctx := context.Background()

	// not base64
	result := client.SignAndSubmit(ctx, nopSigner{}, &entity.SwapTransaction{Payload: "!!not-base64!!"})
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Empty(t, result.Signature)
	assert.Contains(t, result.Error, "decode transaction")

	// base64, but not a transaction
	junk := base64.StdEncoding.EncodeToString([]byte{0xff, 0xee, 0xdd})
	result = client.SignAndSubmit(ctx, nopSigner{}, &entity.SwapTransaction{Payload: junk})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "deserialize transaction")
}

func TestConfirmedAtCommitment(t *testing.T) {
	cases := []struct {
		status string
		want   string
		ok     bool
	}{
		{"finalized", "finalized", true},
		{"finalized", "confirmed", true},
		{"confirmed", "confirmed", true},
		{"confirmed", "finalized", false},
		{"processed", "confirmed", false},
		{"processed", "processed", true},
	}
	for _, tc := range cases {
		got := confirmed(rpc.ConfirmationStatusType(tc.status), rpc.CommitmentType(tc.want))
		assert.Equal(t, tc.ok, got, "status=%s want=%s", tc.status, tc.want)
	}
}

func TestKeypairSigner(t *testing.T) {
	wallet := solanago.NewWallet()
	signer := NewKeypairSigner(wallet.PrivateKey)
	assert.Equal(t, wallet.PublicKey(), signer.PublicKey())

	_, err := NewKeypairSignerFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
