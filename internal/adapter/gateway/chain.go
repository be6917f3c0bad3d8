package gateway

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/kestrelfi/solswap/internal/domain/entity"
)

// Signer is the external signing capability, e.g. a wallet. The
// orchestration never sees private key material beyond this interface.
type Signer interface {
	// PublicKey reports the signer's address
	PublicKey() solana.PublicKey

	// Sign signs the transaction in place
	Sign(tx *solana.Transaction) error
}

// ChainGateway defines interaction with the blockchain network
type ChainGateway interface {
	// SignAndSubmit signs the payload, submits it, and waits for
	// confirmation. It never returns an error: every failure mode becomes
	// a TransactionResult with Success=false.
	SignAndSubmit(ctx context.Context, signer Signer, swapTx *entity.SwapTransaction) *entity.TransactionResult

	// GetTokenBalance reports the owner's balance of the given mint in
	// smallest units. Best-effort: any lookup error reads as zero.
	GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) uint64

	// GetNetworkStatus reports current chain progress. Lookup errors are
	// propagated; callers need to know the network is unreachable.
	GetNetworkStatus(ctx context.Context) (*entity.NetworkStatus, error)
}
