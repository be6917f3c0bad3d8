package solana

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/kestrelfi/solswap/internal/adapter/gateway"
	"github.com/kestrelfi/solswap/internal/domain/entity"
)

// Ensure Client implements ChainGateway
var _ gateway.ChainGateway = (*Client)(nil)

// Config holds blockchain connection configuration
type Config struct {
	RPCURL     string
	WSURL      string // optional; confirmation falls back to polling when empty
	Commitment string
	MaxRetries uint
}

// Client talks to the blockchain network: transaction submission and
// confirmation, balances, and chain progress.
type Client struct {
	config     Config
	rpc        *rpc.Client
	commitment rpc.CommitmentType
	log        *zap.Logger
}

// NewClient creates a new chain client
func NewClient(config Config, log *zap.Logger) *Client {
	if config.RPCURL == "" {
		config.RPCURL = rpc.MainNetBeta_RPC
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		config:     config,
		rpc:        rpc.New(config.RPCURL),
		commitment: parseCommitment(config.Commitment),
		log:        log.Named("solana"),
	}
}

func parseCommitment(s string) rpc.CommitmentType {
	switch s {
	case "processed":
		return rpc.CommitmentProcessed
	case "finalized":
		return rpc.CommitmentFinalized
	default:
		return rpc.CommitmentConfirmed
	}
}

// SignAndSubmit decodes the payload, signs it, submits without preflight,
// and waits for confirmation bounded by the transaction's last valid block
// height. Every failure mode becomes a failed TransactionResult.
func (c *Client) SignAndSubmit(ctx context.Context, signer gateway.Signer, swapTx *entity.SwapTransaction) *entity.TransactionResult {
	raw, err := base64.StdEncoding.DecodeString(swapTx.Payload)
	if err != nil {
		return entity.FailedResult(fmt.Sprintf("decode transaction: %v", err))
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return entity.FailedResult(fmt.Sprintf("deserialize transaction: %v", err))
	}

	if err := signer.Sign(tx); err != nil {
		return entity.FailedResult(fmt.Sprintf("sign transaction: %v", err))
	}

	maxRetries := c.config.MaxRetries
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight: true,
		MaxRetries:    &maxRetries,
	})
	if err != nil {
		return entity.FailedResult(fmt.Sprintf("submit transaction: %v", err))
	}

	c.log.Info("transaction submitted",
		zap.String("signature", sig.String()),
		zap.Uint64("last_valid_block_height", swapTx.LastValidBlockHeight))

	if err := c.waitForConfirmation(ctx, sig, swapTx.LastValidBlockHeight); err != nil {
		return entity.FailedResult(fmt.Sprintf("confirm %s: %v", sig, err))
	}

	return &entity.TransactionResult{Signature: sig.String(), Success: true}
}

// waitForConfirmation prefers the websocket subscription and falls back to
// status polling when no websocket endpoint is configured.
func (c *Client) waitForConfirmation(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	if c.config.WSURL != "" {
		err := c.confirmViaWebSocket(ctx, sig, lastValidBlockHeight)
		if err == nil {
			return nil
		}
		if isExpiredErr(err) || isOnChainErr(err) {
			return err
		}
		c.log.Warn("websocket confirmation failed, falling back to polling",
			zap.String("signature", sig.String()), zap.Error(err))
	}
	return c.confirmViaPolling(ctx, sig, lastValidBlockHeight)
}

// confirmViaPolling polls signature statuses until the transaction reaches
// the configured commitment, errors on chain, or expires.
func (c *Client) confirmViaPolling(ctx context.Context, sig solana.Signature, lastValidBlockHeight uint64) error {
	statusTicker := time.NewTicker(2 * time.Second)
	defer statusTicker.Stop()
	expiryTicker := time.NewTicker(10 * time.Second)
	defer expiryTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-expiryTicker.C:
			expired, err := c.pastValidity(ctx, lastValidBlockHeight)
			if err != nil {
				c.log.Debug("block height lookup failed during confirmation", zap.Error(err))
				continue
			}
			if expired {
				return errTransactionExpired
			}
		case <-statusTicker.C:
			out, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				c.log.Debug("signature status lookup failed", zap.Error(err))
				continue
			}
			if len(out.Value) == 0 || out.Value[0] == nil {
				continue
			}
			st := out.Value[0]
			if st.Err != nil {
				return fmt.Errorf("%w: %v", errOnChainFailure, st.Err)
			}
			if confirmed(st.ConfirmationStatus, c.commitment) {
				return nil
			}
		}
	}
}

func confirmed(status rpc.ConfirmationStatusType, want rpc.CommitmentType) bool {
	switch status {
	case rpc.ConfirmationStatusFinalized:
		return true
	case rpc.ConfirmationStatusConfirmed:
		return want != rpc.CommitmentFinalized
	case rpc.ConfirmationStatusProcessed:
		return want == rpc.CommitmentProcessed
	}
	return false
}

// pastValidity reports whether the chain has moved beyond the block height
// at which the transaction can still land.
func (c *Client) pastValidity(ctx context.Context, lastValidBlockHeight uint64) (bool, error) {
	height, err := c.rpc.GetBlockHeight(ctx, c.commitment)
	if err != nil {
		return false, fmt.Errorf("get block height: %w", err)
	}
	return height > lastValidBlockHeight, nil
}

// GetTokenBalance reports the owner's balance of mint in smallest units.
// The native mint reads the account's lamport balance, everything else reads
// the owner's associated token account. Lookups are best-effort: errors
// read as zero so a balance display never blocks on RPC trouble.
func (c *Client) GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) uint64 {
	if mint.Equals(solana.SolMint) {
		res, err := c.rpc.GetBalance(ctx, owner, c.commitment)
		if err != nil {
			c.log.Debug("native balance lookup failed",
				zap.String("owner", owner.String()), zap.Error(err))
			return 0
		}
		return res.Value
	}

	ata, err := AssociatedTokenAccount(owner, mint)
	if err != nil {
		c.log.Debug("associated account derivation failed",
			zap.String("owner", owner.String()), zap.String("mint", mint.String()), zap.Error(err))
		return 0
	}

	res, err := c.rpc.GetTokenAccountBalance(ctx, ata, c.commitment)
	if err != nil {
		c.log.Debug("token balance lookup failed",
			zap.String("account", ata.String()), zap.Error(err))
		return 0
	}

	amount, err := strconv.ParseUint(res.Value.Amount, 10, 64)
	if err != nil {
		return 0
	}
	return amount
}

// GetNetworkStatus reports current slot, block height, and latest blockhash.
// Unlike balance lookups, failures here are meaningful and are propagated.
func (c *Client) GetNetworkStatus(ctx context.Context) (*entity.NetworkStatus, error) {
	slot, err := c.rpc.GetSlot(ctx, c.commitment)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	height, err := c.rpc.GetBlockHeight(ctx, c.commitment)
	if err != nil {
		return nil, fmt.Errorf("get block height: %w", err)
	}

	hash, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return nil, fmt.Errorf("get latest blockhash: %w", err)
	}

	return &entity.NetworkStatus{
		Slot:        slot,
		BlockHeight: height,
		Blockhash:   hash.Value.Blockhash.String(),
	}, nil
}
