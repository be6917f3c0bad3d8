package gateway

import (
	"context"

	"github.com/kestrelfi/solswap/internal/domain/entity"
)

// QuoteRequest is the input to a quote lookup. Amount is in the smallest
// unit of the input token.
type QuoteRequest struct {
	InputMint      string
	OutputMint     string
	Amount         uint64
	SlippageBps    int
	PlatformFeeBps int // appended to the request only when > 0
}

// PriorityFeeConfig is the fee-bidding strategy for transaction building
type PriorityFeeConfig struct {
	MaxLamports   uint64
	PriorityLevel string
}

// DefaultPriorityFee caps bidding at the "veryHigh" tier with a fixed
// lamport ceiling.
func DefaultPriorityFee() PriorityFeeConfig {
	return PriorityFeeConfig{
		MaxLamports:   10_000_000,
		PriorityLevel: "veryHigh",
	}
}

// BuildOptions configures transaction construction
type BuildOptions struct {
	FeeAccount              string // token account receiving the protocol fee
	DestinationTokenAccount string // overrides the output destination
	PriorityFee             PriorityFeeConfig
	DynamicSlippage         bool
	DynamicComputeUnitLimit bool
}

// DefaultBuildOptions enables dynamic slippage and compute-unit sizing and
// applies the default priority fee.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		PriorityFee:             DefaultPriorityFee(),
		DynamicSlippage:         true,
		DynamicComputeUnitLimit: true,
	}
}

// QuoteGateway defines interaction with the external swap-routing service
type QuoteGateway interface {
	// GetQuote prices an input-token amount against an output token
	GetQuote(ctx context.Context, req QuoteRequest) (*entity.Quote, error)

	// BuildSwapTransaction turns a quote into a signable transaction
	// payload for the given signer address
	BuildSwapTransaction(ctx context.Context, quote *entity.Quote, signerAddress string, opts BuildOptions) (*entity.SwapTransaction, error)
}
