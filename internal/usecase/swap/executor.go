package swap

import (
	"context"
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/kestrelfi/solswap/internal/adapter/gateway"
	"github.com/kestrelfi/solswap/internal/domain/entity"
	"github.com/kestrelfi/solswap/internal/infrastructure/solana"
)

// OrderParams describes one swap to execute
type OrderParams struct {
	InputMint      string
	OutputMint     string
	Amount         uint64
	SlippageBps    int
	PlatformFeeBps int
	FeeOwner       string // receives the protocol fee, in the output token
	Destination    string // liquidity provider receiving the swap output
}

// Executor composes the quote service and the chain into one swap
// execution: quote, derive destination accounts, build, sign, submit,
// confirm. Execution failure is an expected outcome, so ExecuteSwap never
// returns an error: every stage's failure is captured in the result.
type Executor struct {
	quotes gateway.QuoteGateway
	chain  gateway.ChainGateway
	log    *zap.Logger
}

// NewExecutor creates a swap executor
func NewExecutor(quotes gateway.QuoteGateway, chain gateway.ChainGateway, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{
		quotes: quotes,
		chain:  chain,
		log:    log.Named("swap"),
	}
}

// ExecuteSwap runs the full pipeline for one order. The fee and destination
// accounts must be derived before the transaction is built, because the
// routing service constructs the transaction around them.
func (e *Executor) ExecuteSwap(ctx context.Context, signer gateway.Signer, p OrderParams) *entity.TransactionResult {
	quote, err := e.quotes.GetQuote(ctx, gateway.QuoteRequest{
		InputMint:      p.InputMint,
		OutputMint:     p.OutputMint,
		Amount:         p.Amount,
		SlippageBps:    p.SlippageBps,
		PlatformFeeBps: p.PlatformFeeBps,
	})
	if err != nil {
		return entity.FailedResult(fmt.Sprintf("get quote: %v", err))
	}

	outputMint, err := solanago.PublicKeyFromBase58(p.OutputMint)
	if err != nil {
		return entity.FailedResult(fmt.Sprintf("parse output mint: %v", err))
	}

	opts := gateway.DefaultBuildOptions()

	if p.FeeOwner != "" {
		feeOwner, err := solanago.PublicKeyFromBase58(p.FeeOwner)
		if err != nil {
			return entity.FailedResult(fmt.Sprintf("parse fee owner: %v", err))
		}
		feeAccount, err := solana.AssociatedTokenAccount(feeOwner, outputMint)
		if err != nil {
			return entity.FailedResult(err.Error())
		}
		opts.FeeAccount = feeAccount.String()
	}

	if p.Destination != "" {
		destOwner, err := solanago.PublicKeyFromBase58(p.Destination)
		if err != nil {
			return entity.FailedResult(fmt.Sprintf("parse destination: %v", err))
		}
		destAccount, err := solana.AssociatedTokenAccount(destOwner, outputMint)
		if err != nil {
			return entity.FailedResult(err.Error())
		}
		opts.DestinationTokenAccount = destAccount.String()
	}

	swapTx, err := e.quotes.BuildSwapTransaction(ctx, quote, signer.PublicKey().String(), opts)
	if err != nil {
		return entity.FailedResult(fmt.Sprintf("build transaction: %v", err))
	}

	result := e.chain.SignAndSubmit(ctx, signer, swapTx)
	if result.Success {
		if out, err := quote.OutAmountUint(); err == nil {
			result.OutputAmount = out
		}
		e.log.Info("swap executed",
			zap.String("signature", result.Signature),
			zap.String("input_mint", p.InputMint),
			zap.String("output_mint", p.OutputMint),
			zap.Uint64("amount_in", p.Amount),
			zap.Uint64("amount_out", result.OutputAmount))
	} else {
		e.log.Warn("swap failed",
			zap.String("input_mint", p.InputMint),
			zap.String("output_mint", p.OutputMint),
			zap.String("error", result.Error))
	}
	return result
}
