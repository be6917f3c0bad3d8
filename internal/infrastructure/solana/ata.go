package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// AssociatedTokenAccount derives the deterministic token account holding
// mint for owner. Both the protocol-fee destination and the liquidity
// provider's receiving account are derived through this one function.
func AssociatedTokenAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated token account: %w", err)
	}
	return addr, nil
}
