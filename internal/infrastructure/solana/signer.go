package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/kestrelfi/solswap/internal/adapter/gateway"
)

// Ensure KeypairSigner implements the signer capability
var _ gateway.Signer = (*KeypairSigner)(nil)

// KeypairSigner signs transactions with a locally held keypair. It exists so
// the daemon can run end to end; wallets and other external signers plug in
// through the same gateway.Signer interface.
type KeypairSigner struct {
	key solana.PrivateKey
}

// NewKeypairSigner wraps an in-memory private key
func NewKeypairSigner(key solana.PrivateKey) *KeypairSigner {
	return &KeypairSigner{key: key}
}

// NewKeypairSignerFromFile loads a solana-keygen JSON keypair file
func NewKeypairSignerFromFile(path string) (*KeypairSigner, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair %s: %w", path, err)
	}
	return &KeypairSigner{key: key}, nil
}

// PublicKey reports the signer's address
func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

// Sign signs the transaction in place
func (s *KeypairSigner) Sign(tx *solana.Transaction) error {
	pub := s.key.PublicKey()
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &s.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	return nil
}
