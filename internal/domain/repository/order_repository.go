package repository

import (
	"context"

	"github.com/kestrelfi/solswap/internal/domain/entity"
)

// OrderRepository defines order data access. Implementations own the stored
// records: every method that returns orders returns copies, and every
// mutation is mirrored to durable storage by the implementation.
type OrderRepository interface {
	// GetByID retrieves one order by id
	GetByID(ctx context.Context, id string) (*entity.Order, bool)

	// GetAll retrieves every stored order, in no particular ordering
	GetAll(ctx context.Context) []*entity.Order

	// Upsert inserts or replaces the order keyed by its id
	Upsert(ctx context.Context, order *entity.Order) error

	// Remove deletes one order by id
	Remove(ctx context.Context, id string) error

	// Clear deletes every stored order
	Clear(ctx context.Context) error

	// NextID issues a unique order id. Ids are never reused, including
	// across restarts.
	NextID() string

	// Export serializes the whole collection for backup or migration
	Export(ctx context.Context) ([]byte, error)

	// Import replaces the whole collection with a previously exported blob
	Import(ctx context.Context, data []byte) error
}
