package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kestrelfi/solswap/internal/domain/entity"
	"github.com/kestrelfi/solswap/internal/domain/repository"
)

// Ensure MemoryStore implements OrderRepository
var _ repository.OrderRepository = (*MemoryStore)(nil)

const idPrefix = "ord"

// snapshot is the serialized form written to the mirror and produced by
// Export. Orders are sorted by id for a stable byte representation.
type snapshot struct {
	Orders []*entity.Order `json:"orders"`
}

// MemoryStore is a keyed in-memory order collection with a durable mirror.
// Every mutation rewrites the mirror; on startup the mirror is loaded back
// and the id counter is re-seeded past the highest suffix seen, so restarts
// never reissue an id. A corrupt or unreadable mirror reads as empty.
type MemoryStore struct {
	mu      sync.RWMutex
	orders  map[string]*entity.Order
	counter uint64
	mirror  Mirror
	log     *zap.Logger
}

// NewMemoryStore creates a store backed by the given mirror. A nil mirror
// disables persistence.
func NewMemoryStore(mirror Mirror, log *zap.Logger) *MemoryStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &MemoryStore{
		orders: make(map[string]*entity.Order),
		mirror: mirror,
		log:    log.Named("storage"),
	}
	s.restore()
	return s
}

// restore loads the mirrored collection. Any failure degrades to an empty
// store: persistence trouble must never block startup.
func (s *MemoryStore) restore() {
	if s.mirror == nil {
		return
	}

	data, err := s.mirror.Load()
	if err != nil {
		s.log.Warn("mirror unreadable, starting empty", zap.Error(err))
		return
	}
	if len(data) == 0 {
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.log.Warn("mirror corrupt, starting empty", zap.Error(err))
		return
	}

	for _, o := range snap.Orders {
		if o == nil || o.ID == "" {
			continue
		}
		s.orders[o.ID] = o
		if n, ok := idSuffix(o.ID); ok && n > s.counter {
			s.counter = n
		}
	}

	s.log.Info("restored orders from mirror", zap.Int("count", len(s.orders)))
}

// idSuffix extracts the numeric counter suffix of an order id
func idSuffix(id string) (uint64, bool) {
	i := strings.LastIndex(id, "-")
	if i < 0 || i == len(id)-1 {
		return 0, false
	}
	n, err := strconv.ParseUint(id[i+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextID issues a unique order id from the creation time and a counter that
// survives restarts.
func (s *MemoryStore) NextID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return fmt.Sprintf("%s-%d-%d", idPrefix, time.Now().UnixMilli(), s.counter)
}

// GetByID retrieves one order by id
func (s *MemoryStore) GetByID(_ context.Context, id string) (*entity.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// GetAll retrieves copies of every stored order
func (s *MemoryStore) GetAll(_ context.Context) []*entity.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*entity.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	return out
}

// Upsert inserts or replaces the order keyed by its id
func (s *MemoryStore) Upsert(_ context.Context, order *entity.Order) error {
	if order == nil || order.ID == "" {
		return fmt.Errorf("upsert: order must have an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.ID] = order.Clone()
	s.persist()
	return nil
}

// Remove deletes one order by id
func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.orders, id)
	s.persist()
	return nil
}

// Clear deletes every stored order
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = make(map[string]*entity.Order)
	s.persist()
	return nil
}

// Export serializes the whole collection
func (s *MemoryStore) Export(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marshal()
}

// Import replaces the collection with a previously exported blob and
// re-seeds the id counter so future ids cannot collide.
func (s *MemoryStore) Import(_ context.Context, data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = make(map[string]*entity.Order, len(snap.Orders))
	for _, o := range snap.Orders {
		if o == nil || o.ID == "" {
			continue
		}
		s.orders[o.ID] = o.Clone()
		if n, ok := idSuffix(o.ID); ok && n > s.counter {
			s.counter = n
		}
	}
	s.persist()
	return nil
}

// marshal produces the stable snapshot bytes; callers hold the lock
func (s *MemoryStore) marshal() ([]byte, error) {
	snap := snapshot{Orders: make([]*entity.Order, 0, len(s.orders))}
	for _, o := range s.orders {
		snap.Orders = append(snap.Orders, o)
	}
	sort.Slice(snap.Orders, func(i, j int) bool {
		return snap.Orders[i].ID < snap.Orders[j].ID
	})
	return json.MarshalIndent(snap, "", "  ")
}

// persist rewrites the mirror; callers hold the lock. Mirror failures are
// logged and swallowed: storage trouble never blocks business logic, the
// in-memory state simply runs ahead of the mirror until the next write.
func (s *MemoryStore) persist() {
	if s.mirror == nil {
		return
	}
	data, err := s.marshal()
	if err != nil {
		s.log.Warn("mirror serialization failed", zap.Error(err))
		return
	}
	if err := s.mirror.Save(data); err != nil {
		s.log.Warn("mirror write failed", zap.Error(err))
	}
}
