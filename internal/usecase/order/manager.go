package order

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	solanago "github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/kestrelfi/solswap/internal/adapter/gateway"
	"github.com/kestrelfi/solswap/internal/domain/entity"
	"github.com/kestrelfi/solswap/internal/domain/repository"
	"github.com/kestrelfi/solswap/internal/infrastructure/metrics"
	"github.com/kestrelfi/solswap/internal/usecase/swap"
)

// SwapExecutor runs one swap end to end, capturing every failure in the
// result instead of returning an error.
type SwapExecutor interface {
	ExecuteSwap(ctx context.Context, signer gateway.Signer, p swap.OrderParams) *entity.TransactionResult
}

// Config holds lifecycle policy
type Config struct {
	ProtocolFeeBps     uint16
	TreasuryAddress    string
	DefaultSlippageBps int
	StalenessWindow    time.Duration
	DefaultRateLabel   string
}

// DefaultConfig returns the default lifecycle policy
func DefaultConfig() Config {
	return Config{
		ProtocolFeeBps:     0,
		DefaultSlippageBps: 50,
		StalenessWindow:    5 * time.Minute,
		DefaultRateLabel:   "Market Rate",
	}
}

// CreateParams are the caller-supplied inputs to order creation
type CreateParams struct {
	Creator           string
	InputToken        string
	OutputToken       string
	InputAmount       uint64
	LiquidityProvider string
	RefundAddress     string // defaults to creator
	Rate              string // display label only
	SlippageBps       int    // defaults from config
}

// Stats aggregates the collection by status. Volume sums fulfilled orders'
// input amounts.
type Stats struct {
	Total       int
	Pending     int
	Fulfilled   int
	Failed      int
	Cancelled   int
	TotalVolume uint64
}

// Manager owns the order state machine: creation, quote refresh, execution,
// cancellation, and fee accounting. It is the only writer of the store.
type Manager struct {
	config   Config
	quotes   gateway.QuoteGateway
	executor SwapExecutor
	repo     repository.OrderRepository
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time

	// per-order-id mutual exclusion: execute, cancel, and quote refresh
	// hold the order's lock for their whole duration so a cancel can never
	// race an in-flight execution into an inconsistent terminal state
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewManager creates an order lifecycle manager
func NewManager(config Config, quotes gateway.QuoteGateway, executor SwapExecutor, repo repository.OrderRepository, m *metrics.Metrics, log *zap.Logger) *Manager {
	if config.StalenessWindow == 0 {
		config.StalenessWindow = DefaultConfig().StalenessWindow
	}
	if config.DefaultSlippageBps == 0 {
		config.DefaultSlippageBps = DefaultConfig().DefaultSlippageBps
	}
	if config.DefaultRateLabel == "" {
		config.DefaultRateLabel = DefaultConfig().DefaultRateLabel
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		config:   config,
		quotes:   quotes,
		executor: executor,
		repo:     repo,
		metrics:  m,
		log:      log.Named("orders"),
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing mutations of one order id
func (m *Manager) lockFor(id string) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// CreateOrder validates the request, fetches a quote, computes the protocol
// fee, and stores a pending order. Validation fails fast: the first
// violation wins and nothing is stored.
func (m *Manager) CreateOrder(ctx context.Context, p CreateParams) (*entity.Order, error) {
	if p.InputToken == "" || p.OutputToken == "" {
		return nil, entity.NewValidationError("tokens", "input and output tokens are required")
	}
	if p.InputToken == p.OutputToken {
		return nil, entity.NewValidationError("tokens", "input and output tokens must differ")
	}
	if p.InputAmount == 0 {
		return nil, entity.NewValidationError("inputAmount", "must be positive")
	}
	if _, err := solanago.PublicKeyFromBase58(p.LiquidityProvider); err != nil {
		return nil, entity.NewValidationError("liquidityProvider", "malformed address")
	}
	if p.RefundAddress != "" {
		if _, err := solanago.PublicKeyFromBase58(p.RefundAddress); err != nil {
			return nil, entity.NewValidationError("refundAddress", "malformed address")
		}
	}
	if m.config.TreasuryAddress == "" {
		return nil, entity.NewValidationError("treasury", "fee destination not configured")
	}

	slippage := p.SlippageBps
	if slippage == 0 {
		slippage = m.config.DefaultSlippageBps
	}

	quote, err := m.quotes.GetQuote(ctx, gateway.QuoteRequest{
		InputMint:      p.InputToken,
		OutputMint:     p.OutputToken,
		Amount:         p.InputAmount,
		SlippageBps:    slippage,
		PlatformFeeBps: int(m.config.ProtocolFeeBps),
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	expected, err := quote.OutAmountUint()
	if err != nil {
		return nil, fmt.Errorf("create order: %w: unparseable output amount %q", entity.ErrInvalidQuote, quote.OutAmount)
	}

	refund := p.RefundAddress
	if refund == "" {
		refund = p.Creator
	}
	rate := p.Rate
	if rate == "" {
		rate = m.config.DefaultRateLabel
	}

	o := &entity.Order{
		ID:                   m.repo.NextID(),
		InputToken:           p.InputToken,
		OutputToken:          p.OutputToken,
		InputAmount:          p.InputAmount,
		ExpectedOutputAmount: expected,
		Rate:                 rate,
		Creator:              p.Creator,
		RefundAddress:        refund,
		LiquidityProvider:    p.LiquidityProvider,
		Status:               entity.OrderStatusPending,
		Timestamp:            m.now(),
		Quote:                quote,
		ProtocolFee:          entity.ProtocolFee(p.InputAmount, m.config.ProtocolFeeBps),
		PriceImpact:          quote.PriceImpactPct,
	}

	m.persist(ctx, o)
	m.metrics.OrderCreated()
	m.log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("creator", o.Creator),
		zap.Uint64("input_amount", o.InputAmount),
		zap.Uint64("protocol_fee", o.ProtocolFee))

	return o.Clone(), nil
}

// ExecuteOrder runs the swap for a pending order and transitions it to
// fulfilled or failed. On failure the error is recorded on the order first
// and then raised, so both the record and the caller carry the reason.
func (m *Manager) ExecuteOrder(ctx context.Context, id string, signer gateway.Signer) (*entity.Order, error) {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	o, ok := m.repo.GetByID(ctx, id)
	if !ok {
		return nil, fmt.Errorf("execute %s: %w", id, entity.ErrOrderNotFound)
	}
	if !o.IsPending() {
		return nil, fmt.Errorf("execute %s: %w: status is %s", id, entity.ErrInvalidOrderState, o.Status)
	}

	start := m.now()
	result := m.executor.ExecuteSwap(ctx, signer, swap.OrderParams{
		InputMint:      o.InputToken,
		OutputMint:     o.OutputToken,
		Amount:         o.InputAmount,
		SlippageBps:    m.orderSlippage(o),
		PlatformFeeBps: int(m.config.ProtocolFeeBps),
		FeeOwner:       m.config.TreasuryAddress,
		Destination:    o.LiquidityProvider,
	})
	elapsed := m.now().Sub(start)

	if result.Success {
		o.Status = entity.OrderStatusFulfilled
		o.TransactionSignature = result.Signature
		o.ActualOutputAmount = result.OutputAmount
		m.persist(ctx, o)
		m.metrics.OrderExecuted("fulfilled", elapsed)
		m.log.Info("order fulfilled",
			zap.String("order_id", o.ID),
			zap.String("signature", result.Signature),
			zap.Uint64("actual_output", result.OutputAmount))
		return o.Clone(), nil
	}

	o.Status = entity.OrderStatusFailed
	o.ErrorMessage = result.Error
	m.persist(ctx, o)
	m.metrics.OrderExecuted("failed", elapsed)
	m.log.Warn("order failed",
		zap.String("order_id", o.ID),
		zap.String("error", result.Error))

	return o.Clone(), &entity.NetworkSubmissionError{Signature: result.Signature, Message: result.Error}
}

// CancelOrder flips a pending order to cancelled. Only the creator may
// cancel, and a terminal order stays untouched.
func (m *Manager) CancelOrder(ctx context.Context, id, caller string) (*entity.Order, error) {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	o, ok := m.repo.GetByID(ctx, id)
	if !ok {
		return nil, fmt.Errorf("cancel %s: %w", id, entity.ErrOrderNotFound)
	}
	if caller != o.Creator {
		return nil, fmt.Errorf("cancel %s: %w: caller is not the creator", id, entity.ErrUnauthorized)
	}
	if !o.IsPending() {
		return nil, fmt.Errorf("cancel %s: %w: status is %s", id, entity.ErrInvalidOrderState, o.Status)
	}

	o.Status = entity.OrderStatusCancelled
	m.persist(ctx, o)
	m.metrics.OrderCancelled()
	m.log.Info("order cancelled", zap.String("order_id", id))

	return o.Clone(), nil
}

// UpdateOrderQuote refreshes a pending order's quote, expected output, and
// price impact in one step. The protocol fee was fixed at creation and is
// never recomputed.
func (m *Manager) UpdateOrderQuote(ctx context.Context, id string) (*entity.Order, error) {
	l := m.lockFor(id)
	l.Lock()
	defer l.Unlock()

	o, ok := m.repo.GetByID(ctx, id)
	if !ok {
		return nil, fmt.Errorf("refresh %s: %w", id, entity.ErrOrderNotFound)
	}
	if !o.IsPending() {
		return nil, fmt.Errorf("refresh %s: %w: status is %s", id, entity.ErrInvalidOrderState, o.Status)
	}

	quote, err := m.quotes.GetQuote(ctx, gateway.QuoteRequest{
		InputMint:      o.InputToken,
		OutputMint:     o.OutputToken,
		Amount:         o.InputAmount,
		SlippageBps:    m.orderSlippage(o),
		PlatformFeeBps: int(m.config.ProtocolFeeBps),
	})
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w", id, err)
	}

	expected, err := quote.OutAmountUint()
	if err != nil {
		return nil, fmt.Errorf("refresh %s: %w: unparseable output amount %q", id, entity.ErrInvalidQuote, quote.OutAmount)
	}

	o.Quote = quote
	o.ExpectedOutputAmount = expected
	o.PriceImpact = quote.PriceImpactPct
	m.persist(ctx, o)

	return o.Clone(), nil
}

// RefreshPendingQuotes sweeps every pending order. One order's failure is
// logged and skipped, never aborts the sweep. Returns the refreshed count.
func (m *Manager) RefreshPendingQuotes(ctx context.Context) int {
	refreshed := 0
	for _, o := range m.GetOrdersByStatus(ctx, entity.OrderStatusPending) {
		if _, err := m.UpdateOrderQuote(ctx, o.ID); err != nil {
			m.metrics.QuoteRefresh(false)
			m.log.Warn("quote refresh skipped",
				zap.String("order_id", o.ID), zap.Error(err))
			continue
		}
		m.metrics.QuoteRefresh(true)
		refreshed++
	}
	return refreshed
}

// GetOrder retrieves one order by id
func (m *Manager) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	o, ok := m.repo.GetByID(ctx, id)
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, entity.ErrOrderNotFound)
	}
	return o, nil
}

// GetUserOrders lists one creator's orders, newest first
func (m *Manager) GetUserOrders(ctx context.Context, creator string) []*entity.Order {
	var out []*entity.Order
	for _, o := range m.repo.GetAll(ctx) {
		if o.Creator == creator {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out
}

// GetOrdersByStatus lists orders in the given status, newest first
func (m *Manager) GetOrdersByStatus(ctx context.Context, status entity.OrderStatus) []*entity.Order {
	var out []*entity.Order
	for _, o := range m.repo.GetAll(ctx) {
		if o.Status == status {
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out
}

// GetOrderStats aggregates counts per status and fulfilled volume
func (m *Manager) GetOrderStats(ctx context.Context) Stats {
	var s Stats
	for _, o := range m.repo.GetAll(ctx) {
		s.Total++
		switch o.Status {
		case entity.OrderStatusPending:
			s.Pending++
		case entity.OrderStatusFulfilled:
			s.Fulfilled++
			s.TotalVolume += o.InputAmount
		case entity.OrderStatusFailed:
			s.Failed++
		case entity.OrderStatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// GetTotalFeesCollected sums protocol fees over fulfilled orders
func (m *Manager) GetTotalFeesCollected(ctx context.Context) uint64 {
	var total uint64
	for _, o := range m.repo.GetAll(ctx) {
		if o.Status == entity.OrderStatusFulfilled {
			total += o.ProtocolFee
		}
	}
	return total
}

// GetOrdersRequiringAttention selects failed orders and pending orders
// older than the staleness window, whose quoted price may no longer be
// executable. Newest first.
func (m *Manager) GetOrdersRequiringAttention(ctx context.Context) []*entity.Order {
	now := m.now()
	var out []*entity.Order
	for _, o := range m.repo.GetAll(ctx) {
		switch {
		case o.Status == entity.OrderStatusFailed:
			out = append(out, o)
		case o.IsPending() && o.Age(now) > m.config.StalenessWindow:
			out = append(out, o)
		}
	}
	sortNewestFirst(out)
	return out
}

// ClearOrders wipes the whole collection. Administrative operation; orders
// are never deleted individually.
func (m *Manager) ClearOrders(ctx context.Context) error {
	if err := m.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	m.log.Info("order collection cleared")
	return nil
}

// ExportOrders serializes the collection for backup or migration
func (m *Manager) ExportOrders(ctx context.Context) ([]byte, error) {
	return m.repo.Export(ctx)
}

// ImportOrders replaces the collection with an exported blob
func (m *Manager) ImportOrders(ctx context.Context, data []byte) error {
	if err := m.repo.Import(ctx, data); err != nil {
		return fmt.Errorf("import orders: %w", err)
	}
	return nil
}

// orderSlippage reads the slippage tolerance recorded on the order's quote,
// falling back to the configured default.
func (m *Manager) orderSlippage(o *entity.Order) int {
	if o.Quote != nil && o.Quote.SlippageBps > 0 {
		return o.Quote.SlippageBps
	}
	return m.config.DefaultSlippageBps
}

// persist writes the order through to the store. Storage failures degrade
// gracefully: they are logged and the in-memory transition stands.
func (m *Manager) persist(ctx context.Context, o *entity.Order) {
	if err := m.repo.Upsert(ctx, o); err != nil {
		m.log.Warn("order persistence failed",
			zap.String("order_id", o.ID), zap.Error(err))
	}
}

func sortNewestFirst(orders []*entity.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Timestamp.After(orders[j].Timestamp)
	})
}
