package entity

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtocolFee(t *testing.T) {
	// 1% of 1_000_000
	assert.Equal(t, uint64(10_000), ProtocolFee(1_000_000, 100))

	// floors, never rounds up: 999 * 100 / 10000 = 9.99
	assert.Equal(t, uint64(9), ProtocolFee(999, 100))

	// zero fee rate
	assert.Equal(t, uint64(0), ProtocolFee(1_000_000, 0))

	// amounts below one fee unit
	assert.Equal(t, uint64(0), ProtocolFee(99, 100))

	// no overflow at the uint64 ceiling
	assert.Equal(t, uint64(math.MaxUint64), ProtocolFee(math.MaxUint64, 10_000))
	assert.Equal(t, uint64(math.MaxUint64)/2, ProtocolFee(math.MaxUint64, 5_000))
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.Terminal())
	assert.True(t, OrderStatusFulfilled.Terminal())
	assert.True(t, OrderStatusFailed.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
}

func TestOrderClone_Independent(t *testing.T) {
	o := &Order{
		ID:     "ord-1-1",
		Status: OrderStatusPending,
		Quote: &Quote{
			InputMint: "A",
			RoutePlan: []RouteStep{{Percent: 100}},
		},
	}

	c := o.Clone()
	c.Status = OrderStatusFailed
	c.Quote.InputMint = "B"
	c.Quote.RoutePlan[0].Percent = 50

	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Equal(t, "A", o.Quote.InputMint)
	assert.Equal(t, 100, o.Quote.RoutePlan[0].Percent)
}

func TestQuoteOutAmountUint(t *testing.T) {
	q := &Quote{OutAmount: "123456789"}
	out, err := q.OutAmountUint()
	require.NoError(t, err)
	assert.Equal(t, uint64(123456789), out)

	q = &Quote{OutAmount: "not-a-number"}
	_, err = q.OutAmountUint()
	assert.Error(t, err)
}

func TestQuotePriceImpact(t *testing.T) {
	q := &Quote{PriceImpactPct: "12.5"}
	assert.True(t, q.PriceImpact().Equal(decimal.RequireFromString("12.5")))

	// malformed reads as zero, it is informational only
	q = &Quote{PriceImpactPct: "??"}
	assert.True(t, q.PriceImpact().IsZero())

	q = &Quote{}
	assert.True(t, q.PriceImpact().IsZero())
}

func TestOrderAge(t *testing.T) {
	now := time.Now()
	o := &Order{Timestamp: now.Add(-10 * time.Minute)}
	assert.Equal(t, 10*time.Minute, o.Age(now))
}
