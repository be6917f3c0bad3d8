package entity

import (
	"time"
)

// OrderStatus represents the lifecycle state of a swap order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Terminal returns true if no transition may leave this status
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusFulfilled, OrderStatusFailed, OrderStatusCancelled:
		return true
	}
	return false
}

// Valid returns true for a known status value
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusFulfilled, OrderStatusFailed, OrderStatusCancelled:
		return true
	}
	return false
}

// Order represents a token-for-token swap request tracked through its
// lifecycle. Amounts are integers in the smallest unit of their token.
type Order struct {
	ID                   string      `json:"id"`
	InputToken           string      `json:"inputToken"`
	OutputToken          string      `json:"outputToken"`
	InputAmount          uint64      `json:"inputAmount"`
	ExpectedOutputAmount uint64      `json:"expectedOutputAmount"`
	ActualOutputAmount   uint64      `json:"actualOutputAmount,omitempty"`
	Rate                 string      `json:"rate"`
	Creator              string      `json:"creator"`
	RefundAddress        string      `json:"refundAddress"`
	LiquidityProvider    string      `json:"liquidityProvider"`
	Status               OrderStatus `json:"status"`
	Timestamp            time.Time   `json:"timestamp"`
	Quote                *Quote      `json:"quote,omitempty"`
	TransactionSignature string      `json:"transactionSignature,omitempty"`
	ErrorMessage         string      `json:"errorMessage,omitempty"`
	ProtocolFee          uint64      `json:"protocolFee"`
	PriceImpact          string      `json:"priceImpact,omitempty"`
}

// IsPending returns true if the order can still be executed or cancelled
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// Age returns how long ago the order was created
func (o *Order) Age(now time.Time) time.Duration {
	return now.Sub(o.Timestamp)
}

// Clone returns a deep copy so callers never hold a handle into stored state
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Quote = o.Quote.Clone()
	return &c
}
