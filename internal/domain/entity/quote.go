package entity

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Quote is an immutable snapshot returned by the swap-routing service.
// Amount fields are decimal strings to avoid precision loss on the wire.
type Quote struct {
	InputMint            string      `json:"inputMint"`
	OutputMint           string      `json:"outputMint"`
	InAmount             string      `json:"inAmount"`
	OutAmount            string      `json:"outAmount"`
	OtherAmountThreshold string      `json:"otherAmountThreshold,omitempty"`
	SwapMode             string      `json:"swapMode,omitempty"`
	SlippageBps          int         `json:"slippageBps"`
	PriceImpactPct       string      `json:"priceImpactPct"`
	RoutePlan            []RouteStep `json:"routePlan"`
	ContextSlot          uint64      `json:"contextSlot,omitempty"`
	TimeTaken            float64     `json:"timeTaken,omitempty"`
}

// RouteStep is one hop of the route plan, with the share of volume routed
// through it.
type RouteStep struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  int      `json:"percent"`
}

// SwapInfo describes the AMM a route step executes against
type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label,omitempty"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	FeeAmount  string `json:"feeAmount,omitempty"`
	FeeMint    string `json:"feeMint,omitempty"`
}

// OutAmountUint parses the quoted output amount into a smallest-unit integer
func (q *Quote) OutAmountUint() (uint64, error) {
	return strconv.ParseUint(q.OutAmount, 10, 64)
}

// PriceImpact parses the reported price impact percentage. A missing or
// malformed value reads as zero; the figure is informational only.
func (q *Quote) PriceImpact() decimal.Decimal {
	d, err := decimal.NewFromString(q.PriceImpactPct)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Clone returns a deep copy of the quote
func (q *Quote) Clone() *Quote {
	if q == nil {
		return nil
	}
	c := *q
	if q.RoutePlan != nil {
		c.RoutePlan = make([]RouteStep, len(q.RoutePlan))
		copy(c.RoutePlan, q.RoutePlan)
	}
	return &c
}
