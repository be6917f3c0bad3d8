package entity

import (
	"math/big"
)

// BpsDenominator is the number of basis points in 100%
const BpsDenominator = 10_000

// ProtocolFee returns floor(amount * bps / 10000). The product is taken in
// big.Int so amounts near the uint64 ceiling cannot overflow, and the result
// is exact integer arithmetic with no floating-point drift.
func ProtocolFee(amount uint64, bps uint16) uint64 {
	p := new(big.Int).SetUint64(amount)
	p.Mul(p, big.NewInt(int64(bps)))
	p.Div(p, big.NewInt(BpsDenominator))
	return p.Uint64()
}
