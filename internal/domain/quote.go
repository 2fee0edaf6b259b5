package domain

import (
	"math"
	"time"
)

// Quote is an upstream market observation the publisher turns into a registry write.
type Quote struct {
	Symbol    string
	PriceUSD  float64
	Source    string
	Liquidity float64
	Volume24h float64
	FetchedAt time.Time
}

// FixedPoint scales the price to an integer with the given number of decimals.
// It returns false when the price is not finite, not positive, or overflows int64.
func (q Quote) FixedPoint(decimals int) (int64, bool) {
	if math.IsNaN(q.PriceUSD) || math.IsInf(q.PriceUSD, 0) || q.PriceUSD <= 0 {
		return 0, false
	}
	v := math.Round(q.PriceUSD * math.Pow10(decimals))
	if v >= math.MaxInt64 {
		return 0, false
	}
	return int64(v), true
}
