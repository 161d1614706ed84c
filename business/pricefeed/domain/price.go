// Package domain contains the price feed context's types.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarkPrice is one mark price observation from the exchange.
type MarkPrice struct {
	Symbol     string
	Value      decimal.Decimal
	Timestamp  time.Time // exchange-side timestamp
	ReceivedAt time.Time // local receive time
}

// StaleAfter reports whether the observation is older than maxAge at
// the given instant, judged by local receive time.
func (p MarkPrice) StaleAfter(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(p.ReceivedAt) > maxAge
}
