package app

import (
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comit-network/hermes/business/pricefeed/domain"
)

// PriceService caches the newest mark price. There is no history: each
// observation replaces the previous one, and a malformed or missing feed
// simply leaves the last good value in place.
type PriceService struct {
	source       PriceSource
	staleTimeout time.Duration

	mu        sync.RWMutex
	latest    domain.MarkPrice
	hasLatest bool
	observers []func(domain.MarkPrice)
}

// NewPriceService subscribes to source and starts caching.
func NewPriceService(source PriceSource, staleTimeout time.Duration) *PriceService {
	s := &PriceService{
		source:       source,
		staleTimeout: staleTimeout,
	}
	source.OnMarkPrice(s.apply)
	return s
}

func (s *PriceService) apply(price domain.MarkPrice) {
	s.mu.Lock()
	s.latest = price
	s.hasLatest = true
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(price)
	}
}

// LatestPrice returns the newest mark price value. The second return is
// false until the first observation arrives.
func (s *PriceService) LatestPrice() (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasLatest {
		return decimal.Decimal{}, false
	}
	return s.latest.Value, true
}

// LatestMarkPrice returns the newest full observation.
func (s *PriceService) LatestMarkPrice() (domain.MarkPrice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.hasLatest
}

// Stale reports whether the cached observation is older than the
// configured staleness window. It is false while no observation exists;
// absence and staleness are separate signals.
func (s *PriceService) Stale(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasLatest {
		return false
	}
	return s.latest.StaleAfter(now, s.staleTimeout)
}

// Connected reports whether the underlying stream is connected.
func (s *PriceService) Connected() bool {
	return s.source.Connected()
}

// OnPrice registers an observer invoked for every observation, on the
// delivering goroutine, in registration order.
func (s *PriceService) OnPrice(fn func(domain.MarkPrice)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Close tears down the underlying stream.
func (s *PriceService) Close() error {
	return s.source.Close()
}
