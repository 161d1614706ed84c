// Package app contains the application services of the price feed context.
package app

import "github.com/comit-network/hermes/business/pricefeed/domain"

// PriceSource is a stream of mark price observations. Implementations
// keep themselves connected and simply stop delivering while the
// connection is down.
type PriceSource interface {
	// OnMarkPrice registers the handler for every observation.
	OnMarkPrice(handler func(domain.MarkPrice))

	// Connected reports whether the stream currently has a live
	// connection.
	Connected() bool

	// Close tears down the stream and stops reconnection.
	Close() error
}
