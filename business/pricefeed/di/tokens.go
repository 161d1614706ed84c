// Package di contains dependency injection tokens for the price feed context.
package di

import (
	"github.com/comit-network/hermes/business/pricefeed/app"
	"github.com/comit-network/hermes/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PriceService = di.NewToken[*app.PriceService]("pricefeed.PriceService")
)

// Private dependency tokens - internal to pricefeed module
var (
	PriceSource = di.NewToken[app.PriceSource]("pricefeed:priceSource")
)

// Helper functions for type-safe access
func GetPriceService(c di.ServiceRegistry) *app.PriceService {
	return di.GetToken(c, PriceService)
}

func GetPriceSource(c di.ServiceRegistry) app.PriceSource {
	return di.GetToken(c, PriceSource)
}
