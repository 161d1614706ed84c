// Package pricefeed implements the BitMEX mark price bounded context.
package pricefeed

import (
	"context"
	"time"

	"github.com/comit-network/hermes/business/pricefeed/app"
	pricefeedDI "github.com/comit-network/hermes/business/pricefeed/di"
	"github.com/comit-network/hermes/business/pricefeed/infra/bitmex"
	"github.com/comit-network/hermes/internal/config"
	"github.com/comit-network/hermes/internal/di"
	"github.com/comit-network/hermes/internal/logger"
	"github.com/comit-network/hermes/internal/monolith"
)

// Module implements the price feed bounded context.
type Module struct{}

// RegisterServices registers all price feed services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register the BitMEX price source - private dependency
	di.RegisterToken(c, pricefeedDI.PriceSource, func(sr di.ServiceRegistry) app.PriceSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := bitmex.NewClient(bitmex.DefaultClientConfig(cfg.PriceFeed.WebSocketURL, cfg.PriceFeed.Symbol), log)
		if err != nil {
			panic("failed to create bitmex client: " + err.Error())
		}
		return client
	})

	// Register PriceService (public - exposed to other modules)
	di.RegisterToken(c, pricefeedDI.PriceService, func(sr di.ServiceRegistry) *app.PriceService {
		cfg := sr.Get("config").(*config.Config)
		source := pricefeedDI.GetPriceSource(sr)
		return app.NewPriceService(source, cfg.PriceFeed.StaleTimeout)
	})

	return nil
}

// Startup initializes the price feed module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	// Resolve the service first so the price observer is installed before
	// the first tick can arrive.
	pricefeedDI.GetPriceService(mono.Services())

	// Connect to BitMEX (don't fail startup if the exchange is unreachable -
	// the connection is retried until it succeeds)
	source := pricefeedDI.GetPriceSource(mono.Services())
	if connector, ok := source.(interface{ Connect(context.Context) error }); ok {
		connectCtx, cancel := context.WithTimeout(ctx, mono.Config().Daemon.ConnectTimeout)
		defer cancel()

		if err := connector.Connect(connectCtx); err != nil {
			log.Warn(ctx, "bitmex connection failed, will retry in background", "error", err)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-time.After(5 * time.Second):
						if err := connector.Connect(ctx); err != nil {
							log.Warn(ctx, "bitmex retry failed", "error", err)
						} else {
							log.Info(ctx, "bitmex connected successfully")
							return
						}
					}
				}
			}()
		}
	}

	log.Info(ctx, "pricefeed module started")
	return nil
}
