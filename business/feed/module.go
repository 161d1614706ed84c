// Package feed implements the daemon event feed bounded context.
package feed

import (
	"context"
	"time"

	"github.com/comit-network/hermes/business/feed/app"
	feedDI "github.com/comit-network/hermes/business/feed/di"
	"github.com/comit-network/hermes/business/feed/infra/channel"
	"github.com/comit-network/hermes/internal/config"
	"github.com/comit-network/hermes/internal/di"
	"github.com/comit-network/hermes/internal/logger"
	"github.com/comit-network/hermes/internal/monolith"
)

// Module implements the feed bounded context.
type Module struct{}

// RegisterServices registers all feed services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register the event channel - private dependency
	di.RegisterToken(c, feedDI.EventChannel, func(sr di.ServiceRegistry) app.EventChannel {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		client, err := channel.NewClient(channel.DefaultClientConfig(cfg.Daemon.FeedWebSocketURL()), log)
		if err != nil {
			panic("failed to create channel client: " + err.Error())
		}
		return client
	})

	// Register FeedService (public - exposed to other modules)
	di.RegisterToken(c, feedDI.FeedService, func(sr di.ServiceRegistry) *app.FeedService {
		log := sr.Get("logger").(logger.LoggerInterface)
		ch := feedDI.GetEventChannel(sr)
		return app.NewFeedService(ch, log)
	})

	return nil
}

// Startup initializes the feed module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	// Resolve the service first so every store is subscribed before the
	// first event can arrive.
	feedDI.GetFeedService(mono.Services())

	// Connect the event channel (don't fail startup if the daemon is not
	// up yet - the connection is retried until it succeeds)
	ch := feedDI.GetEventChannel(mono.Services())
	if connector, ok := ch.(interface{ Connect(context.Context) error }); ok {
		connectCtx, cancel := context.WithTimeout(ctx, mono.Config().Daemon.ConnectTimeout)
		defer cancel()

		if err := connector.Connect(connectCtx); err != nil {
			log.Warn(ctx, "daemon feed connection failed, will retry in background", "error", err)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-time.After(5 * time.Second):
						if err := connector.Connect(ctx); err != nil {
							log.Warn(ctx, "daemon feed retry failed", "error", err)
						} else {
							log.Info(ctx, "daemon feed connected successfully")
							return
						}
					}
				}
			}()
		}
	}

	log.Info(ctx, "feed module started")
	return nil
}
