// Package monitor implements the connectivity alerting bounded context.
package monitor

import (
	"context"

	compatDI "github.com/comit-network/hermes/business/compat/di"
	feedDI "github.com/comit-network/hermes/business/feed/di"
	"github.com/comit-network/hermes/business/monitor/app"
	monitorDI "github.com/comit-network/hermes/business/monitor/di"
	"github.com/comit-network/hermes/business/monitor/infra"
	"github.com/comit-network/hermes/internal/config"
	"github.com/comit-network/hermes/internal/di"
	"github.com/comit-network/hermes/internal/logger"
	"github.com/comit-network/hermes/internal/monolith"
)

// Module implements the monitor bounded context.
type Module struct{}

// RegisterServices registers all monitor services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register the notifier - private dependency. The TUI notifier renders
	// alerts as overlay panels; the log notifier is for headless runs.
	di.RegisterToken(c, monitorDI.Notifier, func(sr di.ServiceRegistry) app.Notifier {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.App.TUIMode {
			return infra.NewTUINotifier()
		}
		return infra.NewLogNotifier(log)
	})

	// Register MonitorService (public - exposed to other modules)
	di.RegisterToken(c, monitorDI.MonitorService, func(sr di.ServiceRegistry) *app.MonitorService {
		log := sr.Get("logger").(logger.LoggerInterface)
		feed := feedDI.GetFeedService(sr)
		compat := compatDI.GetCompatService(sr)
		notifier := monitorDI.GetNotifier(sr)
		return app.NewMonitorService(feed, compat, notifier, log)
	})

	return nil
}

// Startup initializes the monitor module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	monitor := monitorDI.GetMonitorService(mono.Services())
	monitor.Start(ctx)

	log.Info(ctx, "monitor module started")
	return nil
}
