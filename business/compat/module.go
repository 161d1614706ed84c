// Package compat implements the version compatibility bounded context.
package compat

import (
	"context"

	"github.com/comit-network/hermes/business/compat/app"
	compatDI "github.com/comit-network/hermes/business/compat/di"
	"github.com/comit-network/hermes/business/compat/infra/daemon"
	"github.com/comit-network/hermes/business/compat/infra/github"
	"github.com/comit-network/hermes/internal/config"
	"github.com/comit-network/hermes/internal/di"
	"github.com/comit-network/hermes/internal/logger"
	"github.com/comit-network/hermes/internal/monolith"
)

// Module implements the compat bounded context.
type Module struct{}

// RegisterServices registers all compat services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register the daemon version source - private dependency
	di.RegisterToken(c, compatDI.SelfVersionSource, func(sr di.ServiceRegistry) app.SelfVersionSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		clientCfg := daemon.DefaultClientConfig(cfg.Daemon.BaseURL)
		clientCfg.VersionPath = cfg.Daemon.VersionPath
		clientCfg.Timeout = cfg.Daemon.RequestTimeout

		client, err := daemon.NewClient(clientCfg, log)
		if err != nil {
			panic("failed to create daemon client: " + err.Error())
		}
		return client
	})

	// Register the GitHub release source - private dependency
	di.RegisterToken(c, compatDI.ReleaseSource, func(sr di.ServiceRegistry) app.ReleaseSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		clientCfg := github.DefaultClientConfig(cfg.Releases.APIURL)
		clientCfg.Timeout = cfg.Releases.RequestTimeout
		clientCfg.CacheTTL = cfg.Releases.CacheTTL
		clientCfg.RequestsPerMinute = cfg.Releases.RequestsPerMinute

		client, err := github.NewClient(clientCfg, log)
		if err != nil {
			panic("failed to create github client: " + err.Error())
		}
		return client
	})

	// Register CompatService (public - exposed to other modules)
	di.RegisterToken(c, compatDI.CompatService, func(sr di.ServiceRegistry) *app.CompatService {
		log := sr.Get("logger").(logger.LoggerInterface)
		self := compatDI.GetSelfVersionSource(sr)
		release := compatDI.GetReleaseSource(sr)
		return app.NewCompatService(self, release, log)
	})

	return nil
}

// Startup kicks off the one-shot version checks. They run in the
// background so a slow or missing daemon does not hold up the UI; a
// failed lookup leaves that version unknown for the session.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()

	svc := compatDI.GetCompatService(mono.Services())
	go svc.RunChecks(ctx)

	log.Info(ctx, "compat module started")
	return nil
}
