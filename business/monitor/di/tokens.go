// Package di contains dependency injection tokens for the monitor context.
package di

import (
	"github.com/comit-network/hermes/business/monitor/app"
	"github.com/comit-network/hermes/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MonitorService = di.NewToken[*app.MonitorService]("monitor.MonitorService")
)

// Private dependency tokens - internal to monitor module
var (
	Notifier = di.NewToken[app.Notifier]("monitor:notifier")
)

// Helper functions for type-safe access
func GetMonitorService(c di.ServiceRegistry) *app.MonitorService {
	return di.GetToken(c, MonitorService)
}

func GetNotifier(c di.ServiceRegistry) app.Notifier {
	return di.GetToken(c, Notifier)
}
