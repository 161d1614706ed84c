// Package infra contains notifier adapters for the monitor context.
package infra

import (
	"context"

	"github.com/comit-network/hermes/business/monitor/app"
	"github.com/comit-network/hermes/business/monitor/domain"
	"github.com/comit-network/hermes/internal/logger"
)

// Ensure interface compliance
var _ app.Notifier = (*LogNotifier)(nil)

// LogNotifier renders alerts as log lines. Used in CLI mode.
type LogNotifier struct {
	logger logger.LoggerInterface
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(log logger.LoggerInterface) *LogNotifier {
	return &LogNotifier{logger: log}
}

// Show logs the raised alert.
func (n *LogNotifier) Show(ctx context.Context, alert domain.Notification) {
	n.logger.Warn(ctx, "ALERT: "+alert.Message,
		"alert", string(alert.ID),
		"sticky", alert.Sticky)
}

// Hide logs the resolved alert.
func (n *LogNotifier) Hide(ctx context.Context, id domain.AlertID) {
	n.logger.Info(ctx, "alert resolved", "alert", string(id))
}
