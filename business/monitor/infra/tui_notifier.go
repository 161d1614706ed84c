// Package infra contains notifier adapters for the monitor context.
package infra

import (
	"context"

	"github.com/comit-network/hermes/business/monitor/app"
	"github.com/comit-network/hermes/business/monitor/domain"
	"github.com/comit-network/hermes/pkg/ui"
)

// Ensure interface compliance
var _ app.Notifier = (*TUINotifier)(nil)

// TUINotifier forwards alert changes to the Bubble Tea program as
// messages. The UI owns rendering and ordering.
type TUINotifier struct{}

// NewTUINotifier creates a new TUINotifier.
func NewTUINotifier() *TUINotifier {
	return &TUINotifier{}
}

// Show sends the raised alert to the TUI.
func (n *TUINotifier) Show(ctx context.Context, alert domain.Notification) {
	ui.Send(ui.AlertMsg{
		ID:      string(alert.ID),
		Message: alert.Message,
		Sticky:  alert.Sticky,
		Visible: true,
	})
}

// Hide removes the alert from the TUI.
func (n *TUINotifier) Hide(ctx context.Context, id domain.AlertID) {
	ui.Send(ui.AlertMsg{
		ID:      string(id),
		Visible: false,
	})
}
