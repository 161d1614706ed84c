// Package app contains the connectivity monitor orchestration.
package app

import (
	"context"

	"github.com/comit-network/hermes/business/monitor/domain"
)

// Notifier renders alert visibility changes. Implementations own all
// presentation; the monitor only decides what is visible. A notifier
// must not block: Show and Hide are called from event callbacks.
type Notifier interface {
	// Show displays the alert.
	Show(ctx context.Context, n domain.Notification)

	// Hide removes the alert with the given id, if displayed.
	Hide(ctx context.Context, id domain.AlertID)
}
