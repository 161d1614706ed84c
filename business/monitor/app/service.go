package app

import (
	"context"
	"fmt"
	"sync"

	compatApp "github.com/comit-network/hermes/business/compat/app"
	compatDomain "github.com/comit-network/hermes/business/compat/domain"
	feedApp "github.com/comit-network/hermes/business/feed/app"
	feedDomain "github.com/comit-network/hermes/business/feed/domain"
	"github.com/comit-network/hermes/business/monitor/domain"
	"github.com/comit-network/hermes/internal/logger"
)

// Alert messages shown to the user. peer-offline carries a more
// specific message when the daemon reports why the maker hung up.
const (
	msgLocalConnectionLost  = "Lost connection to the daemon. Reconnecting..."
	msgPeerOffline          = "The maker is offline. New orders are paused until it reconnects."
	msgPeerMakerOutdated    = "The maker is running an outdated version and closed the connection."
	msgPeerSelfOutdated     = "The maker closed the connection because this daemon is outdated. Please upgrade."
	msgProtocolIncompatible = "The maker no longer supports this daemon's protocols. Please upgrade."
)

// MonitorService drives one state machine per alert condition. Every
// input change re-evaluates all predicates against current snapshots;
// the machines guarantee each flip reaches the notifier exactly once.
type MonitorService struct {
	feed     *feedApp.FeedService
	compat   *compatApp.CompatService
	notifier Notifier
	logger   logger.LoggerInterface

	mu     sync.Mutex
	alerts map[domain.AlertID]*domain.Alert
}

// NewMonitorService creates the monitor. Start wires it to its inputs.
func NewMonitorService(feed *feedApp.FeedService, compat *compatApp.CompatService, notifier Notifier, log logger.LoggerInterface) *MonitorService {
	return &MonitorService{
		feed:     feed,
		compat:   compat,
		notifier: notifier,
		logger:   log,
		alerts:   domain.NewAlertSet(),
	}
}

// Start registers the monitor on every input it derives alerts from and
// performs the initial evaluation.
func (m *MonitorService) Start(ctx context.Context) {
	m.feed.OnConnectionChange(func(bool) { m.Evaluate(ctx) })
	m.feed.OnMakerStatus(func(feedDomain.ConnectionStatus) { m.Evaluate(ctx) })
	m.feed.OnMakerCompatibility(func(feedDomain.MakerCompatibility) { m.Evaluate(ctx) })
	m.compat.OnResult(func(compatDomain.VersionPair) { m.Evaluate(ctx) })

	m.Evaluate(ctx)
}

// pendingAction is a transition to deliver once the lock is released.
type pendingAction struct {
	transition   domain.Transition
	notification domain.Notification
}

// Evaluate recomputes every predicate and applies the resulting
// transitions. Transitions are computed under the lock; notifier calls
// happen outside it so a notifier may safely call back into Visible or
// Dismiss.
func (m *MonitorService) Evaluate(ctx context.Context) {
	m.mu.Lock()

	var actions []pendingAction

	step := func(id domain.AlertID, active bool, message string) {
		alert := m.alerts[id]
		transition := alert.Evaluate(active)
		if transition == domain.TransitionNone {
			return
		}
		actions = append(actions, pendingAction{
			transition: transition,
			notification: domain.Notification{
				ID:      id,
				Message: message,
				Sticky:  alert.Kind() == domain.KindSticky,
			},
		})
	}

	step(domain.AlertLocalConnectionLost, !m.feed.Connected(), msgLocalConnectionLost)

	status, haveStatus := m.feed.MakerStatus()
	step(domain.AlertPeerOffline, haveStatus && !status.Online, peerOfflineMessage(status))

	compatibility, haveCompat := m.feed.MakerCompatibility()
	step(domain.AlertProtocolIncompatible, haveCompat && compatibility.Incompatible(), msgProtocolIncompatible)

	step(domain.AlertVersionOutdated, m.compat.Outdated(), m.versionOutdatedMessage())

	m.mu.Unlock()

	for _, action := range actions {
		switch action.transition {
		case domain.TransitionShow:
			m.notifier.Show(ctx, action.notification)
			m.logger.Info(ctx, "alert shown", "alert", string(action.notification.ID))
		case domain.TransitionHide:
			m.notifier.Hide(ctx, action.notification.ID)
			m.logger.Info(ctx, "alert hidden", "alert", string(action.notification.ID))
		}
	}
}

// Visible reports whether the alert with the given id is shown.
func (m *MonitorService) Visible(id domain.AlertID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	alert, ok := m.alerts[id]
	return ok && alert.Visible()
}

// Dismiss hides a sticky alert on the user's behalf. It stays hidden
// while its condition holds and rearms once the condition resolves.
func (m *MonitorService) Dismiss(ctx context.Context, id domain.AlertID) {
	m.mu.Lock()
	alert, ok := m.alerts[id]
	if !ok {
		m.mu.Unlock()
		m.logger.Warn(ctx, "dismiss for unknown alert", "alert", string(id))
		return
	}
	transition := alert.Dismiss()
	m.mu.Unlock()

	if transition == domain.TransitionHide {
		m.notifier.Hide(ctx, id)
		m.logger.Info(ctx, "alert dismissed", "alert", string(id))
	}
}

// peerOfflineMessage picks the peer-offline wording from the reported
// close reason.
func peerOfflineMessage(status feedDomain.ConnectionStatus) string {
	if status.CloseReason == nil {
		return msgPeerOffline
	}
	switch *status.CloseReason {
	case feedDomain.CloseReasonMakerVersionOutdated:
		return msgPeerMakerOutdated
	case feedDomain.CloseReasonTakerVersionOutdated:
		return msgPeerSelfOutdated
	default:
		return msgPeerOffline
	}
}

// versionOutdatedMessage names both versions when they are known.
func (m *MonitorService) versionOutdatedMessage() string {
	result, done := m.compat.Result()
	if !done || !result.Known() {
		return "A newer daemon version is available. Please update."
	}
	return fmt.Sprintf("Version %s is available; you are running %s. Please update.", result.Latest, result.Self)
}
