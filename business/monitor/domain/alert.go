// Package domain contains the alert state machines.
package domain

// AlertID names one alert condition.
type AlertID string

const (
	AlertLocalConnectionLost  AlertID = "local-connection-lost"
	AlertPeerOffline          AlertID = "peer-offline"
	AlertVersionOutdated      AlertID = "version-outdated"
	AlertProtocolIncompatible AlertID = "protocol-incompatible"
)

// Kind distinguishes short-lived notifications from persistent banners.
type Kind int

const (
	// KindTransient alerts track their condition exactly: they hide when
	// it resolves and reappear on every re-trigger.
	KindTransient Kind = iota
	// KindSticky alerts stay up until the user dismisses them. A
	// dismissal holds for as long as the condition stays true; once it
	// resolves, a later re-trigger shows the alert again.
	KindSticky
)

// Transition is the outcome of feeding a predicate value to an Alert.
type Transition int

const (
	TransitionNone Transition = iota
	TransitionShow
	TransitionHide
)

// Notification is the value handed to a notifier when an alert is shown.
type Notification struct {
	ID      AlertID
	Message string
	Sticky  bool
}

// Alert is a two-state machine (hidden/shown) for one alert condition.
// Transitions are idempotent: evaluating an unchanged predicate value
// never produces a second Show or Hide.
type Alert struct {
	id        AlertID
	kind      Kind
	visible   bool
	dismissed bool
}

// NewAlert creates a hidden alert.
func NewAlert(id AlertID, kind Kind) *Alert {
	return &Alert{id: id, kind: kind}
}

// ID returns the alert's condition id.
func (a *Alert) ID() AlertID {
	return a.id
}

// Kind returns whether the alert is transient or sticky.
func (a *Alert) Kind() Kind {
	return a.kind
}

// Visible reports whether the alert is currently shown.
func (a *Alert) Visible() bool {
	return a.visible
}

// Evaluate feeds the predicate's current value through the state
// machine and returns the resulting transition, if any.
func (a *Alert) Evaluate(active bool) Transition {
	if active {
		if a.visible || a.dismissed {
			return TransitionNone
		}
		a.visible = true
		return TransitionShow
	}

	// Condition resolved: a sticky dismissal is spent, so the next
	// re-trigger shows again.
	a.dismissed = false
	if !a.visible {
		return TransitionNone
	}
	a.visible = false
	return TransitionHide
}

// Dismiss hides a sticky alert on the user's request and suppresses it
// while its condition stays true. Transient alerts cannot be dismissed;
// they clear themselves when the condition resolves.
func (a *Alert) Dismiss() Transition {
	if a.kind != KindSticky || !a.visible {
		return TransitionNone
	}
	a.visible = false
	a.dismissed = true
	return TransitionHide
}

// NewAlertSet creates the fixed set of alert machines, all hidden.
func NewAlertSet() map[AlertID]*Alert {
	return map[AlertID]*Alert{
		AlertLocalConnectionLost:  NewAlert(AlertLocalConnectionLost, KindTransient),
		AlertPeerOffline:          NewAlert(AlertPeerOffline, KindTransient),
		AlertVersionOutdated:      NewAlert(AlertVersionOutdated, KindSticky),
		AlertProtocolIncompatible: NewAlert(AlertProtocolIncompatible, KindSticky),
	}
}

// AlertOrder is the stable display order for the alert conditions.
var AlertOrder = []AlertID{
	AlertLocalConnectionLost,
	AlertPeerOffline,
	AlertVersionOutdated,
	AlertProtocolIncompatible,
}
