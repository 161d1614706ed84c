// Package ui provides the Bubble Tea TUI for the trading client.
package ui

import (
	"github.com/comit-network/hermes/business/feed/domain"
	pricefeedDomain "github.com/comit-network/hermes/business/pricefeed/domain"
)

// Message types for TUI updates

// ChannelStatusMsg is sent when the daemon event channel connects or drops.
type ChannelStatusMsg struct {
	Connected bool
}

// PriceFeedStatusMsg is sent when the exchange price stream connects or drops.
type PriceFeedStatusMsg struct {
	Connected bool
}

// WalletMsg is sent when the daemon pushes a wallet snapshot.
type WalletMsg struct {
	Wallet domain.WalletInfo
}

// QuoteMsg is sent when the maker's bid/ask changes.
type QuoteMsg struct {
	Quote domain.Quote
}

// OfferMsg is sent when a maker offer changes. Position says which side
// the update belongs to because the placeholder offer carries none.
type OfferMsg struct {
	Position domain.Position
	Offer    domain.DisplayOffer
}

// CfdsMsg is sent with the full contract list on every change.
type CfdsMsg struct {
	Cfds []domain.Cfd
}

// IdentityMsg is sent once the daemon reports its identifiers.
type IdentityMsg struct {
	Identity domain.IdentityInfo
}

// MarkPriceMsg is sent on every mark price tick from the exchange.
type MarkPriceMsg struct {
	Price pricefeedDomain.MarkPrice
}

// AlertMsg shows or hides a connectivity alert. Sticky alerts can be
// dismissed with the d key; the rest clear themselves on resolution.
type AlertMsg struct {
	ID      string
	Message string
	Sticky  bool
	Visible bool
}

// VersionMsg is sent when the version check completes with both sides known.
type VersionMsg struct {
	Daemon string
	Latest string
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}

// WelcomeCompleteMsg signals the welcome screen is done (timeout or keypress).
type WelcomeCompleteMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // Current step name
	Status  string // "connecting", "connected", "failed"
	Message string // Optional message
}
