// Package ui provides the Bubble Tea TUI for the trading client.
package ui

import "time"

// Phase represents the current UI phase.
type Phase string

const (
	PhaseWelcome   Phase = "welcome"   // Initial welcome screen
	PhaseStartup   Phase = "startup"   // Loading/connecting
	PhaseDashboard Phase = "dashboard" // Main dashboard
)

// WelcomeDuration is how long the welcome screen shows before auto-advancing.
const WelcomeDuration = 2 * time.Second

// StartupGrace is how long the startup screen waits for the first daemon
// snapshot before showing the dashboard anyway. A daemon that is down is
// reported through the alert panel, not by blocking on this screen.
const StartupGrace = 15 * time.Second

// ConnectionInfo holds connection state for one upstream.
type ConnectionInfo struct {
	Connected bool
	LastSeen  time.Time
}

// StartupStep represents a step in the startup process.
type StartupStep struct {
	Name   string
	Status string // "pending", "connecting", "connected", "failed"
}

// ErrorEntry represents an error with timestamp.
type ErrorEntry struct {
	Message   string
	Timestamp time.Time
}
