// Package components provides reusable TUI components.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// AlertEntry is one visible connectivity alert.
type AlertEntry struct {
	ID      string
	Message string
	Sticky  bool
	ShownAt time.Time
}

// AlertsComponent renders the alert overlay. Entries keep the order they
// first appeared in; re-showing an alert updates it in place.
type AlertsComponent struct {
	entries []AlertEntry
}

// NewAlertsComponent creates a new alerts component.
func NewAlertsComponent() *AlertsComponent {
	return &AlertsComponent{
		entries: make([]AlertEntry, 0, 4),
	}
}

// Upsert adds an alert or replaces the one with the same id.
func (a *AlertsComponent) Upsert(entry AlertEntry) {
	for i, e := range a.entries {
		if e.ID == entry.ID {
			a.entries[i] = entry
			return
		}
	}
	a.entries = append(a.entries, entry)
}

// Remove drops the alert with the given id. Unknown ids are a no-op.
func (a *AlertsComponent) Remove(id string) {
	for i, e := range a.entries {
		if e.ID == id {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			return
		}
	}
}

// Empty reports whether any alert is visible.
func (a *AlertsComponent) Empty() bool {
	return len(a.entries) == 0
}

// FirstSticky returns the id of the first dismissable alert, if any.
func (a *AlertsComponent) FirstSticky() (string, bool) {
	for _, e := range a.entries {
		if e.Sticky {
			return e.ID, true
		}
	}
	return "", false
}

// View renders the alerts component.
func (a *AlertsComponent) View() string {
	if len(a.entries) == 0 {
		return ""
	}

	warnStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	for i, e := range a.entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(warnStyle.Render("⚠ " + e.Message))
		if e.Sticky {
			sb.WriteString(dimStyle.Render("  (d: dismiss)"))
		}
	}

	return sb.String()
}
