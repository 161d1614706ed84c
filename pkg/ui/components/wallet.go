// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// WalletComponent renders the wallet balance and the maker's quote.
type WalletComponent struct {
	balance   decimal.Decimal
	address   string
	walletAt  time.Time
	haveWallet bool

	bid       decimal.Decimal
	ask       decimal.Decimal
	quoteAt   time.Time
	haveQuote bool
}

// NewWalletComponent creates a new wallet component.
func NewWalletComponent() *WalletComponent {
	return &WalletComponent{}
}

// SetWallet stores the latest wallet snapshot.
func (w *WalletComponent) SetWallet(balance decimal.Decimal, address string, updatedAt time.Time) {
	w.balance = balance
	w.address = address
	w.walletAt = updatedAt
	w.haveWallet = true
}

// SetQuote stores the latest maker quote.
func (w *WalletComponent) SetQuote(bid, ask decimal.Decimal, updatedAt time.Time) {
	w.bid = bid
	w.ask = ask
	w.quoteAt = updatedAt
	w.haveQuote = true
}

// View renders the wallet component.
func (w *WalletComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	bidStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	askStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("WALLET"))
	sb.WriteString("\n\n")

	if !w.haveWallet {
		sb.WriteString(dimStyle.Render("  Waiting for daemon..."))
	} else {
		sb.WriteString("  Balance: ")
		sb.WriteString(valueStyle.Render(w.balance.StringFixed(8) + " BTC"))
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("  " + shortAddress(w.address)))
		if !w.walletAt.IsZero() {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("  (updated %s ago)", ago(w.walletAt))))
		}
	}

	sb.WriteString("\n\n")
	sb.WriteString(headerStyle.Render("MAKER QUOTE"))
	sb.WriteString("\n\n")

	if !w.haveQuote {
		sb.WriteString(dimStyle.Render("  No quote yet"))
	} else {
		sb.WriteString("  ")
		sb.WriteString(bidStyle.Render("bid $" + w.bid.StringFixed(2)))
		sb.WriteString(dimStyle.Render("  /  "))
		sb.WriteString(askStyle.Render("ask $" + w.ask.StringFixed(2)))
		if !w.quoteAt.IsZero() {
			sb.WriteString(dimStyle.Render(fmt.Sprintf("  (%s ago)", ago(w.quoteAt))))
		}
	}

	return sb.String()
}

// shortAddress truncates a bitcoin address to its ends.
func shortAddress(addr string) string {
	if len(addr) <= 16 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-6:]
}

func ago(t time.Time) string {
	d := time.Since(t).Round(time.Second)
	if d < 0 {
		d = 0
	}
	return d.String()
}
