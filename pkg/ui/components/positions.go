// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// PositionRow represents one contract in the positions table.
type PositionRow struct {
	OrderID          string
	Position         string
	Quantity         decimal.Decimal
	EntryPrice       decimal.Decimal
	Leverage         int
	Margin           decimal.Decimal
	LiquidationPrice decimal.Decimal
	ProfitBTC        *decimal.Decimal
	ProfitPercent    *decimal.Decimal
	State            string
}

// PositionsComponent renders the contract list.
type PositionsComponent struct {
	rows    []PositionRow
	offset  int
	maxRows int
}

// NewPositionsComponent creates a new positions component. maxRows caps
// how many rows render at once; scrolling moves the window.
func NewPositionsComponent(maxRows int) *PositionsComponent {
	return &PositionsComponent{
		rows:    make([]PositionRow, 0),
		maxRows: maxRows,
	}
}

// Update replaces the contract list. The daemon always pushes the full
// list, so there is nothing to merge.
func (p *PositionsComponent) Update(rows []PositionRow) {
	p.rows = rows
	if p.offset >= len(rows) {
		p.offset = 0
	}
}

// ScrollUp moves the visible window up one row.
func (p *PositionsComponent) ScrollUp() {
	if p.offset > 0 {
		p.offset--
	}
}

// ScrollDown moves the visible window down one row.
func (p *PositionsComponent) ScrollDown() {
	if p.offset < len(p.rows)-1 {
		p.offset++
	}
}

// View renders the positions component.
func (p *PositionsComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	profitStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	lossStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("POSITIONS (%d)", len(p.rows))))
	sb.WriteString("\n\n")

	if len(p.rows) == 0 {
		sb.WriteString(dimStyle.Render("  No open positions"))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("  %-9s %-6s %9s %11s %4s %12s %11s %10s  %s\n",
		"Order", "Side", "Qty", "Entry", "Lev", "Margin", "Liq", "P&L", "State"))
	sb.WriteString(dimStyle.Render("  " + strings.Repeat("─", 88)))
	sb.WriteString("\n")

	end := p.offset + p.maxRows
	if end > len(p.rows) {
		end = len(p.rows)
	}

	for _, row := range p.rows[p.offset:end] {
		pnl := "-"
		pnlStyle := dimStyle
		if row.ProfitBTC != nil && row.ProfitPercent != nil {
			pnl = fmt.Sprintf("%s (%s%%)", row.ProfitBTC.StringFixed(8), row.ProfitPercent.StringFixed(1))
			if row.ProfitBTC.IsNegative() {
				pnlStyle = lossStyle
			} else {
				pnlStyle = profitStyle
			}
		}

		sb.WriteString(fmt.Sprintf("  %-9s %-6s %9s %11s %3dx %12s %11s %s  %s\n",
			shortID(row.OrderID),
			row.Position,
			row.Quantity.StringFixed(0),
			"$"+row.EntryPrice.StringFixed(2),
			row.Leverage,
			row.Margin.StringFixed(8),
			"$"+row.LiquidationPrice.StringFixed(2),
			pnlStyle.Render(fmt.Sprintf("%10s", pnl)),
			dimStyle.Render(row.State),
		))
	}

	if len(p.rows) > p.maxRows {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  showing %d-%d of %d", p.offset+1, end, len(p.rows))))
		sb.WriteString("\n")
	}

	return sb.String()
}

// shortID truncates an order id for table display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
