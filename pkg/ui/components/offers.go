// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// LeverageRow holds the per-leverage numbers for one offer side.
type LeverageRow struct {
	Leverage         int
	MarginPerLot     decimal.Decimal
	FundingFeePerLot decimal.Decimal
	LiquidationPrice decimal.Decimal
}

// OfferRow holds one side's offer fields formatted for display.
// Missing marks the placeholder shown while the maker has no offer up.
type OfferRow struct {
	Side          string // "LONG" or "SHORT"
	Missing       bool
	Price         decimal.Decimal
	FundingHourly decimal.Decimal // percent per hour
	FundingAnnual decimal.Decimal // percent per year
	MinQuantity   decimal.Decimal
	MaxQuantity   decimal.Decimal
	LotSize       decimal.Decimal
	Leverage      []LeverageRow
}

// OffersComponent renders the maker's long and short offers.
type OffersComponent struct {
	long      OfferRow
	short     OfferRow
	haveLong  bool
	haveShort bool
}

// NewOffersComponent creates a new offers component.
func NewOffersComponent() *OffersComponent {
	return &OffersComponent{}
}

// SetLong stores the latest long offer.
func (o *OffersComponent) SetLong(row OfferRow) {
	o.long = row
	o.haveLong = true
}

// SetShort stores the latest short offer.
func (o *OffersComponent) SetShort(row OfferRow) {
	o.short = row
	o.haveShort = true
}

// View renders the offers component.
func (o *OffersComponent) View() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("MAKER OFFERS"))
	sb.WriteString("\n\n")
	sb.WriteString(renderOfferSide("LONG", o.long, o.haveLong))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("  " + strings.Repeat("─", 44)))
	sb.WriteString("\n")
	sb.WriteString(renderOfferSide("SHORT", o.short, o.haveShort))

	return sb.String()
}

func renderOfferSide(label string, row OfferRow, have bool) string {
	longStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	shortStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))

	sideStyle := longStyle
	if label == "SHORT" {
		sideStyle = shortStyle
	}

	var sb strings.Builder
	sb.WriteString("  ")
	sb.WriteString(sideStyle.Render(fmt.Sprintf("%-6s", label)))

	if !have {
		sb.WriteString(dimStyle.Render("waiting for daemon..."))
		sb.WriteString("\n")
		return sb.String()
	}

	if row.Missing {
		sb.WriteString(dimStyle.Render("no offer available"))
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render(fmt.Sprintf("         lot size %s", row.LotSize.StringFixed(0))))
		sb.WriteString("\n")
		return sb.String()
	}

	sb.WriteString(valueStyle.Render("$" + row.Price.StringFixed(2)))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  funding %s%%/h (%s%%/yr)",
		row.FundingHourly.StringFixed(5), row.FundingAnnual.StringFixed(2))))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("         qty %s-%s, lot size %s",
		row.MinQuantity.StringFixed(0), row.MaxQuantity.StringFixed(0), row.LotSize.StringFixed(0))))
	sb.WriteString("\n")

	for _, lev := range row.Leverage {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("         %dx: margin %s/lot, fee %s/lot, liq $%s",
			lev.Leverage, lev.MarginPerLot.String(), lev.FundingFeePerLot.String(), lev.LiquidationPrice.StringFixed(2))))
		sb.WriteString("\n")
	}

	return sb.String()
}
