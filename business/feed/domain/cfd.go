package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Position is the direction of a CFD or offer.
type Position string

const (
	PositionLong  Position = "long"
	PositionShort Position = "short"
)

// Cfd is one open or historical contract as projected by the daemon.
// Profit fields are nil until the daemon has a price to compute them from.
type Cfd struct {
	OrderID           string           `json:"order_id"`
	Position          Position         `json:"position"`
	Quantity          decimal.Decimal  `json:"quantity_usd"`
	InitialPrice      decimal.Decimal  `json:"initial_price"`
	Leverage          int              `json:"leverage"`
	Margin            decimal.Decimal  `json:"margin"`
	LiquidationPrice  decimal.Decimal  `json:"liquidation_price"`
	ProfitBTC         *decimal.Decimal `json:"profit_btc"`
	ProfitPercent     *decimal.Decimal `json:"profit_percent"`
	State             string           `json:"state"`
	StateTransitionAt UnixTime         `json:"state_transition_timestamp"`
}

// DecodeCfds decodes a cfds topic payload, which is always the full list.
func DecodeCfds(data []byte) ([]Cfd, error) {
	var cfds []Cfd
	if err := json.Unmarshal(data, &cfds); err != nil {
		return nil, err
	}
	return cfds, nil
}
