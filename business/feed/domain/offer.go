package domain

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// defaultLotSize is the contract lot size shown when the maker has no
// offer up.
var defaultLotSize = decimal.NewFromInt(100)

// LeverageDetail carries the per-leverage numbers for one offer.
type LeverageDetail struct {
	Leverage                int             `json:"leverage"`
	MarginPerLot            decimal.Decimal `json:"margin_per_lot"`
	InitialFundingFeePerLot decimal.Decimal `json:"initial_funding_fee_per_lot"`
	LiquidationPrice        decimal.Decimal `json:"liquidation_price"`
}

// RawOffer is a maker offer exactly as the daemon pushes it. The offer
// topics carry either an offer or JSON null when the maker pulled it.
type RawOffer struct {
	ID                           string           `json:"id"`
	Position                     Position         `json:"position"`
	Price                        decimal.Decimal  `json:"price"`
	MinQuantity                  decimal.Decimal  `json:"min_quantity"`
	MaxQuantity                  decimal.Decimal  `json:"max_quantity"`
	LotSize                      decimal.Decimal  `json:"lot_size"`
	FundingRateAnnualizedPercent decimal.Decimal  `json:"funding_rate_annualized_percent"`
	FundingRateHourlyPercent     decimal.Decimal  `json:"funding_rate_hourly_percent"`
	LeverageDetails              []LeverageDetail `json:"leverage_details"`
	CreationTimestamp            UnixTime         `json:"creation_timestamp"`
	SettlementTimeIntervalSecs   int64            `json:"settlement_time_interval_in_secs"`
}

// DecodeOffer decodes a long_offer or short_offer topic payload. A JSON
// null payload decodes to nil: the maker currently has no offer up.
func DecodeOffer(data []byte) (*RawOffer, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}

	var offer RawOffer
	if err := json.Unmarshal(data, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

// DisplayOffer is the form an offer takes on screen. Pointer fields are
// nil when the maker has no offer up.
type DisplayOffer struct {
	ID                    string
	Position              Position
	Price                 *decimal.Decimal
	FundingRateAnnualized *decimal.Decimal
	FundingRateHourly     *decimal.Decimal
	MinQuantity           decimal.Decimal
	MaxQuantity           decimal.Decimal
	LotSize               decimal.Decimal
	LeverageDetails       []LeverageDetail
}

// Missing reports whether this is the placeholder for an absent offer.
func (o DisplayOffer) Missing() bool {
	return o.Price == nil
}

// ProjectOffer converts a raw maker offer into its display form. It is
// total: a nil offer projects to the placeholder with zero quantities,
// the standard 100-contract lot size, no leverage details and no price
// or funding fields.
//
// The hourly funding rate is rounded to exactly five fractional digits,
// halves away from zero, and stays a number.
func ProjectOffer(offer *RawOffer) DisplayOffer {
	if offer == nil {
		return DisplayOffer{
			MinQuantity:     decimal.Zero,
			MaxQuantity:     decimal.Zero,
			LotSize:         defaultLotSize,
			LeverageDetails: []LeverageDetail{},
		}
	}

	price := offer.Price
	annualized := offer.FundingRateAnnualizedPercent
	hourly := offer.FundingRateHourlyPercent.Round(5)

	details := offer.LeverageDetails
	if details == nil {
		details = []LeverageDetail{}
	}

	return DisplayOffer{
		ID:                    offer.ID,
		Position:              offer.Position,
		Price:                 &price,
		FundingRateAnnualized: &annualized,
		FundingRateHourly:     &hourly,
		MinQuantity:           offer.MinQuantity,
		MaxQuantity:           offer.MaxQuantity,
		LotSize:               offer.LotSize,
		LeverageDetails:       details,
	}
}
