package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestProjectOffer_NoOffer(t *testing.T) {
	got := ProjectOffer(nil)

	if !got.Missing() {
		t.Error("expected placeholder offer to report Missing()")
	}
	if got.Price != nil {
		t.Errorf("expected no price, got %s", got.Price)
	}
	if got.FundingRateAnnualized != nil {
		t.Errorf("expected no annualized funding rate, got %s", got.FundingRateAnnualized)
	}
	if got.FundingRateHourly != nil {
		t.Errorf("expected no hourly funding rate, got %s", got.FundingRateHourly)
	}
	if !got.MinQuantity.IsZero() {
		t.Errorf("expected zero min quantity, got %s", got.MinQuantity)
	}
	if !got.MaxQuantity.IsZero() {
		t.Errorf("expected zero max quantity, got %s", got.MaxQuantity)
	}
	if !got.LotSize.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected lot size 100, got %s", got.LotSize)
	}
	if got.LeverageDetails == nil || len(got.LeverageDetails) != 0 {
		t.Errorf("expected empty leverage details, got %v", got.LeverageDetails)
	}
}

func TestProjectOffer_FundingRateRounding(t *testing.T) {
	tests := []struct {
		name   string
		hourly string
		want   string
	}{
		{name: "truncates to five digits rounding up", hourly: "0.123456789", want: "0.12346"},
		{name: "rounds down below half", hourly: "0.000014", want: "0.00001"},
		{name: "half rounds away from zero", hourly: "0.000015", want: "0.00002"},
		{name: "negative half rounds away from zero", hourly: "-0.000015", want: "-0.00002"},
		{name: "negative rounds toward more negative", hourly: "-0.123456789", want: "-0.12346"},
		{name: "pads short values to five digits", hourly: "0.1", want: "0.10000"},
		{name: "zero keeps five digits", hourly: "0", want: "0.00000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := &RawOffer{
				ID:                       "offer-1",
				Position:                 PositionLong,
				Price:                    decimal.RequireFromString("40123.45"),
				FundingRateHourlyPercent: decimal.RequireFromString(tt.hourly),
			}

			got := ProjectOffer(offer)

			if got.FundingRateHourly == nil {
				t.Fatal("expected hourly funding rate to be present")
			}
			if got.FundingRateHourly.StringFixed(5) != tt.want {
				t.Errorf("hourly funding rate: want %s, got %s", tt.want, got.FundingRateHourly.StringFixed(5))
			}
			if got.FundingRateHourly.Exponent() != -5 {
				t.Errorf("expected exactly five fractional digits, got exponent %d", got.FundingRateHourly.Exponent())
			}
		})
	}
}

func TestProjectOffer_PresentOffer(t *testing.T) {
	offer := &RawOffer{
		ID:                           "8cf1b3a0",
		Position:                     PositionShort,
		Price:                        decimal.RequireFromString("41234.5"),
		MinQuantity:                  decimal.RequireFromString("100"),
		MaxQuantity:                  decimal.RequireFromString("5000"),
		LotSize:                      decimal.RequireFromString("100"),
		FundingRateAnnualizedPercent: decimal.RequireFromString("18.5"),
		FundingRateHourlyPercent:     decimal.RequireFromString("0.00211187"),
		LeverageDetails: []LeverageDetail{
			{
				Leverage:                2,
				MarginPerLot:            decimal.RequireFromString("0.00121"),
				InitialFundingFeePerLot: decimal.RequireFromString("0.0000021"),
				LiquidationPrice:        decimal.RequireFromString("27489.7"),
			},
		},
	}

	got := ProjectOffer(offer)

	if got.Missing() {
		t.Fatal("offer should not project to the placeholder")
	}
	if got.ID != offer.ID {
		t.Errorf("id: want %s, got %s", offer.ID, got.ID)
	}
	if got.Position != PositionShort {
		t.Errorf("position: want %s, got %s", PositionShort, got.Position)
	}
	if !got.Price.Equal(offer.Price) {
		t.Errorf("price: want %s, got %s", offer.Price, got.Price)
	}
	if !got.FundingRateAnnualized.Equal(offer.FundingRateAnnualizedPercent) {
		t.Errorf("annualized rate: want %s, got %s", offer.FundingRateAnnualizedPercent, got.FundingRateAnnualized)
	}
	if got.FundingRateHourly.String() != "0.00211" {
		t.Errorf("hourly rate: want 0.00211, got %s", got.FundingRateHourly.String())
	}
	if !got.MinQuantity.Equal(offer.MinQuantity) || !got.MaxQuantity.Equal(offer.MaxQuantity) {
		t.Errorf("quantities: want %s..%s, got %s..%s",
			offer.MinQuantity, offer.MaxQuantity, got.MinQuantity, got.MaxQuantity)
	}
	if len(got.LeverageDetails) != 1 || got.LeverageDetails[0].Leverage != 2 {
		t.Errorf("leverage details not carried over: %v", got.LeverageDetails)
	}
}

func TestProjectOffer_NilLeverageDetails(t *testing.T) {
	offer := &RawOffer{
		ID:    "offer-2",
		Price: decimal.RequireFromString("40000"),
	}

	got := ProjectOffer(offer)

	if got.LeverageDetails == nil {
		t.Error("expected leverage details to project to an empty slice, not nil")
	}
}

func TestDecodeOffer(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantNil bool
		wantErr bool
	}{
		{name: "null payload means no offer", payload: `null`, wantNil: true},
		{name: "null with whitespace", payload: "  null\n", wantNil: true},
		{name: "valid offer", payload: `{"id":"abc","position":"long","price":"41000.5","min_quantity":"100","max_quantity":"1000","lot_size":"100","funding_rate_annualized_percent":"18.5","funding_rate_hourly_percent":"0.00211187","leverage_details":[],"creation_timestamp":1640000000,"settlement_time_interval_in_secs":86400}`},
		{name: "numeric offer fields", payload: `{"id":"abc","position":"short","price":41000.5,"min_quantity":100,"max_quantity":1000,"lot_size":100,"funding_rate_annualized_percent":18.5,"funding_rate_hourly_percent":0.00211187,"creation_timestamp":1640000000}`},
		{name: "malformed json", payload: `{"id":`, wantErr: true},
		{name: "wrong shape", payload: `[1,2,3]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer, err := DecodeOffer([]byte(tt.payload))

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected decode error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil != (offer == nil) {
				t.Errorf("wantNil=%v but offer=%v", tt.wantNil, offer)
			}
		})
	}
}
