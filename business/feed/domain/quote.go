package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Quote is the maker's current bid/ask for the traded pair.
type Quote struct {
	Bid           decimal.Decimal `json:"bid"`
	Ask           decimal.Decimal `json:"ask"`
	LastUpdatedAt UnixTime        `json:"last_updated_at"`
}

// DecodeQuote decodes a quote topic payload.
func DecodeQuote(data []byte) (Quote, error) {
	var q Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return Quote{}, err
	}
	return q, nil
}
