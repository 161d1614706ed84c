package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// WalletInfo is the daemon's view of the local wallet.
type WalletInfo struct {
	Balance       decimal.Decimal `json:"balance"`
	Address       string          `json:"address"`
	LastUpdatedAt UnixTime        `json:"last_updated_at"`
}

// DecodeWalletInfo decodes a wallet topic payload.
func DecodeWalletInfo(data []byte) (WalletInfo, error) {
	var w WalletInfo
	if err := json.Unmarshal(data, &w); err != nil {
		return WalletInfo{}, err
	}
	return w, nil
}
