// Package bitmex implements the mark price stream against the BitMEX
// realtime WebSocket API.
package bitmex

import (
	"time"

	"github.com/shopspring/decimal"
)

// wsCommand is a client-to-server command frame.
type wsCommand struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

// streamMessage is a server-to-client frame. Table frames carry rows;
// welcome banners and subscription acks carry the other fields instead.
type streamMessage struct {
	Table     string           `json:"table"`
	Action    string           `json:"action"`
	Data      []instrumentData `json:"data"`
	Success   *bool            `json:"success"`
	Subscribe string           `json:"subscribe"`
	Info      string           `json:"info"`
	Error     string           `json:"error"`
}

// instrumentData is one row of the instrument table. Update rows omit
// markPrice when the change touched other fields.
type instrumentData struct {
	Symbol    string           `json:"symbol"`
	MarkPrice *decimal.Decimal `json:"markPrice"`
	Timestamp time.Time        `json:"timestamp"`
}

// instrumentTopic builds the subscription argument for a symbol.
func instrumentTopic(symbol string) string {
	return "instrument:" + symbol
}
