// Package channel implements the daemon event channel over WebSocket.
package channel

import "encoding/json"

// Envelope is one frame on the daemon event channel: a topic name and
// the topic's payload, passed through undecoded.
type Envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}
