// Package app contains the application services of the feed context.
package app

import (
	"context"

	"github.com/comit-network/hermes/business/feed/domain"
)

// EventChannel is the transport the stores consume raw events from. One
// connection multiplexes every topic; handlers receive payload bytes
// exactly as the daemon pushed them.
type EventChannel interface {
	// Subscribe registers a handler for one topic. Registration is
	// purely local; the daemon pushes all topics unconditionally.
	Subscribe(topic domain.Topic, handler func(ctx context.Context, payload []byte))

	// Connected reports whether a connection is currently established.
	Connected() bool

	// OnConnectionChange registers an observer for connectivity flips.
	OnConnectionChange(fn func(connected bool))

	// Close tears the connection down and stops reconnection.
	Close() error
}
