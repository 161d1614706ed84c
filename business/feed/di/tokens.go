// Package di contains dependency injection tokens for the feed context.
package di

import (
	"github.com/comit-network/hermes/business/feed/app"
	"github.com/comit-network/hermes/internal/di"
)

// Public service tokens - exposed to other modules
var (
	FeedService = di.NewToken[*app.FeedService]("feed.FeedService")
)

// Private dependency tokens - internal to feed module
var (
	EventChannel = di.NewToken[app.EventChannel]("feed:eventChannel")
)

// Helper functions for type-safe access
func GetFeedService(c di.ServiceRegistry) *app.FeedService {
	return di.GetToken(c, FeedService)
}

func GetEventChannel(c di.ServiceRegistry) app.EventChannel {
	return di.GetToken(c, EventChannel)
}
