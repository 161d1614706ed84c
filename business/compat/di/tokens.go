// Package di contains dependency injection tokens for the compat context.
package di

import (
	"github.com/comit-network/hermes/business/compat/app"
	"github.com/comit-network/hermes/internal/di"
)

// Public service tokens - exposed to other modules
var (
	CompatService = di.NewToken[*app.CompatService]("compat.CompatService")
)

// Private dependency tokens - internal to compat module
var (
	SelfVersionSource = di.NewToken[app.SelfVersionSource]("compat:selfVersionSource")
	ReleaseSource     = di.NewToken[app.ReleaseSource]("compat:releaseSource")
)

// Helper functions for type-safe access
func GetCompatService(c di.ServiceRegistry) *app.CompatService {
	return di.GetToken(c, CompatService)
}

func GetSelfVersionSource(c di.ServiceRegistry) app.SelfVersionSource {
	return di.GetToken(c, SelfVersionSource)
}

func GetReleaseSource(c di.ServiceRegistry) app.ReleaseSource {
	return di.GetToken(c, ReleaseSource)
}
