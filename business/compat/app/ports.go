package app

import (
	"context"

	"github.com/Masterminds/semver/v3"
)

// SelfVersionSource reports the version of the locally running daemon.
type SelfVersionSource interface {
	// DaemonVersion fetches the daemon's self-reported version.
	DaemonVersion(ctx context.Context) (*semver.Version, error)
}

// ReleaseSource reports the latest published release of the daemon.
type ReleaseSource interface {
	// LatestRelease fetches the most recent published version.
	LatestRelease(ctx context.Context) (*semver.Version, error)
}
