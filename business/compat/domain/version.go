// Package domain contains the version compatibility types.
package domain

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// VersionPair holds the two sides of the outdated-version comparison.
// Either side is nil while its lookup has not succeeded.
type VersionPair struct {
	Self   *semver.Version // version reported by the local daemon
	Latest *semver.Version // latest published release
}

// Known reports whether both sides of the comparison were resolved.
func (p VersionPair) Known() bool {
	return p.Self != nil && p.Latest != nil
}

// Outdated reports whether a newer release than the running daemon is
// known to exist. Both versions must be known and the latest must
// strictly exceed self under semantic version precedence. An unknown
// side never counts as outdated.
func (p VersionPair) Outdated() bool {
	if !p.Known() {
		return false
	}
	return p.Latest.GreaterThan(p.Self)
}

// ParseVersion parses a semantic version string, tolerating the
// leading "v" used in release tags and surrounding whitespace.
func ParseVersion(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", s, err)
	}
	return v, nil
}
