// Package app contains the version compatibility check orchestration.
package app

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Masterminds/semver/v3"

	"github.com/comit-network/hermes/business/compat/domain"
	"github.com/comit-network/hermes/internal/logger"
)

// CompatService runs the version checks exactly once per process. Each
// lookup that fails leaves its side of the pair unknown for the rest of
// the session; nothing re-fetches, and an unknown side simply keeps the
// outdated banner off.
type CompatService struct {
	selfSource    SelfVersionSource
	releaseSource ReleaseSource
	logger        logger.LoggerInterface

	ran atomic.Bool

	mu        sync.RWMutex
	result    domain.VersionPair
	done      bool
	observers []func(domain.VersionPair)
}

// NewCompatService creates the service. RunChecks must be called once
// at startup to populate the result.
func NewCompatService(selfSource SelfVersionSource, releaseSource ReleaseSource, log logger.LoggerInterface) *CompatService {
	return &CompatService{
		selfSource:    selfSource,
		releaseSource: releaseSource,
		logger:        log,
	}
}

// RunChecks issues the two version lookups concurrently and records
// whatever they return. It runs at most once; later calls are no-ops.
// Lookup failures are logged and leave the corresponding version
// unknown - they are never retried.
func (s *CompatService) RunChecks(ctx context.Context) {
	if !s.ran.CompareAndSwap(false, true) {
		return
	}

	var (
		wg     sync.WaitGroup
		self   *semver.Version
		latest *semver.Version
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		v, err := s.selfSource.DaemonVersion(ctx)
		if err != nil {
			s.logger.Warn(ctx, "daemon version lookup failed, version stays unknown this session", "error", err)
			return
		}
		self = v
	}()
	go func() {
		defer wg.Done()
		v, err := s.releaseSource.LatestRelease(ctx)
		if err != nil {
			s.logger.Warn(ctx, "latest release lookup failed, version stays unknown this session", "error", err)
			return
		}
		latest = v
	}()
	wg.Wait()

	pair := domain.VersionPair{Self: self, Latest: latest}

	s.mu.Lock()
	s.result = pair
	s.done = true
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	if pair.Known() {
		s.logger.Info(ctx, "version check complete",
			"self", pair.Self.String(),
			"latest", pair.Latest.String(),
			"outdated", pair.Outdated())
	}

	for _, fn := range observers {
		fn(pair)
	}
}

// Result returns the recorded version pair. The second return is false
// until RunChecks has completed.
func (s *CompatService) Result() (domain.VersionPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result, s.done
}

// Outdated reports whether the daemon is known to be behind the latest
// release. False until the checks complete, and false whenever either
// version is unknown.
func (s *CompatService) Outdated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done && s.result.Outdated()
}

// OnResult registers an observer invoked once when the checks complete.
// If they already completed, the observer is invoked immediately with
// the recorded result.
func (s *CompatService) OnResult(fn func(domain.VersionPair)) {
	s.mu.Lock()
	if s.done {
		result := s.result
		s.mu.Unlock()
		fn(result)
		return
	}
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}
