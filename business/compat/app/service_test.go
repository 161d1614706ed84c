package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Masterminds/semver/v3"

	"github.com/comit-network/hermes/business/compat/domain"
	"github.com/comit-network/hermes/internal/logger"
)

// mockLogger implements logger.LoggerInterface for testing.
type mockLogger struct {
	warnings atomic.Int32
}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any) {
	m.warnings.Add(1)
}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

type fakeSelfSource struct {
	version string
	err     error
	calls   atomic.Int32
}

func (f *fakeSelfSource) DaemonVersion(ctx context.Context) (*semver.Version, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return semver.MustParse(f.version), nil
}

type fakeReleaseSource struct {
	version string
	err     error
	calls   atomic.Int32
}

func (f *fakeReleaseSource) LatestRelease(ctx context.Context) (*semver.Version, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return semver.MustParse(f.version), nil
}

func TestCompatService_OutdatedWhenLatestIsNewer(t *testing.T) {
	svc := NewCompatService(
		&fakeSelfSource{version: "0.4.2"},
		&fakeReleaseSource{version: "0.4.3"},
		&mockLogger{},
	)

	svc.RunChecks(context.Background())

	result, done := svc.Result()
	if !done {
		t.Fatal("checks should be done after RunChecks returns")
	}
	if !result.Known() {
		t.Fatal("both versions should be known")
	}
	if !svc.Outdated() {
		t.Error("self 0.4.2 with latest 0.4.3 should be outdated")
	}
}

func TestCompatService_EqualVersionsNotOutdated(t *testing.T) {
	svc := NewCompatService(
		&fakeSelfSource{version: "0.4.3"},
		&fakeReleaseSource{version: "0.4.3"},
		&mockLogger{},
	)

	svc.RunChecks(context.Background())

	if svc.Outdated() {
		t.Error("equal versions should not be outdated")
	}
}

func TestCompatService_NotOutdatedBeforeChecks(t *testing.T) {
	svc := NewCompatService(
		&fakeSelfSource{version: "0.4.2"},
		&fakeReleaseSource{version: "0.4.3"},
		&mockLogger{},
	)

	if svc.Outdated() {
		t.Error("should not report outdated before RunChecks")
	}
	if _, done := svc.Result(); done {
		t.Error("result should not be done before RunChecks")
	}
}

func TestCompatService_FailureLeavesVersionUnknownForSession(t *testing.T) {
	// A lookup failure at startup keeps that side unknown for the whole
	// session: the checks run once and are never retried, so the
	// outdated banner stays off even if a newer release exists.
	log := &mockLogger{}
	self := &fakeSelfSource{err: errors.New("connection refused")}
	release := &fakeReleaseSource{version: "9.9.9"}
	svc := NewCompatService(self, release, log)

	svc.RunChecks(context.Background())

	result, done := svc.Result()
	if !done {
		t.Fatal("checks should be done even when a lookup fails")
	}
	if result.Self != nil {
		t.Error("failed lookup should leave self version unknown")
	}
	if result.Latest == nil {
		t.Error("successful lookup should still be recorded")
	}
	if svc.Outdated() {
		t.Error("unknown self version must never count as outdated")
	}
	if log.warnings.Load() == 0 {
		t.Error("lookup failure should be logged")
	}

	// Clearing the fault and re-running must not fetch again.
	self.err = nil
	self.version = "0.4.2"
	svc.RunChecks(context.Background())

	if got := self.calls.Load(); got != 1 {
		t.Errorf("daemon version fetched %d times, want exactly 1", got)
	}
	if got := release.calls.Load(); got != 1 {
		t.Errorf("latest release fetched %d times, want exactly 1", got)
	}
	if result, _ := svc.Result(); result.Self != nil {
		t.Error("second RunChecks must not repair the unknown side")
	}
}

func TestCompatService_BothLookupsFail(t *testing.T) {
	svc := NewCompatService(
		&fakeSelfSource{err: errors.New("daemon down")},
		&fakeReleaseSource{err: errors.New("rate limited")},
		&mockLogger{},
	)

	svc.RunChecks(context.Background())

	result, done := svc.Result()
	if !done {
		t.Fatal("checks should complete even when everything fails")
	}
	if result.Known() {
		t.Error("nothing should be known")
	}
	if svc.Outdated() {
		t.Error("total failure must degrade to not-outdated")
	}
}

func TestCompatService_ObserverNotifiedOnCompletion(t *testing.T) {
	svc := NewCompatService(
		&fakeSelfSource{version: "0.4.2"},
		&fakeReleaseSource{version: "0.4.3"},
		&mockLogger{},
	)

	var notified atomic.Int32
	var got domain.VersionPair
	svc.OnResult(func(pair domain.VersionPair) {
		notified.Add(1)
		got = pair
	})

	svc.RunChecks(context.Background())

	if notified.Load() != 1 {
		t.Fatalf("observer notified %d times, want 1", notified.Load())
	}
	if !got.Outdated() {
		t.Error("observer should receive the computed pair")
	}

	// Re-running must not re-notify.
	svc.RunChecks(context.Background())
	if notified.Load() != 1 {
		t.Errorf("observer re-notified on no-op RunChecks: %d", notified.Load())
	}
}

func TestCompatService_LateObserverGetsResultImmediately(t *testing.T) {
	svc := NewCompatService(
		&fakeSelfSource{version: "0.4.2"},
		&fakeReleaseSource{version: "0.4.3"},
		&mockLogger{},
	)

	svc.RunChecks(context.Background())

	var notified atomic.Int32
	svc.OnResult(func(pair domain.VersionPair) {
		notified.Add(1)
		if !pair.Outdated() {
			t.Error("late observer should see the recorded result")
		}
	})

	if notified.Load() != 1 {
		t.Errorf("late observer notified %d times, want 1", notified.Load())
	}
}
