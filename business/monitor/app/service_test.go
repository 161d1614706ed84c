package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Masterminds/semver/v3"

	compatApp "github.com/comit-network/hermes/business/compat/app"
	feedApp "github.com/comit-network/hermes/business/feed/app"
	feedDomain "github.com/comit-network/hermes/business/feed/domain"
	"github.com/comit-network/hermes/business/monitor/domain"
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

// fakeChannel implements feedApp.EventChannel, pushing payloads
// directly to subscribed handlers.
type fakeChannel struct {
	mu        sync.Mutex
	handlers  map[feedDomain.Topic][]func(ctx context.Context, payload []byte)
	connected bool
	connObs   []func(bool)
}

func newFakeChannel(connected bool) *fakeChannel {
	return &fakeChannel{
		handlers:  make(map[feedDomain.Topic][]func(ctx context.Context, payload []byte)),
		connected: connected,
	}
}

func (f *fakeChannel) Subscribe(topic feedDomain.Topic, handler func(ctx context.Context, payload []byte)) {
	f.mu.Lock()
	f.handlers[topic] = append(f.handlers[topic], handler)
	f.mu.Unlock()
}

func (f *fakeChannel) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeChannel) OnConnectionChange(fn func(bool)) {
	f.mu.Lock()
	f.connObs = append(f.connObs, fn)
	f.mu.Unlock()
}

func (f *fakeChannel) Close() error { return nil }

func (f *fakeChannel) push(topic feedDomain.Topic, payload string) {
	f.mu.Lock()
	handlers := append([]func(ctx context.Context, payload []byte){}, f.handlers[topic]...)
	f.mu.Unlock()

	for _, h := range handlers {
		h(context.Background(), []byte(payload))
	}
}

func (f *fakeChannel) setConnected(connected bool) {
	f.mu.Lock()
	f.connected = connected
	obs := append([]func(bool){}, f.connObs...)
	f.mu.Unlock()

	for _, fn := range obs {
		fn(connected)
	}
}

// Version sources for the compat service.
type fakeSelfSource struct {
	version string
	err     error
}

func (f *fakeSelfSource) DaemonVersion(ctx context.Context) (*semver.Version, error) {
	if f.err != nil {
		return nil, f.err
	}
	return semver.MustParse(f.version), nil
}

type fakeReleaseSource struct {
	version string
	err     error
}

func (f *fakeReleaseSource) LatestRelease(ctx context.Context) (*semver.Version, error) {
	if f.err != nil {
		return nil, f.err
	}
	return semver.MustParse(f.version), nil
}

// fakeNotifier records every Show and Hide in order.
type notifierEvent struct {
	shown   bool
	id      domain.AlertID
	message string
	sticky  bool
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []notifierEvent
}

func (f *fakeNotifier) Show(ctx context.Context, n domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notifierEvent{shown: true, id: n.ID, message: n.Message, sticky: n.Sticky})
}

func (f *fakeNotifier) Hide(ctx context.Context, id domain.AlertID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, notifierEvent{shown: false, id: id})
}

func (f *fakeNotifier) eventsFor(id domain.AlertID) []notifierEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notifierEvent
	for _, e := range f.events {
		if e.id == id {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeNotifier) shows(id domain.AlertID) int {
	count := 0
	for _, e := range f.eventsFor(id) {
		if e.shown {
			count++
		}
	}
	return count
}

func (f *fakeNotifier) hides(id domain.AlertID) int {
	count := 0
	for _, e := range f.eventsFor(id) {
		if !e.shown {
			count++
		}
	}
	return count
}

// monitorFixture bundles the wired services behind a monitor under test.
type monitorFixture struct {
	channel  *fakeChannel
	feed     *feedApp.FeedService
	compat   *compatApp.CompatService
	notifier *fakeNotifier
	monitor  *MonitorService
	log      *mockLogger
}

func newFixture(t *testing.T, connected bool, selfSource compatApp.SelfVersionSource, releaseSource compatApp.ReleaseSource) *monitorFixture {
	t.Helper()

	log := &mockLogger{}
	channel := newFakeChannel(connected)
	feed := feedApp.NewFeedService(channel, log)
	compat := compatApp.NewCompatService(selfSource, releaseSource, log)
	notifier := &fakeNotifier{}
	monitor := NewMonitorService(feed, compat, notifier, log)

	return &monitorFixture{
		channel:  channel,
		feed:     feed,
		compat:   compat,
		notifier: notifier,
		monitor:  monitor,
		log:      log,
	}
}

func upToDateSources() (compatApp.SelfVersionSource, compatApp.ReleaseSource) {
	return &fakeSelfSource{version: "0.4.3"}, &fakeReleaseSource{version: "0.4.3"}
}

func TestMonitorService_LocalConnectionLostLifecycle(t *testing.T) {
	self, release := upToDateSources()
	fx := newFixture(t, true, self, release)
	fx.monitor.Start(context.Background())

	id := domain.AlertLocalConnectionLost
	if fx.notifier.shows(id) != 0 {
		t.Fatal("no alert expected while connected")
	}

	fx.channel.setConnected(false)
	if fx.notifier.shows(id) != 1 {
		t.Fatalf("shows = %d after drop, want 1", fx.notifier.shows(id))
	}
	if !fx.monitor.Visible(id) {
		t.Fatal("alert should be visible after drop")
	}

	// The transport may report the same state repeatedly.
	fx.channel.setConnected(false)
	fx.channel.setConnected(false)
	if fx.notifier.shows(id) != 1 {
		t.Fatalf("duplicate drop reports re-triggered the alert: shows = %d", fx.notifier.shows(id))
	}

	fx.channel.setConnected(true)
	if fx.notifier.hides(id) != 1 {
		t.Fatalf("hides = %d after reconnect, want 1", fx.notifier.hides(id))
	}
	if fx.monitor.Visible(id) {
		t.Fatal("alert should be hidden after reconnect")
	}

	// A second drop re-triggers the notification.
	fx.channel.setConnected(false)
	if fx.notifier.shows(id) != 2 {
		t.Fatalf("shows = %d after second drop, want 2", fx.notifier.shows(id))
	}
}

func TestMonitorService_StartWhileDisconnected(t *testing.T) {
	self, release := upToDateSources()
	fx := newFixture(t, false, self, release)
	fx.monitor.Start(context.Background())

	if fx.notifier.shows(domain.AlertLocalConnectionLost) != 1 {
		t.Error("starting disconnected should show the connection alert")
	}
}

func TestMonitorService_PeerOfflineExactlyOnce(t *testing.T) {
	self, release := upToDateSources()
	fx := newFixture(t, true, self, release)
	fx.monitor.Start(context.Background())

	id := domain.AlertPeerOffline

	// No snapshot yet: predicate is false.
	if fx.notifier.shows(id) != 0 {
		t.Fatal("peer-offline must not show without a status snapshot")
	}

	fx.channel.push(feedDomain.TopicMakerStatus, `{"online":true}`)
	if fx.notifier.shows(id) != 0 {
		t.Fatal("peer-offline must not show while the maker is online")
	}

	fx.channel.push(feedDomain.TopicMakerStatus, `{"online":false}`)
	if fx.notifier.shows(id) != 1 {
		t.Fatalf("shows = %d after offline snapshot, want 1", fx.notifier.shows(id))
	}

	// Repeated identical snapshots must not duplicate the notification.
	fx.channel.push(feedDomain.TopicMakerStatus, `{"online":false}`)
	fx.channel.push(feedDomain.TopicMakerStatus, `{"online":false}`)
	if fx.notifier.shows(id) != 1 {
		t.Fatalf("identical snapshots re-triggered: shows = %d", fx.notifier.shows(id))
	}

	fx.channel.push(feedDomain.TopicMakerStatus, `{"online":true}`)
	if fx.notifier.hides(id) != 1 {
		t.Fatalf("hides = %d after recovery, want 1", fx.notifier.hides(id))
	}

	// Going offline again re-notifies.
	fx.channel.push(feedDomain.TopicMakerStatus, `{"online":false}`)
	if fx.notifier.shows(id) != 2 {
		t.Fatalf("shows = %d after second outage, want 2", fx.notifier.shows(id))
	}
}

func TestMonitorService_PeerOfflineCloseReasonMessage(t *testing.T) {
	self, release := upToDateSources()
	fx := newFixture(t, true, self, release)
	fx.monitor.Start(context.Background())

	fx.channel.push(feedDomain.TopicMakerStatus,
		`{"online":false,"connection_close_reason":"TakerVersionOutdated"}`)

	events := fx.notifier.eventsFor(domain.AlertPeerOffline)
	if len(events) != 1 || !events[0].shown {
		t.Fatalf("expected one show event, got %v", events)
	}
	if events[0].message != msgPeerSelfOutdated {
		t.Errorf("message = %q, want %q", events[0].message, msgPeerSelfOutdated)
	}
	if events[0].sticky {
		t.Error("peer-offline is a transient notification")
	}
}

func TestMonitorService_ProtocolIncompatibleStickyDismissal(t *testing.T) {
	self, release := upToDateSources()
	fx := newFixture(t, true, self, release)
	ctx := context.Background()
	fx.monitor.Start(ctx)

	id := domain.AlertProtocolIncompatible

	fx.channel.push(feedDomain.TopicMakerCompatibility, `{"unsupported_protocols":[]}`)
	if fx.notifier.shows(id) != 0 {
		t.Fatal("empty protocol list must not raise the alert")
	}

	fx.channel.push(feedDomain.TopicMakerCompatibility, `{"unsupported_protocols":["rollover-v2"]}`)
	if fx.notifier.shows(id) != 1 {
		t.Fatalf("shows = %d, want 1", fx.notifier.shows(id))
	}
	if events := fx.notifier.eventsFor(id); !events[0].sticky {
		t.Error("protocol-incompatible should be a sticky banner")
	}

	fx.monitor.Dismiss(ctx, id)
	if fx.notifier.hides(id) != 1 {
		t.Fatalf("hides = %d after dismissal, want 1", fx.notifier.hides(id))
	}

	// The condition still holds: the dismissed banner must not reopen.
	fx.channel.push(feedDomain.TopicMakerCompatibility, `{"unsupported_protocols":["rollover-v2"]}`)
	if fx.notifier.shows(id) != 1 {
		t.Fatalf("dismissed banner reopened: shows = %d", fx.notifier.shows(id))
	}

	// Once the condition resolves and re-triggers, it shows again.
	fx.channel.push(feedDomain.TopicMakerCompatibility, `{"unsupported_protocols":[]}`)
	fx.channel.push(feedDomain.TopicMakerCompatibility, `{"unsupported_protocols":["rollover-v2"]}`)
	if fx.notifier.shows(id) != 2 {
		t.Fatalf("shows = %d after re-trigger, want 2", fx.notifier.shows(id))
	}
}

func TestMonitorService_VersionOutdatedFromChecks(t *testing.T) {
	fx := newFixture(t, true, &fakeSelfSource{version: "0.4.2"}, &fakeReleaseSource{version: "0.4.3"})
	ctx := context.Background()

	// Result arrives after the monitor started, via the observer.
	fx.monitor.Start(ctx)
	if fx.notifier.shows(domain.AlertVersionOutdated) != 0 {
		t.Fatal("version alert must not show before the checks complete")
	}

	fx.compat.RunChecks(ctx)

	events := fx.notifier.eventsFor(domain.AlertVersionOutdated)
	if len(events) != 1 || !events[0].shown {
		t.Fatalf("expected one show event, got %v", events)
	}
	if !events[0].sticky {
		t.Error("version-outdated should be a sticky banner")
	}
	if events[0].message == "" {
		t.Error("version alert should carry a message")
	}

	// Dismissal sticks for the session: the pair never changes again.
	fx.monitor.Dismiss(ctx, domain.AlertVersionOutdated)
	fx.monitor.Evaluate(ctx)
	fx.monitor.Evaluate(ctx)
	if fx.notifier.shows(domain.AlertVersionOutdated) != 1 {
		t.Errorf("dismissed version banner reopened: shows = %d", fx.notifier.shows(domain.AlertVersionOutdated))
	}
}

func TestMonitorService_VersionResultBeforeStart(t *testing.T) {
	fx := newFixture(t, true, &fakeSelfSource{version: "0.4.2"}, &fakeReleaseSource{version: "0.4.3"})
	ctx := context.Background()

	// Checks finish before the monitor starts; the late observer still
	// sees the result exactly once.
	fx.compat.RunChecks(ctx)
	fx.monitor.Start(ctx)

	if got := fx.notifier.shows(domain.AlertVersionOutdated); got != 1 {
		t.Errorf("shows = %d, want 1", got)
	}
}

func TestMonitorService_UnknownVersionNeverOutdated(t *testing.T) {
	fx := newFixture(t, true,
		&fakeSelfSource{err: errors.New("daemon unreachable")},
		&fakeReleaseSource{version: "9.9.9"})
	ctx := context.Background()

	fx.monitor.Start(ctx)
	fx.compat.RunChecks(ctx)
	fx.monitor.Evaluate(ctx)

	if fx.notifier.shows(domain.AlertVersionOutdated) != 0 {
		t.Error("unknown self version must never raise the version alert")
	}
}

func TestMonitorService_DismissUnknownAlert(t *testing.T) {
	self, release := upToDateSources()
	fx := newFixture(t, true, self, release)
	ctx := context.Background()
	fx.monitor.Start(ctx)

	fx.monitor.Dismiss(ctx, domain.AlertID("no-such-alert"))

	if fx.log.warnings.Load() == 0 {
		t.Error("dismissing an unknown alert should log a warning")
	}
	if len(fx.notifier.events) != 0 {
		t.Error("dismissing an unknown alert must not notify")
	}
}
