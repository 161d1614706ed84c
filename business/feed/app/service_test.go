package app

import (
	"context"
	"sync"
	"testing"

	"github.com/comit-network/hermes/business/feed/domain"
)

// fakeChannel implements EventChannel for testing, pushing payloads
// directly to subscribed handlers.
type fakeChannel struct {
	mu        sync.Mutex
	handlers  map[domain.Topic][]func(ctx context.Context, payload []byte)
	connected bool
	connObs   []func(bool)
	closed    bool
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		handlers:  make(map[domain.Topic][]func(ctx context.Context, payload []byte)),
		connected: true,
	}
}

func (f *fakeChannel) Subscribe(topic domain.Topic, handler func(ctx context.Context, payload []byte)) {
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

func (f *fakeChannel) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeChannel) push(topic domain.Topic, payload string) {
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

func TestFeedService_NothingBeforeFirstEvent(t *testing.T) {
	svc := NewFeedService(newFakeChannel(), &mockLogger{})

	if _, ok := svc.Wallet(); ok {
		t.Error("wallet should be absent before the first event")
	}
	if _, ok := svc.Quote(); ok {
		t.Error("quote should be absent before the first event")
	}
	if _, ok := svc.Cfds(); ok {
		t.Error("cfds should be absent before the first event")
	}
	if _, ok := svc.Identity(); ok {
		t.Error("identity should be absent before the first event")
	}
	if _, ok := svc.MakerStatus(); ok {
		t.Error("maker status should be absent before the first event")
	}
	if _, ok := svc.MakerCompatibility(); ok {
		t.Error("maker compatibility should be absent before the first event")
	}
	if offer, ok := svc.LongOffer(); ok || !offer.Missing() {
		t.Error("long offer should be the absent placeholder before the first event")
	}
	if offer, ok := svc.ShortOffer(); ok || !offer.Missing() {
		t.Error("short offer should be the absent placeholder before the first event")
	}
}

func TestFeedService_LatestEventPerTopic(t *testing.T) {
	ch := newFakeChannel()
	svc := NewFeedService(ch, &mockLogger{})

	ch.push(domain.TopicWallet, `{"balance":"0.5","address":"bcrt1q0","last_updated_at":1640000000}`)
	ch.push(domain.TopicWallet, `{"balance":"0.7","address":"bcrt1q0","last_updated_at":1640000060}`)

	wallet, ok := svc.Wallet()
	if !ok {
		t.Fatal("expected wallet snapshot")
	}
	if wallet.Balance.String() != "0.7" {
		t.Errorf("expected latest balance 0.7, got %s", wallet.Balance)
	}
}

func TestFeedService_DecodeFailureIsIsolated(t *testing.T) {
	ch := newFakeChannel()
	svc := NewFeedService(ch, &mockLogger{})

	ch.push(domain.TopicWallet, `{"balance":"0.5","address":"bcrt1q0","last_updated_at":1640000000}`)
	ch.push(domain.TopicQuote, `{"bid":"41000","ask":"41010","last_updated_at":1640000000}`)

	// A malformed wallet event: the previous wallet stays, the quote is
	// untouched, and the feed keeps flowing.
	ch.push(domain.TopicWallet, `{"balance":`)

	wallet, ok := svc.Wallet()
	if !ok || wallet.Balance.String() != "0.5" {
		t.Errorf("expected wallet to retain 0.5, got %s (ok=%v)", wallet.Balance, ok)
	}

	quote, ok := svc.Quote()
	if !ok || quote.Bid.String() != "41000" {
		t.Errorf("expected quote untouched, got %s (ok=%v)", quote.Bid, ok)
	}

	ch.push(domain.TopicWallet, `{"balance":"0.9","address":"bcrt1q0","last_updated_at":1640000120}`)
	if wallet, _ := svc.Wallet(); wallet.Balance.String() != "0.9" {
		t.Errorf("expected wallet to accept events after the malformed one, got %s", wallet.Balance)
	}
}

func TestFeedService_OffersProjectedForDisplay(t *testing.T) {
	ch := newFakeChannel()
	svc := NewFeedService(ch, &mockLogger{})

	ch.push(domain.TopicLongOffer, `{
		"id": "8cf1b3a0",
		"position": "long",
		"price": "41234.5",
		"min_quantity": "100",
		"max_quantity": "5000",
		"lot_size": "100",
		"funding_rate_annualized_percent": "18.5",
		"funding_rate_hourly_percent": "0.123456789",
		"leverage_details": [],
		"creation_timestamp": 1640000000,
		"settlement_time_interval_in_secs": 86400
	}`)

	offer, ok := svc.LongOffer()
	if !ok {
		t.Fatal("expected a long offer")
	}
	if offer.Missing() {
		t.Fatal("offer should not be the placeholder")
	}
	if offer.FundingRateHourly.String() != "0.12346" {
		t.Errorf("expected rounded hourly rate 0.12346, got %s", offer.FundingRateHourly)
	}

	// The maker pulling the offer is an event too: null projects to the
	// placeholder but counts as a received value.
	ch.push(domain.TopicLongOffer, `null`)

	offer, ok = svc.LongOffer()
	if !ok {
		t.Fatal("null offer is still an event; expected ok")
	}
	if !offer.Missing() {
		t.Error("expected the placeholder after the maker pulled the offer")
	}
	if offer.LotSize.String() != "100" {
		t.Errorf("expected placeholder lot size 100, got %s", offer.LotSize)
	}
}

func TestFeedService_SnapshotsSurviveDisconnect(t *testing.T) {
	ch := newFakeChannel()
	svc := NewFeedService(ch, &mockLogger{})

	ch.push(domain.TopicWallet, `{"balance":"0.5","address":"bcrt1q0","last_updated_at":1640000000}`)

	ch.setConnected(false)

	if svc.Connected() {
		t.Error("expected Connected() to report the drop immediately")
	}
	if wallet, ok := svc.Wallet(); !ok || wallet.Balance.String() != "0.5" {
		t.Error("snapshots must stay readable while disconnected")
	}

	ch.setConnected(true)

	if !svc.Connected() {
		t.Error("expected Connected() to flip back after reconnection")
	}
}

func TestFeedService_ForwardsConnectionObservers(t *testing.T) {
	ch := newFakeChannel()
	svc := NewFeedService(ch, &mockLogger{})

	var flips []bool
	svc.OnConnectionChange(func(connected bool) {
		flips = append(flips, connected)
	})

	ch.setConnected(false)
	ch.setConnected(true)

	if len(flips) != 2 || flips[0] != false || flips[1] != true {
		t.Errorf("expected flips [false true], got %v", flips)
	}
}

func TestFeedService_OfferObserversReceiveProjectedForm(t *testing.T) {
	ch := newFakeChannel()
	svc := NewFeedService(ch, &mockLogger{})

	var seen []domain.DisplayOffer
	svc.OnShortOffer(func(offer domain.DisplayOffer) {
		seen = append(seen, offer)
	})

	ch.push(domain.TopicShortOffer, `{"id":"x","position":"short","price":"40000","min_quantity":"100","max_quantity":"1000","lot_size":"100","funding_rate_annualized_percent":"18.5","funding_rate_hourly_percent":"0.000015"}`)
	ch.push(domain.TopicShortOffer, `null`)

	if len(seen) != 2 {
		t.Fatalf("expected 2 observer calls, got %d", len(seen))
	}
	if seen[0].FundingRateHourly == nil || seen[0].FundingRateHourly.String() != "0.00002" {
		t.Errorf("expected projected hourly rate 0.00002, got %v", seen[0].FundingRateHourly)
	}
	if !seen[1].Missing() {
		t.Error("expected the null event to deliver the placeholder")
	}
}

func TestFeedService_CloseTearsDownChannel(t *testing.T) {
	ch := newFakeChannel()
	svc := NewFeedService(ch, &mockLogger{})

	if err := svc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if !ch.closed {
		t.Error("expected the channel to be closed")
	}
}
