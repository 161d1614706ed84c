package app

import (
	"github.com/comit-network/hermes/business/feed/domain"
	"github.com/comit-network/hermes/internal/logger"
)

// FeedService owns one store per daemon topic and exposes typed access
// to the latest state. It is the single source the UI reads from.
type FeedService struct {
	channel EventChannel
	log     logger.LoggerInterface

	wallet      *Store[domain.WalletInfo]
	quote       *Store[domain.Quote]
	cfds        *Store[[]domain.Cfd]
	identity    *Store[domain.IdentityInfo]
	makerStatus *Store[domain.ConnectionStatus]
	makerCompat *Store[domain.MakerCompatibility]
	longOffer   *Store[*domain.RawOffer]
	shortOffer  *Store[*domain.RawOffer]
}

// NewFeedService creates the stores and subscribes them to channel.
func NewFeedService(channel EventChannel, log logger.LoggerInterface) *FeedService {
	s := &FeedService{
		channel:     channel,
		log:         log,
		wallet:      NewStore(domain.TopicWallet, domain.DecodeWalletInfo, log),
		quote:       NewStore(domain.TopicQuote, domain.DecodeQuote, log),
		cfds:        NewStore(domain.TopicCfds, domain.DecodeCfds, log),
		identity:    NewStore(domain.TopicIdentity, domain.DecodeIdentityInfo, log),
		makerStatus: NewStore(domain.TopicMakerStatus, domain.DecodeConnectionStatus, log),
		makerCompat: NewStore(domain.TopicMakerCompatibility, domain.DecodeMakerCompatibility, log),
		longOffer:   NewStore(domain.TopicLongOffer, domain.DecodeOffer, log),
		shortOffer:  NewStore(domain.TopicShortOffer, domain.DecodeOffer, log),
	}

	channel.Subscribe(domain.TopicWallet, s.wallet.Apply)
	channel.Subscribe(domain.TopicQuote, s.quote.Apply)
	channel.Subscribe(domain.TopicCfds, s.cfds.Apply)
	channel.Subscribe(domain.TopicIdentity, s.identity.Apply)
	channel.Subscribe(domain.TopicMakerStatus, s.makerStatus.Apply)
	channel.Subscribe(domain.TopicMakerCompatibility, s.makerCompat.Apply)
	channel.Subscribe(domain.TopicLongOffer, s.longOffer.Apply)
	channel.Subscribe(domain.TopicShortOffer, s.shortOffer.Apply)

	return s
}

// Connected reports whether the event channel currently has a live
// connection. Stored snapshots stay available regardless.
func (s *FeedService) Connected() bool {
	return s.channel.Connected()
}

// OnConnectionChange registers an observer for connectivity flips.
func (s *FeedService) OnConnectionChange(fn func(connected bool)) {
	s.channel.OnConnectionChange(fn)
}

// Wallet returns the latest wallet snapshot.
func (s *FeedService) Wallet() (domain.WalletInfo, bool) {
	return s.wallet.Latest()
}

// Quote returns the latest maker quote.
func (s *FeedService) Quote() (domain.Quote, bool) {
	return s.quote.Latest()
}

// Cfds returns the latest full list of contracts.
func (s *FeedService) Cfds() ([]domain.Cfd, bool) {
	return s.cfds.Latest()
}

// Identity returns the daemon's identifiers.
func (s *FeedService) Identity() (domain.IdentityInfo, bool) {
	return s.identity.Latest()
}

// MakerStatus returns the daemon's connection to the maker.
func (s *FeedService) MakerStatus() (domain.ConnectionStatus, bool) {
	return s.makerStatus.Latest()
}

// MakerCompatibility returns the maker's protocol compatibility verdict.
func (s *FeedService) MakerCompatibility() (domain.MakerCompatibility, bool) {
	return s.makerCompat.Latest()
}

// LongOffer returns the latest long offer in display form. Before the
// first event and while the maker has no offer up this is the
// placeholder offer; the boolean distinguishes the two.
func (s *FeedService) LongOffer() (domain.DisplayOffer, bool) {
	raw, ok := s.longOffer.Latest()
	return domain.ProjectOffer(raw), ok
}

// ShortOffer returns the latest short offer in display form.
func (s *FeedService) ShortOffer() (domain.DisplayOffer, bool) {
	raw, ok := s.shortOffer.Latest()
	return domain.ProjectOffer(raw), ok
}

// OnWallet registers an observer for wallet updates.
func (s *FeedService) OnWallet(fn func(domain.WalletInfo)) {
	s.wallet.OnChange(fn)
}

// OnQuote registers an observer for quote updates.
func (s *FeedService) OnQuote(fn func(domain.Quote)) {
	s.quote.OnChange(fn)
}

// OnCfds registers an observer for contract list updates.
func (s *FeedService) OnCfds(fn func([]domain.Cfd)) {
	s.cfds.OnChange(fn)
}

// OnIdentity registers an observer for identity updates.
func (s *FeedService) OnIdentity(fn func(domain.IdentityInfo)) {
	s.identity.OnChange(fn)
}

// OnMakerStatus registers an observer for maker connection updates.
func (s *FeedService) OnMakerStatus(fn func(domain.ConnectionStatus)) {
	s.makerStatus.OnChange(fn)
}

// OnMakerCompatibility registers an observer for compatibility updates.
func (s *FeedService) OnMakerCompatibility(fn func(domain.MakerCompatibility)) {
	s.makerCompat.OnChange(fn)
}

// OnLongOffer registers an observer for long offer updates, already
// projected for display.
func (s *FeedService) OnLongOffer(fn func(domain.DisplayOffer)) {
	s.longOffer.OnChange(func(raw *domain.RawOffer) {
		fn(domain.ProjectOffer(raw))
	})
}

// OnShortOffer registers an observer for short offer updates.
func (s *FeedService) OnShortOffer(fn func(domain.DisplayOffer)) {
	s.shortOffer.OnChange(func(raw *domain.RawOffer) {
		fn(domain.ProjectOffer(raw))
	})
}

// Close tears down the event channel.
func (s *FeedService) Close() error {
	return s.channel.Close()
}
