// Package domain contains the topics and payload types pushed by the
// daemon over its event channel.
package domain

// Topic identifies one multiplexed stream on the daemon event channel.
type Topic string

// Topics pushed by the daemon.
const (
	TopicWallet             Topic = "wallet"
	TopicQuote              Topic = "quote"
	TopicCfds               Topic = "cfds"
	TopicIdentity           Topic = "identity"
	TopicMakerStatus        Topic = "maker_status"
	TopicMakerCompatibility Topic = "maker_compatibility"
	TopicLongOffer          Topic = "long_offer"
	TopicShortOffer         Topic = "short_offer"
)

// AllTopics returns every topic the client consumes.
func AllTopics() []Topic {
	return []Topic{
		TopicWallet,
		TopicQuote,
		TopicCfds,
		TopicIdentity,
		TopicMakerStatus,
		TopicMakerCompatibility,
		TopicLongOffer,
		TopicShortOffer,
	}
}

// Known reports whether t is a topic this client understands.
func Known(t Topic) bool {
	switch t {
	case TopicWallet, TopicQuote, TopicCfds, TopicIdentity,
		TopicMakerStatus, TopicMakerCompatibility, TopicLongOffer, TopicShortOffer:
		return true
	}
	return false
}
