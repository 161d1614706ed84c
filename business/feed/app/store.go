package app

import (
	"context"
	"slices"
	"sync"

	"github.com/comit-network/hermes/business/feed/domain"
	"github.com/comit-network/hermes/internal/logger"
)

// Store holds the latest decoded value of one topic. Each event replaces
// the previous value wholesale; there is no merging and no history.
type Store[T any] struct {
	topic  domain.Topic
	decode func([]byte) (T, error)
	log    logger.LoggerInterface

	mu        sync.RWMutex
	value     T
	hasValue  bool
	observers []func(T)
}

// NewStore creates a store for topic using decode for its payloads.
func NewStore[T any](topic domain.Topic, decode func([]byte) (T, error), log logger.LoggerInterface) *Store[T] {
	return &Store[T]{
		topic:  topic,
		decode: decode,
		log:    log,
	}
}

// Topic returns the topic this store caches.
func (s *Store[T]) Topic() domain.Topic {
	return s.topic
}

// Apply decodes payload and replaces the stored value. A payload that
// fails to decode is dropped: the previous value stays visible, the
// failure is logged, and nothing is raised to the caller. Other topics
// are unaffected either way.
func (s *Store[T]) Apply(ctx context.Context, payload []byte) {
	value, err := s.decode(payload)
	if err != nil {
		s.log.Warn(ctx, "dropping undecodable event",
			"topic", string(s.topic),
			"error", err,
			"payload_bytes", len(payload))
		return
	}

	s.mu.Lock()
	s.value = value
	s.hasValue = true
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(value)
	}
}

// Latest returns the most recently stored value. The second return is
// false until the first decodable event arrives.
func (s *Store[T]) Latest() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.hasValue
}

// OnChange registers an observer invoked after every accepted event, on
// the delivering goroutine, in registration order.
func (s *Store[T]) OnChange(fn func(T)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}
