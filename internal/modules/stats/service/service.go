package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/stats/domain"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/stats/repository"
	"github.com/samber/oops"
)

// Service owns the usage counters.
// Every mutation runs load, change and persist under one lock, so concurrent
// increments are never lost and Reset is serialized against them.
type Service struct {
	repo     repository.Repository
	mu       sync.Mutex
	counters *domain.Counters
	now      func() time.Time
}

// New creates a new stats service
func New(repo repository.Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// ensureLoaded must be called with s.mu held.
func (s *Service) ensureLoaded() error {
	if s.counters != nil {
		return nil
	}
	counters, err := s.repo.Load()
	if err != nil {
		return oops.With("context", "failed to load counters").Wrap(err)
	}
	s.counters = counters
	slog.Info("Initialized stats", "messages_handled", counters.MessagesHandled, "media_delivered", counters.MediaDelivered)
	return nil
}

func (s *Service) update(mutate func(c *domain.Counters)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}
	mutate(s.counters)
	s.counters.UpdatedAt = s.now()

	if err := s.repo.Save(s.counters); err != nil {
		return oops.With("context", "failed to persist counters").Wrap(err)
	}
	return nil
}

// IncrementMessages counts one handled inbound message
func (s *Service) IncrementMessages() error {
	return s.update(func(c *domain.Counters) {
		c.MessagesHandled++
	})
}

// AddMedia counts n delivered media items
func (s *Service) AddMedia(n int) error {
	if n <= 0 {
		return nil
	}
	return s.update(func(c *domain.Counters) {
		c.MediaDelivered += int64(n)
	})
}

// Snapshot returns a copy of the current counters
func (s *Service) Snapshot() (domain.Counters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return domain.Counters{}, err
	}
	return *s.counters, nil
}

// Reset zeroes both counters
func (s *Service) Reset() error {
	return s.update(func(c *domain.Counters) {
		c.MessagesHandled = 0
		c.MediaDelivered = 0
	})
}
