package repository

import (
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/stats/domain"
)

// Repository defines the interface for counters persistence
type Repository interface {
	// Load returns zeroed counters when nothing was saved yet.
	Load() (*domain.Counters, error)
	Save(counters *domain.Counters) error
}
