package repository

import "github.com/reshetovitsme/tweet-media-relay/internal/modules/history/domain"

// Repository defines the interface for relay history persistence
type Repository interface {
	Save(entry *domain.Entry) error
	// List returns at most limit entries, most recent first.
	List(limit int) ([]*domain.Entry, error)
}
