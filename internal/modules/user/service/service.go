package service

import (
	"github.com/reshetovitsme/tweet-media-relay/internal/shared/errors"
	"github.com/samber/oops"
)

// Service decides which chats may use the bot and which may administer it
type Service struct {
	developerID int64
	private     bool
}

// New creates a new access policy
func New(developerID int64, private bool) *Service {
	return &Service{
		developerID: developerID,
		private:     private,
	}
}

// DeveloperID returns the developer chat
func (s *Service) DeveloperID() int64 {
	return s.developerID
}

// IsDeveloper reports whether chatID is the developer chat
func (s *Service) IsDeveloper(chatID int64) bool {
	return chatID == s.developerID
}

// Authorize returns errors.ErrUnauthorized when the bot is private and chatID is not the developer
func (s *Service) Authorize(chatID int64) error {
	if s.private && !s.IsDeveloper(chatID) {
		return oops.With("chat_id", chatID).Wrap(errors.ErrUnauthorized)
	}
	return nil
}

// CanAdminister reports whether chatID may read or reset usage counters
func (s *Service) CanAdminister(chatID int64) bool {
	return s.IsDeveloper(chatID)
}
