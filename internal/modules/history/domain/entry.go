package domain

import (
	"time"

	postDomain "github.com/reshetovitsme/tweet-media-relay/internal/modules/post/domain"
)

// Entry is a relayed post kept for the history feed.
// Only metadata and source URLs are stored.
type Entry struct {
	PostID    string                 `json:"post_id"`
	Author    string                 `json:"author"`
	Handle    string                 `json:"handle"`
	Text      string                 `json:"text"`
	URL       string                 `json:"url"`
	Media     []postDomain.MediaItem `json:"media"`
	ChatID    int64                  `json:"chat_id"`
	RelayedAt time.Time              `json:"relayed_at"`
}

// NewEntry builds a history entry from a resolved post.
func NewEntry(post *postDomain.Post, chatID int64, relayedAt time.Time) *Entry {
	return &Entry{
		PostID:    string(post.ID),
		Author:    post.Metadata.AuthorName,
		Handle:    post.Metadata.AuthorHandle,
		Text:      post.Metadata.Text,
		URL:       post.Metadata.URL,
		Media:     post.Media,
		ChatID:    chatID,
		RelayedAt: relayedAt,
	}
}
