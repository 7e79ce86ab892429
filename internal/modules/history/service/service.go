package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/history/domain"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/history/repository"
	"github.com/samber/oops"
)

const titleLength = 100

// Service handles relay history and its RSS feed
type Service struct {
	repo  repository.Repository
	limit int
	now   func() time.Time
}

// New creates a new history service returning at most limit entries per listing
func New(repo repository.Repository, limit int) *Service {
	return &Service{
		repo:  repo,
		limit: limit,
		now:   time.Now,
	}
}

// Record stores a relayed post, stamping it with the current time when unset
func (s *Service) Record(entry *domain.Entry) error {
	if entry.RelayedAt.IsZero() {
		entry.RelayedAt = s.now()
	}
	if err := s.repo.Save(entry); err != nil {
		return oops.With("post_id", entry.PostID, "context", "failed to record history").Wrap(err)
	}
	return nil
}

// Recent returns the most recently relayed posts, newest first
func (s *Service) Recent() ([]*domain.Entry, error) {
	entries, err := s.repo.List(s.limit)
	if err != nil {
		return nil, oops.With("limit", s.limit, "context", "failed to list history").Wrap(err)
	}
	return entries, nil
}

// Feed generates an RSS feed of recent relays
func (s *Service) Feed(baseURL string) (*feeds.Feed, error) {
	entries, err := s.Recent()
	if err != nil {
		return nil, err
	}

	feed := &feeds.Feed{
		Title:       "Tweet media relay",
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/rss", baseURL)},
		Description: "Recently relayed tweets",
		Created:     s.now(),
	}
	if len(entries) > 0 {
		feed.Updated = entries[0].RelayedAt
	}

	feed.Items = make([]*feeds.Item, 0, len(entries))
	for _, entry := range entries {
		feed.Items = append(feed.Items, entryToFeedItem(entry))
	}
	return feed, nil
}

func entryToFeedItem(entry *domain.Entry) *feeds.Item {
	var content strings.Builder
	fmt.Fprintf(&content, "<p>%s</p>", html.EscapeString(entry.Text))
	if len(entry.Media) > 0 {
		content.WriteString("<p><strong>Media:</strong></p><ul>")
		for _, media := range entry.Media {
			fmt.Fprintf(&content, `<li>%s: <a href="%s">%s</a></li>`, media.Type, html.EscapeString(media.URL), html.EscapeString(media.URL))
		}
		content.WriteString("</ul>")
	}

	return &feeds.Item{
		Title:       truncate(entry.Text, titleLength),
		Link:        &feeds.Link{Href: entry.URL},
		Description: entry.Text,
		Content:     content.String(),
		Author:      &feeds.Author{Name: fmt.Sprintf("%s (@%s)", entry.Author, entry.Handle)},
		Created:     entry.RelayedAt,
		Id:          fmt.Sprintf("%s-%d", entry.PostID, entry.RelayedAt.Unix()),
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
