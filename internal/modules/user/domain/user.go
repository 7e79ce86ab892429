package domain

import (
	"fmt"
	"strings"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/caption"
)

// User is the sender of an inbound message
type User struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// FullName joins first and last name, falling back to the username
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// MentionMarkdownV2 renders an inline mention of the user for MarkdownV2 messages
func (u User) MentionMarkdownV2() string {
	return fmt.Sprintf("[%s](tg://user?id=%d)", caption.EscapeMarkdownV2(u.FullName()), u.ID)
}
