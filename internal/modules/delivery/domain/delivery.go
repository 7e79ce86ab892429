package domain

import (
	"context"
	"io"
)

// ParseMode selects how the transport interprets caption markup.
type ParseMode string

const (
	ParseModeNone       ParseMode = ""
	ParseModeMarkdownV2 ParseMode = "MarkdownV2"
)

// Attachment is one outbound media item, referenced by URL or uploaded from Upload.
type Attachment struct {
	Kind              AttachmentKind
	URL               string
	Upload            io.Reader
	Filename          string
	Caption           string
	ParseMode         ParseMode
	SupportsStreaming bool
}

// Sender is the outbound side of the chat transport
type Sender interface {
	// SendText sends a text message, quoting replyTo when it is non-zero, and returns the new message ID.
	SendText(ctx context.Context, chatID int64, text string, replyTo int) (int, error)
	SendAttachment(ctx context.Context, chatID int64, attachment Attachment) error
	SendAttachmentGroup(ctx context.Context, chatID int64, attachments []Attachment) error
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// RemoteFile is an open remote media body
type RemoteFile struct {
	// Size is the advertised byte size, -1 when unknown.
	Size int64
	Body io.ReadCloser
}

// Fetcher talks to media hosts
type Fetcher interface {
	// Probe reports whether url is available; any non-2xx answer is an error.
	Probe(ctx context.Context, url string) error
	Open(ctx context.Context, url string) (*RemoteFile, error)
}

// Target says where delivered media and notices go for one inbound message.
type Target struct {
	ChatID         int64
	ReplyTo        int
	DeliveryChatID int64
}

// MediaChat is the chat receiving media: DeliveryChatID when set, else ChatID.
func (t Target) MediaChat() int64 {
	if t.DeliveryChatID != 0 {
		return t.DeliveryChatID
	}
	return t.ChatID
}

// Outcome summarizes delivery of one post.
type Outcome struct {
	// Recognized is true when the post had at least one image, animation or video.
	Recognized bool
	// Delivered counts media items handed to the transport, link fallbacks included.
	Delivered int
}
