package domain

const (
	// NoText replaces a missing post body.
	NoText = "NO TEXT"
	// None replaces any other missing metadata field.
	None = "NONE"
)

// PostID is the numeric identifier of a tweet, kept as text.
type PostID string

// MediaItem is a single piece of media attached to a post
type MediaItem struct {
	Type MediaType `json:"type"`
	URL  string    `json:"url"`
}

// Metadata describes the post a media set belongs to.
// Fields are never empty: missing values are replaced with NoText or None.
type Metadata struct {
	PostID       string `json:"post_id"`
	Text         string `json:"text"`
	AuthorName   string `json:"author_name"`
	AuthorHandle string `json:"author_handle"`
	URL          string `json:"url"`
}

// Post is a resolved tweet
type Post struct {
	ID       PostID
	Metadata Metadata
	Media    []MediaItem
	// Unsupported lists raw media types the relay cannot deliver.
	Unsupported []string
}

// HasMedia reports whether the collaborator returned any media at all.
func (p *Post) HasMedia() bool {
	return len(p.Media) > 0 || len(p.Unsupported) > 0
}

// MediaOfType returns the media items of the given type in their original order.
func (p *Post) MediaOfType(t MediaType) []MediaItem {
	var items []MediaItem
	for _, item := range p.Media {
		if item.Type == t {
			items = append(items, item)
		}
	}
	return items
}

// Inbound is a text message received from the chat transport.
type Inbound struct {
	ChatID     int64
	MessageID  int
	SenderID   int64
	SenderName string
	Text       string
}
