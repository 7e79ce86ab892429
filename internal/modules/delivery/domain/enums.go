//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// AttachmentKind represents how a media item is presented in the chat
// ENUM(photo,document,animation,video)
type AttachmentKind string
