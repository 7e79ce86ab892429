//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// MediaType represents the kind of media attached to a post
// ENUM(image,animation,video)
type MediaType string
