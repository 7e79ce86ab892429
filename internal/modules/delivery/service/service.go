package service

import (
	"context"
	"log/slog"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/delivery/domain"
	postDomain "github.com/reshetovitsme/tweet-media-relay/internal/modules/post/domain"
)

// MediaCounter records delivered media
type MediaCounter interface {
	AddMedia(n int) error
}

// Config holds the video size ceilings and the buffer directory
type Config struct {
	// MaxDownloadBytes is the largest video sent by URL reference.
	MaxDownloadBytes int64
	// MaxUploadBytes is the largest video downloaded and uploaded by the bot.
	MaxUploadBytes int64
	TempDir        string
}

// Engine selects a delivery strategy per media type and executes it
type Engine struct {
	cfg     Config
	sender  domain.Sender
	fetcher domain.Fetcher
	counter MediaCounter
	logger  *slog.Logger
}

// New creates a new delivery engine
func New(cfg Config, sender domain.Sender, fetcher domain.Fetcher, counter MediaCounter) *Engine {
	return &Engine{
		cfg:     cfg,
		sender:  sender,
		fetcher: fetcher,
		counter: counter,
		logger:  slog.Default(),
	}
}

// Deliver sends a post's media. Images are always sent; animations take
// priority over videos, so a post carrying both only gets its animations.
// Errors returned here abort the current post only.
func (e *Engine) Deliver(ctx context.Context, target domain.Target, post *postDomain.Post) (domain.Outcome, error) {
	logger := e.logger.With("chat_id", target.ChatID, "message_id", target.ReplyTo, "post_id", post.ID)

	images := post.MediaOfType(postDomain.MediaTypeImage)
	animations := post.MediaOfType(postDomain.MediaTypeAnimation)
	videos := post.MediaOfType(postDomain.MediaTypeVideo)

	outcome := domain.Outcome{
		Recognized: len(images) > 0 || len(animations) > 0 || len(videos) > 0,
	}

	if len(images) > 0 {
		n, err := e.deliverImages(ctx, logger, target, post.Metadata, images)
		outcome.Delivered += e.count(logger, n)
		if err != nil {
			return outcome, err
		}
	}

	switch {
	case len(animations) > 0:
		if len(videos) > 0 {
			logger.Info("Skipping videos in favour of animations", "videos", len(videos))
		}
		n, err := e.deliverAnimations(ctx, logger, target, post.Metadata, animations)
		outcome.Delivered += e.count(logger, n)
		if err != nil {
			return outcome, err
		}
	case len(videos) > 0:
		n, err := e.deliverVideos(ctx, logger, target, post.Metadata, videos)
		outcome.Delivered += e.count(logger, n)
		if err != nil {
			return outcome, err
		}
	}

	return outcome, nil
}

func (e *Engine) count(logger *slog.Logger, n int) int {
	if err := e.counter.AddMedia(n); err != nil {
		logger.Error("Failed to update media counter", "error", err, "delta", n)
	}
	return n
}
