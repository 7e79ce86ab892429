package service

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/caption"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/delivery/domain"
	postDomain "github.com/reshetovitsme/tweet-media-relay/internal/modules/post/domain"
	"github.com/samber/oops"
)

const originalQualityQuery = "format=jpg&name=orig"

// deliverImages sends every image twice, as a file and as a photo.
// A single image carries the rich caption on both sends; an album carries the
// plain caption on the last document and on the first photo.
func (e *Engine) deliverImages(ctx context.Context, logger *slog.Logger, target domain.Target, meta postDomain.Metadata, images []postDomain.MediaItem) (int, error) {
	documents := make([]domain.Attachment, 0, len(images))
	photos := make([]domain.Attachment, 0, len(images))

	for _, image := range images {
		mediaURL := e.originalQuality(ctx, logger, image.URL)
		documents = append(documents, domain.Attachment{Kind: domain.AttachmentKindDocument, URL: mediaURL})
		photos = append(photos, domain.Attachment{Kind: domain.AttachmentKindPhoto, URL: mediaURL})
	}

	chatID := target.MediaChat()

	// Images count as delivered once either copy has reached the chat.
	delivered := 0

	if len(images) == 1 {
		rich := caption.Rich(meta)
		for _, attachment := range []domain.Attachment{documents[0], photos[0]} {
			attachment.Caption = rich
			attachment.ParseMode = domain.ParseModeMarkdownV2
			if err := e.sender.SendAttachment(ctx, chatID, attachment); err != nil {
				return delivered, oops.With("kind", attachment.Kind, "url", attachment.URL, "context", "failed to send image").Wrap(err)
			}
			delivered = 1
		}
		logger.Info("Sent image")
		return 1, nil
	}

	plain := caption.Plain(meta)
	documents[len(documents)-1].Caption = plain
	photos[0].Caption = plain

	for _, group := range [][]domain.Attachment{documents, photos} {
		if err := e.sender.SendAttachmentGroup(ctx, chatID, group); err != nil {
			return delivered, oops.With("kind", group[0].Kind, "size", len(group), "context", "failed to send image group").Wrap(err)
		}
		delivered = len(images)
	}
	logger.Info("Finished sending photo groups", "images", len(images))
	return len(images), nil
}

// originalQuality asks the media host for the original-resolution variant and
// falls back to rawURL when that variant is not available.
func (e *Engine) originalQuality(ctx context.Context, logger *slog.Logger, rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		logger.Info("Could not parse image url, using original url", "url", rawURL, "error", err)
		return rawURL
	}
	parsed.RawQuery = originalQualityQuery
	candidate := parsed.String()

	if err := e.fetcher.Probe(ctx, candidate); err != nil {
		logger.Info("orig quality not available, using original url", "url", rawURL, "error", err)
		return rawURL
	}
	logger.Info("New photo url", "url", candidate)
	return candidate
}

func (e *Engine) deliverAnimations(ctx context.Context, logger *slog.Logger, target domain.Target, meta postDomain.Metadata, animations []postDomain.MediaItem) (int, error) {
	plain := caption.Plain(meta)
	sent := 0
	for _, animation := range animations {
		logger.Info("Gif url", "url", animation.URL)
		err := e.sender.SendAttachment(ctx, target.MediaChat(), domain.Attachment{
			Kind:    domain.AttachmentKindAnimation,
			URL:     animation.URL,
			Caption: plain,
		})
		if err != nil {
			return sent, oops.With("url", animation.URL, "context", "failed to send animation").Wrap(err)
		}
		sent++
		logger.Info("Sent gif")
	}
	return sent, nil
}
