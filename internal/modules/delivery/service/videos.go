package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"

	"github.com/reshetovitsme/tweet-media-relay/internal/modules/caption"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/delivery/domain"
	postDomain "github.com/reshetovitsme/tweet-media-relay/internal/modules/post/domain"
	"github.com/reshetovitsme/tweet-media-relay/internal/shared/errors"
	"github.com/samber/oops"
)

const (
	uploadNotice     = "Video is too large for direct download\nUsing upload method (this may take a while)"
	tooLargeNote     = "Video is too large to upload to Telegram. Direct video link:"
	videoFailureNote = "Error occurred when trying to send video, direct link:"
	defaultVideoName = "video.mp4"
)

// fetchError marks failures on the media host side of a video delivery.
type fetchError struct {
	err error
}

func (e *fetchError) Error() string { return e.err.Error() }

func (e *fetchError) Unwrap() error { return e.err }

// degradable reports whether a video failure should turn into a link reply
// instead of aborting the post.
func degradable(err error) bool {
	var fe *fetchError
	return stderrors.As(err, &fe) || stderrors.Is(err, errors.ErrTransportBadRequest)
}

// deliverVideos sends each video in order. Every attempted video is counted,
// whichever branch ended up serving it.
func (e *Engine) deliverVideos(ctx context.Context, logger *slog.Logger, target domain.Target, meta postDomain.Metadata, videos []postDomain.MediaItem) (int, error) {
	plain := caption.Plain(meta)
	attempted := 0
	for _, video := range videos {
		attempted++
		if err := e.deliverVideo(ctx, logger, target, plain, video.URL); err != nil {
			return attempted, err
		}
	}
	return attempted, nil
}

func (e *Engine) deliverVideo(ctx context.Context, logger *slog.Logger, target domain.Target, text, mediaURL string) error {
	logger.Info("Video url", "url", mediaURL)

	err := e.sendVideo(ctx, logger, target, text, mediaURL)
	if err == nil {
		return nil
	}
	if !degradable(err) {
		return oops.With("url", mediaURL, "context", "failed to send video").Wrap(err)
	}

	logger.Error("Error sending video", "url", mediaURL, "error", err)
	fallback := fmt.Sprintf("%s\n\n%s\n%s", text, videoFailureNote, mediaURL)
	if _, sendErr := e.sender.SendText(ctx, target.ChatID, fallback, target.ReplyTo); sendErr != nil {
		return oops.With("url", mediaURL, "context", "failed to send video fallback").Wrap(sendErr)
	}
	return nil
}

func (e *Engine) sendVideo(ctx context.Context, logger *slog.Logger, target domain.Target, text, mediaURL string) error {
	remote, err := e.fetcher.Open(ctx, mediaURL)
	if err != nil {
		return &fetchError{err: err}
	}
	defer remote.Body.Close()

	logger.Info("Video size", "bytes", remote.Size)

	switch {
	case remote.Size < 0:
		return &fetchError{err: oops.With("url", mediaURL).Wrap(errors.ErrMediaSizeUnknown)}

	case remote.Size <= e.cfg.MaxDownloadBytes:
		remote.Body.Close()
		return e.sender.SendAttachment(ctx, target.MediaChat(), domain.Attachment{
			Kind:              domain.AttachmentKindVideo,
			URL:               mediaURL,
			Caption:           text,
			SupportsStreaming: true,
		})

	case remote.Size <= e.cfg.MaxUploadBytes:
		return e.uploadVideo(ctx, logger, target, text, mediaURL, remote.Body)

	default:
		logger.Info("Video too large for upload", "bytes", remote.Size, "limit", e.cfg.MaxUploadBytes)
		reply := fmt.Sprintf("%s\n\n%s\n%s", text, tooLargeNote, mediaURL)
		_, err := e.sender.SendText(ctx, target.ChatID, reply, target.ReplyTo)
		return err
	}
}

// uploadVideo buffers the body to a temporary file and uploads it, keeping a
// progress notice visible to the requester for the duration.
func (e *Engine) uploadVideo(ctx context.Context, logger *slog.Logger, target domain.Target, text, mediaURL string, body io.Reader) error {
	noticeID, err := e.sender.SendText(ctx, target.ChatID, uploadNotice, target.ReplyTo)
	if err != nil {
		logger.Warn("Failed to send upload notice", "error", err)
		noticeID = 0
	}
	if noticeID != 0 {
		defer func() {
			if err := e.sender.DeleteMessage(ctx, target.ChatID, noticeID); err != nil {
				logger.Warn("Failed to delete upload notice", "notice_id", noticeID, "error", err)
			}
		}()
	}

	if err := os.MkdirAll(e.cfg.TempDir, 0755); err != nil {
		return oops.With("directory", e.cfg.TempDir, "context", "failed to create temp directory").Wrap(err)
	}
	tmp, err := os.CreateTemp(e.cfg.TempDir, "video-*.mp4")
	if err != nil {
		return oops.With("directory", e.cfg.TempDir, "context", "failed to create temp file").Wrap(err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	written, err := io.Copy(tmp, io.LimitReader(body, e.cfg.MaxUploadBytes+1))
	if err != nil {
		return &fetchError{err: oops.With("url", mediaURL, "context", "failed to download video").Wrap(err)}
	}
	if written > e.cfg.MaxUploadBytes {
		return &fetchError{err: oops.With("url", mediaURL, "limit", e.cfg.MaxUploadBytes).Errorf("video body exceeds advertised size")}
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return oops.With("path", tmp.Name(), "context", "failed to rewind temp file").Wrap(err)
	}

	logger.Info("Uploading video", "bytes", written)
	return e.sender.SendAttachment(ctx, target.MediaChat(), domain.Attachment{
		Kind:              domain.AttachmentKindVideo,
		Upload:            tmp,
		Filename:          videoFilename(mediaURL),
		Caption:           text,
		SupportsStreaming: true,
	})
}

func videoFilename(mediaURL string) string {
	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return defaultVideoName
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return defaultVideoName
	}
	return name
}
