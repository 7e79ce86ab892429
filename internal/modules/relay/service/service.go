package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	deliveryDomain "github.com/reshetovitsme/tweet-media-relay/internal/modules/delivery/domain"
	historyDomain "github.com/reshetovitsme/tweet-media-relay/internal/modules/history/domain"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/post/domain"
	"github.com/samber/oops"
)

const (
	NoticeNoLink           = "No supported tweet link found"
	NoticeUnsupportedMedia = "Unsupported media"
	noticeProcessingError  = "Error processing tweet %s"
	noticeNoMedia          = "Tweet %s has no media"
)

// Extractor finds post IDs in message text
type Extractor interface {
	Extract(ctx context.Context, text string) []domain.PostID
}

// Resolver fetches post metadata and media
type Resolver interface {
	Resolve(ctx context.Context, id domain.PostID) (*domain.Post, error)
}

// Deliverer sends a post's media to the chat
type Deliverer interface {
	Deliver(ctx context.Context, target deliveryDomain.Target, post *domain.Post) (deliveryDomain.Outcome, error)
}

// Replier sends text notices quoting the inbound message
type Replier interface {
	SendText(ctx context.Context, chatID int64, text string, replyTo int) (int, error)
}

// MessageCounter counts handled inbound messages
type MessageCounter interface {
	IncrementMessages() error
}

// Recorder keeps a history of relayed posts
type Recorder interface {
	Record(entry *historyDomain.Entry) error
}

// Config holds relay settings
type Config struct {
	// DeliveryChatID receives media instead of the source chat when non-zero.
	DeliveryChatID int64
}

// Service runs the per-message pipeline: extract, resolve, deliver, report
type Service struct {
	cfg       Config
	extractor Extractor
	resolver  Resolver
	deliverer Deliverer
	replier   Replier
	counter   MessageCounter
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a new relay service
func New(cfg Config, extractor Extractor, resolver Resolver, deliverer Deliverer, replier Replier, counter MessageCounter, recorder Recorder) *Service {
	return &Service{
		cfg:       cfg,
		extractor: extractor,
		resolver:  resolver,
		deliverer: deliverer,
		replier:   replier,
		counter:   counter,
		recorder:  recorder,
		logger:    slog.Default(),
		now:       time.Now,
	}
}

// outcome accumulates per-post results for one inbound message.
type outcome struct {
	anyPostFound      bool
	anyMediaDelivered bool
}

// Handle processes one inbound text message. Per-post failures are reported
// to the user and never stop the remaining posts; the returned error is
// reserved for failures to talk to the user at all.
func (s *Service) Handle(ctx context.Context, in domain.Inbound) error {
	logger := s.logger.With("chat_id", in.ChatID, "message_id", in.MessageID)
	logger.Info("Received message", "sender_id", in.SenderID, "sender", in.SenderName)

	if err := s.counter.IncrementMessages(); err != nil {
		logger.Error("Failed to update message counter", "error", err)
	}

	ids := s.extractor.Extract(ctx, in.Text)
	if len(ids) == 0 {
		logger.Info("No supported tweet link found")
		return s.reply(ctx, in, NoticeNoLink)
	}
	logger.Info("Found tweet ids", "ids", ids)

	target := deliveryDomain.Target{
		ChatID:         in.ChatID,
		ReplyTo:        in.MessageID,
		DeliveryChatID: s.cfg.DeliveryChatID,
	}

	var result outcome
	var replyErrs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return stderrors.Join(append(replyErrs, oops.With("chat_id", in.ChatID).Wrap(err))...)
		}
		postLogger := logger.With("post_id", id)
		if err := s.relayPost(ctx, postLogger, in, target, id, &result); err != nil {
			postLogger.Error("Failed to send tweet notice", "error", err)
			replyErrs = append(replyErrs, err)
		}
	}

	if result.anyPostFound && !result.anyMediaDelivered {
		if err := s.reply(ctx, in, NoticeUnsupportedMedia); err != nil {
			replyErrs = append(replyErrs, err)
		}
	}
	return stderrors.Join(replyErrs...)
}

func (s *Service) relayPost(ctx context.Context, logger *slog.Logger, in domain.Inbound, target deliveryDomain.Target, id domain.PostID, result *outcome) error {
	post, err := s.resolver.Resolve(ctx, id)
	if err != nil {
		logger.Error("Failed to resolve tweet", "error", err)
		return s.reply(ctx, in, fmt.Sprintf(noticeProcessingError, id))
	}
	result.anyPostFound = true

	if !post.HasMedia() {
		logger.Info("Tweet has no media")
		return s.reply(ctx, in, fmt.Sprintf(noticeNoMedia, id))
	}
	if len(post.Media) == 0 {
		logger.Info("Tweet has only unsupported media", "types", post.Unsupported)
		return nil
	}

	delivered, err := s.deliverer.Deliver(ctx, target, post)
	if delivered.Recognized {
		result.anyMediaDelivered = true
	}
	if err != nil {
		logger.Error("Failed to deliver tweet media", "error", err, "delivered", delivered.Delivered)
		return s.reply(ctx, in, fmt.Sprintf(noticeProcessingError, id))
	}

	if err := s.recorder.Record(historyDomain.NewEntry(post, in.ChatID, s.now())); err != nil {
		logger.Warn("Failed to record history", "error", err)
	}
	return nil
}

func (s *Service) reply(ctx context.Context, in domain.Inbound, text string) error {
	if _, err := s.replier.SendText(ctx, in.ChatID, text, in.MessageID); err != nil {
		return oops.With("chat_id", in.ChatID, "message_id", in.MessageID, "context", "failed to send notice").Wrap(err)
	}
	return nil
}
