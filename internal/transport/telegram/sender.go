package telegram

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/delivery/domain"
	"github.com/reshetovitsme/tweet-media-relay/internal/shared/errors"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

// botAPI is the part of *bot.Bot used for outbound messages
type botAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*models.Message, error)
	SendAnimation(ctx context.Context, params *bot.SendAnimationParams) (*models.Message, error)
	SendVideo(ctx context.Context, params *bot.SendVideoParams) (*models.Message, error)
	SendMediaGroup(ctx context.Context, params *bot.SendMediaGroupParams) ([]*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
}

// Sender implements domain.Sender on top of the Telegram Bot API
type Sender struct {
	api botAPI
}

// NewSender creates a new Telegram sender
func NewSender(api botAPI) *Sender {
	return &Sender{api: api}
}

var _ domain.Sender = (*Sender)(nil)

func (s *Sender) SendText(ctx context.Context, chatID int64, text string, replyTo int) (int, error) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if replyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo, AllowSendingWithoutReply: true}
	}

	msg, err := s.api.SendMessage(ctx, params)
	if err != nil {
		return 0, wrapSendError(err, chatID, "failed to send message")
	}
	return msg.ID, nil
}

func (s *Sender) SendAttachment(ctx context.Context, chatID int64, attachment domain.Attachment) error {
	file := inputFile(attachment)
	parseMode := models.ParseMode(attachment.ParseMode)

	var err error
	switch attachment.Kind {
	case domain.AttachmentKindPhoto:
		_, err = s.api.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:    chatID,
			Photo:     file,
			Caption:   attachment.Caption,
			ParseMode: parseMode,
		})
	case domain.AttachmentKindDocument:
		_, err = s.api.SendDocument(ctx, &bot.SendDocumentParams{
			ChatID:    chatID,
			Document:  file,
			Caption:   attachment.Caption,
			ParseMode: parseMode,
		})
	case domain.AttachmentKindAnimation:
		_, err = s.api.SendAnimation(ctx, &bot.SendAnimationParams{
			ChatID:    chatID,
			Animation: file,
			Caption:   attachment.Caption,
			ParseMode: parseMode,
		})
	case domain.AttachmentKindVideo:
		_, err = s.api.SendVideo(ctx, &bot.SendVideoParams{
			ChatID:            chatID,
			Video:             file,
			Caption:           attachment.Caption,
			ParseMode:         parseMode,
			SupportsStreaming: attachment.SupportsStreaming,
		})
	default:
		return oops.With("kind", attachment.Kind).Errorf("unsupported attachment kind")
	}

	if err != nil {
		return wrapSendError(err, chatID, fmt.Sprintf("failed to send %s", attachment.Kind))
	}
	return nil
}

func (s *Sender) SendAttachmentGroup(ctx context.Context, chatID int64, attachments []domain.Attachment) error {
	media := make([]models.InputMedia, 0, len(attachments))
	for i, attachment := range attachments {
		item, err := inputMedia(i, attachment)
		if err != nil {
			return err
		}
		media = append(media, item)
	}

	if _, err := s.api.SendMediaGroup(ctx, &bot.SendMediaGroupParams{ChatID: chatID, Media: media}); err != nil {
		return wrapSendError(err, chatID, "failed to send media group")
	}
	return nil
}

func (s *Sender) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	if _, err := s.api.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: messageID}); err != nil {
		return oops.With("chat_id", chatID, "message_id", messageID, "context", "failed to delete message").Wrap(err)
	}
	return nil
}

func inputFile(attachment domain.Attachment) models.InputFile {
	if attachment.Upload != nil {
		return &models.InputFileUpload{Filename: attachment.Filename, Data: attachment.Upload}
	}
	return &models.InputFileString{Data: attachment.URL}
}

func inputMedia(index int, attachment domain.Attachment) (models.InputMedia, error) {
	ref := attachment.URL
	if attachment.Upload != nil {
		ref = "attach://" + lo.Ternary(attachment.Filename != "", attachment.Filename, fmt.Sprintf("file%d", index))
	}
	parseMode := models.ParseMode(attachment.ParseMode)

	switch attachment.Kind {
	case domain.AttachmentKindPhoto:
		return &models.InputMediaPhoto{
			Media:           ref,
			Caption:         attachment.Caption,
			ParseMode:       parseMode,
			MediaAttachment: attachment.Upload,
		}, nil
	case domain.AttachmentKindDocument:
		return &models.InputMediaDocument{
			Media:           ref,
			Caption:         attachment.Caption,
			ParseMode:       parseMode,
			MediaAttachment: attachment.Upload,
		}, nil
	case domain.AttachmentKindVideo:
		return &models.InputMediaVideo{
			Media:             ref,
			Caption:           attachment.Caption,
			ParseMode:         parseMode,
			SupportsStreaming: attachment.SupportsStreaming,
			MediaAttachment:   attachment.Upload,
		}, nil
	default:
		return nil, oops.With("kind", attachment.Kind).Errorf("attachment kind cannot be grouped")
	}
}

// wrapSendError tags Bot API bad-request answers with errors.ErrTransportBadRequest.
func wrapSendError(err error, chatID int64, msg string) error {
	if stderrors.Is(err, bot.ErrorBadRequest) {
		err = stderrors.Join(errors.ErrTransportBadRequest, err)
	}
	return oops.With("chat_id", chatID, "context", msg).Wrap(err)
}
