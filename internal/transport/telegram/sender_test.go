package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/delivery/domain"
	sharedErrors "github.com/reshetovitsme/tweet-media-relay/internal/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	messages   []*bot.SendMessageParams
	photos     []*bot.SendPhotoParams
	documents  []*bot.SendDocumentParams
	animations []*bot.SendAnimationParams
	videos     []*bot.SendVideoParams
	groups     []*bot.SendMediaGroupParams
	deleted    []*bot.DeleteMessageParams

	err error
}

func (f *fakeBot) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.messages = append(f.messages, params)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{ID: 500 + len(f.messages)}, nil
}

func (f *fakeBot) SendPhoto(_ context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	f.photos = append(f.photos, params)
	return &models.Message{}, f.err
}

func (f *fakeBot) SendDocument(_ context.Context, params *bot.SendDocumentParams) (*models.Message, error) {
	f.documents = append(f.documents, params)
	return &models.Message{}, f.err
}

func (f *fakeBot) SendAnimation(_ context.Context, params *bot.SendAnimationParams) (*models.Message, error) {
	f.animations = append(f.animations, params)
	return &models.Message{}, f.err
}

func (f *fakeBot) SendVideo(_ context.Context, params *bot.SendVideoParams) (*models.Message, error) {
	f.videos = append(f.videos, params)
	return &models.Message{}, f.err
}

func (f *fakeBot) SendMediaGroup(_ context.Context, params *bot.SendMediaGroupParams) ([]*models.Message, error) {
	f.groups = append(f.groups, params)
	return nil, f.err
}

func (f *fakeBot) DeleteMessage(_ context.Context, params *bot.DeleteMessageParams) (bool, error) {
	f.deleted = append(f.deleted, params)
	return f.err == nil, f.err
}

func TestSender_SendTextQuotesOriginal(t *testing.T) {
	api := &fakeBot{}
	sender := NewSender(api)

	id, err := sender.SendText(context.Background(), 1, "hello", 42)
	require.NoError(t, err)
	assert.Equal(t, 501, id)

	require.Len(t, api.messages, 1)
	params := api.messages[0]
	assert.Equal(t, int64(1), params.ChatID)
	require.NotNil(t, params.ReplyParameters)
	assert.Equal(t, 42, params.ReplyParameters.MessageID)

	_, err = sender.SendText(context.Background(), 1, "plain", 0)
	require.NoError(t, err)
	assert.Nil(t, api.messages[1].ReplyParameters)
}

func TestSender_SendAttachmentByKind(t *testing.T) {
	api := &fakeBot{}
	sender := NewSender(api)
	ctx := context.Background()

	require.NoError(t, sender.SendAttachment(ctx, 1, domain.Attachment{
		Kind:      domain.AttachmentKindPhoto,
		URL:       "https://x/p.jpg",
		Caption:   "*bold*",
		ParseMode: domain.ParseModeMarkdownV2,
	}))
	require.NoError(t, sender.SendAttachment(ctx, 1, domain.Attachment{Kind: domain.AttachmentKindDocument, URL: "https://x/p.jpg"}))
	require.NoError(t, sender.SendAttachment(ctx, 1, domain.Attachment{Kind: domain.AttachmentKindAnimation, URL: "https://x/g.mp4"}))
	require.NoError(t, sender.SendAttachment(ctx, 1, domain.Attachment{
		Kind:              domain.AttachmentKindVideo,
		Upload:            strings.NewReader("bytes"),
		Filename:          "clip.mp4",
		SupportsStreaming: true,
	}))

	require.Len(t, api.photos, 1)
	assert.Equal(t, models.ParseModeMarkdown, api.photos[0].ParseMode)
	assert.Equal(t, &models.InputFileString{Data: "https://x/p.jpg"}, api.photos[0].Photo)
	assert.Len(t, api.documents, 1)
	assert.Len(t, api.animations, 1)

	require.Len(t, api.videos, 1)
	assert.True(t, api.videos[0].SupportsStreaming)
	upload, ok := api.videos[0].Video.(*models.InputFileUpload)
	require.True(t, ok)
	assert.Equal(t, "clip.mp4", upload.Filename)
}

func TestSender_SendAttachmentGroup(t *testing.T) {
	api := &fakeBot{}
	sender := NewSender(api)

	err := sender.SendAttachmentGroup(context.Background(), 1, []domain.Attachment{
		{Kind: domain.AttachmentKindDocument, URL: "https://x/1.jpg"},
		{Kind: domain.AttachmentKindDocument, URL: "https://x/2.jpg", Caption: "last"},
	})
	require.NoError(t, err)

	require.Len(t, api.groups, 1)
	require.Len(t, api.groups[0].Media, 2)
	last, ok := api.groups[0].Media[1].(*models.InputMediaDocument)
	require.True(t, ok)
	assert.Equal(t, "https://x/2.jpg", last.Media)
	assert.Equal(t, "last", last.Caption)

	err = sender.SendAttachmentGroup(context.Background(), 1, []domain.Attachment{{Kind: domain.AttachmentKindAnimation}})
	assert.Error(t, err)
}

func TestSender_BadRequestIsTagged(t *testing.T) {
	api := &fakeBot{err: fmt.Errorf("%w, wrong file identifier/HTTP URL specified", bot.ErrorBadRequest)}
	sender := NewSender(api)

	err := sender.SendAttachment(context.Background(), 1, domain.Attachment{Kind: domain.AttachmentKindVideo, URL: "https://x/v.mp4"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sharedErrors.ErrTransportBadRequest)
	assert.ErrorIs(t, err, bot.ErrorBadRequest)
}

func TestSender_OtherErrorsAreNotTagged(t *testing.T) {
	api := &fakeBot{err: errors.New("forbidden: bot was blocked by the user")}
	sender := NewSender(api)

	_, err := sender.SendText(context.Background(), 1, "hi", 0)
	require.Error(t, err)
	assert.NotErrorIs(t, err, sharedErrors.ErrTransportBadRequest)
}
