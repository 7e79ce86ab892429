package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/delivery/domain"
	postDomain "github.com/reshetovitsme/tweet-media-relay/internal/modules/post/domain"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textUpdate(text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   33,
			Chat: models.Chat{ID: 77},
			From: &models.User{ID: 5, FirstName: "Ann", LastName: "Lee", Username: "ann"},
			Text: text,
		},
	}
}

func TestIsRelayable(t *testing.T) {
	assert.True(t, isRelayable(textUpdate("https://x.com/a/status/1")))
	assert.False(t, isRelayable(textUpdate("/start")))
	assert.False(t, isRelayable(textUpdate("   ")))
	assert.False(t, isRelayable(&models.Update{}))
}

func TestIsCommand(t *testing.T) {
	start := isCommand("start")

	assert.True(t, start(textUpdate("/start")))
	assert.True(t, start(textUpdate("/start@TweetMediaBot")))
	assert.True(t, start(textUpdate("/start@TweetMediaBot hello")))
	assert.False(t, start(textUpdate("/stats")))
	assert.False(t, start(textUpdate("/startle")))
	assert.False(t, start(textUpdate("start")))
	assert.False(t, start(&models.Update{}))

	assert.True(t, isCommand("resetstats")(textUpdate("/resetstats@TweetMediaBot")))
	assert.False(t, isRelayable(textUpdate("/help@TweetMediaBot")))
}

func TestInboundFrom(t *testing.T) {
	in := inboundFrom(textUpdate("hello").Message)
	assert.Equal(t, postDomain.Inbound{
		ChatID:     77,
		MessageID:  33,
		SenderID:   5,
		SenderName: "Ann Lee",
		Text:       "hello",
	}, in)
}

func TestSenderOfChannelPost(t *testing.T) {
	user := senderOf(&models.Message{Chat: models.Chat{ID: -100, Title: "News"}})
	assert.Equal(t, int64(-100), user.ID)
	assert.Equal(t, "News", user.FullName())
}

type recordingQueue struct {
	jobs []Job
	err  error
}

func (q *recordingQueue) Enqueue(_ context.Context, job Job) error {
	q.jobs = append(q.jobs, job)
	return q.err
}

func TestHandleTextEnqueues(t *testing.T) {
	queue := &recordingQueue{}
	h := New(nil, nil, queue)
	update := textUpdate("https://twitter.com/a/status/1")

	h.handleText(context.Background(), nil, update)

	require.Len(t, queue.jobs, 1)
	assert.Same(t, update, queue.jobs[0].Update)
	assert.Equal(t, int64(77), queue.jobs[0].Inbound.ChatID)
}

func TestFormatStats(t *testing.T) {
	assert.Equal(t, "*Bot statistics:*\n`Messages handled :` *3*\n`Media delivered :` *12*", formatStats(3, 12))
}

func TestErrorCategory(t *testing.T) {
	var v map[string]any
	syntaxErr := json.Unmarshal([]byte("{"), &v)
	wrapped := oops.With("context", "resolve").Wrap(syntaxErr)

	assert.Equal(t, "*json.SyntaxError", errorCategory(syntaxErr))
	assert.Equal(t, "*json.SyntaxError", errorCategory(wrapped))
}

type reportSender struct {
	texts       []string
	textChats   []int64
	attachments []domain.Attachment
	chats       []int64
	body        []byte
}

func (s *reportSender) SendText(_ context.Context, chatID int64, text string, _ int) (int, error) {
	s.texts = append(s.texts, text)
	s.textChats = append(s.textChats, chatID)
	return 1, nil
}

func (s *reportSender) SendAttachment(_ context.Context, chatID int64, attachment domain.Attachment) error {
	s.attachments = append(s.attachments, attachment)
	s.chats = append(s.chats, chatID)
	body, err := io.ReadAll(attachment.Upload)
	s.body = body
	return err
}

func (s *reportSender) SendAttachmentGroup(context.Context, int64, []domain.Attachment) error {
	return nil
}

func (s *reportSender) DeleteMessage(context.Context, int64, int) error { return nil }

func TestReporter_Report(t *testing.T) {
	sender := &reportSender{}
	reporter := NewReporter(sender, 1)
	update := textUpdate("https://x.com/a/status/1")
	job := Job{Inbound: inboundFrom(update.Message), Update: update}

	reporter.Report(context.Background(), job, oops.With("post_id", "1").Wrap(errors.New("boom")))

	require.Len(t, sender.attachments, 1)
	assert.Equal(t, []int64{1}, sender.chats)
	assert.Equal(t, errorReportFilename, sender.attachments[0].Filename)
	assert.Equal(t, domain.AttachmentKindDocument, sender.attachments[0].Kind)
	assert.Contains(t, string(sender.body), "update = ")
	assert.Contains(t, string(sender.body), "boom")

	require.Len(t, sender.texts, 1)
	assert.Equal(t, []int64{77}, sender.textChats)
	assert.Equal(t, "Error\n*errors.errorString: boom", sender.texts[0])
}
