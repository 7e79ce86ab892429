package telegram

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	postDomain "github.com/reshetovitsme/tweet-media-relay/internal/modules/post/domain"
	statsService "github.com/reshetovitsme/tweet-media-relay/internal/modules/stats/service"
	userDomain "github.com/reshetovitsme/tweet-media-relay/internal/modules/user/domain"
	userService "github.com/reshetovitsme/tweet-media-relay/internal/modules/user/service"
)

const (
	helpText     = "Send me a tweet link and I will reply with its original quality media"
	accessDenied = "Access denied"
	statsReset   = "Bot statistics have been reset"
)

// Job is one inbound message waiting for the relay pipeline
type Job struct {
	Inbound postDomain.Inbound
	Update  *models.Update
}

// Queue accepts jobs for background processing
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
}

// Handler handles Telegram bot interactions
type Handler struct {
	access *userService.Service
	stats  *statsService.Service
	queue  Queue
}

// New creates a new Telegram handler
func New(access *userService.Service, stats *statsService.Service, queue Queue) *Handler {
	return &Handler{
		access: access,
		stats:  stats,
		queue:  queue,
	}
}

// RegisterCommands registers bot commands and the relay handler for plain text messages
func (h *Handler) RegisterCommands(b *bot.Bot) {
	b.RegisterHandlerMatchFunc(isCommand("start"), h.handleStart)
	b.RegisterHandlerMatchFunc(isCommand("help"), h.handleHelp)
	b.RegisterHandlerMatchFunc(isCommand("stats"), h.handleStats)
	b.RegisterHandlerMatchFunc(isCommand("resetstats"), h.handleResetStats)
	b.RegisterHandlerMatchFunc(isRelayable, h.handleText)
}

// SetDeveloperCommands publishes the command menu in the developer chat
func (h *Handler) SetDeveloperCommands(ctx context.Context, b *bot.Bot) {
	_, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: []models.BotCommand{
			{Command: "start", Description: "Start the bot"},
			{Command: "help", Description: "Help message"},
			{Command: "stats", Description: "Get bot statistics"},
			{Command: "resetstats", Description: "Reset bot statistics"},
		},
		Scope: &models.BotCommandScopeChat{ChatID: h.access.DeveloperID()},
	})
	if err != nil {
		slog.Warn("Couldn't set my commands for developer chat", "error", err)
	}
}

// IgnoreUpdate is the fallback for updates no registered handler matched
func IgnoreUpdate(_ context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message != nil {
		slog.Debug("Ignoring message", "chat_id", update.Message.Chat.ID, "message_id", update.Message.ID)
	}
}

// AccessMiddleware answers every chat other than the developer's with a denial when the bot is private
func AccessMiddleware(access *userService.Service) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message == nil {
				next(ctx, b, update)
				return
			}

			msg := update.Message
			if err := access.Authorize(msg.Chat.ID); err != nil {
				user := senderOf(msg)
				slog.Info("Access denied",
					"chat_id", msg.Chat.ID,
					"message_id", msg.ID,
					"user_id", user.ID,
					"user", user.FullName(),
					"username", user.Username,
				)
				if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID:          msg.Chat.ID,
					Text:            accessDenied,
					ReplyParameters: &models.ReplyParameters{MessageID: msg.ID, AllowSendingWithoutReply: true},
				}); err != nil {
					slog.Error("Failed to deny access", "chat_id", msg.Chat.ID, "error", err)
				}
				return
			}

			next(ctx, b, update)
		}
	}
}

// HandleError logs errors reported by the bot's update loop; none of them stop the process.
func HandleError(err error) {
	switch {
	case stderrors.Is(err, bot.ErrorUnauthorized), stderrors.Is(err, bot.ErrorForbidden):
		slog.Warn("Telegram rejected request", "error", err)
	case stderrors.Is(err, bot.ErrorConflict):
		slog.Error("Telegram requests conflict", "error", err)
	default:
		slog.Error("Telegram error", "error", err)
	}
}

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	user := senderOf(msg)
	slog.Info("Received /start command", "chat_id", msg.Chat.ID, "message_id", msg.ID, "user_id", user.ID)

	text := fmt.Sprintf("Hi %s\\!\n%s", user.MentionMarkdownV2(), helpText)
	h.reply(ctx, b, msg, text, models.ParseModeMarkdown)
}

func (h *Handler) handleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.reply(ctx, b, update.Message, helpText, "")
}

func (h *Handler) handleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if !h.access.CanAdminister(msg.Chat.ID) {
		slog.Info("Ignoring /stats outside developer chat", "chat_id", msg.Chat.ID)
		return
	}

	counters, err := h.stats.Snapshot()
	if err != nil {
		slog.Error("Failed to read stats", "error", err)
		h.reply(ctx, b, msg, "Failed to read bot statistics", "")
		return
	}

	slog.Info("Sent stats", "messages_handled", counters.MessagesHandled, "media_delivered", counters.MediaDelivered)
	h.reply(ctx, b, msg, formatStats(counters.MessagesHandled, counters.MediaDelivered), models.ParseModeMarkdown)
}

func (h *Handler) handleResetStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if !h.access.CanAdminister(msg.Chat.ID) {
		slog.Info("Ignoring /resetstats outside developer chat", "chat_id", msg.Chat.ID)
		return
	}

	if err := h.stats.Reset(); err != nil {
		slog.Error("Failed to reset stats", "error", err)
		h.reply(ctx, b, msg, "Failed to reset bot statistics", "")
		return
	}

	slog.Info("Bot stats have been reset")
	h.reply(ctx, b, msg, statsReset, "")
}

func (h *Handler) handleText(ctx context.Context, _ *bot.Bot, update *models.Update) {
	job := Job{Inbound: inboundFrom(update.Message), Update: update}
	if err := h.queue.Enqueue(ctx, job); err != nil {
		slog.Error("Failed to enqueue message", "chat_id", job.Inbound.ChatID, "message_id", job.Inbound.MessageID, "error", err)
	}
}

func (h *Handler) reply(ctx context.Context, b *bot.Bot, msg *models.Message, text string, parseMode models.ParseMode) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    msg.Chat.ID,
		Text:      text,
		ParseMode: parseMode,
	})
	if err != nil {
		slog.Error("Failed to send message", "chat_id", msg.Chat.ID, "error", err)
	}
}

func formatStats(messages, media int64) string {
	return fmt.Sprintf("*Bot statistics:*\n`Messages handled :` *%d*\n`Media delivered :` *%d*", messages, media)
}

// isCommand matches "/name", "/name@BotName" and either followed by arguments.
func isCommand(name string) bot.MatchFunc {
	return func(update *models.Update) bool {
		return update.Message != nil && commandName(update.Message.Text) == name
	}
}

// commandName returns the command in text without the slash and @bot suffix, or "".
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	name, _, _ := strings.Cut(fields[0][1:], "@")
	return name
}

// isRelayable matches plain text messages; commands have their own handlers.
func isRelayable(update *models.Update) bool {
	if update.Message == nil {
		return false
	}
	text := strings.TrimSpace(update.Message.Text)
	return text != "" && !strings.HasPrefix(text, "/")
}

func senderOf(msg *models.Message) userDomain.User {
	if msg.From == nil {
		return userDomain.User{ID: msg.Chat.ID, FirstName: msg.Chat.Title}
	}
	return userDomain.User{
		ID:        msg.From.ID,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
		Username:  msg.From.Username,
	}
}

func inboundFrom(msg *models.Message) postDomain.Inbound {
	user := senderOf(msg)
	return postDomain.Inbound{
		ChatID:     msg.Chat.ID,
		MessageID:  msg.ID,
		SenderID:   user.ID,
		SenderName: user.FullName(),
		Text:       msg.Text,
	}
}
