package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	deliveryFetcher "github.com/reshetovitsme/tweet-media-relay/internal/modules/delivery/fetcher"
	deliveryService "github.com/reshetovitsme/tweet-media-relay/internal/modules/delivery/service"
	historyRepo "github.com/reshetovitsme/tweet-media-relay/internal/modules/history/repository"
	historyService "github.com/reshetovitsme/tweet-media-relay/internal/modules/history/service"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/post/extractor"
	"github.com/reshetovitsme/tweet-media-relay/internal/modules/post/resolver"
	relayService "github.com/reshetovitsme/tweet-media-relay/internal/modules/relay/service"
	statsRepo "github.com/reshetovitsme/tweet-media-relay/internal/modules/stats/repository"
	statsService "github.com/reshetovitsme/tweet-media-relay/internal/modules/stats/service"
	userService "github.com/reshetovitsme/tweet-media-relay/internal/modules/user/service"
	"github.com/reshetovitsme/tweet-media-relay/internal/shared/config"
	"github.com/reshetovitsme/tweet-media-relay/internal/shared/worker"
	httpServer "github.com/reshetovitsme/tweet-media-relay/internal/transport/http"
	telegramHandler "github.com/reshetovitsme/tweet-media-relay/internal/transport/telegram"
	"github.com/samber/do/v2"
	"github.com/samber/oops"
)

const (
	scrapeBaseDelay = 200 * time.Millisecond
	scrapeMaxDelay  = 2 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Setup initializes the dependency injection container
func Setup() (do.Injector, error) {
	injector := do.New()

	// Register Config
	do.Provide(injector, func(i do.Injector) (*config.Config, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, oops.With("context", "failed to load config").Wrap(err)
		}
		return cfg, nil
	})

	// Register Stats Repository
	do.Provide(injector, func(i do.Injector) (statsRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := statsRepo.NewFileStorage(cfg.StoragePath)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize stats repository").Wrap(err)
		}
		return repo, nil
	})

	// Register History Repository
	do.Provide(injector, func(i do.Injector) (historyRepo.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo, err := historyRepo.NewFileStorage(cfg.StoragePath, cfg.HistoryLimit)
		if err != nil {
			return nil, oops.With("storage_path", cfg.StoragePath, "context", "failed to initialize history repository").Wrap(err)
		}
		return repo, nil
	})

	// Register Stats Service
	do.Provide(injector, func(i do.Injector) (*statsService.Service, error) {
		repo := do.MustInvoke[statsRepo.Repository](i)
		return statsService.New(repo), nil
	})

	// Register History Service
	do.Provide(injector, func(i do.Injector) (*historyService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		repo := do.MustInvoke[historyRepo.Repository](i)
		return historyService.New(repo, cfg.HistoryLimit), nil
	})

	// Register User Service
	do.Provide(injector, func(i do.Injector) (*userService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return userService.New(cfg.DeveloperID, cfg.IsBotPrivate), nil
	})

	// Register Extractor
	do.Provide(injector, func(i do.Injector) (*extractor.Extractor, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return extractor.New(extractor.NewHTTPUnshortener(cfg.RequestTimeout())), nil
	})

	// Register Resolver
	do.Provide(injector, func(i do.Injector) (*resolver.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return resolver.New(resolver.Config{
			BaseURL:    cfg.ScrapeAPIURL,
			Timeout:    cfg.RequestTimeout(),
			MaxRetries: cfg.ScrapeMaxRetries,
			BaseDelay:  scrapeBaseDelay,
			MaxDelay:   scrapeMaxDelay,
		}), nil
	})

	// Register Media Fetcher; video bodies may take longer than one request timeout to stream
	do.Provide(injector, func(i do.Injector) (*deliveryFetcher.HTTPFetcher, error) {
		cfg := do.MustInvoke[*config.Config](i)
		client := &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: cfg.RequestTimeout(),
			},
		}
		return deliveryFetcher.New(client), nil
	})

	// Register Bot; handlers are attached by the Telegram Handler provider
	do.Provide(injector, func(i do.Injector) (*bot.Bot, error) {
		cfg := do.MustInvoke[*config.Config](i)
		access := do.MustInvoke[*userService.Service](i)

		opts := []bot.Option{
			bot.WithDefaultHandler(telegramHandler.IgnoreUpdate),
			bot.WithMiddlewares(telegramHandler.AccessMiddleware(access)),
			bot.WithErrorsHandler(telegramHandler.HandleError),
		}

		b, err := bot.New(cfg.TelegramBotToken, opts...)
		if err != nil {
			return nil, oops.With("context", "failed to create telegram bot").Wrap(err)
		}
		return b, nil
	})

	// Register Telegram Sender
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Sender, error) {
		b := do.MustInvoke[*bot.Bot](i)
		return telegramHandler.NewSender(b), nil
	})

	// Register Delivery Engine
	do.Provide(injector, func(i do.Injector) (*deliveryService.Engine, error) {
		cfg := do.MustInvoke[*config.Config](i)
		sender := do.MustInvoke[*telegramHandler.Sender](i)
		fetcher := do.MustInvoke[*deliveryFetcher.HTTPFetcher](i)
		stats := do.MustInvoke[*statsService.Service](i)
		return deliveryService.New(deliveryService.Config{
			MaxDownloadBytes: cfg.MaxDownloadBytes,
			MaxUploadBytes:   cfg.MaxUploadBytes,
			TempDir:          cfg.TempPath(),
		}, sender, fetcher, stats), nil
	})

	// Register Relay Service
	do.Provide(injector, func(i do.Injector) (*relayService.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return relayService.New(
			relayService.Config{DeliveryChatID: cfg.DeliveryChatID},
			do.MustInvoke[*extractor.Extractor](i),
			do.MustInvoke[*resolver.Client](i),
			do.MustInvoke[*deliveryService.Engine](i),
			do.MustInvoke[*telegramHandler.Sender](i),
			do.MustInvoke[*statsService.Service](i),
			do.MustInvoke[*historyService.Service](i),
		), nil
	})

	// Register Error Reporter
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Reporter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		sender := do.MustInvoke[*telegramHandler.Sender](i)
		return telegramHandler.NewReporter(sender, cfg.DeveloperID), nil
	})

	// Register Worker Pool
	do.Provide(injector, func(i do.Injector) (*worker.Pool[telegramHandler.Job], error) {
		cfg := do.MustInvoke[*config.Config](i)
		relay := do.MustInvoke[*relayService.Service](i)
		reporter := do.MustInvoke[*telegramHandler.Reporter](i)

		handle := func(ctx context.Context, job telegramHandler.Job) error {
			return relay.Handle(ctx, job.Inbound)
		}
		return worker.New(cfg.Workers, cfg.QueueSize, handle, reporter.Report), nil
	})

	// Register Telegram Handler
	do.Provide(injector, func(i do.Injector) (*telegramHandler.Handler, error) {
		b := do.MustInvoke[*bot.Bot](i)
		handler := telegramHandler.New(
			do.MustInvoke[*userService.Service](i),
			do.MustInvoke[*statsService.Service](i),
			do.MustInvoke[*worker.Pool[telegramHandler.Job]](i),
		)
		handler.RegisterCommands(b)
		return handler, nil
	})

	// Register HTTP Server
	do.Provide(injector, func(i do.Injector) (*httpServer.Server, error) {
		cfg := do.MustInvoke[*config.Config](i)
		history := do.MustInvoke[*historyService.Service](i)
		stats := do.MustInvoke[*statsService.Service](i)
		server := httpServer.New(cfg, history, stats)
		server.SetLogger(slog.Default())
		return server, nil
	})

	return injector, nil
}

// Shutdown gracefully shuts down all services
func Shutdown(injector do.Injector) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Polling stops with the context passed to bot.Start; queued jobs are drained here
	if pool, err := do.Invoke[*worker.Pool[telegramHandler.Job]](injector); err == nil && pool != nil {
		pool.Stop()
	}

	if server, err := do.Invoke[*httpServer.Server](injector); err == nil && server != nil {
		if err := server.Shutdown(ctx); err != nil {
			return oops.With("context", "failed to stop http server").Wrap(err)
		}
	}

	return nil
}
