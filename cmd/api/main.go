package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"postpilot/internal/adapter/repo"
	"postpilot/internal/domain"
	"postpilot/internal/generate"
	"postpilot/internal/http/handlers"
	httpapi "postpilot/internal/http/httpapi"
	"postpilot/internal/infra"
	"postpilot/internal/providers/image"
	"postpilot/internal/providers/text"
	"postpilot/internal/providers/video"
	"postpilot/internal/queue"
	"postpilot/internal/storage"
)

func main() {
	// Load .env (optional)
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// DB pool is optional: without DATABASE_URL the queue runs in memory.
	var postRepo domain.PostRepository
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		postRepo = repo.NewPostRepository(dbpool)
	} else {
		logger.Warn().Msg("no DATABASE_URL, posts are stored in memory")
		postRepo = repo.NewPostRepository(nil)
	}

	// Redis backs the notified set; memory fallback without it.
	var notified domain.NotifiedSet
	if cfg.RedisURL != "" {
		redisClient, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer redisClient.Close()
		notified = repo.NewNotifiedSetRedis(redisClient)
	} else {
		logger.Warn().Msg("no REDIS_URL, notified set is stored in memory")
		notified = repo.NewMemoryNotifiedSet()
	}

	fileStore, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize file store")
	}
	rehoster := storage.NewRehoster(storage.RehostOptions{
		Store:   fileStore,
		BaseURL: cfg.StorageBaseURL,
	})

	// Text generation prefers Mistral; Gemini serves when only its key is set.
	var textGen text.Generator = text.NewMistralGenerator(text.MistralOptions{
		APIKey:    cfg.MistralAPIKey,
		BaseURL:   cfg.MistralBaseURL,
		TextModel: cfg.MistralModel,
	})
	if cfg.MistralAPIKey == "" && cfg.GeminiAPIKey != "" {
		textGen = text.NewGeminiGenerator(text.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
		})
	}

	imageGateway := image.NewGateway(
		image.NewFalGenerator(image.FalOptions{APIKey: cfg.FalAPIKey}),
		image.NewPollinationsGenerator(image.PollinationsOptions{}),
	)

	orchestrator := generate.New(generate.Options{
		Text:   textGen,
		Images: imageGateway,
		Videos: video.NewFalSubmitter(video.FalOptions{
			APIKey: cfg.FalAPIKey,
			Model:  cfg.FalVideoModel,
		}),
		Poller: video.NewPoller(cfg.FalAPIKey, nil, logger),
		PollOpts: video.PollOptions{
			Interval:    cfg.VideoPollEvery,
			MaxAttempts: cfg.VideoPollMax,
		},
	})

	queueSvc := queue.NewService(queue.ServiceOptions{
		Repo:     postRepo,
		Fallback: repo.NewMemoryPostRepository(),
		Logger:   logger,
	})

	notifierCtx, stopNotifier := context.WithCancel(ctx)
	defer stopNotifier()
	notifier := queue.NewNotifier(queue.NotifierOptions{
		Service:   queueSvc,
		Notified:  notified,
		Lookahead: cfg.NotifyLookahead,
		Interval:  cfg.NotifyPollEvery,
		Logger:    logger,
		Notify: func(n domain.Notification) {
			logger.Info().
				Str("post_id", n.PostID).
				Time("scheduled_at", n.ScheduledAt).
				Msg("post due soon")
		},
	})
	go notifier.Run(notifierCtx)

	app := handlers.NewApp(orchestrator, queueSvc, rehoster, logger)
	router := httpapi.NewRouter(app, fileStore.BasePath())
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	stopNotifier()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
