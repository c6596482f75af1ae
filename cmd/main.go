package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"face-shape-bot/config"
	telegram "face-shape-bot/internal/api"
	"face-shape-bot/internal/api/rest"
	app "face-shape-bot/internal/application"
	"face-shape-bot/internal/container"
	"face-shape-bot/internal/domain/entity"
	"face-shape-bot/internal/domain/port"
	"face-shape-bot/internal/infrastructure/imageio"
	"face-shape-bot/internal/infrastructure/logger"
	"face-shape-bot/internal/infrastructure/storage"
	"face-shape-bot/internal/infrastructure/vision"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	baseLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Env: cfg.AppEnv, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	lg := logrus.NewEntry(baseLogger).WithField("env", cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Хранилище пользователей: Redis, если задан адрес, иначе память процесса
	userRepo, closeRepo, err := newUserRepository(ctx, cfg, lg)
	if err != nil {
		lg.WithError(err).Fatal("failed to create user repository")
	}
	defer closeRepo()

	// Бэкенды детекции
	mode, err := entity.ParseDetectorMode(cfg.DetectorMode)
	if err != nil {
		lg.WithError(err).Fatal("invalid detector mode")
	}
	engine := vision.NewONNXEngine(vision.EngineConfig{
		ModelDir:    cfg.ModelDir,
		LibraryPath: cfg.ORTLibraryPath,
	})
	precise := vision.NewPreciseDetector(engine, vision.PreciseConfig{
		InitTimeout: cfg.InitTimeout,
		LoadTimeout: cfg.ModelLoadTimeout,
		RetryBase:   cfg.InitRetryBase,
		MaxAttempts: cfg.InitMaxAttempts,
	}, lg)
	router := vision.NewRouter(vision.RouterConfig{
		Mode:     mode,
		Patience: cfg.DetectorPatience,
	}, precise, vision.NewHeuristicDetector(vision.DefaultHeuristicConfig()), lg)
	router.Warmup()
	defer func() {
		if err := router.Close(); err != nil {
			lg.WithError(err).Warn("failed to release detector")
		}
	}()

	// Собираем сервисы приложения
	appContainer := container.New(userRepo, router, imageio.NewAnnotator(), app.AnalysisConfig{
		MaxImageSide: cfg.MaxImageSide,
	}, lg)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, lg)
		if err != nil {
			lg.WithError(err).Fatal("failed to create bot")
		}
		g.Go(func() error {
			lg.Info("bot is running")
			return bot.Run(ctx)
		})
	}

	if cfg.HTTPAddr != "" {
		server := rest.NewServer(appContainer.AnalysisService, rest.Config{
			RateLimit: rate.Limit(cfg.RateLimitRPS),
			Burst:     cfg.RateLimitBurst,
		}, lg)
		g.Go(func() error {
			return server.Listen(cfg.HTTPAddr)
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		lg.WithError(err).Error("stopped with error")
		return
	}
	lg.Info("stopped")
}

func newUserRepository(ctx context.Context, cfg *config.Config, lg *logrus.Entry) (port.UserRepository, func(), error) {
	if cfg.RedisAddress == "" {
		return storage.NewMemoryUserRepository(), func() {}, nil
	}

	client, err := storage.NewRedisClient(ctx, storage.RedisConfig{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, err
	}
	lg.WithField("addr", cfg.RedisAddress).Info("connected to redis")

	closeFn := func() {
		if err := client.Close(); err != nil {
			lg.WithError(err).Warn("failed to close redis client")
		}
	}
	return storage.NewRedisUserRepository(client, storage.DefaultUserTTL, lg), closeFn, nil
}
