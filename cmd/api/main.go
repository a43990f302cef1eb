package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/chat-service/internal/api/http/handlers"
	"github.com/spec-kit/chat-service/internal/auth"
	"github.com/spec-kit/chat-service/internal/config"
	"github.com/spec-kit/chat-service/internal/events"
	"github.com/spec-kit/chat-service/internal/observability"
	"github.com/spec-kit/chat-service/internal/persistence"
	"github.com/spec-kit/chat-service/internal/ratelimit"
	"github.com/spec-kit/chat-service/internal/repository"
	"github.com/spec-kit/chat-service/internal/service"
	"github.com/spec-kit/chat-service/internal/validation"
	"github.com/spec-kit/chat-service/internal/worker"

	httptransport "github.com/spec-kit/chat-service/internal/api/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	conversationRepo := repository.NewConversationRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret)
	mailer := service.NewMailer(cfg.Mail, logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: userRepo,
		Tokens:   tokens,
		Mailer:   mailer,
		Logger:   logger,
	})
	userService := service.NewUserService(userRepo, redis, dispatcher, logger)
	messageService := service.NewMessageService(service.MessageDependencies{
		MessageRepo:      messageRepo,
		ConversationRepo: conversationRepo,
		UserRepo:         userRepo,
		NotificationRepo: notificationRepo,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	notificationService := service.NewNotificationService(notificationRepo, dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	limiter := buildLimiter(ctx, cfg, redis, logger)
	authGate := auth.NewGate(tokens, logger)
	registry := validation.NewRegistry()
	validationGate := validation.NewGate(registry, logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, cfg, logger, metrics)

	routeCfg := httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:          handlers.NewAuthHandler(authService),
		Users:         handlers.NewUsersHandler(userService),
		Messages:      handlers.NewMessagesHandler(messageService),
		Notifications: handlers.NewNotificationsHandler(notificationService),

		AuthGate:       authGate,
		ValidationGate: validationGate,
		Limiter:        limiter,
		Policies:       policies(cfg.RateLimit),
	}
	if err := httptransport.RegisterRoutes(app, registry, routeCfg); err != nil {
		logger.Fatal("invalid route pipeline", zap.Error(err))
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func buildLimiter(ctx context.Context, cfg *config.Config, redis *persistence.Redis, logger *zap.Logger) *ratelimit.Limiter {
	var store ratelimit.Store
	if cfg.RateLimit.Store == "redis" {
		store = ratelimit.NewRedisStore(redis.Client)
	} else {
		memStore := ratelimit.NewMemoryStore()
		memStore.StartJanitor(ctx, 2*time.Minute)
		store = memStore
	}
	return ratelimit.NewLimiter(store, logger, cfg.RateLimit.Disabled)
}

func policies(cfg config.RateLimitConfig) map[ratelimit.Class]ratelimit.Policy {
	return map[ratelimit.Class]ratelimit.Policy{
		ratelimit.ClassAuth: {
			Class:   ratelimit.ClassAuth,
			Max:     cfg.Auth.Max,
			Window:  cfg.Auth.Window,
			Message: cfg.Auth.Message,
		},
		ratelimit.ClassGeneral: {
			Class:   ratelimit.ClassGeneral,
			Max:     cfg.General.Max,
			Window:  cfg.General.Window,
			Message: cfg.General.Message,
		},
		ratelimit.ClassMessaging: {
			Class:   ratelimit.ClassMessaging,
			Max:     cfg.Messaging.Max,
			Window:  cfg.Messaging.Window,
			Message: cfg.Messaging.Message,
		},
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
