package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/wekeepgrowing/vipgate/internal/adapter/handler/bot"
	handlers "github.com/wekeepgrowing/vipgate/internal/adapter/handler/http"
	"github.com/wekeepgrowing/vipgate/internal/config"
	"github.com/wekeepgrowing/vipgate/internal/domain/repository"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/database"
	httpServer "github.com/wekeepgrowing/vipgate/internal/infrastructure/http"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/lock"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/provider"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/session"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/telegram"
	"github.com/wekeepgrowing/vipgate/internal/messages"
	"github.com/wekeepgrowing/vipgate/internal/usecase"
	"github.com/wekeepgrowing/vipgate/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env: %v", err)
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
		Service:     cfg.Service.Name,
	})
	if err != nil {
		zapLogger = logger.DefaultZapLogger()
		zapLogger.Warn("Invalid log settings, using default logger", zap.Error(err))
	}
	defer zapLogger.Sync()

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Dialog state and buyer locks live in redis when configured, in process otherwise
	var (
		locker  repository.Locker
		dialogs repository.DialogStore
	)
	if cfg.Redis.Enabled() {
		redisClient, err := database.NewRedisClient(cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func(client *redis.Client) {
			if err := client.Close(); err != nil {
				zapLogger.Error("Failed to close redis client", zap.Error(err))
			}
		}(redisClient)
		locker = lock.NewRedisLocker(redisClient, cfg.Redis.LockTTL, zapLogger)
		dialogs = session.NewRedisStore(redisClient, cfg.Dialog.SessionTTL, zapLogger)
	} else {
		zapLogger.Info("Redis not configured, using in-process dialog state and locks")
		locker = lock.NewKeyedMutex()
		dialogs = session.NewMemoryStore(cfg.Dialog.SessionTTL)
	}

	// Initialize repositories
	repos := database.NewRepositories(db, locker, zapLogger)

	paymentProvider, err := provider.NewFactory(cfg, zapLogger).GetProvider(provider.ProviderTypeStripe)
	if err != nil {
		zapLogger.Fatal("Failed to create payment provider", zap.Error(err))
	}

	texts, err := messages.Load()
	if err != nil {
		zapLogger.Fatal("Failed to load message catalog", zap.Error(err))
	}

	telegramClient, err := telegram.NewClient(telegram.Config{
		Token:  cfg.Telegram.Token,
		APIURL: cfg.Telegram.APIURL,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create Telegram client", zap.Error(err))
	}

	// Use cases
	registration := usecase.NewRegistrationService(repos.Entitlements, paymentProvider, dialogs, usecase.RegistrationConfig{
		AdminID:    cfg.Telegram.AdminID,
		Currency:   cfg.Stripe.Currency,
		LinkPrefix: cfg.Telegram.InviteLinkPrefix,
	}, zapLogger)
	checkout := usecase.NewCheckoutService(repos.Entitlements, paymentProvider, usecase.CheckoutConfig{
		PublicBaseURL: cfg.Service.PublicBaseURL,
	}, zapLogger)
	catalog := usecase.NewCatalogService(repos.Entitlements, zapLogger)
	reconciler := usecase.NewReconciler(repos.Entitlements, telegramClient, texts, zapLogger)

	dispatcher := bot.NewDispatcher(telegramClient, registration, checkout, catalog, texts, bot.Config{
		Currency:   cfg.Stripe.Currency,
		LinkPrefix: cfg.Telegram.InviteLinkPrefix,
	}, zapLogger)

	httpSrv := httpServer.NewServer(cfg, zapLogger, httpServer.Handlers{
		Webhook:  handlers.NewWebhookHandler(paymentProvider, reconciler, repos.PaymentEvents, zapLogger),
		Telegram: handlers.NewTelegramHandler(dispatcher, cfg.Telegram.WebhookSecret, zapLogger),
		Admin:    handlers.NewAdminHandler(catalog, zapLogger),
	})

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	if cfg.Telegram.RegisterWebhook {
		webhookURL := strings.TrimRight(cfg.Service.PublicBaseURL, "/") + httpServer.TelegramWebhookPath
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := telegramClient.SetWebhook(ctx, webhookURL, cfg.Telegram.WebhookSecret); err != nil {
			zapLogger.Error("Failed to register Telegram webhook", zap.Error(err))
		}
		cancel()
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Server shut down successfully")
}
