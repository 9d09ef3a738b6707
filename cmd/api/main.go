package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/247convo/convo-backend/internal/api/router"
	"github.com/247convo/convo-backend/internal/chat"
	appconfig "github.com/247convo/convo-backend/internal/config"
	"github.com/247convo/convo-backend/internal/convlog"
	"github.com/247convo/convo-backend/internal/http/handlers"
	"github.com/247convo/convo-backend/internal/knowledge"
	"github.com/247convo/convo-backend/internal/notify"
	"github.com/247convo/convo-backend/internal/observability/metrics"
	"github.com/247convo/convo-backend/internal/scheduling"
	"github.com/247convo/convo-backend/internal/tenants"
	"github.com/247convo/convo-backend/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting convo-backend API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)
	if cfg.APIToken == "" {
		logger.Error("API_TOKEN is required")
		os.Exit(1)
	}

	ctx := context.Background()

	// Postgres: knowledge base and conversation logs.
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	tenantStore := buildTenantStore(cfg, logger)

	// Metrics.
	chatMetrics := metrics.NewChatMetrics(nil)
	bookingMetrics := metrics.NewBookingMetrics(nil)

	// Conversation pipeline. OpenAI always provides embeddings; the
	// completion side can be swapped to Gemini.
	openaiClient, err := chat.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIEmbeddingModel)
	if err != nil {
		logger.Error("failed to create OpenAI client", "error", err)
		os.Exit(1)
	}
	var llm chat.LLMClient = openaiClient
	model := cfg.OpenAIModel
	if cfg.LLMProvider == "gemini" {
		gemini, err := chat.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("failed to create Gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		llm = gemini
		model = cfg.GeminiModel
	}
	knowledgeRepo := knowledge.NewPostgresRepository(pool, logger)
	pipeline := chat.NewPipeline(knowledgeRepo, openaiClient, llm, model, logger)

	// Scheduling.
	adapters := []scheduling.Adapter{
		scheduling.NewGoogleAdapter(cfg.GoogleClientID, cfg.GoogleClientSecret, logger),
		scheduling.NewAcuityAdapter(cfg.AcuityBaseURL, nil, logger),
	}
	// A typed-nil notifier must not reach the orchestrator's interface field.
	var notifier scheduling.Notifier
	if bn := buildNotifier(ctx, cfg, logger); bn != nil {
		notifier = bn
	}
	orchestrator := scheduling.NewOrchestrator(tenantStore, adapters, notifier, logger, bookingMetrics)

	convStore := convlog.NewStore(pool, logger)

	r := router.New(&router.Config{
		Logger:          logger,
		ChatHandler:     handlers.NewChatHandler(pipeline, tenantStore, cfg.APIToken, logger, chatMetrics),
		BookingHandler:  handlers.NewBookingHandler(orchestrator, cfg.APIToken, logger),
		ConvlogHandler:  handlers.NewConvlogHandler(convStore, cfg.APIToken, logger),
		ConfigHandler:   handlers.NewConfigHandler(tenantStore, logger),
		AdminHandler:    handlers.NewAdminHandler(tenantStore, logger),
		AdminAuthSecret: cfg.AdminJWTSecret,

		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsHandler:     promhttp.Handler(),
		RateLimit:          cfg.RateLimit,
		RatePeriod:         cfg.RatePeriod,
		OnRateLimited:      chatMetrics.ObserveRateLimited,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// buildTenantStore selects file-backed or Redis-backed tenant configs.
func buildTenantStore(cfg *appconfig.Config, logger *logging.Logger) tenants.Store {
	if cfg.ConfigSource == "redis" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		logger.Info("tenant configs from redis", "addr", cfg.RedisAddr)
		return tenants.NewRedisStore(redis.NewClient(opts), logger)
	}
	logger.Info("tenant configs from files", "dir", cfg.ConfigDir)
	return tenants.NewFileStore(cfg.ConfigDir, logger)
}

// buildNotifier picks the confirmation email transport, or nil when email is
// not configured.
func buildNotifier(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *notify.BookingNotifier {
	var sender notify.Sender
	switch cfg.EmailProvider {
	case "ses":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Warn("SES email disabled: aws config failed", "error", err)
			return nil
		}
		ses := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger)
		if ses != nil {
			sender = ses
		}
	default:
		sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger)
		if sg != nil {
			sender = sg
		}
	}
	if sender == nil {
		logger.Info("booking confirmation email disabled")
		return nil
	}
	return notify.NewBookingNotifier(sender, logger)
}
