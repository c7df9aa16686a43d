package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/config"
	"github.com/pageza/recipeshare/backend/internal/api"
	"github.com/pageza/recipeshare/backend/internal/clock"
	"github.com/pageza/recipeshare/backend/internal/database"
	"github.com/pageza/recipeshare/backend/internal/identity"
	"github.com/pageza/recipeshare/backend/internal/logger"
	"github.com/pageza/recipeshare/backend/internal/metrics"
	"github.com/pageza/recipeshare/backend/internal/objectstore"
	"github.com/pageza/recipeshare/backend/internal/router"
	"github.com/pageza/recipeshare/backend/internal/server"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/storage"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: !cfg.IsProduction(),
	})
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zlog); err != nil {
		zlog.Fatal("Server error", zap.Error(err))
	}
	zlog.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, zlog *zap.Logger) error {
	clk := clock.Real{}
	m := metrics.NewCollector()

	store, err := storage.Open(ctx, cfg, clk, zlog)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	files, err := objectstore.New(ctx, cfg)
	if err != nil {
		return err
	}

	var revoker identity.TokenRevoker
	if cfg.RedisConfigured() {
		client, err := database.NewRedisClient(cfg, zlog)
		if err != nil {
			return err
		}
		defer client.Close()
		revoker = identity.NewRedisRevoker(client, clk)
	} else {
		zlog.Warn("Redis is not configured; revoked tokens are kept in memory")
		revoker = identity.NewMemoryRevoker(clk)
	}

	verifiers := map[string]identity.ProviderVerifier{}
	if cfg.GoogleClientID != "" {
		verifiers["google"] = identity.NewGoogleVerifier(cfg.GoogleClientID)
	}

	provider := identity.NewLocalProvider(store, store, identity.Options{
		Secret:    cfg.JWTSecret,
		TokenTTL:  cfg.JWTTTL,
		ResetURL:  cfg.PublicBaseURL + "/reset-password",
		Revoker:   revoker,
		Mailer:    identity.NewMailer(cfg, zlog),
		Verifiers: verifiers,
		Clock:     clk,
		Logger:    zlog,
	})

	recipes := service.NewRecipeService(store, clk, m, zlog)
	images := service.NewImageService(files, clk, m, zlog)

	opts := router.Options{
		Verifier:       provider,
		Metrics:        m,
		Logger:         zlog,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:   cfg.MaxUploadBytes,
	}
	if local, ok := files.(*objectstore.LocalStore); ok {
		base, err := url.Parse(cfg.UploadBaseURL)
		if err != nil {
			return fmt.Errorf("invalid UPLOAD_BASE_URL: %w", err)
		}
		opts.StaticPath = base.Path
		opts.StaticDir = local.Dir()
	}

	engine := router.SetupRouter(router.Handlers{
		Auth:      api.NewAuthHandler(provider),
		Profile:   api.NewProfileHandler(service.NewProfileService(store)),
		Recipe:    api.NewRecipeHandler(recipes, service.NewInteractionService(store, m, zlog), images, zlog),
		Comment:   api.NewCommentHandler(service.NewCommentService(store, clk, m, zlog)),
		Image:     api.NewImageHandler(images),
		Dashboard: api.NewDashboardHandler(service.NewDashboardService(store), recipes),
		Health:    api.NewHealthHandler(store.Ping),
	}, opts)

	return server.New(cfg, engine, zlog).Run(ctx)
}
