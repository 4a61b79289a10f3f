package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/bonds-service/internal/api"
	"github.com/Checker-Finance/bonds-service/internal/bonds"
	"github.com/Checker-Finance/bonds-service/internal/directory"
	"github.com/Checker-Finance/bonds-service/internal/grip"
	"github.com/Checker-Finance/bonds-service/internal/jobs"
	"github.com/Checker-Finance/bonds-service/internal/rate"
	"github.com/Checker-Finance/bonds-service/internal/store"
	"github.com/Checker-Finance/bonds-service/pkg/config"
	"github.com/Checker-Finance/bonds-service/pkg/logger"
	"github.com/Checker-Finance/bonds-service/pkg/secrets"
	"github.com/Checker-Finance/bonds-service/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting [bonds-service]",
		zap.String("env", cfg.Env),
		zap.String("dsn", utils.MaskDSN(cfg.DatabaseURL)))

	// --- Store (Redis + Postgres hybrid) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.RedisPass, cfg.DatabaseURL, store.PGPoolConfig{}, log)
	if err != nil {
		log.Fatal("store init failed", zap.Error(err))
	}
	defer st.Close() //nolint:errcheck

	// --- Grip API key: Secrets Manager first, env fallback ---
	apiKey := resolveGripKey(ctx, log, cfg)
	if apiKey == "" {
		log.Fatal("no Grip API key available")
	}

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: 5,
		Burst:             10,
	})

	// --- Upstream feed client ---
	feed := grip.NewClient(log, rateMgr, cfg.GripBaseURL, apiKey)

	// --- Company directory ---
	dir := directory.NewResolver(log, st, cfg.CompanyListKey)

	// --- Core service + syncer ---
	svc := bonds.NewService(log, st, dir, bonds.Options{
		ProfileKeyPrefix: cfg.UserProfileKey,
		FilterOptionsTTL: cfg.FilterOptionsTTL,
		DefaultPageLimit: cfg.DefaultPageLimit,
	})

	loc, err := time.LoadLocation(cfg.SyncTimezone)
	if err != nil {
		log.Warn("invalid sync timezone, using UTC",
			zap.String("tz", cfg.SyncTimezone),
			zap.Error(err))
		loc = time.UTC
	}
	syncOffset := time.Duration(cfg.SyncAt.Hour())*time.Hour + time.Duration(cfg.SyncAt.Minute())*time.Minute
	syncer := bonds.NewSyncer(log, st, feed, cfg.GripAccountRef, syncOffset, loc)

	// --- HTTP API ---
	app := fiber.New(fiber.Config{AppName: cfg.ServiceName})
	h := api.NewHandler(log, svc)
	ah := api.NewAdminHandler(log, svc, syncer)
	api.RegisterRoutes(app, st, h, ah)

	go func() {
		log.Info("HTTP API listening", zap.Int("port", cfg.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.Port)); err != nil {
			log.Fatal("fiber.listen_failed", zap.Error(err))
		}
	}()

	// --- Daily reconciliation loop ---
	go syncer.Start(ctx)

	// --- Filter-options cache warmer ---
	warmer := jobs.NewCacheWarmer(log, svc, cfg.FilterOptionsTTL)
	go warmer.Start(ctx)

	<-ctx.Done()
	stop()
	log.Info("shutting down [bonds-service]")
	syncer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	app.ShutdownWithContext(shutdownCtx) //nolint:errcheck
}

// resolveGripKey fetches the feed API key from AWS Secrets Manager, falling
// back to the GRIP_API_KEY environment value for local runs.
func resolveGripKey(ctx context.Context, log *zap.Logger, cfg *config.Config) string {
	provider, err := secrets.NewAWSProvider(cfg.AWSRegion)
	if err != nil {
		log.Warn("aws provider init failed, using env API key", zap.Error(err))
		return cfg.GripAPIKey
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	values, err := provider.GetSecret(fetchCtx, cfg.GripSecretName)
	if err != nil {
		log.Warn("grip secret fetch failed, using env API key",
			zap.String("secret", cfg.GripSecretName),
			zap.Error(err))
		return cfg.GripAPIKey
	}
	if key := values["api_key"]; key != "" {
		return key
	}
	return cfg.GripAPIKey
}
