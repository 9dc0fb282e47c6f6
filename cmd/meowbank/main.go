package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/meowbank/meow-bank-go/internal/config"
	"github.com/meowbank/meow-bank-go/internal/domain"
	"github.com/meowbank/meow-bank-go/internal/engine"
	"github.com/meowbank/meow-bank-go/internal/handler"
	"github.com/meowbank/meow-bank-go/internal/infra/cache"
	"github.com/meowbank/meow-bank-go/internal/infra/observability"
	"github.com/meowbank/meow-bank-go/internal/infra/resilience"
	"github.com/meowbank/meow-bank-go/internal/infra/store/blobstore"
	"github.com/meowbank/meow-bank-go/internal/infra/store/filestore"
	"github.com/meowbank/meow-bank-go/internal/infra/store/sqlitestore"
	"github.com/meowbank/meow-bank-go/internal/port"
	"github.com/meowbank/meow-bank-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("store_backend", cfg.StoreBackend),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("hunger_refresh_interval", cfg.HungerRefreshInterval),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "meow-bank")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Snapshot store ---
	var store port.SnapshotStore
	switch cfg.StoreBackend {
	case "sqlite":
		sqlStore, err := sqlitestore.New(cfg.SQLitePath, logger)
		if err != nil {
			logger.Fatal("failed to open sqlite store", zap.Error(err))
		}
		defer sqlStore.Close()
		store = sqlStore
		logger.Info("using sqlite snapshot store", zap.String("path", cfg.SQLitePath))
	case "blob":
		if cfg.BlobURL == "" {
			logger.Fatal("BLOB_URL is required for the blob store backend")
		}
		store = blobstore.NewClient(
			&http.Client{Timeout: cfg.HTTPTimeout},
			cfg.BlobURL,
			cfg.BlobAPIKey,
			resilience.NewCircuitBreaker("blob-store"),
			resilience.Config{
				MaxRetries:     cfg.MaxRetries,
				InitialBackoff: cfg.InitialBackoff,
				MaxConcurrency: cfg.MaxConcurrency,
			},
			logger,
		)
		logger.Info("using blob snapshot store", zap.String("url", cfg.BlobURL))
	default:
		store = filestore.New(cfg.SnapshotPath, logger)
		logger.Info("using file snapshot store", zap.String("path", cfg.SnapshotPath))
	}

	// --- Session ---
	initial := store.Load(context.Background())
	sess := service.NewSession(
		initial,
		engine.New(nil, nil),
		store,
		cache.New[domain.Stats](cfg.CacheTTL),
		metrics,
		logger,
	)

	// Catch up on hunger decay missed while the process was down.
	sess.RefreshHunger(context.Background())

	// --- Parent auth ---
	pinHash := cfg.ParentPINHash
	if pinHash == "" {
		pinHash, err = service.HashPin(cfg.ParentPIN)
		if err != nil {
			logger.Fatal("failed to hash parent pin", zap.Error(err))
		}
		logger.Warn("PARENT_PIN_HASH not set, using PARENT_PIN (dev only)")
	}
	auth := service.NewParentAuth(pinHash, cfg.JWTSecret, cfg.JWTAccessTTL, logger)

	// --- Router ---
	router := handler.NewRouter(sess, auth, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	// Hunger decays per calendar day; the ticker is a no-op until a
	// day boundary has passed.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.HungerRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				sess.RefreshHunger(gCtx)
			}
		}
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
