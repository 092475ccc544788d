package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/harentsoaR/doctors-portal-api/internal/cache"
	"github.com/harentsoaR/doctors-portal-api/internal/config"
	"github.com/harentsoaR/doctors-portal-api/internal/handlers"
	"github.com/harentsoaR/doctors-portal-api/internal/logger"
	"github.com/harentsoaR/doctors-portal-api/internal/middleware"
	"github.com/harentsoaR/doctors-portal-api/internal/realtime"
	"github.com/harentsoaR/doctors-portal-api/internal/repository"
	"github.com/harentsoaR/doctors-portal-api/internal/services"
	"github.com/harentsoaR/doctors-portal-api/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "doctors-portal",
		Short: "Doctors Portal booking API",
	}
	rootCmd.AddCommand(serveCmd(), seedCmd(), indexesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Upsert the default service catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, cfg *config.Config, store *repository.Mongo, log zerolog.Logger) error {
				catalogStore, closeCache := catalogCache(ctx, cfg, log)
				defer closeCache()
				catalog := services.NewCatalog(store.Services, catalogStore, log)
				n, err := catalog.Seed(ctx, services.DefaultCatalog())
				if err != nil {
					return err
				}
				log.Info().Int("changed", n).Msg("service catalog seeded")
				return nil
			})
		},
	}
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the collection indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(ctx context.Context, _ *config.Config, store *repository.Mongo, log zerolog.Logger) error {
				if err := store.EnsureIndexes(ctx); err != nil {
					return err
				}
				log.Info().Msg("indexes created")
				return nil
			})
		},
	}
}

// withStore loads config, connects to MongoDB and runs fn with a bounded
// context.
func withStore(fn func(context.Context, *config.Config, *repository.Mongo, zerolog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := repository.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())

	return fn(ctx, cfg, repository.NewMongo(client.Database(cfg.MongoDatabase), cfg.StoreTimeout), log)
}

// catalogCache returns a nil cache when REDIS_ADDR is unset or unreachable;
// the catalog then reads straight from MongoDB. The returned func closes the
// Redis client and is always safe to call.
func catalogCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (services.Cache, func()) {
	noop := func() {}
	if cfg.RedisAddr == "" {
		return nil, noop
	}
	client, err := cache.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, catalog cache disabled")
		return nil, noop
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("catalog cache enabled")
	closeFn := func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis client")
		}
	}
	return cache.NewJSONCache(client, "doctors_portal:", cfg.CatalogCacheTTL), closeFn
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env)
	if err := cfg.ValidateServe(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}
	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("database", cfg.MongoDatabase).
		Bool("redis", cfg.RedisAddr != "").
		Bool("sms", cfg.TextbeltAPIKey != "").
		Msg("configuration loaded")

	// --- Database Connection ---
	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelConnect()
	client, err := repository.Connect(connectCtx, cfg.MongoURI)
	if err != nil {
		log.Error().Err(err).Msg("failed to connect to MongoDB")
		return err
	}
	defer client.Disconnect(context.Background())
	log.Info().Msg("connected to MongoDB")

	store := repository.NewMongo(client.Database(cfg.MongoDatabase), cfg.StoreTimeout)
	if err := store.EnsureIndexes(connectCtx); err != nil {
		log.Error().Err(err).Msg("failed to ensure indexes")
		return err
	}

	// --- Services ---
	hub := realtime.NewHub(log, cfg.CORSOrigins)
	notifications := services.NewNotificationService(cfg.TextbeltAPIKey, log)
	catalogStore, closeCache := catalogCache(connectCtx, cfg, log)
	defer closeCache()
	catalog := services.NewCatalog(store.Services, catalogStore, log)
	availability := services.NewAvailabilityService(catalog, store.Bookings)
	bookings := services.NewBookingService(store.Bookings, log, hub, notifications)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	h := handlers.NewHandler(catalog, availability, bookings, store.Users, store.Doctors, tokens, log)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.BookingRateLimitRPS, cfg.BookingRateLimitBurst)
	go limiter.Run(runCtx, time.Minute, 10*time.Minute)

	router, err := handlers.NewRouter(h, handlers.RouterOptions{
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		BookingLimiter: limiter,
		Realtime:       hub,
	})
	if err != nil {
		log.Error().Err(err).Msg("invalid router configuration")
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Doctors Portal server is up and running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-runCtx.Done():
	}

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
