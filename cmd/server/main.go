package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cab_booking/internal/config"
	"cab_booking/internal/events"
	"cab_booking/internal/graph"
	"cab_booking/internal/logging"
	"cab_booking/internal/metrics"
	"cab_booking/internal/repository"
	"cab_booking/internal/service"
	"cab_booking/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// --- Configuration ---
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, logCloser, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	exitCode := 0
	if err := run(cfg, *logger); err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		exitCode = 1
	} else {
		logger.Info().Msg("Server exiting")
	}
	logCloser.Close()
	os.Exit(exitCode)
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}
	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	// --- Storage ---
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			logger.Error().Err(err).Msg("Failed to close storage")
		}
	}()

	// --- Cab cache ---
	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = repository.NewRedisClient(cfg.Redis)
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		err := repository.PingRedis(ctx, rdb)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Redis.Address).Msg("Redis unreachable at startup, cab reads fall back to storage")
		}
		store.Cabs = repository.NewCachedCabRepository(store.Cabs, rdb, cfg.Redis.CacheTTL, logging.Component(logger, "cab_cache"))
	}

	// --- Events ---
	bus := events.NewEventBus()
	if cfg.RabbitMQ.URL != "" {
		conn, ch, err := events.ConnectRabbitMQ(cfg.RabbitMQ, logger)
		if err != nil {
			return err
		}
		defer conn.Close()

		publisher, err := events.NewRabbitPublisher(ch, cfg.RabbitMQ.Exchange, logging.Component(logger, "rabbitmq"))
		if err != nil {
			return err
		}
		defer publisher.Close()
		bus.SubscribeAll(publisher.Handle)
		logger.Info().Str("exchange", cfg.RabbitMQ.Exchange).Msg("Publishing booking events to RabbitMQ")
	}

	// --- Services ---
	jwtUtil := utils.NewJWTUtil(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(store.Users, jwtUtil, cfg.Auth.InitialAdminEmail, logging.Component(logger, "auth"))
	cabService := service.NewCabService(store.Cabs, store.Bookings, logging.Component(logger, "cabs"))
	bookingService := service.NewBookingService(store.Bookings, store.Cabs, bus, logging.Component(logger, "bookings"))
	adminService := service.NewAdminService(store)

	// --- GraphQL ---
	resolver := graph.NewResolver(authService, cabService, bookingService, adminService, logging.Component(logger, "graphql"))

	router := newRouter(routerDeps{
		cfg:    cfg,
		schema: graph.NewSchema(resolver),
		auth:   authService,
		store:  store,
		redis:  rdb,
		logger: logger,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Str("storage", cfg.Storage.Driver).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// openStore connects the configured storage backend
func openStore(cfg *config.Config, logger zerolog.Logger) (*repository.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageMongo:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
		defer cancel()

		client, db, err := config.ConnectMongo(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, err
		}
		if err := config.EnsureIndexes(ctx, db, logger); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return repository.NewMongoStore(client, db), nil

	case config.StoragePostgres:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Postgres.ConnectTimeout)
		defer cancel()

		pool, err := config.ConnectDB(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, err
		}
		if err := config.AutoMigrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
		return repository.NewPostgresStore(pool), nil

	case config.StorageMemory:
		logger.Warn().Msg("Using in-memory storage, data is lost on restart")
		return repository.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
