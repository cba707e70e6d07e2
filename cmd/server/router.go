package main

import (
	"context"
	"net/http"
	"time"

	"cab_booking/internal/config"
	"cab_booking/internal/graph"
	"cab_booking/internal/middleware"
	"cab_booking/internal/repository"
	"cab_booking/internal/service"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const healthCheckTimeout = 2 * time.Second

type routerDeps struct {
	cfg    *config.Config
	schema *graphql.Schema
	auth   service.AuthService
	store  *repository.Store
	redis  *redis.Client // nil when the cab cache is disabled
	logger zerolog.Logger
}

func newRouter(d routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(d.logger),
		middleware.CORSMiddleware(d.cfg.Server.AllowedOrigins),
	)

	api := router.Group("/graphql",
		middleware.RateLimitMiddleware(d.cfg.RateLimit),
		middleware.JWTAuthMiddleware(d.auth),
	)
	api.POST("", gin.WrapH(graph.Handler(d.schema)))

	router.GET("/health", healthHandler(d.store, d.redis))

	if d.cfg.Monitoring.PrometheusEnabled {
		router.GET(d.cfg.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}
	return router
}

func healthHandler(store *repository.Store, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		body := gin.H{"status": "ok", "db": "healthy"}

		if err := store.Ping(ctx); err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("Health check: storage unreachable")
			status = http.StatusServiceUnavailable
			body["status"], body["db"] = "error", "unhealthy"
		}
		if rdb != nil {
			body["cache"] = "healthy"
			if err := repository.PingRedis(ctx, rdb); err != nil {
				// the cache is optional, reads fall back to storage
				zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("Health check: redis unreachable")
				body["cache"] = "unhealthy"
			}
		}
		c.JSON(status, body)
	}
}
