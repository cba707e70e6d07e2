package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cab_booking/internal/config"
	"cab_booking/internal/graph"
	"cab_booking/internal/metrics"
	"cab_booking/internal/repository"
	"cab_booking/internal/service"
	"cab_booking/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T, rdb *redis.Client) *gin.Engine {
	t.Helper()
	cfg := &config.Config{
		Server:     config.ServerConfig{AllowedOrigins: []string{"*"}},
		Monitoring: config.MonitoringConfig{PrometheusEnabled: true, MetricsPath: "/metrics"},
	}
	metrics.Register()

	store := repository.NewMemoryStore()
	auth := service.NewAuthService(store.Users, utils.NewJWTUtil("secret", time.Hour), "", zerolog.Nop())
	resolver := graph.NewResolver(
		auth,
		service.NewCabService(store.Cabs, store.Bookings, zerolog.Nop()),
		service.NewBookingService(store.Bookings, store.Cabs, nil, zerolog.Nop()),
		service.NewAdminService(store),
		zerolog.Nop(),
	)
	return newRouter(routerDeps{
		cfg:    cfg,
		schema: graph.NewSchema(resolver),
		auth:   auth,
		store:  store,
		redis:  rdb,
		logger: zerolog.Nop(),
	})
}

func TestGraphQLRoute(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ getCabs { id } }"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"getCabs":[]}}`, w.Body.String())
}

func TestBadTokenIsAnonymous(t *testing.T) {
	router := testRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(`{"query":"{ getUserBookings { id } }"}`))
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "You must be logged in")
}

func TestHealth(t *testing.T) {
	t.Run("StorageOnly", func(t *testing.T) {
		w := httptest.NewRecorder()
		testRouter(t, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","db":"healthy"}`, w.Body.String())
	})

	t.Run("CacheDown", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
		router := testRouter(t, rdb)
		mr.Close()

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","db":"healthy","cache":"unhealthy"}`, w.Body.String())
	})
}

func TestMetricsRoute(t *testing.T) {
	router := testRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
