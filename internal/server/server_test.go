package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lager/internal/config"
	"lager/internal/domain"
	"lager/internal/lookup"
	"lager/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// listOnlyInventory answers product listings; other calls are not expected
type listOnlyInventory struct {
	service.InventoryService
	products []domain.Product
}

func (s *listOnlyInventory) ListProducts(ctx context.Context, q service.ProductQuery) ([]domain.Product, error) {
	return s.products, nil
}

type fixedHealth map[string]string

func (h fixedHealth) Health(ctx context.Context) map[string]string { return h }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", Env: "production", Locale: "de", AllowedOrigins: []string{"http://app.local"}},
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		health fixedHealth
		status int
		want   string
	}{
		{"database up", fixedHealth{"status": "up"}, http.StatusOK, "ok"},
		{"database down", fixedHealth{"status": "down", "error": "refused"}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(testConfig(), zap.NewNop(), &listOnlyInventory{}, lookup.Disabled{}, tt.health, nil)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.status, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body["status"])
		})
	}
}

func TestRoutesMountedUnderAPI(t *testing.T) {
	inv := &listOnlyInventory{products: []domain.Product{{ID: 1, Name: "Milch", Barcode: "400", Quantity: 1}}}
	router := newRouter(testConfig(), zap.NewNop(), inv, lookup.Disabled{}, fixedHealth{"status": "up"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/lookup/4002", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflightAllowsPatch(t *testing.T) {
	router := newRouter(testConfig(), zap.NewNop(), &listOnlyInventory{}, lookup.Disabled{}, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/products/1", nil)
	req.Header.Set("Origin", "http://app.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://app.local", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

func TestRateLimitAppliesToAPI(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Minute}
	router := newRouter(cfg, zap.NewNop(), &listOnlyInventory{}, lookup.Disabled{}, nil, rdb)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/products", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Health stays reachable
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
