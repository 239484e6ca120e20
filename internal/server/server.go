package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lager/internal/config"
	"lager/internal/database"
	"lager/internal/i18n"
	"lager/internal/lookup"
	custommiddleware "lager/internal/middleware"
	"lager/internal/repository"
	"lager/internal/service"
	"lager/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type healthChecker interface {
	Health(ctx context.Context) map[string]string
}

type Server struct {
	*http.Server
	config    *config.Config
	logger    *zap.Logger
	db        *database.Service
	redis     *redis.Client
	inventory service.InventoryService
}

// NewServer wires repositories, services and handlers. rdb may be nil when
// rate limiting is disabled.
func NewServer(cfg *config.Config, logger *zap.Logger, db *database.Service, rdb *redis.Client) *Server {
	// Initialize repositories
	categoryRepo := repository.NewCategoryRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())
	transferRepo := repository.NewTransferRepository(db.DB())

	// Initialize services
	inventory := service.NewInventoryService(categoryRepo, productRepo, transferRepo, logger)

	var lookuper transport.Lookuper = lookup.Disabled{}
	if cfg.Lookup.Enabled {
		lookuper = lookup.NewClient(cfg.Lookup, cfg.Server.Locale, logger)
	}

	router := newRouter(cfg, logger, inventory, lookuper, db, rdb)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:    cfg,
		logger:    logger,
		db:        db,
		redis:     rdb,
		inventory: inventory,
	}
}

func newRouter(
	cfg *config.Config,
	logger *zap.Logger,
	inventory service.InventoryService,
	lookuper transport.Lookuper,
	health healthChecker,
	rdb *redis.Client,
) http.Handler {
	tr := i18n.New(cfg.Server.Locale)

	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger, tr))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]interface{}{"status": "ok"}
		if health != nil {
			db := health.Health(r.Context())
			body["database"] = db
			if db["status"] != "up" {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}
		custommiddleware.RespondWithJSON(w, status, body)
	})

	router.Route("/api", func(r chi.Router) {
		if cfg.RateLimit.Enabled && rdb != nil {
			r.Use(custommiddleware.RateLimitMiddleware(rdb, custommiddleware.RateLimitConfig{
				RequestsPerWindow: cfg.RateLimit.Requests,
				Window:            cfg.RateLimit.Window,
				KeyPrefix:         "lager_rate_limit",
			}, tr, logger))
		}

		transport.NewCategoryHandler(inventory, tr, logger).RegisterRoutes(r)
		transport.NewProductHandler(inventory, tr, logger).RegisterRoutes(r)
		transport.NewTransferHandler(inventory, tr, logger).RegisterRoutes(r)
		transport.NewLookupHandler(lookuper, tr, logger).RegisterRoutes(r)
	})

	return router
}

// Bootstrap seeds default data. It must finish before the server listens.
func (s *Server) Bootstrap(ctx context.Context) error {
	return s.inventory.Bootstrap(ctx)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
