package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"go.uber.org/zap"

	"github.com/sotkanet-dashboard/internal/config"
	"github.com/sotkanet-dashboard/internal/delivery/http/handler"
	"github.com/sotkanet-dashboard/internal/delivery/http/middleware"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	indicatorHandler  *handler.IndicatorHandler
	dataHandler       *handler.DataHandler
	validationHandler *handler.ValidationHandler
	metadataHandler   *handler.MetadataHandler
	exportHandler     *handler.ExportHandler
	regionHandler     *handler.RegionHandler
	cacheHandler      *handler.CacheHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	indicatorHandler *handler.IndicatorHandler,
	dataHandler *handler.DataHandler,
	validationHandler *handler.ValidationHandler,
	metadataHandler *handler.MetadataHandler,
	exportHandler *handler.ExportHandler,
	regionHandler *handler.RegionHandler,
	cacheHandler *handler.CacheHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Sotkanet Dashboard API",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:               app,
		config:            cfg,
		logger:            logger,
		indicatorHandler:  indicatorHandler,
		dataHandler:       dataHandler,
		validationHandler: validationHandler,
		metadataHandler:   metadataHandler,
		exportHandler:     exportHandler,
		regionHandler:     regionHandler,
		cacheHandler:      cacheHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "healthy",
			"environment": s.config.Env,
			"time":        time.Now(),
		})
	})

	// Indicator routes
	api.Get("/indicators", s.indicatorHandler.ListOptions)
	api.Get("/indicators/:id", s.indicatorHandler.GetMetadata)
	api.Get("/indicators/:id/data", s.dataHandler.GetData)
	api.Get("/indicators/:id/stats", s.dataHandler.GetStats)
	api.Get("/indicators/:id/aggregate", s.dataHandler.GetAggregate)
	api.Get("/indicators/:id/validate", s.validationHandler.ValidateIndicator)

	// Cross-indicator routes
	api.Post("/data/batch", s.dataHandler.BatchData)
	api.Get("/compare", s.dataHandler.Compare)
	api.Get("/validate", s.validationHandler.ValidateAll)
	api.Get("/export/csv", s.exportHandler.ExportCSV)

	// Regions
	api.Get("/regions", s.regionHandler.ListRegions)

	// Metadata lifecycle
	api.Get("/metadata/status", s.metadataHandler.GetStatus)
	api.Post("/metadata/refresh", s.metadataHandler.Refresh)

	// Cache management
	api.Post("/cache/clear", s.cacheHandler.Clear)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// App возвращает приложение Fiber (используется в тестах)
func (s *Server) App() *fiber.App {
	return s.app
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
