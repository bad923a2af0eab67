// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"stocktrack/internal/domain/announcement"
	"stocktrack/internal/domain/auth"
	"stocktrack/internal/domain/batch"
	"stocktrack/internal/domain/dashboard"
	"stocktrack/internal/domain/ledger"
	"stocktrack/internal/domain/market"
	"stocktrack/internal/domain/movement"
	"stocktrack/internal/domain/stock"
	"stocktrack/internal/infrastructure/http/v1/handlers"
	"stocktrack/internal/infrastructure/http/v1/middleware"
	"stocktrack/internal/infrastructure/storage/postgres"
	"stocktrack/internal/infrastructure/storage/postgres/announce_repo"
	"stocktrack/internal/infrastructure/storage/postgres/ledger_repo"
	"stocktrack/internal/infrastructure/storage/postgres/market_repo"
	"stocktrack/internal/infrastructure/storage/postgres/movement_repo"
	"stocktrack/internal/infrastructure/storage/postgres/report_repo"
	"stocktrack/internal/infrastructure/storage/postgres/stock_repo"
	"stocktrack/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager drives transactions for all repositories
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Audit records entity changes
	Audit *postgres.AuditService

	// MarketLocation is the timezone for daily/weekly trend windows
	MarketLocation *time.Location
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.AuthService.JWT()))

		registerInventoryRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication and profile endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	publicAuth := rg.Group("/auth")
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.AuthService.JWT()))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)

	profileHandler := handlers.NewProfileHandler(baseHandler, cfg.AuthService)
	profile := rg.Group("/profile")
	profile.Use(middleware.Auth(cfg.AuthService.JWT()))
	profileHandler.RegisterRoutes(profile)
}

// registerInventoryRoutes registers the owner-scoped inventory endpoints.
func registerInventoryRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	txm := cfg.TxManager

	// Repositories
	productRepo := stock_repo.NewProductRepo(txm)
	batchRepo := stock_repo.NewBatchRepo(txm)
	ledgerRepo := ledger_repo.NewLedgerRepo(txm)
	movementRepo := movement_repo.NewMovementRepo(txm)
	announcementRepo := announce_repo.NewAnnouncementRepo(txm)
	marketRepo := market_repo.NewMarketRepo(txm)
	reportRepo := report_repo.NewReportRepo(txm)

	// Services
	ledgerService := ledger.NewService(ledgerRepo, txm, cfg.Audit)
	productService := stock.NewService(productRepo, marketRepo, txm, cfg.Audit)
	batchService := batch.NewService(batchRepo, productRepo, txm, cfg.Audit)
	movementService := movement.NewService(movementRepo)
	announcementService := announcement.NewService(announcementRepo, cfg.Audit, nil)
	marketService := market.NewService(marketRepo, txm, cfg.MarketLocation, nil)
	dashboardService := dashboard.NewService(reportRepo, txm, nil)

	// --- STOCK ---
	{
		handler := handlers.NewStockHandler(baseHandler, productService, ledgerService, cfg.Audit)
		handler.RegisterRoutes(rg.Group("/stock"))
	}

	// --- BATCHES ---
	{
		handler := handlers.NewBatchHandler(baseHandler, batchService, ledgerService, movementService)
		handler.RegisterRoutes(rg.Group("/batches"))
	}

	// --- MOVEMENTS ---
	{
		handler := handlers.NewMovementHandler(baseHandler, movementService, ledgerService)
		handler.RegisterRoutes(rg.Group("/movement"))
	}

	// --- ANNOUNCEMENTS ---
	{
		handler := handlers.NewAnnouncementHandler(baseHandler, announcementService)
		handler.RegisterRoutes(rg.Group("/announcement"))
	}

	// --- DASHBOARD ---
	{
		handler := handlers.NewDashboardHandler(baseHandler, dashboardService)
		handler.RegisterRoutes(rg.Group("/dashboard"))
	}

	// --- MARKET ---
	{
		handler := handlers.NewMarketHandler(baseHandler, marketService)
		handler.RegisterRoutes(rg.Group("/market"))
	}
}
