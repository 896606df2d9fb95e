// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"finsight/internal/core/tenant"
	"finsight/internal/domain/analytics"
	"finsight/internal/domain/catalogs/category"
	"finsight/internal/domain/export"
	"finsight/internal/domain/leave"
	"finsight/internal/domain/opex"
	"finsight/internal/infrastructure/http/v1/handlers"
	"finsight/internal/infrastructure/http/v1/middleware"
	"finsight/internal/infrastructure/storage/postgres/catalog_repo"
	"finsight/internal/infrastructure/storage/postgres/hr_repo"
	"finsight/internal/infrastructure/storage/postgres/report_repo"
	"finsight/pkg/logger"
	"finsight/pkg/numerator"
)

// RouterConfig holds router configuration for multi-tenant architecture.
type RouterConfig struct {
	// TenantManager manages database connections for all tenants
	TenantManager *tenant.Manager

	// MetaPool is connection to meta-database (for health checks)
	MetaPool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// Numerator for catalog code generation
	Numerator *numerator.Generator
}

// NewRouter creates and configures the Gin router for multi-tenant
// architecture.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no tenant required)
	healthHandler := handlers.NewHealthHandler(cfg.MetaPool, cfg.TenantManager)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
		health.GET("/tenants", healthHandler.TenantsStats)
	}

	// API v1, tenant-scoped
	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.TenantDB(cfg.TenantManager))

	if err := registerReportRoutes(apiV1); err != nil {
		return nil, err
	}
	registerHRRoutes(apiV1)
	registerCatalogRoutes(apiV1, cfg)

	return router, nil
}

// registerReportRoutes registers report endpoints. Repos and services
// are created once; TxManager is obtained from context per-request.
func registerReportRoutes(rg *gin.RouterGroup) error {
	baseHandler := handlers.NewBaseHandler()

	analyticsService := analytics.NewService(report_repo.NewAnalyticsRepo())
	opexService := opex.NewService(report_repo.NewOpexRepo())
	exporter, err := export.NewExporter(analyticsService)
	if err != nil {
		return err
	}

	handler := handlers.NewReportsHandler(baseHandler, analyticsService, opexService, exporter)

	reports := rg.Group("/reports")
	reports.GET("/income-expense", handler.IncomeExpense)
	reports.GET("/income-expense/export", handler.ExportIncomeExpense)
	reports.GET("/opex", handler.Opex)
	return nil
}

// registerHRRoutes registers HR endpoints.
func registerHRRoutes(rg *gin.RouterGroup) {
	baseHandler := handlers.NewBaseHandler()

	leaveService := leave.NewService(hr_repo.NewLeaveRepo())
	handler := handlers.NewLeaveHandler(baseHandler, leaveService)

	hr := rg.Group("/hr")
	hr.GET("/employees/:id/leave-entitlements", handler.Entitlements)
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	categoryService := category.NewService(catalog_repo.NewCategoryRepo(), cfg.Numerator)
	handler := handlers.NewCategoryHandler(baseHandler, categoryService)

	categories := rg.Group("/catalog/categories")
	categories.GET("", handler.List)
	categories.POST("", handler.Create)
	categories.GET("/:id", handler.Get)
	categories.PUT("/:id", handler.Update)
	categories.GET("/:id/subcategories", handler.Subcategories)
	categories.POST("/:id/subcategories", handler.AddSubcategory)
}
