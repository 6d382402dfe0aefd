package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oxygeni/oxyrecover/internal/api/handler"
	"github.com/oxygeni/oxyrecover/internal/api/middleware"
	"github.com/oxygeni/oxyrecover/internal/core/domain"
	"github.com/oxygeni/oxyrecover/internal/core/ports"
	"github.com/oxygeni/oxyrecover/internal/core/service"
	mongodb "github.com/oxygeni/oxyrecover/internal/infrastructure/db/mongo"
	redisdb "github.com/oxygeni/oxyrecover/internal/infrastructure/db/redis"
	"github.com/oxygeni/oxyrecover/internal/infrastructure/platform"
	"github.com/oxygeni/oxyrecover/internal/pkg/config"
)

// NewRouter builds the Echo instance with all routes registered. The audit
// sink is injected so the async dispatcher's lifecycle stays with the caller.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, audit ports.AuditSink, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("oxyrecover"))

	// --- Dependencies ---
	creds := redisdb.NewCredentialStore(rdb)
	gateway := platform.NewClient(platform.Config{
		DirectoryURL: cfg.Platform.DirectoryURL,
		Timeout:      cfg.Platform.Timeout,
	}, creds, log)

	registry := service.NewEnvironmentRegistry(gateway, log)
	tokens := service.NewTokenValidator(gateway, redisdb.NewConsumedTokenGuard(rdb), log)
	coordinator := service.NewResetCoordinator(registry, gateway, tokens, audit, log)
	recoveryService := service.NewRecoveryService(coordinator, registry, gateway, log)
	templateService := service.NewTemplateService(mongodb.NewTemplateRepository(db), log)
	auditService := service.NewAuditBrowser(mongodb.NewAuditRepository(db), log)
	authService := service.NewAuthService(mongodb.NewOperatorRepository(db), creds, cfg.JWTSecret, cfg.TokenTTL)

	recoveryHandler := handler.NewRecoveryHandler(recoveryService)
	environmentHandler := handler.NewEnvironmentHandler(registry, recoveryService)
	templateHandler := handler.NewTemplateHandler(templateService)
	auditHandler := handler.NewAuditHandler(auditService)
	authHandler := handler.NewAuthHandler(authService)

	authMiddleware := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	consoleRoles := middleware.RBAC(domain.RoleAdmin, domain.RoleOperator)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register, authMiddleware, adminOnly)

	// --- Public recovery flow ---
	v1 := e.Group("/v1")
	v1.GET("/environments", environmentHandler.List)
	v1.POST("/recovery/reset-password", recoveryHandler.ResetPassword)
	v1.POST("/recovery/validate-token", recoveryHandler.ValidateToken)
	v1.POST("/recovery/change-password", recoveryHandler.ChangePassword)

	// --- Admin console (JWT + role) ---
	admin := v1.Group("", authMiddleware)
	admin.POST("/recovery/find-account", recoveryHandler.FindAccount, adminOnly)
	admin.POST("/environments/refresh", environmentHandler.Refresh, adminOnly)
	admin.POST("/environments/test", environmentHandler.TestConnection, adminOnly)

	admin.GET("/templates", templateHandler.List, consoleRoles)
	admin.POST("/templates", templateHandler.Create, adminOnly)
	admin.GET("/templates/variables", templateHandler.Variables, consoleRoles)
	admin.POST("/templates/preview", templateHandler.Preview, consoleRoles)
	admin.GET("/templates/:id", templateHandler.Get, consoleRoles)
	admin.PUT("/templates/:id", templateHandler.Update, adminOnly)
	admin.DELETE("/templates/:id", templateHandler.Delete, adminOnly)
	admin.PATCH("/templates/:id/default", templateHandler.SetDefault, adminOnly)

	admin.GET("/audit", auditHandler.List, consoleRoles)
	admin.GET("/audit/stats", auditHandler.Stats, consoleRoles)
	admin.GET("/audit/:id", auditHandler.Get, consoleRoles)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
