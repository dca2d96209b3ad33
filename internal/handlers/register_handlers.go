package handlers

import (
	"github.com/SscSPs/expense_management_app/cmd/docs"
	portssvc "github.com/SscSPs/expense_management_app/internal/core/ports/services"
	"github.com/SscSPs/expense_management_app/internal/middleware"
	"github.com/SscSPs/expense_management_app/internal/platform/config"
	"github.com/SscSPs/expense_management_app/internal/platform/metrics"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteDeps carries the infrastructure the routes need besides the services.
type RouteDeps struct {
	Metrics      *metrics.Recorder
	Database     Pinger
	Cache        Pinger
	LoginLimiter *limiter.Limiter
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	deps RouteDeps,
) {
	RegisterValidators()

	health := &healthHandler{database: deps.Database, cache: deps.Cache}
	r.GET("/health", health.health)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Register public authentication routes
	registerAuthRoutes(r, services, deps.LoginLimiter)

	// Setup API v1 routes with Auth Middleware, passing service interfaces
	setupAPIV1Routes(r, cfg, services)

	setupSwaggerRoutes(r, cfg)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	service *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerSessionRoutes(v1, service.TokenService)
	registerUserRoutes(v1, service.User)
	registerExpenseRoutes(v1, service.Expense, service.Approval)
	registerApprovalRoutes(v1, service.Approval)
	registerRuleRoutes(v1, service.Rule)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
