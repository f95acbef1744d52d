package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/saasportal/admin-api/internal/api/handler"
	"github.com/saasportal/admin-api/internal/api/middleware"
	"github.com/saasportal/admin-api/internal/core/domain"
	"github.com/saasportal/admin-api/internal/core/ports"
)

// RouterConfig carries every dependency the route tree needs. Redis may be
// nil when rate limiting runs in-process only.
type RouterConfig struct {
	Auth  ports.AuthService
	Users ports.UserService
	RBAC  ports.RBACService

	Tenants   ports.TenantRepository
	Audit     ports.AuditRecorder
	AuditLog  ports.AuditReader
	RateLimit ports.RateLimitStore

	Mongo *mongo.Database
	Redis *redis.Client

	DefaultTenantSlug string
	AccessTTL         time.Duration
	RefreshTTL        time.Duration
	SecureCookies     bool

	// Credential endpoints get a tighter limit than the general API.
	AuthRateMax    int64
	AuthRateWindow time.Duration
	APIRateMax     int64
	APIRateWindow  time.Duration

	Logger zerolog.Logger
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(cfg.Auth, cfg.AccessTTL, cfg.RefreshTTL, cfg.SecureCookies)
	userHandler := handler.NewUserHandler(cfg.Users)
	rbacHandler := handler.NewRBACHandler(cfg.RBAC)

	// --- Shared middleware ---
	resolveTenant := middleware.ResolveTenant(cfg.Tenants, cfg.DefaultTenantSlug)
	authenticate := middleware.Authenticate(cfg.Auth)
	authLimit := middleware.RateLimit(cfg.RateLimit, "auth", cfg.AuthRateMax, cfg.AuthRateWindow, cfg.Logger)
	apiLimit := middleware.RateLimit(cfg.RateLimit, "api", cfg.APIRateMax, cfg.APIRateWindow, cfg.Logger)
	audit := func(action string) echo.MiddlewareFunc {
		return middleware.Audit(cfg.Audit, action, cfg.Logger)
	}

	// --- Observability and docs (tenant-free) ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	readiness := handler.NewReadinessHandler(cfg.Mongo, cfg.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readiness.Readiness)

	// Every business route runs with a resolved tenant.
	apiGroup := e.Group("/api", resolveTenant)

	// --- Auth: public credential endpoints, tightly rate limited ---
	authPublic := apiGroup.Group("/auth", authLimit)
	authPublic.POST("/register", authHandler.Register, audit("auth.register"))
	authPublic.POST("/login", authHandler.Login, audit("auth.login"))
	authPublic.POST("/refresh", authHandler.Refresh)
	authPublic.POST("/forgot-password", authHandler.ForgotPassword, audit("auth.forgot_password"))
	authPublic.PATCH("/reset-password/:token", authHandler.ResetPassword, audit("auth.reset_password"))
	authPublic.GET("/verify-email/:token", authHandler.VerifyEmail, audit("auth.verify_email"))

	// --- Auth: session endpoints ---
	authPrivate := apiGroup.Group("/auth", authenticate, apiLimit)
	authPrivate.POST("/logout", authHandler.Logout, audit("auth.logout"))
	authPrivate.GET("/verify", authHandler.Verify)
	authPrivate.PATCH("/update-password", authHandler.UpdatePassword, audit("auth.update_password"))
	authPrivate.PATCH("/profile", authHandler.UpdateProfile, audit("auth.update_profile"))

	// --- Users: public invitation acceptance ---
	apiGroup.POST("/users/accept-invitation/:token", userHandler.AcceptInvitation, authLimit, audit("invitation.accept"))

	// --- Users: tenant administration ---
	users := apiGroup.Group("/users", authenticate, apiLimit)
	users.GET("", userHandler.List, middleware.RequirePermission(domain.PermUsersRead))
	users.POST("", userHandler.Create, middleware.RequirePermission(domain.PermUsersCreate), audit("user.create"))
	users.PATCH("/bulk", userHandler.Bulk, middleware.RequirePermission(domain.PermUsersUpdate), audit("user.bulk_update"))
	users.GET("/:id", userHandler.Get, middleware.RequirePermission(domain.PermUsersRead))
	users.PUT("/:id", userHandler.Update, middleware.RequirePermission(domain.PermUsersUpdate), audit("user.update"))
	users.DELETE("/:id", userHandler.Delete, middleware.RequirePermission(domain.PermUsersDelete), audit("user.delete"))
	users.POST("/:id/resend-invitation", userHandler.ResendInvitation, middleware.RequirePermission(domain.PermUsersCreate), audit("invitation.resend"))
	users.GET("/:id/activity", userHandler.Activity, middleware.RequirePermission(domain.PermUsersRead))

	// --- RBAC catalog and role assignment ---
	rbac := apiGroup.Group("/rbac", authenticate, apiLimit)
	rbac.GET("/permissions", rbacHandler.Permissions, middleware.RequirePermission(domain.PermRolesRead))
	rbac.GET("/roles", rbacHandler.Roles, middleware.RequirePermission(domain.PermRolesRead))
	rbac.GET("/roles/:role", rbacHandler.Role, middleware.RequirePermission(domain.PermRolesRead))
	rbac.GET("/roles/:role/users", rbacHandler.UsersByRole, middleware.RequirePermission(domain.PermRolesRead))
	rbac.GET("/roles/:role/permissions", rbacHandler.RolePermissions, middleware.RequirePermission(domain.PermRolesRead))
	rbac.GET("/stats", rbacHandler.RoleStats, middleware.RequirePermission(domain.PermRolesRead))
	rbac.PUT("/users/:id/role", rbacHandler.AssignRole, middleware.RequirePermission(domain.PermUsersUpdate), audit("role.assign"))
	rbac.DELETE("/users/:id/role", rbacHandler.RemoveRole, middleware.RequirePermission(domain.PermUsersUpdate), audit("role.remove"))

	// --- Audit trail ---
	auditHandler := handler.NewAuditHandler(cfg.AuditLog)
	apiGroup.GET("/audit", auditHandler.Recent, authenticate, apiLimit, middleware.RequirePermission(domain.PermSecurityAudit))

	return e
}
