package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opsboard/admin-system/internal/api/handler"
	"github.com/opsboard/admin-system/internal/api/middleware"
	"github.com/opsboard/admin-system/internal/core/domain"
	"github.com/opsboard/admin-system/internal/core/ports"
)

// Deps carries the wired services the router mounts. Construction happens in
// main so seeding and the audit worker share the same instances.
type Deps struct {
	Log   zerolog.Logger
	Mongo *mongo.Database
	Redis *redis.Client

	Auth        ports.AuthService
	Authorizer  ports.Authorizer
	Users       ports.UserService
	Roles       ports.RoleService
	Permissions ports.PermissionService
	Menus       ports.MenuService
	APIKeys     ports.APIKeyService
	Dashboard   ports.DashboardService
	AuditLogs   ports.AuditRepository
	Recorder    ports.AuditRecorder
	Sessions    ports.SessionStore

	LoginLimiter middleware.Limiter
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("admin"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	roleHandler := handler.NewRoleHandler(deps.Roles, deps.APIKeys)
	permHandler := handler.NewPermissionHandler(deps.Permissions)
	menuHandler := handler.NewMenuHandler(deps.Menus)
	logHandler := handler.NewAuditLogHandler(deps.AuditLogs)
	dashHandler := handler.NewDashboardHandler(deps.Dashboard)

	authed := middleware.Auth(deps.Auth, deps.Sessions)
	perm := func(code string) echo.MiddlewareFunc {
		return middleware.RequirePermission(deps.Authorizer, code)
	}
	audit := func(action, resource string) echo.MiddlewareFunc {
		return middleware.Audit(deps.Recorder, action, resource)
	}

	// --- Auth ---
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login,
		middleware.RateLimit(deps.LoginLimiter, "login"), audit("login", "auth"))
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout, authed, audit("logout", "auth"))
	auth.GET("/profile", authHandler.Profile, authed)

	// --- Users ---
	users := e.Group("/api/users", authed)
	users.GET("", userHandler.List, perm("user:view"))
	users.GET("/:id", userHandler.Get, perm("user:view"))
	users.POST("", userHandler.Create, perm("user:create"), audit("create", "user"))
	users.PUT("/:id", userHandler.Update, perm("user:update"), audit("update", "user"))
	users.DELETE("/:id", userHandler.Delete, perm("user:delete"), audit("delete", "user"))

	// --- Roles and their API keys ---
	roles := e.Group("/api/roles", authed)
	roles.GET("", roleHandler.List, perm("role:view"))
	roles.GET("/:id", roleHandler.Get, perm("role:view"))
	roles.POST("", roleHandler.Create, perm("role:create"), audit("create", "role"))
	roles.PUT("/:id", roleHandler.Update, perm("role:update"), audit("update", "role"))
	roles.DELETE("/:id", roleHandler.Delete, perm("role:delete"), audit("delete", "role"))

	roles.GET("/:id/api-keys", roleHandler.ListAPIKeys, perm("role:view"))
	roles.POST("/:id/api-keys", roleHandler.GenerateAPIKey,
		perm("role:update"), audit("generate", "api_key"))
	roles.PATCH("/:id/api-keys/:key", roleHandler.ToggleAPIKey,
		perm("role:update"), audit("toggle", "api_key"))
	roles.DELETE("/:id/api-keys/:key", roleHandler.RevokeAPIKey,
		perm("role:update"), audit("revoke", "api_key"))

	// --- Permissions ---
	perms := e.Group("/api/permissions", authed)
	perms.GET("", permHandler.List, perm("permission:view"))
	perms.GET("/tree", permHandler.Tree, perm("permission:view"))
	perms.GET("/:id", permHandler.Get, perm("permission:view"))
	perms.POST("", permHandler.Create, perm("permission:create"), audit("create", "permission"))
	perms.PUT("/:id", permHandler.Update, perm("permission:update"), audit("update", "permission"))
	perms.DELETE("/:id", permHandler.Delete, perm("permission:delete"), audit("delete", "permission"))

	// --- Menus ---
	menus := e.Group("/api/menus", authed)
	menus.GET("", menuHandler.List, perm("menu:view"))
	menus.GET("/tree", menuHandler.Tree, perm("menu:view"))
	// Any authenticated principal may fetch its own navigation.
	menus.GET("/user/tree", menuHandler.UserTree)
	menus.GET("/:id", menuHandler.Get, perm("menu:view"))
	menus.POST("/sync", menuHandler.Sync,
		middleware.RequireRole(deps.Authorizer, domain.RoleSuperAdmin), audit("sync", "menu"))
	menus.POST("", menuHandler.Create, perm("menu:create"), audit("create", "menu"))
	menus.PUT("/:id", menuHandler.Update, perm("menu:update"), audit("update", "menu"))
	menus.DELETE("/:id", menuHandler.Delete, perm("menu:delete"), audit("delete", "menu"))

	// --- Operation logs (administrators only) ---
	logs := e.Group("/api/logs", authed,
		middleware.RequireRole(deps.Authorizer, domain.RoleSuperAdmin, domain.RoleAdmin))
	logs.GET("", logHandler.List, perm("log:view"))

	// --- Dashboard ---
	dash := e.Group("/api/dashboard", authed)
	dash.GET("/stats", dashHandler.Stats, perm("dashboard:view"))
	dash.GET("/recent", dashHandler.Recent, perm("dashboard:view"))

	// --- Observability and docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	return e
}
