// Command server runs the admin system HTTP API.
//
// @title        Admin System API
// @version      1.0
// @description  Administrative back-office API with role-based access control.
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/opsboard/admin-system/internal/api"
	"github.com/opsboard/admin-system/internal/core/service"
	"github.com/opsboard/admin-system/internal/infrastructure/config"
	mongodb "github.com/opsboard/admin-system/internal/infrastructure/db/mongo"
	redisdb "github.com/opsboard/admin-system/internal/infrastructure/db/redis"
	"github.com/opsboard/admin-system/internal/infrastructure/queue"
	"github.com/opsboard/admin-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	roleRepo := mongodb.NewRoleRepository(db)
	permRepo := mongodb.NewPermissionRepository(db)
	menuRepo := mongodb.NewMenuRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	sessions := redisdb.NewSessionStore(rdb)
	loginLimiter := redisdb.NewRateLimiter(rdb, cfg.RateLimit.LoginMax, cfg.RateLimit.LoginWindow)

	// --- Audit pipeline ---
	recorder := queue.NewAuditRecorder(auditRepo, cfg.Audit.QueueSize, log)
	recorder.Start(ctx)

	// --- Services ---
	issuer := service.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := service.NewAuthService(userRepo, sessions, issuer, recorder, log)
	authorizer := service.NewRBACService(roleRepo, permRepo, recorder, log)
	userService := service.NewUserService(userRepo, cfg.Bcrypt.Cost, log)
	roleService := service.NewRoleService(roleRepo, log)
	permService := service.NewPermissionService(permRepo, log)
	menuService := service.NewMenuService(menuRepo, roleRepo, log)
	apiKeyService := service.NewAPIKeyService(roleRepo, log)
	dashService := service.NewDashboardService(userRepo, roleRepo, menuRepo, permRepo, auditRepo)

	// --- Seed built-in records ---
	if err := roleService.EnsureDefaultRoles(ctx); err != nil {
		log.Fatal().Err(err).Msg("default role seeding failed")
	}
	if _, err := userService.EnsureSuperAdmin(ctx); err != nil {
		log.Fatal().Err(err).Msg("super admin seeding failed")
	}

	e := api.NewRouter(api.Deps{
		Log:          log,
		Mongo:        db,
		Redis:        rdb,
		Auth:         authService,
		Authorizer:   authorizer,
		Users:        userService,
		Roles:        roleService,
		Permissions:  permService,
		Menus:        menuService,
		APIKeys:      apiKeyService,
		Dashboard:    dashService,
		AuditLogs:    auditRepo,
		Recorder:     recorder,
		Sessions:     sessions,
		LoginLimiter: loginLimiter,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
