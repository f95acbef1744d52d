package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/saasportal/admin-api/internal/api"
	"github.com/saasportal/admin-api/internal/core/ports"
	"github.com/saasportal/admin-api/internal/core/service"
	"github.com/saasportal/admin-api/internal/infrastructure/cache"
	"github.com/saasportal/admin-api/internal/infrastructure/config"
	mongodb "github.com/saasportal/admin-api/internal/infrastructure/db/mongo"
	redisdb "github.com/saasportal/admin-api/internal/infrastructure/db/redis"
	"github.com/saasportal/admin-api/internal/infrastructure/mailer"
	"github.com/saasportal/admin-api/internal/infrastructure/queue"
	"github.com/saasportal/admin-api/pkg/logger"
)

// @title           Admin Portal API
// @version         1.0
// @description     Multi-tenant administration API: sessions, users, roles.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.Production(),
	})

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Redis (optional) ---
	var redisClient *goredis.Client
	var rateLimitStore ports.RateLimitStore
	if cfg.Redis.Addr != "" {
		redisClient, err = redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		rateLimitStore = redisdb.NewRateLimitStore(redisClient)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, rate limiting runs in-process")
		rateLimitStore = cache.NewRateLimitStore()
	}

	// --- Mail ---
	var mail ports.Mailer
	if cfg.SMTP.Host != "" {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		log.Warn().Msg("SMTP_HOST not set, emails are written to the log")
		mail = mailer.NewLogMailer(log)
	}

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	tenantRepo := mongodb.NewTenantRepository(db)
	auditRepo := mongodb.NewAuditRepository(db)

	auditDispatcher := queue.NewAuditDispatcher(0, auditRepo, log)
	auditDispatcher.Start(ctx)

	// --- Services ---
	tokenService, err := service.NewTokenService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token service init failed")
	}
	authService := service.NewAuthService(userRepo, tenantRepo, tokenService, mail, cfg.BcryptCost, log)
	userService := service.NewUserService(userRepo, tenantRepo, mail, authService, log)
	rbacService := service.NewRBACService(userRepo, log)

	// --- HTTP ---
	e := api.NewRouter(api.RouterConfig{
		Auth:  authService,
		Users: userService,
		RBAC:  rbacService,

		Tenants:   tenantRepo,
		Audit:     auditDispatcher,
		AuditLog:  auditRepo,
		RateLimit: rateLimitStore,

		Mongo: db,
		Redis: redisClient,

		DefaultTenantSlug: cfg.DefaultTenantSlug,
		AccessTTL:         cfg.JWT.AccessTTL,
		RefreshTTL:        cfg.JWT.RefreshTTL,
		SecureCookies:     cfg.Production(),

		AuthRateMax:    cfg.RateLimit.AuthMax,
		AuthRateWindow: cfg.RateLimit.AuthWindow,
		APIRateMax:     cfg.RateLimit.APIMax,
		APIRateWindow:  cfg.RateLimit.APIWindow,

		Logger: log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := mongodb.EnsureUserIndexes(ctx, db); err != nil {
		return err
	}
	if err := mongodb.EnsureTenantIndexes(ctx, db); err != nil {
		return err
	}
	return mongodb.EnsureAuditIndexes(ctx, db)
}
