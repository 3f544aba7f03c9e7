package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"smartop/fleet-service/internal/auth"
	"smartop/fleet-service/internal/config"
	"smartop/fleet-service/internal/database"
	"smartop/fleet-service/internal/httpapi"
	"smartop/fleet-service/internal/logs"
	"smartop/fleet-service/internal/service"
	"smartop/fleet-service/internal/store"
	"smartop/fleet-service/internal/store/memory"
	"smartop/fleet-service/internal/store/postgres"
	"smartop/fleet-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logs.Logger.Fatalf("config: %v", err)
	}
	logs.Init(logs.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	shutdownTracing := telemetry.Setup("fleet-service", telemetry.Options{Endpoint: cfg.OTLPEndpoint, Insecure: cfg.OTLPInsecure})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	var st store.Store
	if cfg.DatabaseURL == "" {
		logs.Logger.Warn("DB_DSN not set, using in-memory store")
		st = memory.NewStore()
	} else {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logs.Logger.Fatalf("db connect: %v", err)
		}
		defer pool.Close()

		if cfg.AutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			err := database.Migrate(ctx, pool)
			cancel()
			if err != nil {
				logs.Logger.Fatalf("migrate: %v", err)
			}
			logs.Logger.Info("schema migrated")
		}
		st = postgres.NewStore(pool)
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	if cfg.Bootstrap() {
		ensureAdmin(st, hasher, cfg)
	}

	handler := httpapi.NewHandler(st, hasher, auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL), httpapi.Options{
		RateLimit: httpapi.RateLimitConfig{
			IPPerMinute:     cfg.RateLimitPerMinute,
			IPBurst:         cfg.RateLimitBurst,
			TenantPerMinute: cfg.TenantRateLimitPerMinute,
			TenantBurst:     cfg.TenantRateLimitBurst,
		},
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(handler.Routes(), "fleet-service"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logs.Logger.Infof("fleet-service listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.Logger.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logs.Logger.Errorf("shutdown error: %v", err)
	}
}

func ensureAdmin(st store.Store, hasher auth.PasswordHasher, cfg config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := service.NewUserService(st, hasher)
	admin, created, err := users.EnsureAdmin(ctx, cfg.BootstrapOrganizationID, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword)
	if err != nil {
		logs.Logger.Fatalf("bootstrap admin: %v", err)
	}
	if created {
		logs.Logger.WithField("organization", admin.OrganizationID).Infof("bootstrap admin %s created", admin.Email)
	}
}
