package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jforshea/authhub/internal/auth"
	"github.com/jforshea/authhub/internal/cache"
	"github.com/jforshea/authhub/internal/config"
	"github.com/jforshea/authhub/internal/db"
	httpx "github.com/jforshea/authhub/internal/http"
	"github.com/jforshea/authhub/internal/observability"
	"github.com/jforshea/authhub/internal/repo/postgres"
	"github.com/jforshea/authhub/internal/service"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	if cfg.JWTSecret == "" {
		log.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	// tracing is optional; only wired when an endpoint is configured

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "authhub", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("failed to init tracer", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	// database

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	schemaCtx, cancelSchema := config.WithTimeout(10 * time.Second)

	err = db.EnsureSchema(schemaCtx, pool)

	cancelSchema()

	if err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	// metrics

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// user cache: redis when configured, process-local otherwise

	var userCache service.UserCache
	var pingRedis func(ctx context.Context) error

	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			TTL:      30 * time.Second,
		})

		defer redisCache.Close()

		userCache = redisCache
		pingRedis = redisCache.Ping
	} else {
		userCache = cache.NewMemory(30 * time.Second)
	}

	// wiring

	usersRepo := postgres.NewUsersRepo(pool, prom)
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiration())
	authSvc := service.NewAuth(usersRepo, tokens, userCache)

	router := httpx.NewRouter(httpx.RouterDeps{
		Log:       log,
		Cfg:       cfg,
		Auth:      authSvc,
		Tokens:    tokens,
		Prom:      prom,
		Reg:       reg,
		PingDB:    pool.Ping,
		PingRedis: pingRedis,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
