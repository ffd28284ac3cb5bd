package http

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jforshea/authhub/internal/auth"
	"github.com/jforshea/authhub/internal/config"
	"github.com/jforshea/authhub/internal/http/handlers"
	"github.com/jforshea/authhub/internal/http/middlewares"
	"github.com/jforshea/authhub/internal/observability"
)

const maxBodyBytes = 1 << 20 // requests are tiny json bodies

type RouterDeps struct {
	Log    *slog.Logger
	Cfg    config.Config
	Auth   handlers.AuthService
	Tokens *auth.Manager
	Prom   *observability.Prom
	Reg    *prometheus.Registry

	PingDB    func(ctx context.Context) error
	PingRedis func(ctx context.Context) error
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// boundary validation: password complexity tag
	if err := handlers.RegisterPasswordRule(); err != nil {
		deps.Log.Error("failed to register password rule", "err", err)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(deps.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(otelgin.Middleware("authhub"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health + metrics

	h := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"db":    deps.PingDB,
		"redis": deps.PingRedis,
	})
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Reg, promhttp.HandlerOpts{})))
	}

	// auth routes

	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Prom)
	guard := middlewares.NewAuthMiddleware(deps.Tokens)

	authGroup := r.Group("/auth", middlewares.RequireJSON())
	authGroup.POST("/signup", authHandler.SignUp)
	authGroup.POST("/signin", authHandler.SignIn)

	protected := authGroup.Group("", guard.RequireAuth())
	protected.POST("/signout", authHandler.SignOut)
	protected.GET("/me", authHandler.Me)

	return r
}
