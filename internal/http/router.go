package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/rosterhub/internal/config"
	"github.com/geocoder89/rosterhub/internal/http/handlers"
	"github.com/geocoder89/rosterhub/internal/http/middlewares"
	"github.com/geocoder89/rosterhub/internal/observability"
	"github.com/geocoder89/rosterhub/internal/rosterevents"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Store    handlers.UsersStore
	Reporter handlers.HealthReporter

	// optional
	Events   *rosterevents.Dispatcher
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	r.Use(middlewares.RequestID())
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))

	limiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	r.Use(limiter.RateLimiterMiddleware(middlewares.KeyByIP))

	// health
	h := handlers.NewHealthHandler(deps.Reporter)
	r.GET("/health", h.Health)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// roster
	usersDeps := handlers.UsersDeps{
		Cache:  handlers.NewListCache(listCacheTTL(cfg)),
		Events: deps.Events,
	}
	if deps.Prom != nil {
		usersDeps.OnChange = deps.Prom.SetRosterSize
		deps.Prom.SetRosterSize(len(deps.Store.List()))
	}
	usersHandler := handlers.NewUsersHandlerWithDeps(deps.Store, usersDeps)

	users := r.Group("/users")
	users.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	users.GET("", usersHandler.ListUsers)
	users.POST("", middlewares.RequireJSON(), usersHandler.CreateUser)
	users.DELETE("/:id", usersHandler.DeleteUser)

	return r
}

func listCacheTTL(cfg config.Config) time.Duration {
	if cfg.ListCacheTTL <= 0 {
		return 5 * time.Second
	}
	return cfg.ListCacheTTL
}
