package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/codewright/jobhub/internal/auth"
	"github.com/codewright/jobhub/internal/cache"
	"github.com/codewright/jobhub/internal/config"
	"github.com/codewright/jobhub/internal/dashboard"
	"github.com/codewright/jobhub/internal/domain/user"
	"github.com/codewright/jobhub/internal/http/handlers"
	"github.com/codewright/jobhub/internal/http/middlewares"
	"github.com/codewright/jobhub/internal/observability"
	"github.com/codewright/jobhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// NewRouter wires repositories, handlers and the middleware chain into a gin
// engine. The cache may be nil, in which case listing responses are computed
// on every request.
func NewRouter(
	cfg config.Config,
	log *slog.Logger,
	pool *pgxpool.Pool,
	c cache.Cache,
	prom *observability.Prom,
	reg *prometheus.Registry,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB
	r.Use(otelgin.Middleware("jobhub-api"))
	r.Use(prom.GinHandleMiddleware())

	// repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	jobsRepo := postgres.NewJobsRepo(pool, prom)
	applicationsRepo := postgres.NewApplicationsRepo(pool, prom)
	tasksRepo := postgres.NewTasksRepo(pool, prom)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)

	// handlers
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	authMW := middlewares.NewAuthMiddleware(jwtManager)

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager, refreshRepo, cfg)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	jobsHandler := handlers.NewJobsHandler(jobsRepo, c, 5*time.Second)
	applicationsHandler := handlers.NewApplicationsHandler(applicationsRepo, jobsRepo, tasksRepo)
	dashboardHandler := handlers.NewDashboardHandler(dashboard.NewService(jobsRepo, applicationsRepo))

	// health + metrics
	ping := func(ctx context.Context) error {
		if pool == nil {
			return nil
		}
		pctx, cancel := context.WithTimeout(ctx, 1*time.Second)
		defer cancel()
		return pool.Ping(pctx)
	}

	healthHandler := handlers.NewHealthHandler(ping)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// per-client limits: tighter on the auth surface than on the rest
	authLimiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	apiLimiter := middlewares.NewRateLimiter(cfg.RateLimit*10, cfg.RateLimitWindow)

	// public
	pub := r.Group("/")
	pub.Use(apiLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		pub.GET("/jobs", jobsHandler.List)
		pub.GET("/jobs/:id", jobsHandler.GetByID)
	}

	// auth surface
	ag := r.Group("/auth")
	ag.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		ag.POST("/register", authHandler.Register)
		ag.POST("/login", authHandler.Login)
		ag.POST("/refresh", authHandler.Refresh)
		ag.POST("/logout", authHandler.Logout)
		ag.GET("/me", authMW.RequireAuth(), authHandler.Me)
	}

	// authenticated
	priv := r.Group("/")
	priv.Use(authMW.RequireAuth())
	priv.Use(apiLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	{
		priv.GET("/me", usersHandler.GetProfile)
		priv.PUT("/me", usersHandler.UpdateProfile)

		// withdrawal is applicant-gated in the repository, not by role
		priv.DELETE("/applications/:id", applicationsHandler.Withdraw)

		// seeker-only surface
		seek := priv.Group("/")
		seek.Use(authMW.RequireRole(string(user.RoleJobSeeker)))
		{
			seek.POST("/jobs/:id/applications", applicationsHandler.Apply)
			seek.GET("/me/applications", applicationsHandler.MyApplications)
			seek.GET("/dashboard/seeker", dashboardHandler.Seeker)
		}

		// recruiter-only surface
		rec := priv.Group("/")
		rec.Use(authMW.RequireRole(string(user.RoleRecruiter)))
		{
			rec.POST("/jobs", jobsHandler.Create)
			rec.PUT("/jobs/:id", jobsHandler.Update)
			rec.DELETE("/jobs/:id", jobsHandler.Delete)
			rec.GET("/me/jobs", jobsHandler.MyJobs)
			rec.GET("/jobs/:id/applications", applicationsHandler.ListForJob)
			rec.PATCH("/applications/:id/status", applicationsHandler.UpdateStatus)
			rec.GET("/dashboard/recruiter", dashboardHandler.Recruiter)
		}
	}

	return r
}
