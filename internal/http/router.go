package http

import (
	"log/slog"
	"strings"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/http/handlers"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "taskhub-api"

// Deps is everything the router needs from the outside. Prom and RateCounter
// are optional: nil disables metrics, and rate limiting falls back to
// in-process counters.
type Deps struct {
	Auth        handlers.AuthService
	Gate        middlewares.Authenticator
	Projects    handlers.ProjectStore
	Tasks       handlers.TaskStore
	Ping        handlers.Pinger
	Prom        *observability.Prom
	RateCounter middlewares.Counter
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Prom != nil && cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(deps.Prom.Handler()))
	}

	counter := deps.RateCounter
	if counter == nil {
		counter = middlewares.NewMemoryCounter()
	}

	authLimiter := middlewares.NewRateLimiter(counter, "auth", cfg.AuthRateLimit, cfg.AuthRateWindow())
	authLimiter.OnLimited = deps.Prom.ObserveRateLimited

	authMW := middlewares.NewAuthMiddleware(deps.Gate)

	usersHandler := handlers.NewUsersHandler(deps.Auth)
	projectsHandler := handlers.NewProjectsHandler(deps.Projects)
	tasksHandler := handlers.NewTasksHandler(deps.Tasks)

	api := r.Group(apiPrefix(cfg.APIPrefix))
	api.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	api.Use(middlewares.RequireJSON())

	users := api.Group("/users")
	{
		limited := authLimiter.RateLimiterMiddleware(middlewares.KeyByIP)
		users.POST("/register", limited, usersHandler.Register)
		users.POST("/login", limited, usersHandler.Login)

		users.GET("/profile", authMW.RequireAuth(), usersHandler.Profile)
		users.PUT("/profile", authMW.RequireAuth(), usersHandler.UpdateProfile)
	}

	projects := api.Group("/projects", authMW.RequireAuth())
	{
		projects.POST("", projectsHandler.CreateProject)
		projects.GET("", projectsHandler.ListProjects)
		projects.GET("/:id", projectsHandler.GetProjectByID)
		projects.PUT("/:id", projectsHandler.UpdateProject)
		projects.DELETE("/:id", projectsHandler.DeleteProject)
		projects.GET("/:id/tasks", projectsHandler.ListProjectTasks)
	}

	tasks := api.Group("/tasks", authMW.RequireAuth())
	{
		tasks.POST("", tasksHandler.CreateTask)
		tasks.GET("", tasksHandler.ListTasks)
		tasks.GET("/stats", tasksHandler.TaskStats)
		tasks.GET("/:id", tasksHandler.GetTaskByID)
		tasks.PUT("/:id", tasksHandler.UpdateTask)
		tasks.DELETE("/:id", tasksHandler.DeleteTask)
	}

	log.Debug("routes registered", "prefix", apiPrefix(cfg.APIPrefix), "routes", len(r.Routes()))

	return r
}

func apiPrefix(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return ""
	}
	return p
}
