package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipeshare/backend/internal/api"
	"github.com/pageza/recipeshare/backend/internal/apperror"
	"github.com/pageza/recipeshare/backend/internal/metrics"
	"github.com/pageza/recipeshare/backend/internal/middleware"
)

// Handlers are the API handlers mounted under /api/v1.
type Handlers struct {
	Auth      *api.AuthHandler
	Profile   *api.ProfileHandler
	Recipe    *api.RecipeHandler
	Comment   *api.CommentHandler
	Image     *api.ImageHandler
	Dashboard *api.DashboardHandler
	Health    *api.HealthHandler
}

// Options configure the engine around the handlers.
type Options struct {
	Verifier       middleware.TokenVerifier
	Metrics        *metrics.Collector
	Logger         *zap.Logger
	AllowedOrigins []string
	MaxBodyBytes   int64

	// StaticPath and StaticDir serve locally stored uploads, e.g. "/uploads".
	StaticPath string
	StaticDir  string
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.BodyLimit(opts.MaxBodyBytes))

	if opts.StaticPath != "" && opts.StaticDir != "" {
		router.StaticFS(opts.StaticPath, gin.Dir(opts.StaticDir, false))
	}

	if h.Health != nil {
		h.Health.RegisterRoutes(&router.RouterGroup)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	requireAuth := middleware.AuthMiddleware(opts.Verifier)

	h.Auth.RegisterRoutes(v1, requireAuth)
	h.Profile.RegisterRoutes(v1, requireAuth)
	h.Recipe.RegisterRoutes(v1, requireAuth)
	h.Comment.RegisterRoutes(v1, requireAuth)
	h.Image.RegisterRoutes(v1, requireAuth)
	h.Dashboard.RegisterRoutes(v1, requireAuth)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Error: "route not found", Code: apperror.KindNotFound})
	})

	return router
}
