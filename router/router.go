package router

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmrodillon/portfolio-backend/config"
	"github.com/jmrodillon/portfolio-backend/handlers"
	"github.com/jmrodillon/portfolio-backend/middleware"
	"github.com/jmrodillon/portfolio-backend/types"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config             *config.Config
	TestimonialHandler *handlers.TestimonialHandler
	HealthHandler      *handlers.HealthHandler
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.Default()

	// Global Middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Wrong-method requests get the JSON envelope with a 405 instead of
	// gin's default 404.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, types.ErrorResponse{OK: false, Error: "Method not allowed"})
	})

	// Health and Metrics Routes
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Testimonial API
	api := r.Group("/api")
	{
		testimonials := api.Group("/testimonials")
		{
			testimonials.GET("", deps.TestimonialHandler.ListApproved)
			testimonials.POST("/submit", deps.TestimonialHandler.Submit)

			admin := testimonials.Group("")
			admin.Use(middleware.AdminAuthMiddleware(deps.Config.Admin.Token))
			{
				admin.GET("/pending", deps.TestimonialHandler.ListPending)
				admin.POST("/moderate", deps.TestimonialHandler.Moderate)
				admin.POST("/delete", deps.TestimonialHandler.DeleteApproved)
			}
		}
	}

	setupStaticRoutes(r, deps.Config)

	return r
}

// setupStaticRoutes hosts the built portfolio bundle next to the API. The
// presentational SPA is an external collaborator; we only serve its assets.
func setupStaticRoutes(r *gin.Engine, cfg *config.Config) {
	staticDir := cfg.Server.StaticDir

	if staticDir != "" {
		r.StaticFile("/", filepath.Join(staticDir, "index.html"))
		r.Static("/assets", filepath.Join(staticDir, "assets"))
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, types.ErrorResponse{OK: false, Error: "Not found"})
			return
		}
		if staticDir != "" && c.Request.Method == http.MethodGet {
			// Single-page app: unknown paths fall back to the shell.
			c.File(filepath.Join(staticDir, "index.html"))
			return
		}
		c.JSON(http.StatusNotFound, types.ErrorResponse{OK: false, Error: "Not found"})
	})
}
