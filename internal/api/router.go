// Package api wires the HTTP routes of the simulation server.
package api

import (
	"net/http"
	"os"
	"strings"

	"ecg-synth/internal/api/handlers"
	"ecg-synth/internal/api/middleware"
	"ecg-synth/internal/store"
	"ecg-synth/internal/synth"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators of the router. All fields are optional: a nil Store
// makes the stored-run routes answer 503 and a nil Cache disables result caching.
type Deps struct {
	Engine         *synth.Engine
	Store          *store.RunStore
	Cache          *store.ResultCache
	Logger         *zap.Logger
	MaxSamples     int // per-run sample limit; 0 means handlers.DefaultMaxSamples
	ScenarioDir    string
	StaticDir      string
	AllowedOrigins []string
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.CORS(d.AllowedOrigins))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.ErrorHandler(logger))

	simHandler := handlers.NewSimulationHandler(d.Engine, d.Store, d.Cache, d.MaxSamples, logger)
	scenarioHandler := handlers.NewScenarioHandler(d.ScenarioDir, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": d.Store != nil})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/presets", handlers.ListPresets)
		api.GET("/scenarios", scenarioHandler.ListScenarios)

		api.POST("/simulate", simHandler.Simulate)
		api.POST("/simulate/compare", simHandler.Compare)

		api.GET("/simulations", simHandler.ListRuns)
		api.GET("/simulations/:id", simHandler.GetRun)
		api.GET("/simulations/:id/csv", simHandler.GetRunCSV)
		api.GET("/simulations/:id/png", simHandler.GetRunPNG)
	}

	router.GET("/ws/stream", simHandler.Stream)

	serveStatic(router, d.StaticDir, logger)
	return router
}

// serveStatic serves a built web UI with SPA fallback, if the directory exists.
func serveStatic(router *gin.Engine, staticDir string, logger *zap.Logger) {
	if staticDir == "" {
		return
	}
	if _, err := os.Stat(staticDir); err != nil {
		logger.Info("static directory not found, skipping static file serving", zap.String("dir", staticDir))
		return
	}
	router.Static("/assets", staticDir+"/assets")
	router.StaticFile("/favicon.ico", staticDir+"/favicon.ico")
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(staticDir + "/index.html")
	})
	logger.Info("serving static files", zap.String("dir", staticDir))
}
