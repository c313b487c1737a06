package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/killallgit/voicenote-api/api/health"
	"github.com/killallgit/voicenote-api/api/notes"
	"github.com/killallgit/voicenote-api/api/types"
	"github.com/killallgit/voicenote-api/api/version"
	"github.com/killallgit/voicenote-api/api/voices"
	_ "github.com/killallgit/voicenote-api/docs/swagger"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(engine *gin.Engine, deps *types.Dependencies, rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once) error {
	if deps == nil || deps.Config == nil {
		return errors.New("config is nil")
	}
	cfg := deps.Config

	// Public routes, no rate limiting
	health.RegisterRoutes(engine, deps)
	version.RegisterRoutes(engine, deps)

	engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.Monitoring.Enabled && deps.Metrics != nil {
		engine.GET(cfg.Monitoring.MetricsPath, deps.Metrics.GinHandler())
	}

	engine.NoRoute(types.NotFound)

	if deps.Recordings == nil || deps.Notes == nil || deps.Pipeline == nil {
		return errors.New("recording, note and pipeline services are required")
	}

	api := engine.Group("/api")

	// Processing is expensive, so only the endpoints that run the pipeline are limited
	var processing []gin.HandlerFunc
	if cfg.RateLimiting.Enabled {
		processing = append(processing,
			PerClientRateLimit(rateLimiters, cleanupStop, cleanupInitialized, cfg.RateLimiting.RPS, cfg.RateLimiting.Burst))
	}

	voices.RegisterRoutes(api.Group("/voices"), deps, voices.Limits{
		MaxSize:      cfg.Upload.MaxSize,
		AllowedTypes: cfg.Upload.AllowedMimeTypes,
	}, processing...)
	notes.RegisterRoutes(api.Group("/notes"), deps)

	return nil
}
