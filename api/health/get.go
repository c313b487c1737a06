package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/voicenote-api/api/types"
)

const toolCheckTimeout = 10 * time.Second

// Get handles health check requests
// @Summary Health check
// @Description Reports database connectivity and whether ffmpeg and ffprobe can be executed.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := gin.H{
			"status":    types.StatusOK,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		if deps != nil && deps.DB != nil {
			response["database"] = getDatabaseStatus(deps)
		} else {
			response["database"] = gin.H{"status": "not configured"}
		}
		response["tools"] = getToolStatus(c.Request.Context(), deps)

		c.JSON(http.StatusOK, response)
	}
}

// getDatabaseStatus returns the database connection status
func getDatabaseStatus(deps *types.Dependencies) gin.H {
	if deps.DB == nil || deps.DB.DB == nil {
		return gin.H{"status": "not configured"}
	}

	if err := deps.DB.HealthCheck(); err != nil {
		return gin.H{"status": "unhealthy", "error": err.Error()}
	}

	return gin.H{"status": "healthy"}
}

func getToolStatus(ctx context.Context, deps *types.Dependencies) gin.H {
	if deps == nil || deps.Tools == nil {
		return gin.H{"status": "not configured", "available": false}
	}

	ctx, cancel := context.WithTimeout(ctx, toolCheckTimeout)
	defer cancel()
	if err := deps.Tools.Verify(ctx); err != nil {
		return gin.H{"status": "unavailable", "available": false, "error": err.Error()}
	}
	return gin.H{"status": "available", "available": true}
}
