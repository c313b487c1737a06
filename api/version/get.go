package version

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/voicenote-api/api/types"
)

// Get handles version requests
// @Summary Service name and version
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	version := "dev"
	if deps != nil && deps.Version != "" {
		version = deps.Version
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Voicenote API",
			"version":     version,
			"description": "Turns uploaded voice recordings into transcript notes",
			"status":      "running",
		})
	}
}
