package notes

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/voicenote-api/api/types"
)

// RegisterRoutes registers note routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	router.GET("/:id", GetByID(deps))
	router.GET("/:id/content", GetContent(deps))
}
