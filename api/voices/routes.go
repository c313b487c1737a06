package voices

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/voicenote-api/api/types"
)

// RegisterRoutes registers the recording routes. pipeline middleware wraps
// only the endpoints that run processing.
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies, limits Limits, pipeline ...gin.HandlerFunc) {
	router.GET("/", List(deps))
	router.GET("/:id", GetByID(deps))
	router.POST("/", chain(pipeline, Post(deps, limits))...)
	router.POST("/:id/process", chain(pipeline, Process(deps))...)
}

func chain(middleware []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middleware)+1)
	out = append(out, middleware...)
	return append(out, handler)
}
