package api

import (
	"examprep/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(router *gin.Engine, handler *handlers.Handler) {
	router.Use(CORSMiddleware())

	router.GET("/", handler.HandleRoot)
	router.POST("/generate/mcq", handler.HandleGenerateMCQ)
	router.POST("/generate/points", handler.HandleGeneratePoints)
	router.GET("/history", handler.HandleHistory)
}
