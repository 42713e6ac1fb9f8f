// internal/api/router.go
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slavodej/screenwright/internal/config"
	"github.com/slavodej/screenwright/internal/di"
	"github.com/slavodej/screenwright/internal/services"
)

// SetupRouter builds the HTTP router from the services registered in
// the DI container.
func SetupRouter() (*gin.Engine, error) {
	cfg := config.GetCurrentConfig()

	container := di.GetContainer()

	documentService, ok := container.Get("documents").(*services.DocumentService)
	if !ok {
		return nil, fmt.Errorf("document service not initialized")
	}

	rewriteService, ok := container.Get("rewrite").(*services.RewriteService)
	if !ok {
		return nil, fmt.Errorf("rewrite service not initialized")
	}

	exportService, ok := container.Get("export").(*services.ExportService)
	if !ok {
		return nil, fmt.Errorf("export service not initialized")
	}

	handler := NewHandler(documentService, rewriteService, exportService)

	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(corsMiddleware(cfg.AllowedOrigin))
	r.Use(requestIDMiddleware())

	// WebSocket event feed
	r.GET("/ws/scripts/:id", handler.ScriptSocket)

	api := r.Group("/api")
	{
		api.GET("/health", handler.Health)

		api.POST("/upload", handler.UploadScript)
		api.POST("/rewrite", RewriteRateLimit(), handler.RewriteText)

		llmGroup := api.Group("/llm")
		{
			llmGroup.GET("/status", handler.GetLLMStatus)
			llmGroup.PUT("/config", handler.UpdateLLMConfig)
		}

		scriptsGroup := api.Group("/scripts")
		{
			scriptsGroup.GET("/:id", handler.GetScript)
			scriptsGroup.DELETE("/:id", handler.CloseScript)

			scriptsGroup.POST("/:id/replace", handler.ReplaceLines)
			scriptsGroup.POST("/:id/rewrite", RewriteRateLimit(), handler.RewriteSelection)

			scriptsGroup.GET("/:id/selection", handler.GetSelection)
			scriptsGroup.POST("/:id/selection", handler.SetSelection)
			scriptsGroup.DELETE("/:id/selection", handler.ClearSelection)

			scriptsGroup.GET("/:id/history", handler.GetHistory)
			scriptsGroup.DELETE("/:id/history", handler.ClearHistory)
			scriptsGroup.POST("/:id/history/:entry_id/undo", handler.UndoEdit)

			scriptsGroup.GET("/:id/export", handler.ExportScript)
		}
	}

	return r, nil
}

// corsMiddleware implements cross-origin resource sharing for the
// browser editor.
func corsMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
