package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vnkhanh/study-notes-backend/controllers"
	"github.com/vnkhanh/study-notes-backend/middleware"
	"github.com/vnkhanh/study-notes-backend/ws"
)

func SetupRouter(r *gin.Engine, h *controllers.Handler, hub *ws.Hub, jwtSecret string) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtSecret))
	{
		api.POST("/generate-notes", h.GenerateNotes)

		api.POST("/documents", h.CreateDocument)
		api.GET("/documents", h.ListDocuments)

		api.GET("/notes", h.ListNotes)

		api.GET("/flashcards", h.ListFlashcards)
		api.POST("/flashcards/:id/review", h.ReviewFlashcard)

		api.GET("/stats", h.Stats)
	}

	r.GET("/ws/status", hub.HandleStatus(jwtSecret))

	return r
}
