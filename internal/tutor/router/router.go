// Package router wires the tutoring API routes.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/tutor-x/internal/tutor/handler"
)

// Register registers all tutoring API routes on the engine.
func Register(engine *gin.Engine, health *handler.HealthHandler, chat *handler.ChatHandler, coach *handler.CoachHandler, study *handler.StudyHandler) {
	logger.Info("Registering tutor routes...")

	api := engine.Group("/api")
	{
		api.GET("/health", health.Health)

		api.POST("/chat/completion", chat.Completion)
		api.POST("/session/clear", chat.ClearSession)

		api.POST("/socratic/question", coach.Socratic)
		api.POST("/viva/validate", coach.Viva)
		api.POST("/translate/concept", coach.Translate)
		api.POST("/rubric/evaluate", coach.Rubric)
		api.POST("/schedule/review", coach.Schedule)
		api.POST("/course/generate", coach.Course)

		api.POST("/upload/document", study.Upload)
		api.POST("/rag/ask", study.Ask)
		api.GET("/rag/summary", study.Summary)
	}

	logger.Info("HTTP routes registered")
}
