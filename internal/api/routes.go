package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnassess/internal/api/handlers"
	"learnassess/internal/session"
)

// SetupRoutes sets up the API routes. Session cookie middleware must already
// be installed on router.
func SetupRoutes(router *gin.Engine, handler *handlers.Handler, frontendURL string, logger *zap.Logger) {
	router.Use(CORSMiddleware(frontendURL))

	api := router.Group("/api")
	{
		api.GET("/health", handler.HandleHealth)
		api.POST("/parse", handler.HandleParse)

		learner := api.Group("/")
		learner.Use(SessionMiddleware(logger))
		{
			learner.GET("/session", handler.HandleGetSession)
			learner.POST("/navigate", handler.HandleNavigate)
			learner.POST("/documents", handler.HandleUploadDocuments)

			// --- Multiple choice ---
			learner.POST("/mcq/config", handler.HandleConfigure(session.PageMCQConfig))
			learner.POST("/mcq/start", handler.HandleStartMCQ)
			learner.GET("/mcq/question", handler.HandleGetQuestion)
			learner.POST("/mcq/answer", handler.HandleAnswer)
			learner.GET("/mcq/results", handler.HandleResults)

			// --- Free response ---
			learner.POST("/free-response/config", handler.HandleConfigure(session.PageFreeResponseConfig))
			learner.POST("/free-response/start", handler.HandleStartFreeResponse)
			learner.GET("/free-response", handler.HandleGetFreeResponse)
			learner.POST("/free-response/:index/evaluate", handler.HandleEvaluate)
			learner.POST("/free-response/finish", handler.HandleFinishFreeResponse)

			learner.GET("/results", handler.HandleHistory)
		}
	}
}
