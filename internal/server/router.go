package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/courtbridge-backend/internal/http/handlers"
)

type RouterConfig struct {
	HealthHandler    *handlers.HealthHandler
	RetrievalHandler *handlers.RetrievalHandler
	TrialHandler     *handlers.TrialHandler
	RealtimeHandler  *handlers.RealtimeHandler
	AllowOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", cfg.HealthHandler.HealthCheck)

	api := router.Group("/api")
	{
		// Discovery corpus
		ret := api.Group("/retrieval")
		ret.POST("/index", cfg.RetrievalHandler.Index)
		ret.POST("/query", cfg.RetrievalHandler.Query)
		ret.GET("/traces/:trace_id", cfg.RetrievalHandler.GetTrace)

		// Trial sessions
		trial := api.Group("/trial")
		trial.POST("/sessions", cfg.TrialHandler.CreateSession)
		trial.GET("/sessions/:id", cfg.TrialHandler.GetSession)
		trial.POST("/sessions/:id/start", cfg.TrialHandler.StartSession)
		trial.POST("/sessions/:id/end", cfg.TrialHandler.EndSession)
		trial.POST("/sessions/:id/segments", cfg.TrialHandler.AnalyzeSegment)
		trial.GET("/sessions/:id/events", cfg.TrialHandler.GetSessionEvents)
		trial.GET("/sessions/:id/transcript", cfg.TrialHandler.GetSessionTranscript)
		trial.POST("/events/:id/resolution", cfg.TrialHandler.RecordResolution)
		trial.GET("/events/:id/resolutions", cfg.TrialHandler.GetResolutions)
		trial.POST("/events/:id/action", cfg.TrialHandler.RecordAction)
		trial.GET("/stream", cfg.RealtimeHandler.Stream)
	}

	return router
}
