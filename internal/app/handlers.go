package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/courtbridge-backend/internal/http/handlers"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/server"
	"github.com/yungbote/courtbridge-backend/internal/sse"
)

type Handlers struct {
	Health    *handlers.HealthHandler
	Retrieval *handlers.RetrievalHandler
	Trial     *handlers.TrialHandler
	Realtime  *handlers.RealtimeHandler
}

func wireHandlers(log *logger.Logger, repos Repos, svcs Services, hub *sse.SSEHub) Handlers {
	return Handlers{
		Health:    handlers.NewHealthHandler(),
		Retrieval: handlers.NewRetrievalHandler(log, svcs.Retrieval, repos.Traces),
		Trial:     handlers.NewTrialHandler(log, svcs.Sessions, svcs.Resolution),
		Realtime:  handlers.NewRealtimeHandler(log, hub, svcs.Sessions),
	}
}

func wireRouter(h Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		HealthHandler:    h.Health,
		RetrievalHandler: h.Retrieval,
		TrialHandler:     h.Trial,
		RealtimeHandler:  h.Realtime,
	})
}
