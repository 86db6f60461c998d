package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/courtbridge-backend/internal/http/response"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/services"
	"github.com/yungbote/courtbridge-backend/internal/sse"
)

type RealtimeHandler struct {
	log      *logger.Logger
	hub      *sse.SSEHub
	sessions services.TrialSessionService
}

func NewRealtimeHandler(log *logger.Logger, hub *sse.SSEHub, sessions services.TrialSessionService) *RealtimeHandler {
	return &RealtimeHandler{
		log:      log.With("handler", "RealtimeHandler"),
		hub:      hub,
		sessions: sessions,
	}
}

// Stream subscribes the caller to one trial session's event channel and
// holds the connection open until the client disconnects.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Query("session_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	if _, err := h.sessions.GetSession(c.Request.Context(), sessionID); err != nil {
		response.RespondDomainError(c, err)
		return
	}

	client := h.hub.NewSSEClient()
	h.hub.AddChannel(client, sse.SessionChannel(sessionID))
	h.log.Info("SSE stream open", "session_id", sessionID, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Info("SSE stream closed", "session_id", sessionID, "client_id", client.ID)
}
