package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/courtbridge-backend/internal/http/response"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/services"
)

type TrialHandler struct {
	log         *logger.Logger
	sessions    services.TrialSessionService
	resolutions services.ResolutionService
}

func NewTrialHandler(log *logger.Logger, sessions services.TrialSessionService, resolutions services.ResolutionService) *TrialHandler {
	return &TrialHandler{
		log:         log.With("handler", "TrialHandler"),
		sessions:    sessions,
		resolutions: resolutions,
	}
}

type createSessionRequest struct {
	CaseID string `json:"case_id"`
	Mode   string `json:"mode"`
}

func (h *TrialHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	session, err := h.sessions.CreateSession(c.Request.Context(), req.CaseID, req.Mode)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, session)
}

func (h *TrialHandler) GetSession(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessions.GetSession(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, session)
}

func (h *TrialHandler) StartSession(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessions.StartSession(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, session)
}

func (h *TrialHandler) EndSession(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	session, err := h.sessions.EndSession(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, session)
}

// AnalyzeSegment accepts one transcript segment, persists it, and returns
// the segment plus any objection events it produced. The same payload goes
// out on the session's SSE channel before this response returns.
func (h *TrialHandler) AnalyzeSegment(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.SegmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	res, err := h.sessions.IngestSegment(c.Request.Context(), id, req)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func (h *TrialHandler) GetSessionEvents(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	events, err := h.sessions.GetSessionEvents(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"events": events})
}

func (h *TrialHandler) GetSessionTranscript(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	segments, err := h.sessions.GetSessionTranscript(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"segments": segments})
}

type resolutionRequest struct {
	ChosenCure string `json:"chosen_cure"`
}

func (h *TrialHandler) RecordResolution(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req resolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	row, err := h.resolutions.RecordResolution(c.Request.Context(), id, req.ChosenCure)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, row)
}

func (h *TrialHandler) GetResolutions(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rows, err := h.resolutions.GetResolutions(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"resolutions": rows})
}

type actionRequest struct {
	ActionTaken string `json:"action_taken"`
	Outcome     string `json:"outcome"`
}

func (h *TrialHandler) RecordAction(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req actionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	event, err := h.resolutions.RecordAction(c.Request.Context(), id, req.ActionTaken, req.Outcome)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, event)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}
