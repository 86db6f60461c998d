package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	trialrepo "github.com/yungbote/courtbridge-backend/internal/data/repos/trial"
	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/http/response"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/retrieval"
	"github.com/yungbote/courtbridge-backend/internal/services"
)

type RetrievalHandler struct {
	log       *logger.Logger
	svc       services.RetrievalService
	traceRepo trialrepo.RetrievalTraceRepo
}

func NewRetrievalHandler(log *logger.Logger, svc services.RetrievalService, traceRepo trialrepo.RetrievalTraceRepo) *RetrievalHandler {
	return &RetrievalHandler{
		log:       log.With("handler", "RetrievalHandler"),
		svc:       svc,
		traceRepo: traceRepo,
	}
}

type indexRequest struct {
	CaseID  string `json:"case_id"`
	Text    string `json:"text"`
	DocPath string `json:"doc_path"`
}

func (h *RetrievalHandler) Index(c *gin.Context) {
	var req indexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	res, err := h.svc.Ingest(c.Request.Context(), req.CaseID, req.Text, req.DocPath)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, res)
}

type queryRequest struct {
	CaseID      string   `json:"case_id"`
	Text        string   `json:"text"`
	K           int      `json:"k"`
	GraphWeight *float64 `json:"graph_weight"`
	DenseWeight *float64 `json:"dense_weight"`
	ReturnPaths *bool    `json:"return_paths"`
}

func (h *RetrievalHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	result, err := h.svc.Query(c.Request.Context(), retrieval.QueryParams{
		CaseID:      req.CaseID,
		Text:        req.Text,
		K:           req.K,
		GraphWeight: req.GraphWeight,
		DenseWeight: req.DenseWeight,
		ReturnPaths: req.ReturnPaths,
	})
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (h *RetrievalHandler) GetTrace(c *gin.Context) {
	traceID := c.Param("trace_id")
	row, err := h.traceRepo.GetByTraceID(c.Request.Context(), nil, traceID)
	if err != nil {
		response.RespondDomainError(c, types.InternalError("load trace", err))
		return
	}
	if row == nil {
		response.RespondDomainError(c, types.NotFoundError("trace "+traceID))
		return
	}
	response.RespondOK(c, row)
}
