package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/courtbridge-backend/internal/data/graph"
	trialrepo "github.com/yungbote/courtbridge-backend/internal/data/repos/trial"
	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/platform/neo4jdb"
	"github.com/yungbote/courtbridge-backend/internal/retrieval"
)

type IngestResult struct {
	DocID    string `json:"doc_id"`
	Segments int    `json:"segments"`
}

// RetrievalService fronts the segment index and hybrid query engine, and
// owns the collaborator calls around them: the provenance graph mirror and
// ingestion log on ingest (best-effort), the trace sink on query (critical).
type RetrievalService interface {
	Ingest(ctx context.Context, caseID, text, docPath string) (*IngestResult, error)
	Query(ctx context.Context, params retrieval.QueryParams) (*retrieval.QueryResult, error)
}

type retrievalService struct {
	db            *gorm.DB
	log           *logger.Logger
	index         *retrieval.Index
	engine        *retrieval.Engine
	traceRepo     trialrepo.RetrievalTraceRepo
	ingestionRepo trialrepo.IngestionLogRepo
	graphClient   *neo4jdb.Client
	depTimeout    time.Duration
}

func NewRetrievalService(
	db *gorm.DB,
	baseLog *logger.Logger,
	index *retrieval.Index,
	engine *retrieval.Engine,
	traceRepo trialrepo.RetrievalTraceRepo,
	ingestionRepo trialrepo.IngestionLogRepo,
	graphClient *neo4jdb.Client,
	depTimeout time.Duration,
) RetrievalService {
	if depTimeout <= 0 {
		depTimeout = 5 * time.Second
	}
	return &retrievalService{
		db:            db,
		log:           baseLog.With("service", "RetrievalService"),
		index:         index,
		engine:        engine,
		traceRepo:     traceRepo,
		ingestionRepo: ingestionRepo,
		graphClient:   graphClient,
		depTimeout:    depTimeout,
	}
}

// Ingest indexes text under the case. Empty text registers an empty
// document. The graph mirror and ingestion log are best-effort: their
// failure never fails the ingest.
func (s *retrievalService) Ingest(ctx context.Context, caseID, text, docPath string) (*IngestResult, error) {
	if strings.TrimSpace(caseID) == "" {
		return nil, types.InvalidArgumentError("case_id is required")
	}
	docID, segments := s.index.Ingest(caseID, text, docPath)

	if s.graphClient != nil {
		graphCtx, cancel := context.WithTimeout(ctx, s.depTimeout)
		if err := graph.UpsertDocumentSegments(graphCtx, s.graphClient, s.log, caseID, docID, docPath, segments); err != nil {
			s.log.Warn("Graph mirror upsert failed (continuing)", "case_id", caseID, "doc_id", docID, "error", err)
		}
		cancel()
	}

	if s.ingestionRepo != nil {
		hashes := make([]string, 0, len(segments))
		for _, seg := range segments {
			hashes = append(hashes, seg.SegmentHash)
		}
		raw, _ := json.Marshal(hashes)
		logCtx, cancel := context.WithTimeout(ctx, s.depTimeout)
		if err := s.ingestionRepo.Create(logCtx, nil, &types.IngestionLog{
			CaseID:        caseID,
			DocID:         docID,
			Path:          docPath,
			SegmentHashes: datatypes.JSON(raw),
		}); err != nil {
			s.log.Warn("Ingestion log write failed (continuing)", "case_id", caseID, "doc_id", docID, "error", err)
		}
		cancel()
	}

	return &IngestResult{DocID: docID, Segments: len(segments)}, nil
}

// Query runs the hybrid engine and records exactly one trace per
// successful call. The trace sink is a critical dependency here: if the
// write fails, the caller gets a dependency error instead of a result.
func (s *retrievalService) Query(ctx context.Context, params retrieval.QueryParams) (*retrieval.QueryResult, error) {
	result, err := s.engine.Query(params)
	if err != nil {
		return nil, err
	}

	timingsRaw, err := json.Marshal(result.Timings)
	if err != nil {
		return nil, err
	}
	resultsRaw, err := json.Marshal(result.Items)
	if err != nil {
		return nil, err
	}

	traceCtx, cancel := context.WithTimeout(ctx, s.depTimeout)
	defer cancel()
	if err := s.traceRepo.Create(traceCtx, nil, &types.RetrievalTrace{
		TraceID:     result.TraceID,
		CaseID:      params.CaseID,
		Query:       params.Text,
		GraphWeight: result.GraphWeight,
		DenseWeight: result.DenseWeight,
		Timings:     datatypes.JSON(timingsRaw),
		Results:     datatypes.JSON(resultsRaw),
	}); err != nil {
		s.log.Error("Trace sink write failed", "case_id", params.CaseID, "trace_id", result.TraceID, "error", err)
		return nil, types.DependencyUnavailableError("trace sink", err)
	}
	return result, nil
}
