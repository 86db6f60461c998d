package services

import (
	"context"
	"time"

	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/retrieval"
)

type CorrelationRef struct {
	SegmentID string               `json:"segment_id"`
	Path      []retrieval.PathNode `json:"path,omitempty"`
}

type Correlation struct {
	TraceID string
	Refs    []CorrelationRef
	Path    []retrieval.PathNode
}

// Correlator augments objection events with supporting evidence by issuing
// one hybrid query per event-producing segment. k and the channel weights
// are configuration, not structural constants.
type Correlator interface {
	Correlate(ctx context.Context, caseID, text string) (*Correlation, error)
}

// Weights are pointers so a zero weight stays expressible; nil falls
// through to the engine's defaults.
type CorrelatorConfig struct {
	K           int
	GraphWeight *float64
	DenseWeight *float64
	Timeout     time.Duration
}

type correlator struct {
	retrieval RetrievalService
	cfg       CorrelatorConfig
	log       *logger.Logger
}

func NewCorrelator(retrievalSvc RetrievalService, cfg CorrelatorConfig, baseLog *logger.Logger) Correlator {
	if cfg.K <= 0 {
		cfg.K = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &correlator{
		retrieval: retrievalSvc,
		cfg:       cfg,
		log:       baseLog.With("service", "Correlator"),
	}
}

func (c *correlator) Correlate(ctx context.Context, caseID, text string) (*Correlation, error) {
	queryCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	result, err := c.retrieval.Query(queryCtx, retrieval.QueryParams{
		CaseID:      caseID,
		Text:        text,
		K:           c.cfg.K,
		GraphWeight: c.cfg.GraphWeight,
		DenseWeight: c.cfg.DenseWeight,
	})
	if err != nil {
		return nil, err
	}

	out := &Correlation{TraceID: result.TraceID}
	for _, item := range result.Items {
		out.Refs = append(out.Refs, CorrelationRef{SegmentID: item.SegmentID, Path: item.Path})
	}
	if len(result.Items) > 0 {
		out.Path = result.Items[0].Path
	}
	return out, nil
}
