package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/courtbridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/courtbridge-backend/internal/data/repos/trial"
	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/retrieval"
)

type retrievalFixture struct {
	db        *gorm.DB
	svc       RetrievalService
	traceRepo trial.RetrievalTraceRepo
	ingestion trial.IngestionLogRepo
}

func newRetrievalFixture(t *testing.T) *retrievalFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	index := retrieval.NewIndex(log)
	engine := retrieval.NewEngine(index, log)
	traceRepo := trial.NewRetrievalTraceRepo(db, log)
	ingestion := trial.NewIngestionLogRepo(db, log)
	svc := NewRetrievalService(db, log, index, engine, traceRepo, ingestion, nil, 0)
	return &retrievalFixture{db: db, svc: svc, traceRepo: traceRepo, ingestion: ingestion}
}

func TestRetrievalIngest(t *testing.T) {
	ctx := context.Background()
	fx := newRetrievalFixture(t)

	res, err := fx.svc.Ingest(ctx, "case-1", "Alice met Bob at the Acme warehouse.", "exhibits/a.txt")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.DocID == "" || res.Segments != 1 {
		t.Fatalf("unexpected ingest result %+v", res)
	}

	rows, err := fx.ingestion.GetByDocID(ctx, nil, res.DocID)
	if err != nil {
		t.Fatalf("GetByDocID: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 ingestion log row, got %d", len(rows))
	}
	if rows[0].CaseID != "case-1" || rows[0].Path != "exhibits/a.txt" {
		t.Fatalf("unexpected log row %+v", rows[0])
	}
	var hashes []string
	if err := json.Unmarshal(rows[0].SegmentHashes, &hashes); err != nil || len(hashes) != 1 {
		t.Fatalf("expected 1 segment hash logged, got %v (%v)", hashes, err)
	}
}

func TestRetrievalIngestValidation(t *testing.T) {
	fx := newRetrievalFixture(t)
	if _, err := fx.svc.Ingest(context.Background(), " ", "text", ""); !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	// Empty text is a valid empty document.
	res, err := fx.svc.Ingest(context.Background(), "case-1", "", "exhibits/empty.txt")
	if err != nil {
		t.Fatalf("Ingest empty: %v", err)
	}
	if res.Segments != 0 {
		t.Fatalf("expected 0 segments, got %d", res.Segments)
	}
}

func TestRetrievalQueryRecordsTrace(t *testing.T) {
	ctx := context.Background()
	fx := newRetrievalFixture(t)

	if _, err := fx.svc.Ingest(ctx, "case-1", "Alice met Bob at the Acme warehouse.", ""); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	result, err := fx.svc.Query(ctx, retrieval.QueryParams{CaseID: "case-1", Text: "Alice warehouse"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}

	traces, err := fx.traceRepo.GetByCaseID(ctx, nil, "case-1")
	if err != nil {
		t.Fatalf("GetByCaseID: %v", err)
	}
	if len(traces) != 1 {
		t.Fatalf("expected exactly 1 trace, got %d", len(traces))
	}
	tr := traces[0]
	if tr.TraceID != result.TraceID {
		t.Fatalf("trace id mismatch: %q vs %q", tr.TraceID, result.TraceID)
	}
	if tr.Query != "Alice warehouse" || tr.GraphWeight != 1.0 || tr.DenseWeight != 1.0 {
		t.Fatalf("unexpected trace row %+v", tr)
	}

	var stored []retrieval.ResultItem
	if err := json.Unmarshal(tr.Results, &stored); err != nil {
		t.Fatalf("unmarshal stored results: %v", err)
	}
	if len(stored) != 1 || stored[0].SegmentID != result.Items[0].SegmentID {
		t.Fatalf("stored results differ from returned items")
	}
	var timings map[string]float64
	if err := json.Unmarshal(tr.Timings, &timings); err != nil {
		t.Fatalf("unmarshal stored timings: %v", err)
	}
	for _, key := range []string{"query_ms", "format_ms", "total_ms"} {
		if _, ok := timings[key]; !ok {
			t.Fatalf("stored timings missing %q", key)
		}
	}
}

func TestRetrievalQueryFailureLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	fx := newRetrievalFixture(t)

	if _, err := fx.svc.Query(ctx, retrieval.QueryParams{CaseID: "", Text: "x"}); !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}

	var count int64
	if err := fx.db.Model(&types.RetrievalTrace{}).Count(&count).Error; err != nil {
		t.Fatalf("count traces: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no traces for failed query, got %d", count)
	}
}

func TestCorrelatorLimitsRefs(t *testing.T) {
	ctx := context.Background()
	fx := newRetrievalFixture(t)
	log := testutil.Logger(t)

	for i := 0; i < 5; i++ {
		text := fmt.Sprintf("Alice signed exhibit %d near the dock.", i)
		if _, err := fx.svc.Ingest(ctx, "case-1", text, fmt.Sprintf("exhibits/%d.txt", i)); err != nil {
			t.Fatalf("Ingest: %v", err)
		}
	}

	correlator := NewCorrelator(fx.svc, CorrelatorConfig{}, log)
	corr, err := correlator.Correlate(ctx, "case-1", "what did Alice sign")
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if corr.TraceID == "" {
		t.Fatalf("expected trace id")
	}
	// Default k is 3.
	if len(corr.Refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(corr.Refs))
	}
	if len(corr.Path) == 0 {
		t.Fatalf("expected top item path")
	}
}

func TestCorrelatorZeroGraphWeight(t *testing.T) {
	ctx := context.Background()
	fx := newRetrievalFixture(t)
	log := testutil.Logger(t)

	if _, err := fx.svc.Ingest(ctx, "case-1", "Alice signed the agreement at the dock.", ""); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	zero, one := 0.0, 1.0
	correlator := NewCorrelator(fx.svc, CorrelatorConfig{GraphWeight: &zero, DenseWeight: &one}, log)
	corr, err := correlator.Correlate(ctx, "case-1", "Alice agreement")
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if len(corr.Refs) == 0 {
		t.Fatalf("expected refs from the dense channel")
	}

	tr, err := fx.traceRepo.GetByTraceID(ctx, nil, corr.TraceID)
	if err != nil {
		t.Fatalf("GetByTraceID: %v", err)
	}
	if tr == nil {
		t.Fatalf("trace not stored")
	}
	// A configured zero weight must survive as zero, not snap back to 1.
	if tr.GraphWeight != 0 || tr.DenseWeight != 1 {
		t.Fatalf("stored weights: graph=%v dense=%v", tr.GraphWeight, tr.DenseWeight)
	}

	var stored []retrieval.ResultItem
	if err := json.Unmarshal(tr.Results, &stored); err != nil {
		t.Fatalf("unmarshal stored results: %v", err)
	}
	for _, item := range stored {
		if item.Scores.Hybrid != item.Scores.Dense {
			t.Fatalf("hybrid should carry only the dense channel, got %+v", item.Scores)
		}
	}
}
