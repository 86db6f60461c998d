package trial

import (
	"context"

	"gorm.io/gorm"

	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

// RetrievalTraceRepo is the durable trace sink. Append-only: a trace is
// written exactly once per successful query and never updated.
type RetrievalTraceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.RetrievalTrace) error
	GetByTraceID(ctx context.Context, tx *gorm.DB, traceID string) (*types.RetrievalTrace, error)
	GetByCaseID(ctx context.Context, tx *gorm.DB, caseID string) ([]*types.RetrievalTrace, error)
}

type retrievalTraceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRetrievalTraceRepo(db *gorm.DB, baseLog *logger.Logger) RetrievalTraceRepo {
	return &retrievalTraceRepo{db: db, log: baseLog.With("repo", "RetrievalTraceRepo")}
}

func (r *retrievalTraceRepo) Create(ctx context.Context, tx *gorm.DB, row *types.RetrievalTrace) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *retrievalTraceRepo) GetByTraceID(ctx context.Context, tx *gorm.DB, traceID string) (*types.RetrievalTrace, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if traceID == "" {
		return nil, nil
	}
	var out []*types.RetrievalTrace
	if err := t.WithContext(ctx).Where("trace_id = ?", traceID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *retrievalTraceRepo) GetByCaseID(ctx context.Context, tx *gorm.DB, caseID string) ([]*types.RetrievalTrace, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.RetrievalTrace
	if caseID == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("case_id = ?", caseID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
