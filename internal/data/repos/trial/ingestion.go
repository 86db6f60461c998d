package trial

import (
	"context"

	"gorm.io/gorm"

	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

type IngestionLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.IngestionLog) error
	GetByDocID(ctx context.Context, tx *gorm.DB, docID string) ([]*types.IngestionLog, error)
}

type ingestionLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngestionLogRepo(db *gorm.DB, baseLog *logger.Logger) IngestionLogRepo {
	return &ingestionLogRepo{db: db, log: baseLog.With("repo", "IngestionLogRepo")}
}

func (r *ingestionLogRepo) Create(ctx context.Context, tx *gorm.DB, row *types.IngestionLog) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *ingestionLogRepo) GetByDocID(ctx context.Context, tx *gorm.DB, docID string) ([]*types.IngestionLog, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.IngestionLog
	if docID == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("doc_id = ?", docID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
