package trial

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

// Resolutions are append-only; callers treat the newest row per event as
// authoritative.
type ResolutionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.ObjectionResolution) error
	GetByEventID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) ([]*types.ObjectionResolution, error)
	GetLatestByEventID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) (*types.ObjectionResolution, error)
}

type resolutionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResolutionRepo(db *gorm.DB, baseLog *logger.Logger) ResolutionRepo {
	return &resolutionRepo{db: db, log: baseLog.With("repo", "ResolutionRepo")}
}

func (r *resolutionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ObjectionResolution) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *resolutionRepo) GetByEventID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) ([]*types.ObjectionResolution, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ObjectionResolution
	if eventID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("event_id = ?", eventID).Order("ts ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resolutionRepo) GetLatestByEventID(ctx context.Context, tx *gorm.DB, eventID uuid.UUID) (*types.ObjectionResolution, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if eventID == uuid.Nil {
		return nil, nil
	}
	var out []*types.ObjectionResolution
	if err := t.WithContext(ctx).Where("event_id = ?", eventID).Order("ts DESC").Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}
