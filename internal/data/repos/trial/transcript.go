package trial

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

// Transcript segments are append-only.
type TranscriptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.TranscriptSegment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TranscriptSegment, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.TranscriptSegment, error)
}

type transcriptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTranscriptRepo(db *gorm.DB, baseLog *logger.Logger) TranscriptRepo {
	return &transcriptRepo{db: db, log: baseLog.With("repo", "TranscriptRepo")}
}

func (r *transcriptRepo) Create(ctx context.Context, tx *gorm.DB, row *types.TranscriptSegment) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *transcriptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.TranscriptSegment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.TranscriptSegment
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *transcriptRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.TranscriptSegment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.TranscriptSegment
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("session_id = ?", sessionID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
