package trial

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

// Objection events are created once by the rule engine; only action_taken
// and outcome may change afterward.
type EventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ObjectionEvent) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ObjectionEvent, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.ObjectionEvent, error)
	UpdateAction(ctx context.Context, tx *gorm.DB, id uuid.UUID, actionTaken, outcome string) error
}

type eventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEventRepo(db *gorm.DB, baseLog *logger.Logger) EventRepo {
	return &eventRepo{db: db, log: baseLog.With("repo", "EventRepo")}
}

func (r *eventRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ObjectionEvent) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	return t.WithContext(ctx).Create(&rows).Error
}

func (r *eventRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.ObjectionEvent, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.ObjectionEvent
	if err := t.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *eventRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.ObjectionEvent, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ObjectionEvent
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("session_id = ?", sessionID).Order("ts ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *eventRepo) UpdateAction(ctx context.Context, tx *gorm.DB, id uuid.UUID, actionTaken, outcome string) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	updates := map[string]interface{}{}
	if actionTaken != "" {
		updates["action_taken"] = actionTaken
	}
	if outcome != "" {
		updates["outcome"] = outcome
	}
	if len(updates) == 0 {
		return nil
	}
	return t.WithContext(ctx).Model(&types.ObjectionEvent{}).Where("id = ?", id).Updates(updates).Error
}
