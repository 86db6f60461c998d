package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/courtbridge-backend/internal/data/repos/trial"
	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

// ResolutionService records how an objection event was disposed of.
// Resolutions are append-only; the latest one for an event is authoritative.
type ResolutionService interface {
	RecordResolution(ctx context.Context, eventID uuid.UUID, chosenCure string) (*types.ObjectionResolution, error)
	RecordAction(ctx context.Context, eventID uuid.UUID, actionTaken, outcome string) (*types.ObjectionEvent, error)
	GetResolutions(ctx context.Context, eventID uuid.UUID) ([]*types.ObjectionResolution, error)
}

type resolutionService struct {
	eventRepo      trial.EventRepo
	resolutionRepo trial.ResolutionRepo
	notifier       TrialNotifier
	log            *logger.Logger
}

func NewResolutionService(
	eventRepo trial.EventRepo,
	resolutionRepo trial.ResolutionRepo,
	notifier TrialNotifier,
	baseLog *logger.Logger,
) ResolutionService {
	return &resolutionService{
		eventRepo:      eventRepo,
		resolutionRepo: resolutionRepo,
		notifier:       notifier,
		log:            baseLog.With("service", "ResolutionService"),
	}
}

func (s *resolutionService) RecordResolution(ctx context.Context, eventID uuid.UUID, chosenCure string) (*types.ObjectionResolution, error) {
	chosenCure = strings.TrimSpace(chosenCure)
	if chosenCure == "" {
		return nil, types.InvalidArgumentError("chosen_cure is required")
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	row := &types.ObjectionResolution{
		ID:         uuid.New(),
		EventID:    eventID,
		ChosenCure: chosenCure,
		Ts:         time.Now().UTC(),
	}
	if err := s.resolutionRepo.Create(ctx, nil, row); err != nil {
		return nil, types.InternalError("persist resolution", err)
	}
	s.notifier.ClearHighlights(event.SessionID, event.ID, event.SegmentID)
	s.log.Info("Objection resolved", "event_id", eventID, "session_id", event.SessionID)
	return row, nil
}

func (s *resolutionService) RecordAction(ctx context.Context, eventID uuid.UUID, actionTaken, outcome string) (*types.ObjectionEvent, error) {
	actionTaken = strings.TrimSpace(actionTaken)
	if actionTaken == "" {
		return nil, types.InvalidArgumentError("action_taken is required")
	}
	if _, err := s.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	if err := s.eventRepo.UpdateAction(ctx, nil, eventID, actionTaken, outcome); err != nil {
		return nil, types.InternalError("update event action", err)
	}
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (s *resolutionService) GetResolutions(ctx context.Context, eventID uuid.UUID) ([]*types.ObjectionResolution, error) {
	if _, err := s.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rows, err := s.resolutionRepo.GetByEventID(ctx, nil, eventID)
	if err != nil {
		return nil, types.InternalError("list resolutions", err)
	}
	return rows, nil
}

func (s *resolutionService) loadEvent(ctx context.Context, eventID uuid.UUID) (*types.ObjectionEvent, error) {
	if eventID == uuid.Nil {
		return nil, types.InvalidArgumentError("event_id is required")
	}
	event, err := s.eventRepo.GetByID(ctx, nil, eventID)
	if err != nil {
		return nil, types.InternalError("load event", err)
	}
	if event == nil {
		return nil, types.NotFoundError("event " + eventID.String())
	}
	return event, nil
}
