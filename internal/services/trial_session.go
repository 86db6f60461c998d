package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/courtbridge-backend/internal/data/repos/trial"
	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

type SegmentInput struct {
	Speaker    string `json:"speaker"`
	Text       string `json:"text"`
	T0Ms       *int   `json:"t0_ms"`
	T1Ms       *int   `json:"t1_ms"`
	Confidence *int   `json:"confidence"`
	Privileged bool   `json:"privileged"`
}

type IngestSegmentResult struct {
	Segment *types.TranscriptSegment `json:"segment"`
	Events  []*types.ObjectionEvent  `json:"events"`
}

type TrialSessionService interface {
	CreateSession(ctx context.Context, caseID, mode string) (*types.TrialSession, error)
	StartSession(ctx context.Context, id uuid.UUID) (*types.TrialSession, error)
	EndSession(ctx context.Context, id uuid.UUID) (*types.TrialSession, error)
	GetSession(ctx context.Context, id uuid.UUID) (*types.TrialSession, error)
	GetSessionEvents(ctx context.Context, id uuid.UUID) ([]*types.ObjectionEvent, error)
	GetSessionTranscript(ctx context.Context, id uuid.UUID) ([]*types.TranscriptSegment, error)
	IngestSegment(ctx context.Context, sessionID uuid.UUID, input SegmentInput) (*IngestSegmentResult, error)
}

type trialSessionService struct {
	sessionRepo    trial.SessionRepo
	transcriptRepo trial.TranscriptRepo
	eventRepo      trial.EventRepo
	engine         *ObjectionEngine
	correlator     Correlator
	notifier       TrialNotifier
	log            *logger.Logger

	// one mutex per live session so segments are analyzed in arrival order
	locks sync.Map
}

func NewTrialSessionService(
	sessionRepo trial.SessionRepo,
	transcriptRepo trial.TranscriptRepo,
	eventRepo trial.EventRepo,
	engine *ObjectionEngine,
	correlator Correlator,
	notifier TrialNotifier,
	baseLog *logger.Logger,
) TrialSessionService {
	return &trialSessionService{
		sessionRepo:    sessionRepo,
		transcriptRepo: transcriptRepo,
		eventRepo:      eventRepo,
		engine:         engine,
		correlator:     correlator,
		notifier:       notifier,
		log:            baseLog.With("service", "TrialSessionService"),
	}
}

func (s *trialSessionService) CreateSession(ctx context.Context, caseID, mode string) (*types.TrialSession, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return nil, types.InvalidArgumentError("case_id is required")
	}
	if mode == "" {
		mode = "guidance"
	}
	row := &types.TrialSession{
		ID:     uuid.New(),
		CaseID: caseID,
		Mode:   mode,
		State:  types.SessionStateCreated,
	}
	if err := s.sessionRepo.Create(ctx, nil, row); err != nil {
		return nil, types.InternalError("create session", err)
	}
	s.log.Info("Trial session created", "session_id", row.ID, "case_id", caseID)
	return row, nil
}

func (s *trialSessionService) StartSession(ctx context.Context, id uuid.UUID) (*types.TrialSession, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State == types.SessionStateEnded {
		return nil, types.SessionClosedError(id.String())
	}
	if session.State == types.SessionStateActive {
		return session, nil
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{"state": types.SessionStateActive, "started_at": now}
	if err := s.sessionRepo.UpdateFields(ctx, nil, id, updates); err != nil {
		return nil, types.InternalError("start session", err)
	}
	session.State = types.SessionStateActive
	session.StartedAt = &now
	return session, nil
}

func (s *trialSessionService) EndSession(ctx context.Context, id uuid.UUID) (*types.TrialSession, error) {
	session, err := s.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.State == types.SessionStateEnded {
		return session, nil
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{"state": types.SessionStateEnded, "ended_at": now}
	if err := s.sessionRepo.UpdateFields(ctx, nil, id, updates); err != nil {
		return nil, types.InternalError("end session", err)
	}
	session.State = types.SessionStateEnded
	session.EndedAt = &now
	s.locks.Delete(id)
	s.log.Info("Trial session ended", "session_id", id)
	return session, nil
}

func (s *trialSessionService) GetSession(ctx context.Context, id uuid.UUID) (*types.TrialSession, error) {
	return s.loadSession(ctx, id)
}

func (s *trialSessionService) GetSessionEvents(ctx context.Context, id uuid.UUID) ([]*types.ObjectionEvent, error) {
	if _, err := s.loadSession(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.eventRepo.GetBySessionID(ctx, nil, id)
	if err != nil {
		return nil, types.InternalError("list session events", err)
	}
	return rows, nil
}

func (s *trialSessionService) GetSessionTranscript(ctx context.Context, id uuid.UUID) ([]*types.TranscriptSegment, error) {
	if _, err := s.loadSession(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.transcriptRepo.GetBySessionID(ctx, nil, id)
	if err != nil {
		return nil, types.InternalError("list session transcript", err)
	}
	return rows, nil
}

func (s *trialSessionService) IngestSegment(ctx context.Context, sessionID uuid.UUID, input SegmentInput) (*IngestSegmentResult, error) {
	if sessionID == uuid.Nil {
		return nil, types.InvalidArgumentError("session_id is required")
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, types.InvalidArgumentError("text is required")
	}

	mu := s.sessionLock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == types.SessionStateEnded {
		return nil, types.SessionClosedError(sessionID.String())
	}
	if session.State == types.SessionStateCreated {
		now := time.Now().UTC()
		updates := map[string]interface{}{"state": types.SessionStateActive, "started_at": now}
		if err := s.sessionRepo.UpdateFields(ctx, nil, sessionID, updates); err != nil {
			return nil, types.InternalError("activate session", err)
		}
		session.State = types.SessionStateActive
		session.StartedAt = &now
	}

	seg := &types.TranscriptSegment{
		ID:         uuid.New(),
		SessionID:  sessionID,
		Speaker:    input.Speaker,
		Text:       input.Text,
		T0Ms:       input.T0Ms,
		T1Ms:       input.T1Ms,
		Confidence: input.Confidence,
		Privileged: input.Privileged,
	}
	if err := s.transcriptRepo.Create(ctx, nil, seg); err != nil {
		return nil, types.InternalError("persist transcript segment", err)
	}
	s.notifier.TranscriptUpdate(sessionID, seg)

	events := s.engine.AnalyzeSegment(sessionID, seg)
	if len(events) > 0 {
		s.correlateEvents(ctx, session, seg, events)
		if err := s.eventRepo.Create(ctx, nil, events); err != nil {
			return nil, types.InternalError("persist objection events", err)
		}
		for _, evt := range events {
			s.notifier.ObjectionEvent(sessionID, evt)
		}
	}

	return &IngestSegmentResult{Segment: seg, Events: events}, nil
}

// correlateEvents attaches supporting evidence to every event produced by a
// segment. One query per segment; failures are logged and never block the
// objection alert.
func (s *trialSessionService) correlateEvents(ctx context.Context, session *types.TrialSession, seg *types.TranscriptSegment, events []*types.ObjectionEvent) {
	if s.correlator == nil {
		return
	}
	corr, err := s.correlator.Correlate(ctx, session.CaseID, seg.Text)
	if err != nil {
		s.log.Warn("Evidence correlation failed", "session_id", session.ID, "segment_id", seg.ID, "error", err)
		return
	}
	if corr == nil {
		return
	}
	var refs, path []byte
	if len(corr.Refs) > 0 {
		refs = marshalJSON(corr.Refs)
	}
	if len(corr.Path) > 0 {
		path = marshalJSON(corr.Path)
	}
	for _, evt := range events {
		evt.TraceID = corr.TraceID
		evt.Refs = refs
		evt.Path = path
	}
}

func (s *trialSessionService) loadSession(ctx context.Context, id uuid.UUID) (*types.TrialSession, error) {
	if id == uuid.Nil {
		return nil, types.InvalidArgumentError("session_id is required")
	}
	session, err := s.sessionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, types.InternalError("load session", err)
	}
	if session == nil {
		return nil, types.NotFoundError("session "+id.String())
	}
	return session, nil
}

func (s *trialSessionService) sessionLock(id uuid.UUID) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func marshalJSON(v interface{}) []byte {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
