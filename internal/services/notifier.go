package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/sse"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg sse.SSEMessage)
}

// TrialNotifier publishes finalized trial events to the session's
// subscriber channel. Objection payloads never include raw segment text;
// transcripts may hold privileged content and subscribers only need the
// event metadata.
type TrialNotifier interface {
	TranscriptUpdate(sessionID uuid.UUID, seg *types.TranscriptSegment)
	ObjectionEvent(sessionID uuid.UUID, evt *types.ObjectionEvent)
	ClearHighlights(sessionID, eventID, segmentID uuid.UUID)
}

type trialNotifier struct {
	emit SSEEmitter
}

func NewTrialNotifier(emit SSEEmitter) TrialNotifier {
	return &trialNotifier{emit: emit}
}

func (n *trialNotifier) TranscriptUpdate(sessionID uuid.UUID, seg *types.TranscriptSegment) {
	if n == nil || n.emit == nil || seg == nil || sessionID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), sse.SSEMessage{
		Channel: sse.SessionChannel(sessionID),
		Event:   sse.SSEEventTranscriptUpdate,
		Data: map[string]any{
			"segment_id": seg.ID,
			"speaker":    seg.Speaker,
			"text":       seg.Text,
			"t0_ms":      seg.T0Ms,
			"t1_ms":      seg.T1Ms,
		},
	})
}

func (n *trialNotifier) ObjectionEvent(sessionID uuid.UUID, evt *types.ObjectionEvent) {
	if n == nil || n.emit == nil || evt == nil || sessionID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), sse.SSEMessage{
		Channel: sse.SessionChannel(sessionID),
		Event:   sse.SSEEventObjection,
		Data: map[string]any{
			"event_id":        evt.ID,
			"segment_id":      evt.SegmentID,
			"type":            evt.Type,
			"ground":          evt.Ground,
			"confidence":      evt.Confidence,
			"suggested_cures": rawJSON(evt.SuggestedCures),
			"refs":            rawJSON(evt.Refs),
			"trace_id":        evt.TraceID,
		},
	})
}

func (n *trialNotifier) ClearHighlights(sessionID, eventID, segmentID uuid.UUID) {
	if n == nil || n.emit == nil || sessionID == uuid.Nil {
		return
	}
	n.emit.Emit(context.Background(), sse.SSEMessage{
		Channel: sse.SessionChannel(sessionID),
		Event:   sse.SSEEventClearHighlights,
		Data: map[string]any{
			"event_id":   eventID,
			"segment_id": segmentID,
		},
	})
}

func rawJSON(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}
