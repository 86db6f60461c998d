package services

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

const (
	// Fixed heuristic confidences: every rule match scores the same, not
	// pattern-specificity-weighted.
	matchConfidence   = 85
	counterConfidence = 80

	extractedPhraseMax = 160
)

// ObjectionEngine pattern-matches transcript segments against the loaded
// rule set and emits candidate objection events. All events for one segment
// are produced together before the call returns.
type ObjectionEngine struct {
	rules *RuleSet
	log   *logger.Logger
}

func NewObjectionEngine(rules *RuleSet, baseLog *logger.Logger) *ObjectionEngine {
	return &ObjectionEngine{
		rules: rules,
		log:   baseLog.With("service", "ObjectionEngine"),
	}
}

func (e *ObjectionEngine) AnalyzeSegment(sessionID uuid.UUID, seg *types.TranscriptSegment) []*types.ObjectionEvent {
	if e == nil || e.rules == nil || seg == nil {
		return nil
	}
	text := seg.Text
	found := []*types.ObjectionEvent{}

	eventType := types.ObjectionTypeRisk
	if strings.Contains(strings.ToLower(text), "objection") {
		eventType = types.ObjectionTypeIncoming
	}

	for _, rule := range e.rules.rules {
		if !anyMatch(rule.patterns, text) {
			continue
		}
		found = append(found, newEvent(sessionID, seg, eventType, rule.ground, matchConfidence, text, rule.cures))
	}
	for _, counter := range e.rules.counters {
		if !anyMatch(counter.patterns, text) {
			continue
		}
		found = append(found, newEvent(sessionID, seg, types.ObjectionTypeCounter, counter.ground, counterConfidence, text, counter.cures))
	}
	if len(found) > 0 {
		e.log.Debug("Segment matched objection rules", "session_id", sessionID, "segment_id", seg.ID, "events", len(found))
	}
	return found
}

func anyMatch(patterns []*regexp.Regexp, text string) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func newEvent(sessionID uuid.UUID, seg *types.TranscriptSegment, eventType, ground string, confidence int, text string, cures []string) *types.ObjectionEvent {
	return &types.ObjectionEvent{
		ID:              uuid.New(),
		SessionID:       sessionID,
		SegmentID:       seg.ID,
		Ts:              time.Now().UTC(),
		Type:            eventType,
		Ground:          ground,
		Confidence:      confidence,
		ExtractedPhrase: truncatePhrase(text),
		SuggestedCures:  curesJSON(cures),
	}
}

// truncatePhrase keeps the first extractedPhraseMax characters, never
// splitting a rune.
func truncatePhrase(text string) string {
	if len(text) <= extractedPhraseMax {
		return text
	}
	runes := []rune(text)
	if len(runes) <= extractedPhraseMax {
		return text
	}
	return string(runes[:extractedPhraseMax])
}

func curesJSON(cures []string) datatypes.JSON {
	if len(cures) == 0 {
		return nil
	}
	raw, err := json.Marshal(cures)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
