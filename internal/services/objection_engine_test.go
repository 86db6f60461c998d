package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/courtbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/courtbridge-backend/internal/domain"
)

const testRulesYAML = `
objections:
  hearsay:
    patterns:
      transcript_regex: ["hearsay", "out[- ]of[- ]court statement"]
    cures: ["Offer an applicable hearsay exception", "Call the declarant"]
    counter_objections:
      - name: hearsay_exception
        patterns:
          transcript_regex: ["excited utterance", "present sense impression"]
        cures: ["Argue the exception does not apply"]
  leading:
    patterns:
      transcript_regex: ["isn't it true", "wouldn't you agree"]
    cures: ["Rephrase as an open-ended question"]
`

func testRuleSet(t *testing.T) *RuleSet {
	t.Helper()
	rs, err := ParseRules([]byte(testRulesYAML))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	return rs
}

func testEngine(t *testing.T) *ObjectionEngine {
	t.Helper()
	return NewObjectionEngine(testRuleSet(t), testutil.Logger(t))
}

func testSegment(text string) *types.TranscriptSegment {
	return &types.TranscriptSegment{
		ID:        uuid.New(),
		SessionID: uuid.New(),
		Text:      text,
	}
}

func TestAnalyzeSegmentRisk(t *testing.T) {
	eng := testEngine(t)
	seg := testSegment("He told me what the mechanic said, which is textbook hearsay.")

	events := eng.AnalyzeSegment(seg.SessionID, seg)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	evt := events[0]
	if evt.Type != types.ObjectionTypeRisk {
		t.Fatalf("expected risk type, got %q", evt.Type)
	}
	if evt.Ground != "hearsay" {
		t.Fatalf("expected ground hearsay, got %q", evt.Ground)
	}
	if evt.Confidence != 85 {
		t.Fatalf("expected confidence 85, got %d", evt.Confidence)
	}
	if evt.SegmentID != seg.ID || evt.SessionID != seg.SessionID {
		t.Fatalf("event not linked to segment")
	}
	if evt.ExtractedPhrase != seg.Text {
		t.Fatalf("expected full text as phrase, got %q", evt.ExtractedPhrase)
	}
	if len(evt.SuggestedCures) == 0 {
		t.Fatalf("expected suggested cures")
	}
}

func TestAnalyzeSegmentIncoming(t *testing.T) {
	eng := testEngine(t)
	seg := testSegment("Objection, your honor, that is hearsay.")

	events := eng.AnalyzeSegment(seg.SessionID, seg)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != types.ObjectionTypeIncoming {
		t.Fatalf("expected incoming type, got %q", events[0].Type)
	}
}

func TestAnalyzeSegmentCounter(t *testing.T) {
	eng := testEngine(t)
	seg := testSegment("That was an excited utterance made at the scene.")

	events := eng.AnalyzeSegment(seg.SessionID, seg)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	evt := events[0]
	if evt.Type != types.ObjectionTypeCounter {
		t.Fatalf("expected counter type, got %q", evt.Type)
	}
	if evt.Ground != "hearsay" {
		t.Fatalf("counter keeps the parent ground, got %q", evt.Ground)
	}
	if evt.Confidence != 80 {
		t.Fatalf("expected confidence 80, got %d", evt.Confidence)
	}
}

func TestAnalyzeSegmentMultipleGrounds(t *testing.T) {
	eng := testEngine(t)
	seg := testSegment("Isn't it true that you only know this as hearsay?")

	events := eng.AnalyzeSegment(seg.SessionID, seg)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	// Rules fire in sorted ground order.
	if events[0].Ground != "hearsay" || events[1].Ground != "leading" {
		t.Fatalf("unexpected ground order: %q, %q", events[0].Ground, events[1].Ground)
	}
}

func TestAnalyzeSegmentPhraseTruncated(t *testing.T) {
	eng := testEngine(t)
	long := "hearsay " + strings.Repeat("and more testimony ", 20)
	seg := testSegment(long)

	events := eng.AnalyzeSegment(seg.SessionID, seg)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if got := len(events[0].ExtractedPhrase); got != 160 {
		t.Fatalf("expected phrase truncated to 160 chars, got %d", got)
	}
}

func TestAnalyzeSegmentPhraseTruncationKeepsRunes(t *testing.T) {
	eng := testEngine(t)
	long := "hearsay from the café " + strings.Repeat("témoignage répété ", 20)
	seg := testSegment(long)

	events := eng.AnalyzeSegment(seg.SessionID, seg)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	phrase := events[0].ExtractedPhrase
	if !utf8.ValidString(phrase) {
		t.Fatalf("extracted phrase is invalid UTF-8: %q", phrase)
	}
	if n := utf8.RuneCountInString(phrase); n != 160 {
		t.Fatalf("expected 160-rune phrase, got %d", n)
	}
}

func TestAnalyzeSegmentNoMatch(t *testing.T) {
	eng := testEngine(t)
	seg := testSegment("What time did you arrive at the office?")

	if events := eng.AnalyzeSegment(seg.SessionID, seg); len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}
}

func TestParseRulesBadPattern(t *testing.T) {
	bad := `
objections:
  hearsay:
    patterns:
      transcript_regex: ["["]
`
	if _, err := ParseRules([]byte(bad)); err == nil {
		t.Fatalf("expected compile error for bad pattern")
	}
}
