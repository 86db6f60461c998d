package retrieval

import (
	"strings"
	"testing"

	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

func testLogger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

func TestIngestIdempotent(t *testing.T) {
	ix := NewIndex(testLogger(t))
	text := strings.Repeat("the witness testified about the contract ", 80)

	docID1, segs1 := ix.Ingest("c1", text, "depo.txt")
	docID2, segs2 := ix.Ingest("c1", text, "depo.txt")
	if docID1 != docID2 {
		t.Fatalf("doc id changed across ingests: %s vs %s", docID1, docID2)
	}
	if len(segs1) != len(segs2) {
		t.Fatalf("segment counts differ: %d vs %d", len(segs1), len(segs2))
	}
	for i := range segs1 {
		if segs1[i].SegmentID != segs2[i].SegmentID {
			t.Fatalf("segment ids differ at %d: %s vs %s", i, segs1[i].SegmentID, segs2[i].SegmentID)
		}
	}
	if got := ix.SegmentCount("c1", docID1); got != len(segs1) {
		t.Fatalf("duplicated segments: count=%d want %d", got, len(segs1))
	}
}

func TestIngestEmptyTextRegistersDocument(t *testing.T) {
	ix := NewIndex(testLogger(t))
	docID, segs := ix.Ingest("c1", "", "empty.txt")
	if docID == "" {
		t.Fatalf("expected a doc id for empty text")
	}
	if len(segs) != 0 {
		t.Fatalf("expected zero segments, got %d", len(segs))
	}
	if got := ix.SegmentCount("c1", docID); got != 0 {
		t.Fatalf("segment count: got %d want 0", got)
	}
	// The document exists even though it holds nothing.
	seen := 0
	ix.ForEachSegment("c1", func(*Segment) { seen++ })
	if seen != 0 {
		t.Fatalf("unexpected segments visited: %d", seen)
	}
}

func TestInlinePathDefault(t *testing.T) {
	ix := NewIndex(testLogger(t))
	docID, _ := ix.Ingest("c1", "some text", "")
	if docID != MakeDocID("c1", "inline") {
		t.Fatalf("missing path should hash as inline")
	}
}

func TestForEachSegmentDiscoveryOrder(t *testing.T) {
	ix := NewIndex(testLogger(t), WithTokensPerSegment(2))
	ix.Ingest("c1", "one two three four", "a.txt")
	ix.Ingest("c1", "five six", "b.txt")

	var order []string
	ix.ForEachSegment("c1", func(s *Segment) { order = append(order, s.Text) })
	want := []string{"one two", "three four", "five six"}
	if len(order) != len(want) {
		t.Fatalf("segments visited: got %d want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d]: got %q want %q", i, order[i], want[i])
		}
	}
}

func TestUnknownCaseVisitsNothing(t *testing.T) {
	ix := NewIndex(testLogger(t))
	ix.Ingest("c1", "some text", "a.txt")
	visited := false
	ix.ForEachSegment("missing", func(*Segment) { visited = true })
	if visited {
		t.Fatalf("unknown case should visit nothing")
	}
}
