package retrieval

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	types "github.com/yungbote/courtbridge-backend/internal/domain"
)

func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func seededEngine(t *testing.T) (*Index, *Engine) {
	t.Helper()
	ix := NewIndex(testLogger(t))
	engine := NewEngine(ix, testLogger(t))
	return ix, engine
}

func TestQueryValidation(t *testing.T) {
	_, engine := seededEngine(t)
	if _, err := engine.Query(QueryParams{CaseID: "", Text: "bob"}); !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("missing case_id: got %v", err)
	}
	if _, err := engine.Query(QueryParams{CaseID: "c1", Text: "  "}); !errors.Is(err, types.ErrInvalidArgument) {
		t.Fatalf("missing text: got %v", err)
	}
}

func TestQueryUnknownCaseEmpty(t *testing.T) {
	_, engine := seededEngine(t)
	res, err := engine.Query(QueryParams{CaseID: "missing", Text: "bob"})
	if err != nil {
		t.Fatalf("unknown case should not error: %v", err)
	}
	if len(res.Items) != 0 {
		t.Fatalf("expected empty items, got %d", len(res.Items))
	}
	if res.TraceID == "" {
		t.Fatalf("expected a trace id even for empty results")
	}
}

func TestQueryScenarioEntityPath(t *testing.T) {
	ix, engine := seededEngine(t)
	ix.Ingest("c1", "Alice met Bob at Acme.", "")

	res, err := engine.Query(QueryParams{CaseID: "c1", Text: "Bob"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Items) == 0 {
		t.Fatalf("expected at least one item")
	}
	item := res.Items[0]
	if !strings.Contains(item.Snippet, "Bob") {
		t.Fatalf("snippet should contain Bob: %q", item.Snippet)
	}
	if len(item.Path) < 2 {
		t.Fatalf("expected entity and segment path nodes, got %v", item.Path)
	}
	first := item.Path[0]
	if first.Type != "Entity" || (first.Key != "alice" && first.Key != "bob" && first.Key != "acme") {
		t.Fatalf("path should start at an entity node: %+v", first)
	}
	last := item.Path[len(item.Path)-1]
	if last.Type != "Segment" || last.SegmentID != item.SegmentID {
		t.Fatalf("path should end at the segment node: %+v", last)
	}
	if len(item.Spans) == 0 {
		t.Fatalf("expected highlight spans")
	}
	for _, sp := range item.Spans {
		if strings.ToLower(item.Snippet[sp.Start:sp.End]) != "bob" {
			t.Fatalf("span does not cover the token: %+v", sp)
		}
	}
}

func TestQueryDropsZeroScores(t *testing.T) {
	ix, engine := seededEngine(t)
	ix.Ingest("c1", "completely unrelated content", "a.txt")
	ix.Ingest("c1", "the hearsay statement", "b.txt")

	res, err := engine.Query(QueryParams{CaseID: "c1", Text: "hearsay"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("zero-score segments should drop: got %d items", len(res.Items))
	}
}

func TestWeightMonotonicity(t *testing.T) {
	ix, engine := seededEngine(t)
	ix.Ingest("c1", "hearsay hearsay statement about hearsay", "a.txt")

	base, err := engine.Query(QueryParams{CaseID: "c1", Text: "hearsay"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	doubled, err := engine.Query(QueryParams{CaseID: "c1", Text: "hearsay", GraphWeight: floatPtr(2.0)})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for i := range base.Items {
		b, d := base.Items[i].Scores, doubled.Items[i].Scores
		if b.Graph != d.Graph || b.Dense != d.Dense {
			t.Fatalf("channel scores must not be pre-weighted: %+v vs %+v", b, d)
		}
		wantHybrid := 2.0*d.Graph + 1.0*d.Dense
		if d.Hybrid != wantHybrid {
			t.Fatalf("hybrid: got %v want %v", d.Hybrid, wantHybrid)
		}
		if d.Hybrid-b.Hybrid != b.Graph {
			t.Fatalf("doubling graph_weight should add exactly the graph contribution")
		}
	}
}

func TestPathToggle(t *testing.T) {
	ix, engine := seededEngine(t)
	ix.Ingest("c1", "Alice met Bob at Acme. Bob signed the Acme contract later that day.", "a.txt")

	with, err := engine.Query(QueryParams{CaseID: "c1", Text: "bob acme"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	without, err := engine.Query(QueryParams{CaseID: "c1", Text: "bob acme", ReturnPaths: boolPtr(false)})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(with.Items) != len(without.Items) {
		t.Fatalf("item counts differ: %d vs %d", len(with.Items), len(without.Items))
	}
	for i := range with.Items {
		if len(with.Items[i].Path) == 0 {
			t.Fatalf("expected path on item %d", i)
		}
		if without.Items[i].Path != nil {
			t.Fatalf("return_paths=false should strip path on item %d", i)
		}
		if with.Items[i].SegmentID != without.Items[i].SegmentID {
			t.Fatalf("order changed at %d", i)
		}
		if with.Items[i].Scores != without.Items[i].Scores {
			t.Fatalf("scores changed at %d", i)
		}
	}
}

func TestStableTieBreakAndTruncation(t *testing.T) {
	ix, engine := seededEngine(t)
	ix.Ingest("c1", "contract dispute", "a.txt")
	ix.Ingest("c1", "contract breach", "b.txt")
	ix.Ingest("c1", "contract review", "c.txt")

	res, err := engine.Query(QueryParams{CaseID: "c1", Text: "contract", K: 2})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected k=2 truncation, got %d", len(res.Items))
	}
	// Equal scores keep discovery order.
	if res.Items[0].DocID != MakeDocID("c1", "a.txt") || res.Items[1].DocID != MakeDocID("c1", "b.txt") {
		t.Fatalf("tie-break not stable: %s, %s", res.Items[0].DocID, res.Items[1].DocID)
	}
}

func TestFreshTraceIDPerCall(t *testing.T) {
	ix, engine := seededEngine(t)
	ix.Ingest("c1", "hearsay evidence", "a.txt")

	first, err := engine.Query(QueryParams{CaseID: "c1", Text: "hearsay"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	second, err := engine.Query(QueryParams{CaseID: "c1", Text: "hearsay"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if first.TraceID == second.TraceID {
		t.Fatalf("trace ids must never repeat, even for identical queries")
	}
}

func TestTimingsPresent(t *testing.T) {
	ix, engine := seededEngine(t)
	ix.Ingest("c1", "hearsay evidence", "a.txt")
	res, err := engine.Query(QueryParams{CaseID: "c1", Text: "hearsay"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	for _, key := range []string{"query_ms", "format_ms", "total_ms"} {
		if _, ok := res.Timings[key]; !ok {
			t.Fatalf("missing timing %s", key)
		}
	}
}

func TestPluggableGraphSignal(t *testing.T) {
	ix := NewIndex(testLogger(t))
	engine := NewEngine(ix, testLogger(t), WithGraphSignal(EntityOverlapSignal))
	ix.Ingest("c1", "Alice met Bob at Acme.", "a.txt")

	res, err := engine.Query(QueryParams{CaseID: "c1", Text: "Bob met"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(res.Items))
	}
	got := res.Items[0].Scores
	if got.Graph != 1 {
		t.Fatalf("entity overlap graph score: got %v want 1", got.Graph)
	}
	if got.Dense != 2 {
		t.Fatalf("dense lexical score: got %v want 2", got.Dense)
	}
}

func TestSnippetKeepsRuneBoundaries(t *testing.T) {
	text := strings.Repeat("a", 199) + "’s account of the meeting"
	got := snippet(text)
	if !utf8.ValidString(got) {
		t.Fatalf("snippet produced invalid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 200 {
		t.Fatalf("snippet length: got %d runes, want 200", n)
	}
	if !strings.HasSuffix(got, "’") {
		t.Fatalf("expected snippet to end on the full rune, got %q", got[len(got)-4:])
	}
}
