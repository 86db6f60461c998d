package retrieval

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

const (
	DefaultK      = 10
	snippetMaxLen = 200
	defaultWeight = 1.0
)

type PathNode struct {
	Type      string `json:"type"`
	Key       string `json:"key,omitempty"`
	SegmentID string `json:"segment_id,omitempty"`
}

type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type Scores struct {
	Graph  float64 `json:"graph"`
	Dense  float64 `json:"dense"`
	Hybrid float64 `json:"hybrid"`
}

type ResultItem struct {
	DocID     string     `json:"doc_id"`
	SegmentID string     `json:"segment_id"`
	Snippet   string     `json:"snippet"`
	Spans     []Span     `json:"spans"`
	Path      []PathNode `json:"path,omitempty"`
	Scores    Scores     `json:"scores"`
}

type QueryParams struct {
	CaseID      string
	Text        string
	K           int
	GraphWeight *float64
	DenseWeight *float64
	ReturnPaths *bool
}

type QueryResult struct {
	Items       []ResultItem       `json:"items"`
	TraceID     string             `json:"trace_id"`
	Timings     map[string]float64 `json:"timings"`
	GraphWeight float64            `json:"-"`
	DenseWeight float64            `json:"-"`
}

// QueryContext carries the per-query derived inputs shared by all signal
// channels.
type QueryContext struct {
	Text     string
	Tokens   []string
	Entities []string
}

// SignalFunc scores one segment on one relevance channel. The graph and
// dense channels are independently substitutable; they only meet at the
// weighted merge.
type SignalFunc func(q *QueryContext, seg *Segment) float64

// LexicalSignal counts substring occurrences of lower-cased query tokens in
// the segment text. Both default channels use it (single-signal baseline).
func LexicalSignal(q *QueryContext, seg *Segment) float64 {
	lower := strings.ToLower(seg.Text)
	score := 0.0
	for _, tok := range q.Tokens {
		score += float64(strings.Count(lower, tok))
	}
	return score
}

// EntityOverlapSignal scores by seeded entity matches, falling back to raw
// query tokens when the query has no extractable entities. A stand-in for a
// real graph traversal over the provenance graph.
func EntityOverlapSignal(q *QueryContext, seg *Segment) float64 {
	seeds := q.Entities
	if len(seeds) == 0 {
		seeds = q.Tokens
	}
	have := make(map[string]bool, len(seg.Entities))
	for _, e := range seg.Entities {
		have[e] = true
	}
	score := 0.0
	for _, s := range seeds {
		if have[strings.ToLower(s)] {
			score++
		}
	}
	return score
}

// CrossFunc re-scores a candidate after the channel merge; reserved for an
// external re-ranker. Absent, cross contributes zero.
type CrossFunc func(q *QueryContext, seg *Segment) float64

type EngineOption func(*Engine)

func WithGraphSignal(fn SignalFunc) EngineOption {
	return func(e *Engine) { e.graphSignal = fn }
}

func WithDenseSignal(fn SignalFunc) EngineOption {
	return func(e *Engine) { e.denseSignal = fn }
}

func WithCrossScorer(fn CrossFunc) EngineOption {
	return func(e *Engine) { e.cross = fn }
}

// Engine ranks indexed segments against a query by merging independent
// signal channels with caller-supplied weights.
type Engine struct {
	index       *Index
	log         *logger.Logger
	graphSignal SignalFunc
	denseSignal SignalFunc
	cross       CrossFunc
}

func NewEngine(index *Index, baseLog *logger.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		index:       index,
		log:         baseLog.With("component", "HybridQueryEngine"),
		graphSignal: LexicalSignal,
		denseSignal: LexicalSignal,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type scored struct {
	seg    *Segment
	graph  float64
	dense  float64
	hybrid float64
}

// Query scores every segment under the case, drops zero-score candidates,
// and returns the top k by hybrid score with spans, provenance paths, and
// phase timings. Unknown case ids yield an empty item list, not an error.
func (e *Engine) Query(p QueryParams) (*QueryResult, error) {
	if strings.TrimSpace(p.CaseID) == "" {
		return nil, types.InvalidArgumentError("case_id is required")
	}
	if strings.TrimSpace(p.Text) == "" {
		return nil, types.InvalidArgumentError("query text is required")
	}
	k := p.K
	if k <= 0 {
		k = DefaultK
	}
	graphWeight := defaultWeight
	if p.GraphWeight != nil {
		graphWeight = *p.GraphWeight
	}
	denseWeight := defaultWeight
	if p.DenseWeight != nil {
		denseWeight = *p.DenseWeight
	}
	returnPaths := true
	if p.ReturnPaths != nil {
		returnPaths = *p.ReturnPaths
	}

	q := &QueryContext{
		Text:     p.Text,
		Tokens:   strings.Fields(strings.ToLower(p.Text)),
		Entities: ExtractEntities(p.Text),
	}

	start := time.Now()

	// Retrieval phase: score every segment, keep discovery order for
	// stable tie-breaks.
	candidates := make([]scored, 0)
	e.index.ForEachSegment(p.CaseID, func(seg *Segment) {
		g := e.graphSignal(q, seg)
		d := e.denseSignal(q, seg)
		if g == 0 && d == 0 {
			return
		}
		cross := 0.0
		if e.cross != nil {
			cross = e.cross(q, seg)
		}
		candidates = append(candidates, scored{
			seg:    seg,
			graph:  g,
			dense:  d,
			hybrid: g*graphWeight + d*denseWeight + cross,
		})
	})
	queryMs := elapsedMs(start)

	formatStart := time.Now()
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].hybrid > candidates[j].hybrid
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	items := make([]ResultItem, 0, len(candidates))
	for _, c := range candidates {
		item := ResultItem{
			DocID:     c.seg.DocID,
			SegmentID: c.seg.SegmentID,
			Snippet:   snippet(c.seg.Text),
			Spans:     tokenSpans(q.Tokens, c.seg.Text),
			Scores:    Scores{Graph: c.graph, Dense: c.dense, Hybrid: c.hybrid},
		}
		if returnPaths {
			item.Path = provenancePath(c.seg)
		}
		items = append(items, item)
	}
	formatMs := elapsedMs(formatStart)

	result := &QueryResult{
		Items:   items,
		TraceID: uuid.NewString(),
		Timings: map[string]float64{
			"query_ms":  queryMs,
			"format_ms": formatMs,
			"total_ms":  elapsedMs(start),
		},
		GraphWeight: graphWeight,
		DenseWeight: denseWeight,
	}
	e.log.Debug("Hybrid query complete", "case_id", p.CaseID, "candidates", len(items), "trace_id", result.TraceID)
	return result, nil
}

// provenancePath explains a match: entity nodes found in the segment
// followed by the segment node.
func provenancePath(seg *Segment) []PathNode {
	path := make([]PathNode, 0, len(seg.Entities)+1)
	for _, ent := range seg.Entities {
		path = append(path, PathNode{Type: "Entity", Key: ent})
	}
	path = append(path, PathNode{Type: "Segment", SegmentID: seg.SegmentID})
	return path
}

// tokenSpans locates every occurrence of each distinct query token for
// highlighting.
func tokenSpans(tokens []string, text string) []Span {
	lower := strings.ToLower(text)
	seen := make(map[string]bool, len(tokens))
	spans := []Span{}
	for _, tok := range tokens {
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		for from := 0; ; {
			idx := strings.Index(lower[from:], tok)
			if idx < 0 {
				break
			}
			start := from + idx
			spans = append(spans, Span{Start: start, End: start + len(tok)})
			from = start + len(tok)
		}
	}
	return spans
}

// snippet truncates to snippetMaxLen characters, never splitting a rune.
func snippet(text string) string {
	if len(text) <= snippetMaxLen {
		return text
	}
	runes := []rune(text)
	if len(runes) <= snippetMaxLen {
		return text
	}
	return string(runes[:snippetMaxLen])
}

func elapsedMs(since time.Time) float64 {
	return math.Round(float64(time.Since(since).Microseconds())/10) / 100
}
