package retrieval

import (
	"sync"

	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

// Index is the in-memory segment index: case_id → doc_id → ordered segments.
// Explicitly constructed and injected so tests can isolate state and a
// different backend can replace it without touching call sites.
type Index struct {
	mu               sync.RWMutex
	log              *logger.Logger
	cases            map[string]*caseIndex
	extractor        EntityExtractor
	tokensPerSegment int
}

type caseIndex struct {
	docs     map[string]*docIndex
	docOrder []string
}

type docIndex struct {
	segments []*Segment
	byHash   map[string]bool
}

type IndexOption func(*Index)

func WithEntityExtractor(e EntityExtractor) IndexOption {
	return func(ix *Index) { ix.extractor = e }
}

func WithTokensPerSegment(n int) IndexOption {
	return func(ix *Index) {
		if n > 0 {
			ix.tokensPerSegment = n
		}
	}
}

func NewIndex(baseLog *logger.Logger, opts ...IndexOption) *Index {
	ix := &Index{
		log:              baseLog.With("component", "SegmentIndex"),
		cases:            make(map[string]*caseIndex),
		extractor:        ExtractEntities,
		tokensPerSegment: DefaultTokensPerSegment,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Ingest chunks text and upserts the segments under the document derived
// from (case_id, doc_path). Re-ingesting identical text is a no-op per
// segment: the upsert is keyed by segment hash. Empty text still registers
// the document.
func (ix *Index) Ingest(caseID, text, docPath string) (string, []*Segment) {
	path := docPath
	if path == "" {
		path = "inline"
	}
	docID := MakeDocID(caseID, path)
	segments := ChunkText(text, docID, ix.tokensPerSegment, ix.extractor)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ci, ok := ix.cases[caseID]
	if !ok {
		ci = &caseIndex{docs: make(map[string]*docIndex)}
		ix.cases[caseID] = ci
	}
	di, ok := ci.docs[docID]
	if !ok {
		di = &docIndex{byHash: make(map[string]bool)}
		ci.docs[docID] = di
		ci.docOrder = append(ci.docOrder, docID)
	}
	added := 0
	for _, seg := range segments {
		if di.byHash[seg.SegmentHash] {
			continue
		}
		di.byHash[seg.SegmentHash] = true
		di.segments = append(di.segments, seg)
		added++
	}
	ix.log.Debug("Ingested document", "case_id", caseID, "doc_id", docID, "segments", len(segments), "added", added)
	return docID, segments
}

// SegmentCount returns the number of indexed segments for a document.
func (ix *Index) SegmentCount(caseID, docID string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ci, ok := ix.cases[caseID]
	if !ok {
		return 0
	}
	di, ok := ci.docs[docID]
	if !ok {
		return 0
	}
	return len(di.segments)
}

// ForEachSegment visits every segment under a case in discovery order:
// documents in insertion order, segments in chunk order. Unknown cases
// visit nothing.
func (ix *Index) ForEachSegment(caseID string, fn func(*Segment)) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	ci, ok := ix.cases[caseID]
	if !ok {
		return
	}
	for _, docID := range ci.docOrder {
		for _, seg := range ci.docs[docID].segments {
			fn(seg)
		}
	}
}
