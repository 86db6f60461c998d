package retrieval

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

const DefaultTokensPerSegment = 200

// Segment is the unit of indexing and matching: a bounded span of document
// text with a deterministic identifier.
type Segment struct {
	DocID       string   `json:"doc_id"`
	SegmentID   string   `json:"segment_id"`
	SegmentHash string   `json:"segment_hash"`
	Text        string   `json:"text"`
	Page        int      `json:"page"`
	Para        int      `json:"para"`
	TokStart    int      `json:"tok_start"`
	TokEnd      int      `json:"tok_end"`
	Entities    []string `json:"entities"`
}

// EntityExtractor returns stable entity keys for a span of text. Richer
// extractors may do real legal NER; the contract is only a key list.
type EntityExtractor func(text string) []string

// MakeDocID returns a stable 128-bit hex id for a document.
func MakeDocID(caseID, path string) string {
	sum := sha256.Sum256([]byte(caseID + ":" + path))
	return hex.EncodeToString(sum[:])[:32]
}

// SegmentHash returns a 64-bit hex hash keyed by the segment's token window.
func SegmentHash(docID string, tokStart, tokEnd int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d", docID, tokStart, tokEnd)))
	return hex.EncodeToString(sum[:])[:16]
}

// ChunkText deterministically splits text into fixed-size whitespace token
// windows. Identical inputs always yield identical segment ids. Text is not
// normalized beyond the whitespace split so snippets stay verbatim.
func ChunkText(text, docID string, tokensPerSegment int, extractor EntityExtractor) []*Segment {
	if tokensPerSegment <= 0 {
		tokensPerSegment = DefaultTokensPerSegment
	}
	if extractor == nil {
		extractor = ExtractEntities
	}
	tokens := strings.Fields(text)
	segments := make([]*Segment, 0, (len(tokens)+tokensPerSegment-1)/tokensPerSegment)
	const page = 1
	para := 0
	for t := 0; t < len(tokens); {
		end := t + tokensPerSegment
		if end > len(tokens) {
			end = len(tokens)
		}
		segText := strings.Join(tokens[t:end], " ")
		segments = append(segments, &Segment{
			DocID:       docID,
			SegmentID:   fmt.Sprintf("%s:%d:%d:%d-%d", docID, page, para, t, end),
			SegmentHash: SegmentHash(docID, t, end),
			Text:        segText,
			Page:        page,
			Para:        para,
			TokStart:    t,
			TokEnd:      end,
			Entities:    extractor(segText),
		})
		para++
		t = end
	}
	return segments
}

var entityPattern = regexp.MustCompile(`\b([A-Z][a-zA-Z]+)\b`)

// ExtractEntities is the default heuristic extractor: capitalized tokens,
// lower-cased to act as stable keys.
func ExtractEntities(text string) []string {
	seen := map[string]bool{}
	for _, m := range entityPattern.FindAllStringSubmatch(text, -1) {
		seen[strings.ToLower(m[1])] = true
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
