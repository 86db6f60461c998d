package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/platform/neo4jdb"
	"github.com/yungbote/courtbridge-backend/internal/retrieval"
)

// UpsertDocumentSegments mirrors an ingested document into the provenance
// graph: Document → HAS_SEGMENT → Segment → MENTIONS → Entity. Idempotent
// on re-ingest since every node merges on its stable key.
func UpsertDocumentSegments(
	ctx context.Context,
	client *neo4jdb.Client,
	log *logger.Logger,
	caseID string,
	docID string,
	path string,
	segments []*retrieval.Segment,
) error {
	if client == nil || client.Driver == nil {
		return nil
	}
	if caseID == "" || docID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	segRows := make([]map[string]any, 0, len(segments))
	for _, s := range segments {
		if s == nil {
			continue
		}
		segRows = append(segRows, map[string]any{
			"hash":     s.SegmentHash,
			"text":     s.Text,
			"page":     s.Page,
			"para":     s.Para,
			"entities": s.Entities,
		})
	}

	session := client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: client.Database,
	})
	defer session.Close(ctx)

	// Best-effort schema init.
	{
		stmts := []string{
			`CREATE CONSTRAINT case_document_doc_id IF NOT EXISTS FOR (d:Document) REQUIRE d.doc_id IS UNIQUE`,
			`CREATE CONSTRAINT case_segment_hash IF NOT EXISTS FOR (s:Segment) REQUIRE s.hash IS UNIQUE`,
			`CREATE CONSTRAINT case_entity_key IF NOT EXISTS FOR (e:Entity) REQUIRE e.key IS UNIQUE`,
			`CREATE TEXT INDEX case_segment_text IF NOT EXISTS FOR (s:Segment) ON EACH [s.text]`,
		}
		for _, q := range stmts {
			if res, err := session.Run(ctx, q, nil); err != nil {
				if log != nil {
					log.Warn("neo4j schema init failed (continuing)", "error", err)
				}
			} else {
				_, _ = res.Consume(ctx)
			}
		}
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (d:Document {doc_id: $doc_id})
SET d.case_id = $case_id, d.path = $path
WITH d UNWIND $segments AS seg
MERGE (s:Segment {hash: seg.hash})
SET s.text = seg.text, s.page = seg.page, s.para = seg.para
MERGE (d)-[:HAS_SEGMENT]->(s)
FOREACH (e IN seg.entities | MERGE (ent:Entity {key: e}) MERGE (s)-[:MENTIONS]->(ent))
`, map[string]any{
			"doc_id":   docID,
			"case_id":  caseID,
			"path":     path,
			"segments": segRows,
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
