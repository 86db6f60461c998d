package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Write-once record of a completed hybrid query; never updated after insert.
type RetrievalTrace struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID     string         `gorm:"column:trace_id;size:40;not null;index" json:"trace_id"`
	CaseID      string         `gorm:"column:case_id;size:64;not null;index" json:"case_id"`
	Query       string         `gorm:"column:query;type:text;not null" json:"query"`
	// No column defaults: a configured zero weight must persist as zero.
	GraphWeight float64        `gorm:"column:graph_weight;not null" json:"graph_weight"`
	DenseWeight float64        `gorm:"column:dense_weight;not null" json:"dense_weight"`
	Timings     datatypes.JSON `gorm:"column:timings;not null" json:"timings"`
	Results     datatypes.JSON `gorm:"column:results;not null" json:"results"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
}

func (RetrievalTrace) TableName() string { return "retrieval_trace" }

type IngestionLog struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CaseID        string         `gorm:"column:case_id;size:64;not null;index" json:"case_id"`
	DocID         string         `gorm:"column:doc_id;size:64;not null;index" json:"doc_id"`
	Path          string         `gorm:"column:path" json:"path,omitempty"`
	SegmentHashes datatypes.JSON `gorm:"column:segment_hashes" json:"segment_hashes,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (IngestionLog) TableName() string { return "ingestion_log" }
