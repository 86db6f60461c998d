package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SessionStateCreated = "created"
	SessionStateActive  = "active"
	SessionStateEnded   = "ended"
)

const (
	ObjectionTypeIncoming = "incoming"
	ObjectionTypeRisk     = "risk"
	ObjectionTypeCounter  = "counter"
)

type TrialSession struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID    string     `gorm:"column:case_id;not null;index" json:"case_id"`
	Mode      string     `gorm:"column:mode;not null;default:guidance" json:"mode"`
	State     string     `gorm:"column:state;not null;default:created" json:"state"`
	StartedAt *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	EndedAt   *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (TrialSession) TableName() string { return "trial_session" }

type TranscriptSegment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	T0Ms       *int      `gorm:"column:t0_ms" json:"t0_ms,omitempty"`
	T1Ms       *int      `gorm:"column:t1_ms" json:"t1_ms,omitempty"`
	Speaker    string    `gorm:"column:speaker" json:"speaker,omitempty"`
	Text       string    `gorm:"column:text;type:text" json:"text"`
	Confidence *int      `gorm:"column:confidence" json:"confidence,omitempty"`
	Privileged bool      `gorm:"column:privileged;not null;default:false" json:"privileged"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (TranscriptSegment) TableName() string { return "transcript_segment" }

// Content fields are written once by the rule engine; only ActionTaken and
// Outcome may change afterward.
type ObjectionEvent struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"session_id"`
	SegmentID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"segment_id"`
	TraceID         string         `gorm:"column:trace_id;index" json:"trace_id,omitempty"`
	Ts              time.Time      `gorm:"column:ts;not null" json:"ts"`
	Type            string         `gorm:"column:type;not null" json:"type"`
	Ground          string         `gorm:"column:ground;not null" json:"ground"`
	Confidence      int            `gorm:"column:confidence;not null" json:"confidence"`
	ExtractedPhrase string         `gorm:"column:extracted_phrase" json:"extracted_phrase"`
	SuggestedCures  datatypes.JSON `gorm:"column:suggested_cures" json:"suggested_cures,omitempty"`
	Refs            datatypes.JSON `gorm:"column:refs" json:"refs,omitempty"`
	Path            datatypes.JSON `gorm:"column:path" json:"path,omitempty"`
	ActionTaken     string         `gorm:"column:action_taken" json:"action_taken,omitempty"`
	Outcome         string         `gorm:"column:outcome" json:"outcome,omitempty"`
}

func (ObjectionEvent) TableName() string { return "objection_event" }

// Append-only; the most recent resolution for an event is authoritative.
type ObjectionResolution struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	ChosenCure string    `gorm:"column:chosen_cure;not null" json:"chosen_cure"`
	Ts         time.Time `gorm:"column:ts;not null" json:"ts"`
}

func (ObjectionResolution) TableName() string { return "objection_resolution" }
