package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/courtbridge-backend/internal/data/repos/trial"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
)

type Repos struct {
	Sessions    trial.SessionRepo
	Transcripts trial.TranscriptRepo
	Events      trial.EventRepo
	Resolutions trial.ResolutionRepo
	Traces      trial.RetrievalTraceRepo
	Ingestion   trial.IngestionLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Sessions:    trial.NewSessionRepo(db, log),
		Transcripts: trial.NewTranscriptRepo(db, log),
		Events:      trial.NewEventRepo(db, log),
		Resolutions: trial.NewResolutionRepo(db, log),
		Traces:      trial.NewRetrievalTraceRepo(db, log),
		Ingestion:   trial.NewIngestionLogRepo(db, log),
	}
}
