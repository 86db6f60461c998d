package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/platform/neo4jdb"
	"github.com/yungbote/courtbridge-backend/internal/retrieval"
	"github.com/yungbote/courtbridge-backend/internal/services"
)

type Services struct {
	Index      *retrieval.Index
	Engine     *retrieval.Engine
	Retrieval  services.RetrievalService
	Correlator services.Correlator
	Objections *services.ObjectionEngine
	Notifier   services.TrialNotifier
	Sessions   services.TrialSessionService
	Resolution services.ResolutionService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	repos Repos,
	emitter services.SSEEmitter,
	graphClient *neo4jdb.Client,
) (Services, error) {
	rules, err := services.LoadRules(cfg.RulesPath)
	if err != nil {
		return Services{}, fmt.Errorf("load objection rules: %w", err)
	}

	index := retrieval.NewIndex(log, retrieval.WithTokensPerSegment(cfg.TokensPerSegment))
	engine := retrieval.NewEngine(index, log)

	retrievalSvc := services.NewRetrievalService(db, log, index, engine, repos.Traces, repos.Ingestion, graphClient, cfg.DependencyTimeout)
	correlator := services.NewCorrelator(retrievalSvc, services.CorrelatorConfig{
		K:           cfg.CorrelatorK,
		GraphWeight: &cfg.CorrelatorGraphWeight,
		DenseWeight: &cfg.CorrelatorDenseWeight,
		Timeout:     cfg.CorrelatorTimeout,
	}, log)

	notifier := services.NewTrialNotifier(emitter)
	objections := services.NewObjectionEngine(rules, log)
	sessions := services.NewTrialSessionService(repos.Sessions, repos.Transcripts, repos.Events, objections, correlator, notifier, log)
	resolution := services.NewResolutionService(repos.Events, repos.Resolutions, notifier, log)

	return Services{
		Index:      index,
		Engine:     engine,
		Retrieval:  retrievalSvc,
		Correlator: correlator,
		Objections: objections,
		Notifier:   notifier,
		Sessions:   sessions,
		Resolution: resolution,
	}, nil
}
