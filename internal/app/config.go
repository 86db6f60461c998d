package app

import (
	"time"

	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/utils"
)

type Config struct {
	Port             string
	RulesPath        string
	TokensPerSegment int

	CorrelatorK           int
	CorrelatorGraphWeight float64
	CorrelatorDenseWeight float64
	CorrelatorTimeout     time.Duration

	DependencyTimeout time.Duration
}

func LoadConfig(log *logger.Logger) Config {
	port := utils.GetEnv("PORT", "8080", log)
	rulesPath := utils.GetEnv("OBJECTION_RULES_PATH", "rules/objections.yaml", log)
	tokensPerSegment := utils.GetEnvAsInt("TOKENS_PER_SEGMENT", 200, log)
	correlatorK := utils.GetEnvAsInt("CORRELATOR_K", 3, log)
	correlatorGraphWeight := utils.GetEnvAsFloat("CORRELATOR_GRAPH_WEIGHT", 1.0, log)
	correlatorDenseWeight := utils.GetEnvAsFloat("CORRELATOR_DENSE_WEIGHT", 1.0, log)
	correlatorTimeoutSeconds := utils.GetEnvAsInt("CORRELATOR_TIMEOUT_SECONDS", 5, log)
	dependencyTimeoutSeconds := utils.GetEnvAsInt("DEPENDENCY_TIMEOUT_SECONDS", 5, log)
	return Config{
		Port:                  port,
		RulesPath:             rulesPath,
		TokensPerSegment:      tokensPerSegment,
		CorrelatorK:           correlatorK,
		CorrelatorGraphWeight: correlatorGraphWeight,
		CorrelatorDenseWeight: correlatorDenseWeight,
		CorrelatorTimeout:     time.Duration(correlatorTimeoutSeconds) * time.Second,
		DependencyTimeout:     time.Duration(dependencyTimeoutSeconds) * time.Second,
	}
}
