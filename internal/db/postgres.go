package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	types "github.com/yungbote/courtbridge-backend/internal/domain"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "courtbridge", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.TrialSession{},
		&types.TranscriptSegment{},
		&types.ObjectionEvent{},
		&types.ObjectionResolution{},
		&types.RetrievalTrace{},
		&types.IngestionLog{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	if err := s.db.Exec(`
		ALTER TABLE "transcript_segment"
		ADD CONSTRAINT "fk_transcript_segment_session_id"
		FOREIGN KEY ("session_id")
		REFERENCES "trial_session"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		s.log.Warn("Foreign key setup skipped", "table", "transcript_segment", "error", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "objection_event"
		ADD CONSTRAINT "fk_objection_event_session_id"
		FOREIGN KEY ("session_id")
		REFERENCES "trial_session"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		s.log.Warn("Foreign key setup skipped", "table", "objection_event", "error", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "objection_resolution"
		ADD CONSTRAINT "fk_objection_resolution_event_id"
		FOREIGN KEY ("event_id")
		REFERENCES "objection_event"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		s.log.Warn("Foreign key setup skipped", "table", "objection_resolution", "error", err)
	}
	s.log.Info("Postgres tables migrated")
	return nil
}
