package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/courtbridge-backend/internal/clients/redis"
	"github.com/yungbote/courtbridge-backend/internal/db"
	"github.com/yungbote/courtbridge-backend/internal/pkg/logger"
	"github.com/yungbote/courtbridge-backend/internal/platform/neo4jdb"
	"github.com/yungbote/courtbridge-backend/internal/sse"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	SSEHub   *sse.SSEHub

	bus    redisclient.SSEBus
	graph  *neo4jdb.Client
	cancel context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	hub := sse.NewSSEHub(log)

	// Optional collaborators. The trial loop runs without either; ingest
	// skips the graph mirror and events stay instance-local without the bus.
	var bus redisclient.SSEBus
	if os.Getenv("REDIS_ADDR") != "" {
		bus, err = redisclient.NewSSEBus(log)
		if err != nil {
			log.Warn("Redis SSE bus unavailable; running instance-local", "error", err)
			bus = nil
		}
	}
	graphClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		log.Warn("Neo4j unavailable; graph mirror disabled", "error", err)
		graphClient = nil
	}

	reposet := wireRepos(theDB, log)
	emitter := newBusEmitter(hub, bus, log)
	serviceset, err := wireServices(theDB, log, cfg, reposet, emitter, graphClient)
	if err != nil {
		log.Sync()
		return nil, err
	}
	handlerset := wireHandlers(log, reposet, serviceset, hub)
	router := wireRouter(handlerset)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		SSEHub:   hub,
		bus:      bus,
		graph:    graphClient,
	}, nil
}

// Start launches the background consumers: the bus forwarder feeding the
// local hub.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.bus != nil {
		if err := a.bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start bus forwarder: %w", err)
		}
	}
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.bus != nil {
		_ = a.bus.Close()
	}
	if a.graph != nil {
		ctx, cancel := context.WithCancel(context.Background())
		_ = a.graph.Close(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
