// Package bootstrap builds the application dependency graph: storage,
// status store, worker pool, provider factory, services, handlers, router.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/panjf2000/ants/v2"

	"datalab-backend/internal/apiconfig"
	"datalab-backend/internal/chat"
	"datalab-backend/internal/dimensions"
	"datalab-backend/internal/llm"
	"datalab-backend/internal/llm/openaicompat"
	"datalab-backend/internal/processing"
	"datalab-backend/internal/prompts"
	"datalab-backend/internal/shared/config"
	"datalab-backend/internal/shared/server"
	"datalab-backend/internal/shared/storage/db"
	"datalab-backend/internal/shared/storage/statusstore"
	"datalab-backend/internal/uploads"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  processing.StatusStore
	Pool   *ants.Pool

	Factory llm.Factory

	PromptsRepo    prompts.Repo
	DimensionsRepo dimensions.Repo
	ConfigRepo     apiconfig.Repo
	ChatRepo       chat.Repo

	ConfigService     *apiconfig.Service
	ProcessingService *processing.Service
	ChatService       *chat.Service

	ProcessingHandler *processing.Handler
	ChatHandler       *chat.Handler
	ConfigHandler     *apiconfig.Handler
	DimensionsHandler *dimensions.Handler
	UploadsHandler    *uploads.Handler
}

// Build prepares the full dependency graph and router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStatusStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = 8
	}
	pool, err := ants.NewPool(workers, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Store:   store,
		Pool:    pool,
		Factory: openaicompat.DefaultFactory(),
	}

	if sqlDB != nil {
		app.PromptsRepo = &prompts.PGRepo{DB: sqlDB}
		app.DimensionsRepo = &dimensions.PGRepo{DB: sqlDB}
		app.ConfigRepo = &apiconfig.PGRepo{DB: sqlDB}
		app.ChatRepo = &chat.PGRepo{DB: sqlDB}
	} else {
		app.PromptsRepo = prompts.NewMemoryRepo()
		app.DimensionsRepo = dimensions.NewMemoryRepo()
		app.ConfigRepo = apiconfig.NewMemoryRepo()
		app.ChatRepo = chat.NewMemoryRepo()
	}

	app.ConfigService = apiconfig.NewService(app.ConfigRepo, app.Factory)
	app.ProcessingService = processing.NewService(app.PromptsRepo, app.DimensionsRepo, app.ConfigService, app.Store, app.Pool)
	app.ChatService = chat.NewService(app.ChatRepo, app.PromptsRepo, app.ConfigService)

	app.ProcessingHandler = processing.NewHandler(app.ProcessingService)
	app.ChatHandler = chat.NewHandler(app.ChatService)
	app.ConfigHandler = apiconfig.NewHandler(app.ConfigService)
	app.DimensionsHandler = dimensions.NewHandler(app.DimensionsRepo)
	app.UploadsHandler = uploads.NewHandler()

	app.Router = server.NewRouter(server.RouterDeps{
		Config:            cfg,
		ProcessingHandler: app.ProcessingHandler,
		ChatHandler:       app.ChatHandler,
		ConfigHandler:     app.ConfigHandler,
		DimensionsHandler: app.DimensionsHandler,
		UploadsHandler:    app.UploadsHandler,
	})

	return app, nil
}

// Close releases pooled resources.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Release()
	}
	if closer, ok := a.Store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
		return nil, nil
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		log.Printf("bootstrap: database unavailable, falling back to memory: %v", err)
		return nil, nil
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		if cfg.Env == "production" {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		log.Printf("bootstrap: migrations failed, falling back to memory: %v", err)
		return nil, nil
	}
	return sqlDB, nil
}

func buildStatusStore(ctx context.Context, cfg config.Config) (processing.StatusStore, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("REDIS_URL is required in production")
		}
		log.Printf("bootstrap: REDIS_URL empty; using in-memory status store")
		return statusstore.NewMemoryStore(), nil
	}
	store, err := statusstore.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		log.Printf("bootstrap: redis unavailable, falling back to memory: %v", err)
		return statusstore.NewMemoryStore(), nil
	}
	return store, nil
}
