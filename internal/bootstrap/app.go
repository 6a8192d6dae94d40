package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/enhance"
	"resume-builder/internal/llm"
	"resume-builder/internal/llm/gemini"
	"resume-builder/internal/llm/openai"
	"resume-builder/internal/queue"
	"resume-builder/internal/runs"
	"resume-builder/internal/services/health"
	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	localstore "resume-builder/internal/shared/storage/object/local"
	s3store "resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/editor"
	"resume-builder/resume/render"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Archive        object.ObjectStore
	Events         queue.Client
	RunsRepo       runs.Repo
	Gateway        *enhance.Gateway
	EnhanceService *enhance.Service
	Sessions       *editor.Store
	HealthHandler  *health.Handler
	EnhanceHandler *enhance.Handler
	SessionHandler *sessions.Handler
}

// Build prepares every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		return nil, err
	}

	events, err := buildEvents(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Archive: archive,
		Events:  events,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		HealthHandler:  app.HealthHandler,
		EnhanceHandler: app.EnhanceHandler,
		SessionHandler: app.SessionHandler,
	})
	return app, nil
}

// Close releases the event publisher and database pool.
func (a *App) Close() error {
	var firstErr error
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			firstErr = err
		}
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.db_disabled", map[string]any{"reason": "DATABASE_URL empty", "runs": "memory"})
		return nil, nil
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_connect_failed", map[string]any{"error": err.Error(), "runs": "memory"})
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.migrations_failed", map[string]any{"error": err.Error(), "runs": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildArchive(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	if !cfg.DiagnosticsArchive {
		return nil, nil
	}
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildEvents(ctx context.Context, cfg config.Config) (queue.Client, error) {
	switch cfg.EventsBackend {
	case config.EventsSQS:
		return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.SQSQueueURL)
	case config.EventsAMQP:
		return queue.NewAMQPClient(cfg.AMQPURL, cfg.AMQPExchange)
	default:
		return queue.Noop{}, nil
	}
}

// NewCompleter returns the provider client for cfg.
func NewCompleter(cfg config.LLMConfig) llm.Completer {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.NewClient(cfg.BaseURL, nil)
	case config.ProviderOpenAI:
		return openai.NewClient(config.ProviderOpenAI, baseURLOr(cfg.BaseURL, openai.DefaultBaseURL), nil)
	default:
		return openai.NewClient(config.ProviderDeepSeek, baseURLOr(cfg.BaseURL, openai.DeepSeekBaseURL), nil)
	}
}

// NewGateway wires the configured provider and credential into a gateway.
func NewGateway(cfg config.LLMConfig) *enhance.Gateway {
	return enhance.NewGateway(NewCompleter(cfg), enhance.EnvCredential(cfg.APIKeyEnv), enhance.Settings{
		Provider:      cfg.Provider,
		Model:         cfg.Model,
		CredentialEnv: cfg.APIKeyEnv,
		Timeout:       cfg.Timeout,
		Temperature:   cfg.Temperature,
		TopP:          cfg.TopP,
		MaxTokens:     cfg.MaxTokens,
		PromptVersion: cfg.PromptVersion,
		SystemPrompt:  cfg.SystemPrompt,
	})
}

func buildServices(app *App) {
	var runsRepo runs.Repo
	if app.DB != nil {
		runsRepo = &runs.PGRepo{DB: app.DB}
	} else {
		runsRepo = runs.NewMemoryRepo()
	}

	gateway := NewGateway(app.Config.LLM)
	enhanceSvc := &enhance.Service{
		Gateway: gateway,
		Runs:    runsRepo,
		Archive: app.Archive,
		Events:  app.Events,
	}
	store := editor.NewStore(app.Config.SessionTTL, nil)
	credential := enhance.EnvCredential(app.Config.LLM.APIKeyEnv)

	app.RunsRepo = runsRepo
	app.Gateway = gateway
	app.EnhanceService = enhanceSvc
	app.Sessions = store
	app.HealthHandler = health.NewHandler(health.NewService(
		app.DB,
		gateway.Provider(),
		gateway.Model(),
		func() bool { _, ok := credential(); return ok },
		store.Len,
	))
	app.EnhanceHandler = enhance.NewHandler(enhanceSvc, runsRepo)
	app.SessionHandler = sessions.NewHandler(store, enhanceSvc, render.NewPDFRenderer())
}

func baseURLOr(url, def string) string {
	if strings.TrimSpace(url) == "" {
		return def
	}
	return url
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
