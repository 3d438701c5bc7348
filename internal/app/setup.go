package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/malayalamlabs/sahayi/db"
	"github.com/malayalamlabs/sahayi/internal/config"
	"github.com/malayalamlabs/sahayi/internal/gemini"
	"github.com/malayalamlabs/sahayi/internal/knowledge"
	"github.com/malayalamlabs/sahayi/internal/language"
	"github.com/malayalamlabs/sahayi/internal/log"
	"github.com/malayalamlabs/sahayi/internal/observability"
	"github.com/malayalamlabs/sahayi/internal/rag"
)

// Setup creates and initializes the full application: tracing, database
// pool with migrations, the Gemini client, the knowledge store and the
// answering pipeline. Requires a Gemini API key; use NewOffline when none
// is configured. Call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logger}

	// On error, release everything already initialized
	defer func() {
		if retErr != nil {
			a.Close(ctx)
		}
	}()

	a.tracingShutdown = observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	}, logger)

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Pool = pool

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:        cfg.GeminiAPIKey,
		EmbedderModel: cfg.EmbedderModel,
		Dimension:     cfg.EmbedderDimension,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	a.Knowledge = knowledge.New(knowledge.NewDB(pool), client, logger)

	generator, err := rag.NewGenerator(ctx, client, cfg.PreferredModels, logger)
	if err != nil {
		return nil, err
	}
	a.ModelName = generator.Model()

	a.Pipeline = rag.NewPipeline(language.NewDetector(), a.Knowledge, generator, logger)

	return a, nil
}

// provideDBPool runs migrations and creates the PostgreSQL connection pool.
// Every connection registers the pgvector types so embeddings scan natively.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// BootstrapCorpus ingests the configured JSONL corpus file when the store
// is empty. Returns the number of documents loaded, 0 when nothing to do.
func (a *App) BootstrapCorpus(ctx context.Context) (int, error) {
	if a.Config.CorpusPath == "" || a.Knowledge == nil {
		return 0, nil
	}

	count, err := a.Knowledge.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	if count > 0 {
		a.Logger.Debug("corpus already loaded", "documents", count)
		return 0, nil
	}

	f, err := os.Open(a.Config.CorpusPath)
	if err != nil {
		return 0, fmt.Errorf("opening corpus file: %w", err)
	}
	defer f.Close()

	loaded, err := a.Knowledge.Ingest(ctx, f)
	if err != nil {
		return loaded, fmt.Errorf("ingesting corpus: %w", err)
	}
	a.Logger.Info("corpus bootstrapped", "path", a.Config.CorpusPath, "documents", loaded)
	return loaded, nil
}
