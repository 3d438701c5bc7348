// Package app wires configuration, storage, the Gemini client and the
// answering pipeline into a running application.
package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/malayalamlabs/sahayi/internal/config"
	"github.com/malayalamlabs/sahayi/internal/knowledge"
	"github.com/malayalamlabs/sahayi/internal/language"
	"github.com/malayalamlabs/sahayi/internal/log"
	"github.com/malayalamlabs/sahayi/internal/rag"
)

// App is the application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Pool      *pgxpool.Pool
	Knowledge *knowledge.Store
	Pipeline  *rag.Pipeline

	// ModelName is the generation backend in use, for banners and /api/v1/info.
	ModelName string

	tracingShutdown func(context.Context)
}

// Close releases all resources. Safe to call on a partially initialized App.
func (a *App) Close(ctx context.Context) {
	if a.Pool != nil {
		a.Pool.Close()
		a.Logger.Info("database pool closed")
	}
	if a.tracingShutdown != nil {
		a.tracingShutdown(ctx)
	}
}

// noSearcher is the retrieval surface of offline mode: no corpus, no results.
type noSearcher struct{}

func (noSearcher) Search(context.Context, string, int) ([]knowledge.Context, error) {
	return nil, nil
}

// NewOffline builds an App that answers with canned responses and performs
// no retrieval. Used when no Gemini API key is configured, so the CLI stays
// usable for trying out language detection.
func NewOffline(cfg *config.Config, logger log.Logger) *App {
	static := rag.NewStatic()
	return &App{
		Config:    cfg,
		Logger:    logger,
		Pipeline:  rag.NewPipeline(language.NewDetector(), noSearcher{}, static, logger),
		ModelName: static.Model(),
	}
}
