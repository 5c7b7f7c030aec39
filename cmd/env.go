package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/trajectory-labs/pathways-cli/internal/pipeline"
	"github.com/trajectory-labs/pathways-cli/internal/store"
	"github.com/trajectory-labs/pathways-cli/pkg/anthropic"
	"github.com/trajectory-labs/pathways-cli/pkg/websearch"
)

// serviceEnv holds the initialized store and pipeline service shared by the
// serve/stories/overview/paths commands.
type serviceEnv struct {
	Store   store.Store
	Service *pipeline.Service
}

// Close releases resources held by the environment.
func (e *serviceEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "pathways.db"
		}
		return store.NewSQLite(dsn)
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// initService builds the pipeline environment. Missing provider keys are an
// expected state: the pipeline receives nil clients and degrades per tier.
// Callers should defer env.Close().
func initService(ctx context.Context) (*serviceEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	var search websearch.Client
	if cfg.Search.Key != "" {
		search = websearch.NewClient(cfg.Search.Key,
			websearch.WithBaseURL(cfg.Search.BaseURL),
			websearch.WithLimit(cfg.Search.Limit),
		)
	} else {
		zap.L().Warn("no search key configured, story generation will return no_keys")
	}

	var ai anthropic.Client
	if cfg.Anthropic.Key != "" {
		ai = anthropic.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Warn("no anthropic key configured, using search-only tier")
	}

	svc := pipeline.New(st, search, ai, pipeline.Options{
		StoryLimit:          cfg.Pipeline.StoryLimit,
		SummarizeInputLimit: cfg.Pipeline.SummarizeInputLimit,
		OutboundTimeout:     time.Duration(cfg.Pipeline.OutboundTimeoutSecs) * time.Second,
		Model:               cfg.Anthropic.Model,
		MaxTokens:           cfg.Anthropic.MaxTokens,
	})

	return &serviceEnv{Store: st, Service: svc}, nil
}
