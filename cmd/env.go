package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/credential"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/pipeline"
	"github.com/sells-group/leadgen-cli/internal/provider"
	"github.com/sells-group/leadgen-cli/internal/scoring"
	"github.com/sells-group/leadgen-cli/internal/session"
	"github.com/sells-group/leadgen-cli/internal/store"
	"github.com/sells-group/leadgen-cli/pkg/apify"
	"github.com/sells-group/leadgen-cli/pkg/claude"
	"github.com/sells-group/leadgen-cli/pkg/googlesearch"
)

// pipelineEnv holds the initialized store, tracker, and generator needed
// by the generate/batch/serve commands.
type pipelineEnv struct {
	Store     store.LeadStore
	Tracker   *session.Tracker
	Generator *pipeline.Generator
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured persistence backend.
func initStore(ctx context.Context) (store.LeadStore, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return store.NewSQLite(cfg.Store.SQLitePath)
	}
}

// initOracle builds the configured scoring oracle. The rule scorer is
// the fallback when ai mode has no key.
func initOracle() (scoring.Oracle, error) {
	rubric := scoring.DefaultRubric()
	if cfg.Scoring.RubricPath != "" {
		loaded, err := scoring.LoadRubric(cfg.Scoring.RubricPath)
		if err != nil {
			return nil, eris.Wrap(err, "load rubric")
		}
		rubric = loaded
	}

	if cfg.Scoring.Mode == "rule" || cfg.Anthropic.Key == "" {
		if cfg.Scoring.Mode == "ai" {
			zap.L().Warn("anthropic key not set, falling back to rule-based scoring")
		}
		return scoring.NewRuleScorer(rubric), nil
	}

	client := claude.NewClient(cfg.Anthropic.Key)
	return scoring.NewClaudeScorer(client, cfg.Anthropic.Model, rubric), nil
}

// initPipeline sets up the store, credential pool, provider adapters,
// scoring oracle, and session tracker, and builds the Generator.
// Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	oracle, err := initOracle()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	pool := credential.NewPool(cfg.Apify.Tokens, cfg.Apify.DailyCap)
	apifyClient := apify.NewClient(
		apify.WithTimeout(time.Duration(cfg.Apify.TimeoutSecs) * time.Second),
	)

	adapters := map[model.Method]provider.SearchAdapter{
		model.MethodApollo: provider.NewApolloAdapter(apifyClient, pool),
	}

	// The Google path needs Custom Search credentials; without them the
	// adapter is simply not registered.
	if cfg.Google.APIKey != "" && cfg.Google.CSEID != "" {
		searchClient := googlesearch.NewClient(cfg.Google.APIKey, cfg.Google.CSEID)
		enricher := provider.NewEnricher(apifyClient, pool, oracle,
			provider.WithBatchSize(cfg.Pipeline.EnrichBatchSize))
		adapters[model.MethodGoogle] = provider.NewGoogleAdapter(searchClient, enricher)
	} else {
		zap.L().Debug("google custom search not configured, google method disabled")
	}

	tracker := session.NewTracker(time.Duration(cfg.Pipeline.SessionTTLMins) * time.Minute)

	gen := pipeline.NewGenerator(pipeline.Options{
		DefaultLimit: cfg.Pipeline.DefaultLimit,
		RunTimeout:   time.Duration(cfg.Pipeline.RunTimeoutSecs) * time.Second,
	}, adapters, oracle, st, tracker)

	zap.L().Info("pipeline initialized",
		zap.String("store", cfg.Store.Driver),
		zap.Int("credentials", pool.Size()),
		zap.Int("adapters", len(adapters)),
	)

	return &pipelineEnv{
		Store:     st,
		Tracker:   tracker,
		Generator: gen,
	}, nil
}
