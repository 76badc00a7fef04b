package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/ziadkadry99/flinsight/internal/compliance"
	"github.com/ziadkadry99/flinsight/internal/config"
	"github.com/ziadkadry99/flinsight/internal/embeddings"
	"github.com/ziadkadry99/flinsight/internal/llm"
	"github.com/ziadkadry99/flinsight/internal/logger"
	"github.com/ziadkadry99/flinsight/internal/regulation"
	"github.com/ziadkadry99/flinsight/internal/resilience"
	"github.com/ziadkadry99/flinsight/internal/retrieval"
	"github.com/ziadkadry99/flinsight/internal/storage"
	"github.com/ziadkadry99/flinsight/internal/vectordb"
	"github.com/ziadkadry99/flinsight/internal/weather"
)

// loadConfig loads and validates the config and initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `flinsight init` to create a config file", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	return cfg, nil
}

// outboundPolicy bounds every call to the model, embedding, eCFR and
// weather services.
func outboundPolicy(cfg *config.Config) resilience.Policy {
	return resilience.DefaultPolicy().WithTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)
}

// newRetriever creates a retriever over the configured embedder and index
// backend. An embedder that cannot be created leaves retrieval unavailable
// instead of failing startup.
func newRetriever(cfg *config.Config, policy resilience.Policy) *retrieval.Retriever {
	embedder, err := embeddings.NewFromConfig(cfg, policy)
	if err != nil {
		logger.Warn().Err(err).Msg("embedding backend unavailable, semantic search disabled")
		return retrieval.New(nil, retrieval.Options{DefaultK: cfg.Retrieval.TopK})
	}

	backend := vectordb.Backend(cfg.Retrieval.IndexBackend)
	dims := embedder.Dimensions()
	ef := embeddings.ToChromemFunc(embedder)
	return retrieval.New(embedder, retrieval.Options{
		DefaultK: cfg.Retrieval.TopK,
		NewIndex: func() (vectordb.Index, error) { return vectordb.New(backend, dims, ef) },
	})
}

// newModels creates the structured-answer model and the reasoning model.
// Either may be nil when its provider cannot be configured.
func newModels(cfg *config.Config, policy resilience.Policy) (model, reasoner llm.Provider) {
	model, err := llm.NewFromConfig(cfg, llm.WithPolicy(policy))
	if err != nil {
		logger.Warn().Err(err).Msg("llm provider unavailable, answers will use fallbacks")
		return nil, nil
	}
	if cfg.LLM.ReasoningModel == "" || cfg.LLM.ReasoningModel == cfg.LLM.Model {
		return model, model
	}

	rc := *cfg
	rc.LLM.Model = cfg.LLM.ReasoningModel
	reasoner, err = llm.NewFromConfig(&rc, llm.WithPolicy(policy))
	if err != nil {
		logger.Warn().Err(err).Msg("reasoning model unavailable, using the analysis model")
		return model, model
	}
	return model, reasoner
}

// app holds everything the serve and mcp commands share.
type app struct {
	cfg       *config.Config
	store     storage.Store
	documents *regulation.Store
	retriever *retrieval.Retriever
	weather   *weather.Client
	svc       *compliance.Service
}

// bootstrap opens storage, loads the regulations, builds the index and
// assembles the compliance service. progress may be nil.
func bootstrap(ctx context.Context, cfg *config.Config, progress retrieval.Progress) (*app, error) {
	policy := outboundPolicy(cfg)

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}

	documents := regulation.NewStore(store)
	snap := documents.Load(ctx, regulation.NewECFRSource(cfg.Sources.RegulationsURL, policy))
	logger.Info().Int("records", snap.Len()).Uint64("generation", snap.Generation).Msg("regulations loaded")

	retriever := newRetriever(cfg, policy)
	if err := retriever.Rebuild(ctx, snap, progress); err != nil {
		logger.Warn().Err(err).Msg("index build failed, semantic search unavailable")
	}

	model, reasoner := newModels(cfg, policy)

	if config.WeatherAPIKey() == "" {
		logger.Warn().Msg("METAR_API_KEY is not set, weather lookups will report N/A")
	}
	wx := weather.NewClient(cfg.Weather.BaseURL, config.WeatherAPIKey(), policy)

	svc := compliance.New(compliance.Deps{
		Retriever:    retriever,
		Documents:    documents,
		Model:        model,
		Reasoner:     reasoner,
		Weather:      wx,
		Flights:      store,
		ActionItems:  store,
		Updates:      store,
		Regulations:  store,
		Policy:       regulation.PolicyFor(cfg.Ranking.PriorityICAO),
		TopK:         cfg.Retrieval.TopK,
		LookbackDays: cfg.Sources.LookbackDays,
	})

	return &app{
		cfg:       cfg,
		store:     store,
		documents: documents,
		retriever: retriever,
		weather:   wx,
		svc:       svc,
	}, nil
}

// Close releases the durable store.
func (a *app) Close() error {
	return a.store.Close()
}
