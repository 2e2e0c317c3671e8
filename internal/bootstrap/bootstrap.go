// Package bootstrap wires configuration into the concrete infrastructure
// and hands the binaries ready-to-use use cases.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/brokera/leadmatch/internal/config"
	"github.com/brokera/leadmatch/internal/core/ports"
	"github.com/brokera/leadmatch/internal/core/usecase"
	"github.com/brokera/leadmatch/internal/infrastructure/llm/ollama"
	openaillm "github.com/brokera/leadmatch/internal/infrastructure/llm/openai"
	"github.com/brokera/leadmatch/internal/infrastructure/queue/nats"
	"github.com/brokera/leadmatch/internal/infrastructure/repository/postgres"
	"github.com/brokera/leadmatch/internal/infrastructure/resilience"
	"github.com/brokera/leadmatch/internal/infrastructure/stats"
	"github.com/brokera/leadmatch/internal/infrastructure/vector/qdrant"
)

// App bundles everything a binary needs after wiring.
type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Listings ports.ListingRepository
	SearchUC ports.PropertySearcher
	ScoreUC  ports.LeadScorer
	IndexUC  ports.ListingProcessor

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	listings := postgres.NewListingRepository(db)
	if err := listings.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure listings schema: %w", err)
	}
	leads := postgres.NewLeadRepository(db)
	if err := leads.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure leads schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	embedder, judge, err := buildLLM(cfg, executor)
	if err != nil {
		return nil, err
	}

	// One qdrant client backs the dense index, the keyword index and the
	// indexer; they share the same collection.
	index := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, embedder)

	marketStats, err := buildMarketStats(cfg)
	if err != nil {
		return nil, err
	}

	searchUC := usecase.NewSearchUseCase(index, index, listings, judge, usecase.SearchConfig{
		TopN:          cfg.SearchTopN,
		CandidateTopN: cfg.SearchCandidateTopN,
		MaxVariants:   cfg.SearchMaxVariants,
		SourceTimeout: time.Duration(cfg.SearchSourceTimeoutMS) * time.Millisecond,
	})
	scoreUC := usecase.NewLeadScoreUseCase(listings, leads, marketStats)
	indexUC := usecase.NewIndexListingUseCase(listings, embedder, index)

	return &App{
		Config: cfg,

		Queue:    queue,
		Listings: listings,
		SearchUC: searchUC,
		ScoreUC:  scoreUC,
		IndexUC:  indexUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

// buildLLM picks the embedding/judging provider. The judge stays nil when
// disabled; the rerank step treats a nil judge as a zero adjustment.
func buildLLM(cfg config.Config, executor *resilience.Executor) (ports.Embedder, ports.RelevanceJudge, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil, fmt.Errorf("LLM_PROVIDER=openai requires OPENAI_API_KEY")
		}
		client := openaillm.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIChatModel, cfg.OpenAIEmbedModel)
		var judge ports.RelevanceJudge
		if cfg.JudgeEnabled {
			judge = openaillm.NewJudge(client, cfg.JudgeRateRPS, cfg.JudgeRateBurst)
		}
		return openaillm.NewEmbedder(client), judge, nil
	case "ollama", "":
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
		var judge ports.RelevanceJudge
		if cfg.JudgeEnabled {
			judge = ollama.NewJudge(client)
		}
		return ollama.NewEmbedder(client), judge, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

func buildMarketStats(cfg config.Config) (ports.MarketStats, error) {
	if cfg.MarketAveragesPath == "" {
		return stats.Default(), nil
	}
	store, err := stats.LoadFile(cfg.MarketAveragesPath)
	if err != nil {
		return nil, fmt.Errorf("load market averages: %w", err)
	}
	return store, nil
}

// Close releases queue and database handles. Safe to call once.
func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
