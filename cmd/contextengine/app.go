package main

import (
	"context"
	"errors"
	"fmt"

	cectx "github.com/easyops/contextengine/pkg/context"
	"github.com/easyops/contextengine/pkg/core/config"
	"github.com/easyops/contextengine/pkg/core/llm"
	"github.com/easyops/contextengine/pkg/otel"
	"github.com/easyops/contextengine/pkg/store"
)

// app 持有一次进程运行所需的全部组件
type app struct {
	cfg       *config.Config
	provider  *otel.Provider
	stores    *store.Set
	assembler *cectx.Assembler
}

// newApp 加载配置并装配组件
func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	provider, err := otel.NewProvider(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}
	otel.SetGlobal(provider)

	a := &app{cfg: cfg, provider: provider}

	a.stores, err = store.Open(ctx, cfg.Store, provider.Metrics())
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}

	counter, err := newTokenCounter(cfg.Engine)
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}

	similarity, err := newSimilarity(cfg, provider.Metrics())
	if err != nil {
		_ = a.close(ctx)
		return nil, err
	}

	engineCfg := cectx.NewConfig(
		cectx.WithMaxCandidates(cfg.Engine.MaxCandidates),
		cectx.WithRetrievalTimeout(cfg.Engine.RetrievalTimeout),
		cectx.WithScoreWorkers(cfg.Engine.ScoreWorkers),
		cectx.WithTokenCounter(counter),
	)

	a.assembler = cectx.NewAssembler(a.stores.Retriever(),
		cectx.WithConfig(engineCfg),
		cectx.WithAssemblerSimilarity(similarity),
		cectx.WithLogger(provider.Logger()),
		cectx.WithTracer(provider.Tracer()),
		cectx.WithMetrics(provider.Metrics()),
	)

	return a, nil
}

func newTokenCounter(cfg config.EngineConfig) (cectx.TokenCounter, error) {
	switch cfg.Tokenizer {
	case config.TokenizerEstimate:
		return cectx.NewEstimatedCounter(), nil
	default:
		counter, err := cectx.NewTiktokenCounter(cectx.WithModel(cfg.TokenizerModel))
		if err != nil {
			return nil, fmt.Errorf("init tokenizer: %w", err)
		}
		return counter, nil
	}
}

func newSimilarity(cfg *config.Config, metrics otel.Metrics) (cectx.Similarity, error) {
	switch cfg.Engine.Similarity {
	case config.SimilarityNone:
		return nil, nil
	case config.SimilarityEmbedding:
		embedder, err := llm.NewEmbedderFromConfig(cfg.Embedding)
		if err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
		return cectx.NewEmbeddingSimilarity(embedder, cfg.Embedding.CacheSize,
			cectx.WithEmbeddingMetrics(metrics))
	default:
		return cectx.NewLexicalSimilarity(), nil
	}
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.stores != nil {
		errs = append(errs, a.stores.Close())
	}
	if a.provider != nil {
		errs = append(errs, a.provider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
