package main

import (
	"context"
	"fmt"

	"github.com/ahmednasr/blogsage/internal/config"
	"github.com/ahmednasr/blogsage/internal/database"
	"github.com/ahmednasr/blogsage/internal/handler"
	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/service"
)

type embedding struct {
	embedder service.Embedder
	pinger   handler.Pinger // nil without a cache
	close    func() error
}

// buildEmbedder returns the configured embedder, wrapped in the Redis cache
// when REDIS_ADDR is set.
func buildEmbedder(ctx context.Context, cfg config.Config) (embedding, error) {
	var (
		base      service.Embedder
		namespace string
		closeBase func() error
	)
	switch cfg.Embedder {
	case config.EmbedderVertex:
		v, err := service.NewVertexEmbedder(ctx, service.VertexConfig{
			ProjectID:       cfg.ProjectID,
			Location:        cfg.Location,
			Model:           cfg.VertexEmbedModel,
			CredentialsFile: cfg.CredentialsFile,
		})
		if err != nil {
			return embedding{}, err
		}
		base, namespace, closeBase = v, "vertex:"+cfg.VertexEmbedModel, v.Close
	default:
		l := service.NewLocalEmbedder(service.DefaultLocalDimensions)
		base, namespace, closeBase = l, fmt.Sprintf("local:%d", service.DefaultLocalDimensions), l.Close
	}

	if cfg.RedisAddr == "" {
		return embedding{embedder: base, close: closeBase}, nil
	}

	rdb, err := database.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = closeBase()
		return embedding{}, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
	}
	logger.Log.Infof("Embedding cache enabled at %s (namespace %s)", cfg.RedisAddr, namespace)
	return embedding{
		embedder: service.NewCachedEmbedder(base, rdb, namespace, cfg.EmbedCacheTTL),
		pinger:   database.RedisPinger{Client: rdb},
		close: func() error {
			_ = rdb.Close()
			return closeBase()
		},
	}, nil
}

// buildLLM returns the configured generation backend and its closer.
func buildLLM(ctx context.Context, cfg config.Config) (service.LLM, func() error, error) {
	noop := func() error { return nil }
	switch cfg.LLMProvider {
	case config.LLMVertex:
		llm, err := service.NewVertexLLM(ctx, cfg.ProjectID, cfg.Location, cfg.LLMModel, cfg.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return llm, llm.Close, nil
	case config.LLMDummy:
		logger.Log.Warnf("Using the offline assistant; answers are not generated by a model")
		return service.NewDummyLLM(), noop, nil
	default:
		llm, err := service.NewGeminiLLM(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, nil, err
		}
		return llm, noop, nil
	}
}
