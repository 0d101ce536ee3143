package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/ahmednasr/blogsage/internal/logger"
	"github.com/ahmednasr/blogsage/internal/models"
	"github.com/ahmednasr/blogsage/internal/vectorindex"
)

const (
	// MaxRecommendations is the number of related posts shown under a post.
	MaxRecommendations = 3
	// recommendFetchK over-fetches neighbours to tolerate duplicate hits.
	recommendFetchK = 10
)

// Recommender picks related posts for the post being read.
type Recommender interface {
	// Recommend returns up to MaxRecommendations distinct ids from candidates,
	// never current.ID.
	Recommend(ctx context.Context, current models.Post, candidates []models.Post) ([]string, error)
}

type recommender struct {
	embedder Embedder

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRecommender wires the embedder. rng drives the random backfill; nil seeds
// one from the clock.
func NewRecommender(embedder Embedder, rng *rand.Rand) Recommender {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &recommender{embedder: embedder, rng: rng}
}

func recommendText(p models.Post) string {
	return p.Title + ". " + p.ShortDescription
}

func (r *recommender) Recommend(ctx context.Context, current models.Post, candidates []models.Post) ([]string, error) {
	others := make([]models.Post, 0, len(candidates))
	for _, c := range candidates {
		if c.ID != current.ID {
			others = append(others, c)
		}
	}

	// 1. Too few posts to rank: return them as supplied.
	if len(others) < MaxRecommendations {
		ids := make([]string, len(others))
		for i, p := range others {
			ids[i] = p.ID
		}
		return dedupe(ids, current.ID, MaxRecommendations), nil
	}

	// 2. Embed candidates and index them.
	texts := make([]string, len(others))
	for i, p := range others {
		texts[i] = recommendText(p)
	}
	vecs, err := embedAll(ctx, r.embedder, texts)
	if err != nil {
		return nil, &UpstreamError{Service: "embedding", Cause: err}
	}

	idx := vectorindex.New()
	for i, p := range others {
		if err := idx.Add(p.ID, vecs[i]); err != nil {
			return nil, &UpstreamError{Service: "embedding", Cause: err}
		}
	}

	// 3. Query with the current post and keep the first distinct hits.
	qVec, err := r.embedder.Embed(ctx, recommendText(current))
	if err != nil {
		return nil, &UpstreamError{Service: "embedding", Cause: err}
	}
	hits := idx.Query(qVec, recommendFetchK)
	ranked := make([]string, len(hits))
	for i, h := range hits {
		ranked[i] = h.ID
	}
	ids := dedupe(ranked, current.ID, MaxRecommendations)
	logger.Log.Debugf("[Recommender] post %s: %d hits, %d distinct", current.ID, len(hits), len(ids))

	// 4. Backfill with a random sample of the rest.
	if len(ids) < MaxRecommendations {
		ids = r.backfill(ids, others, current.ID)
	}
	return ids, nil
}

func (r *recommender) backfill(ids []string, others []models.Post, currentID string) []string {
	chosen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		chosen[id] = struct{}{}
	}

	var rest []string
	for _, p := range others {
		if _, ok := chosen[p.ID]; !ok && p.ID != currentID {
			rest = append(rest, p.ID)
		}
	}

	r.mu.Lock()
	r.rng.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	r.mu.Unlock()

	return dedupe(append(ids, rest...), currentID, MaxRecommendations)
}

// dedupe keeps the first occurrence of each id, skips exclude and stops at limit.
func dedupe(ids []string, exclude string, limit int) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, limit)
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		if id == exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
