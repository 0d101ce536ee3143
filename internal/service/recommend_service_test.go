package service

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmednasr/blogsage/internal/models"
)

func post(id, title, short string) models.Post {
	return models.Post{ID: id, Slug: id, Title: title, ShortDescription: short, Status: models.StatusPublished}
}

func TestRecommendFewerThanThreeReturnsAll(t *testing.T) {
	emb := newKeywordEmbedder("dogs", "cats", "rockets")
	r := NewRecommender(emb, rand.New(rand.NewSource(1)))

	a := post("A", "A", "dogs and cats")
	b := post("B", "B", "dogs")
	c := post("C", "C", "rockets")

	ids, err := r.Recommend(context.Background(), a, []models.Post{b, c})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C"}, ids)
	assert.Zero(t, emb.calls.Load(), "fallback path must not embed")
}

func TestRecommendExcludesCurrentFromCandidates(t *testing.T) {
	r := NewRecommender(newKeywordEmbedder("x"), rand.New(rand.NewSource(1)))
	a := post("A", "A", "x")

	ids, err := r.Recommend(context.Background(), a, []models.Post{a, post("B", "B", "x")})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, ids)

	ids, err = r.Recommend(context.Background(), a, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRecommendRanksBySimilarity(t *testing.T) {
	emb := newKeywordEmbedder("dogs", "cats", "rockets", "space", "cooking")
	r := NewRecommender(emb, rand.New(rand.NewSource(1)))

	current := post("A", "Pets", "dogs and cats")
	candidates := []models.Post{
		post("R", "Launch", "rockets space"),
		post("D", "Puppies", "dogs"),
		post("K", "Kitchen", "cooking"),
		post("DC", "Friends", "dogs cats"),
		post("C", "Kittens", "cats"),
	}

	ids, err := r.Recommend(context.Background(), current, candidates)
	require.NoError(t, err)
	require.Len(t, ids, MaxRecommendations)
	assert.Equal(t, "DC", ids[0])
	assert.ElementsMatch(t, []string{"D", "C"}, ids[1:])
}

func TestRecommendAlwaysThreeDistinct(t *testing.T) {
	emb := newKeywordEmbedder("go", "rust")
	candidates := make([]models.Post, 0, 12)
	for i := range 12 {
		candidates = append(candidates, post(fmt.Sprintf("p%d", i), "Post", "unrelated words"))
	}
	current := post("cur", "Current", "go rust")

	for seed := int64(0); seed < 20; seed++ {
		r := NewRecommender(emb, rand.New(rand.NewSource(seed)))
		ids, err := r.Recommend(context.Background(), current, append(candidates, current))
		require.NoError(t, err)
		require.Len(t, ids, MaxRecommendations)

		seen := map[string]bool{}
		for _, id := range ids {
			assert.NotEqual(t, "cur", id)
			assert.False(t, seen[id], "duplicate %s", id)
			seen[id] = true
		}
	}
}

func TestRecommendEmbeddingFailure(t *testing.T) {
	emb := newKeywordEmbedder("x")
	emb.err = errBoom
	r := NewRecommender(emb, nil)

	candidates := []models.Post{post("B", "B", "x"), post("C", "C", "x"), post("D", "D", "x")}
	_, err := r.Recommend(context.Background(), post("A", "A", "x"), candidates)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.ErrorIs(t, err, errBoom)

	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "embedding", ue.Service)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{"a", "x", "a", "b", "c"}, "x", 2))
	assert.Empty(t, dedupe(nil, "", 3))
}

func TestRecommendBackfillsWhenHitsCollapse(t *testing.T) {
	emb := newKeywordEmbedder("dogs")
	r := NewRecommender(emb, rand.New(rand.NewSource(7)))

	var candidates []models.Post
	for range recommendFetchK {
		candidates = append(candidates, post("B", "B", "dogs"))
	}
	candidates = append(candidates, post("C", "C", "rockets"), post("D", "D", "cooking"), post("E", "E", "space"))

	ids, err := r.Recommend(context.Background(), post("A", "A", "dogs"), candidates)
	require.NoError(t, err)
	require.Len(t, ids, MaxRecommendations)
	assert.Equal(t, "B", ids[0])
	assert.Subset(t, []string{"C", "D", "E"}, ids[1:])
	assert.NotEqual(t, ids[1], ids[2])
}
