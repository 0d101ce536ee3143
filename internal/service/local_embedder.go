package service

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// DefaultLocalDimensions is the vector size of LocalEmbedder when none is given.
const DefaultLocalDimensions = 384

// LocalEmbedder is an offline, deterministic embedder. It hashes lower-cased
// word tokens and word bigrams into a fixed number of buckets and
// L2-normalises the counts, so texts sharing vocabulary score high under
// cosine similarity. It needs no credentials and suits development and tests.
type LocalEmbedder struct {
	dims int
}

// NewLocalEmbedder creates a LocalEmbedder producing dims-wide vectors.
func NewLocalEmbedder(dims int) *LocalEmbedder {
	if dims <= 0 {
		dims = DefaultLocalDimensions
	}
	return &LocalEmbedder{dims: dims}
}

// Embed generates an embedding vector for a single input text
func (l *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, l.dims)
	tokens := tokenize(text)
	for i, tok := range tokens {
		l.add(vec, tok, 1)
		if i > 0 {
			l.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}

// Close is a no-op for local embedder
func (l *LocalEmbedder) Close() error {
	return nil
}

func (l *LocalEmbedder) add(vec []float32, feature string, weight float32) {
	h := xxhash.Sum64String(feature)
	bucket := h % uint64(l.dims)
	// the top bit picks a sign so unrelated collisions tend to cancel out
	if h>>63 == 1 {
		weight = -weight
	}
	vec[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
