// Package vectorindex is a small in-memory nearest-neighbour index.
//
// An Index is built for a single request, queried, and thrown away. It uses
// exact cosine similarity over every entry, which is plenty for the few
// hundred vectors a blog produces.
package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrEmptyVector is returned when a zero-length vector is added.
var ErrEmptyVector = errors.New("vectorindex: empty vector")

// Hit is one query result.
type Hit struct {
	ID    string
	Score float32 // cosine similarity in [-1, 1]
}

type entry struct {
	id  string
	vec []float32
}

// Index holds vectors keyed by an external id. It is not safe for concurrent use.
type Index struct {
	entries []entry
	dim     int
}

// New returns an empty index.
func New() *Index {
	return &Index{}
}

// Add stores vec under id. The first vector fixes the dimension of the index.
// Ids need not be unique; duplicates are returned as separate hits.
func (x *Index) Add(id string, vec []float32) error {
	if len(vec) == 0 {
		return ErrEmptyVector
	}
	if x.dim == 0 {
		x.dim = len(vec)
	} else if len(vec) != x.dim {
		return fmt.Errorf("vectorindex: dimension mismatch for %q: got %d, want %d", id, len(vec), x.dim)
	}
	x.entries = append(x.entries, entry{id: id, vec: vec})
	return nil
}

// Len reports the number of stored vectors.
func (x *Index) Len() int {
	return len(x.entries)
}

// Query returns up to k hits ordered by descending similarity to vec.
// Equal scores keep insertion order, so identical inputs give identical output.
func (x *Index) Query(vec []float32, k int) []Hit {
	if k <= 0 || len(x.entries) == 0 {
		return nil
	}

	hits := make([]Hit, len(x.entries))
	for i, e := range x.entries {
		hits[i] = Hit{ID: e.id, Score: CosineSimilarity(vec, e.vec)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits
}

// CosineSimilarity computes (A · B) / (||A|| * ||B||). Mismatched or zero
// vectors score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
