package service

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ahmednasr/blogsage/internal/logger"
)

// CachedEmbedder memoises another embedder in Redis, keyed by a namespace and
// the SHA-256 of the text. Cache errors are logged and fall through to the
// inner embedder, so a Redis outage never fails a request.
type CachedEmbedder struct {
	inner     Embedder
	rdb       redis.UniversalClient
	namespace string
	ttl       time.Duration
}

// NewCachedEmbedder wraps inner. namespace should identify the model so that
// switching models never serves stale vectors.
func NewCachedEmbedder(inner Embedder, rdb redis.UniversalClient, namespace string, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, rdb: rdb, namespace: namespace, ttl: ttl}
}

func (c *CachedEmbedder) key(text string) string {
	return fmt.Sprintf("emb:%s:%x", c.namespace, sha256.Sum256([]byte(text)))
}

// Embed returns the cached vector for text or computes and stores it.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch looks every text up with one MGET and embeds only the misses.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.key(t)
	}

	out := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	cached, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Log.Warnf("[Embed Cache] lookup failed, embedding %d texts directly: %v", len(texts), err)
		cached = nil
	}
	for i := range texts {
		if i < len(cached) {
			if s, ok := cached[i].(string); ok && len(s) > 0 {
				out[i] = bytesToFloat32([]byte(s))
				continue
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}

	if len(missTexts) == 0 {
		logger.Log.Debugf("[Embed Cache] %d/%d hits", len(texts), len(texts))
		return out, nil
	}

	vecs, err := embedAll(ctx, c.inner, missTexts)
	if err != nil {
		return nil, err
	}

	pipe := c.rdb.Pipeline()
	for j, i := range missIdx {
		out[i] = vecs[j]
		pipe.Set(ctx, keys[i], float32ToBytes(vecs[j]), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Log.Warnf("[Embed Cache] store failed: %v", err)
	}
	logger.Log.Debugf("[Embed Cache] %d/%d hits", len(texts)-len(missTexts), len(texts))
	return out, nil
}

func float32ToBytes(vec []float32) []byte {
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

func bytesToFloat32(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}
