package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// EmbedCache wraps an Embedder with an in-memory LRU over single-query
// embeddings. Repeated questions against the same document are common in chat
// sessions, and a query embedding is a pure function of (model, text).
// Batch embedding of document chunks is passed through uncached.
type EmbedCache struct {
	inner Embedder
	model string
	cache *lru.Cache[string, []float32]
}

// NewEmbedCache creates a caching decorator holding up to size query vectors.
func NewEmbedCache(inner Embedder, model string, size int) (*EmbedCache, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &EmbedCache{
		inner: inner,
		model: model,
		cache: cache,
	}, nil
}

// EmbedTexts passes batch requests straight through.
func (c *EmbedCache) EmbedTexts(ctx context.Context, texts []string, apiKey string) ([][]float32, error) {
	return c.inner.EmbedTexts(ctx, texts, apiKey)
}

// EmbedQuery returns a cached vector when the same query was embedded before,
// otherwise delegates and stores the result.
func (c *EmbedCache) EmbedQuery(ctx context.Context, text string, apiKey string) ([]float32, error) {
	key := c.cacheKey(text)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := c.inner.EmbedQuery(ctx, text, apiKey)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vec)
	return vec, nil
}

// Len reports the number of cached query vectors.
func (c *EmbedCache) Len() int {
	return c.cache.Len()
}

func (c *EmbedCache) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
