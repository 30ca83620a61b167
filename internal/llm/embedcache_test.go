package llm

import (
	"context"
	"errors"
	"testing"
)

type countingEmbedder struct {
	queryCalls int
	batchCalls int
	vec        []float32
	err        error
}

func (c *countingEmbedder) EmbedTexts(ctx context.Context, texts []string, apiKey string) ([][]float32, error) {
	c.batchCalls++
	if c.err != nil {
		return nil, c.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = c.vec
	}
	return out, nil
}

func (c *countingEmbedder) EmbedQuery(ctx context.Context, text string, apiKey string) ([]float32, error) {
	c.queryCalls++
	if c.err != nil {
		return nil, c.err
	}
	return c.vec, nil
}

func TestEmbedCacheQueryHit(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1, 2, 3}}
	cache, err := NewEmbedCache(inner, "text-embedding-3-small", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		vec, err := cache.EmbedQuery(ctx, "same question", "key")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(vec) != 3 {
			t.Fatalf("unexpected vector length %d", len(vec))
		}
	}
	if inner.queryCalls != 1 {
		t.Errorf("expected 1 delegate call, got %d", inner.queryCalls)
	}
	if cache.Len() != 1 {
		t.Errorf("expected 1 cached entry, got %d", cache.Len())
	}

	if _, err := cache.EmbedQuery(ctx, "different question", "key"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.queryCalls != 2 {
		t.Errorf("expected 2 delegate calls, got %d", inner.queryCalls)
	}
}

func TestEmbedCacheDoesNotCacheErrors(t *testing.T) {
	sentinel := errors.New("upstream down")
	inner := &countingEmbedder{err: sentinel}
	cache, err := NewEmbedCache(inner, "text-embedding-3-small", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := cache.EmbedQuery(ctx, "q", "key"); !errors.Is(err, sentinel) {
			t.Fatalf("expected sentinel error, got %v", err)
		}
	}
	if inner.queryCalls != 2 {
		t.Errorf("errors must not be cached, got %d delegate calls", inner.queryCalls)
	}
	if cache.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", cache.Len())
	}
}

func TestEmbedCacheBatchPassthrough(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	cache, err := NewEmbedCache(inner, "text-embedding-3-small", 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := cache.EmbedTexts(ctx, []string{"a", "b"}, "key"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if inner.batchCalls != 2 {
		t.Errorf("batch calls must pass through uncached, got %d", inner.batchCalls)
	}
}
