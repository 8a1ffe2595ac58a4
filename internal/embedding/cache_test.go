package embedding

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls [][]string
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.calls = append(c.calls, append([]string(nil), texts...))
	if c.err != nil {
		return nil, c.err
	}
	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, []float32{float32(len(text)), 0.5})
	}
	return vectors, nil
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCacheMemoizesAndDeduplicates(t *testing.T) {
	inner := &countingEmbedder{}
	cache := NewCache(inner, "test-model", nil, 0, nil)

	vectors, err := cache.Embed(context.Background(), []string{"go", "rust", "go"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, vectors[0], vectors[2])
	assert.Equal(t, [][]string{{"go", "rust"}}, inner.calls)

	_, err = cache.Embed(context.Background(), []string{"rust", "python"})
	require.NoError(t, err)
	assert.Equal(t, []string{"python"}, inner.calls[1], "only unseen texts reach the inner embedder")
}

func TestCacheUsesRedis(t *testing.T) {
	mr, client := newMiniredis(t)

	first := &countingEmbedder{}
	_, err := NewCache(first, "test-model", client, time.Hour, nil).Embed(context.Background(), []string{"docker", "aws"})
	require.NoError(t, err)

	key := NewCache(nil, "test-model", nil, 0, nil).key("docker")
	require.True(t, mr.Exists(key), "expected %s to be stored", key)
	assert.Equal(t, time.Hour, mr.TTL(key))

	// a fresh process only has redis
	second := &countingEmbedder{}
	vectors, err := NewCache(second, "test-model", client, time.Hour, nil).Embed(context.Background(), []string{"docker", "kafka"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"kafka"}}, second.calls)
	assert.True(t, reflect.DeepEqual(vectors[0], []float32{6, 0.5}))
}

func TestCacheNamespacesKeys(t *testing.T) {
	a := NewCache(nil, "model-a", nil, 0, nil)
	b := NewCache(nil, "model-b", nil, 0, nil)
	assert.NotEqual(t, a.key("go"), b.key("go"))
}

func TestCacheTreatsRedisFailureAsMiss(t *testing.T) {
	// nothing listens on port 1
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: time.Second})
	t.Cleanup(func() { client.Close() })

	inner := &countingEmbedder{}
	vectors, err := NewCache(inner, "test-model", client, 0, nil).Embed(context.Background(), []string{"go"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Len(t, inner.calls, 1)
}

func TestCacheIgnoresCorruptEntries(t *testing.T) {
	mr, client := newMiniredis(t)

	cache := NewCache(&countingEmbedder{}, "test-model", client, 0, nil)
	require.NoError(t, mr.Set(cache.key("go"), "not json"))

	_, err := cache.Embed(context.Background(), []string{"go"})
	require.NoError(t, err)
	assert.Len(t, cache.inner.(*countingEmbedder).calls, 1)
}

func TestCachePropagatesInnerError(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("boom")}
	_, err := NewCache(inner, "test-model", nil, 0, nil).Embed(context.Background(), []string{"go"})
	require.Error(t, err)
}
