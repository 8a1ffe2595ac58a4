package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix  = "embedding"
	DefaultTTL = 30 * 24 * time.Hour
	// the in-process memo is dropped once it grows past this size
	maxMemo = 50000
)

// Cache memoizes vectors of the wrapped embedder in process and, when a
// redis client is given, in redis. Redis failures are treated as misses.
type Cache struct {
	inner     Embedder
	namespace string
	rdb       redis.Cmdable
	ttl       time.Duration
	logger    *zap.Logger

	mu   sync.Mutex
	memo map[string][]float32
}

// NewCache wraps inner. namespace usually is the model name so vectors of
// different models never mix.
func NewCache(inner Embedder, namespace string, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Cache{
		inner:     inner,
		namespace: namespace,
		rdb:       rdb,
		ttl:       ttl,
		logger:    logger,
		memo:      make(map[string][]float32),
	}
}

func (c *Cache) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	positions := make(map[string][]int)
	var missing []string

	c.mu.Lock()
	for i, text := range texts {
		if vector, ok := c.memo[text]; ok {
			result[i] = vector
			continue
		}
		if _, seen := positions[text]; !seen {
			missing = append(missing, text)
		}
		positions[text] = append(positions[text], i)
	}
	c.mu.Unlock()

	if len(missing) == 0 {
		return result, nil
	}

	if c.rdb != nil {
		found := c.fromRedis(ctx, missing)
		rest := missing[:0]
		for _, text := range missing {
			vector, ok := found[text]
			if !ok {
				rest = append(rest, text)
				continue
			}
			c.fill(result, positions[text], text, vector)
		}
		missing = rest

		c.logger.Debug("embedding cache lookup",
			zap.Int("hits", len(found)),
			zap.Int("misses", len(missing)),
		)
	}

	if len(missing) == 0 {
		return result, nil
	}

	vectors, err := c.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("expected %d vectors, got %d", len(missing), len(vectors))
	}

	fresh := make(map[string][]float32, len(missing))
	for i, text := range missing {
		c.fill(result, positions[text], text, vectors[i])
		fresh[text] = vectors[i]
	}

	if c.rdb != nil {
		c.toRedis(ctx, fresh)
	}

	return result, nil
}

func (c *Cache) fill(result [][]float32, positions []int, text string, vector []float32) {
	for _, i := range positions {
		result[i] = vector
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.memo) >= maxMemo {
		c.memo = make(map[string][]float32)
	}
	c.memo[text] = vector
}

func (c *Cache) fromRedis(ctx context.Context, texts []string) map[string][]float32 {
	found := make(map[string][]float32)

	keys := make([]string, 0, len(texts))
	for _, text := range texts {
		keys = append(keys, c.key(text))
	}

	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Debug("reading embeddings from redis", zap.Error(err))
		return found
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var vector []float32
		if err := json.Unmarshal([]byte(raw), &vector); err != nil {
			c.logger.Debug("decoding cached embedding", zap.String("key", keys[i]), zap.Error(err))
			continue
		}
		found[texts[i]] = vector
	}

	return found
}

func (c *Cache) toRedis(ctx context.Context, vectors map[string][]float32) {
	_, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for text, vector := range vectors {
			data, err := json.Marshal(vector)
			if err != nil {
				return err
			}
			pipe.Set(ctx, c.key(text), data, c.ttl)
		}
		return nil
	})
	if err != nil {
		c.logger.Debug("writing embeddings to redis", zap.Error(err))
	}
}

func (c *Cache) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%s:%s", keyPrefix, c.namespace, hex.EncodeToString(sum[:]))
}
