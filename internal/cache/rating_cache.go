package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cinerate/internal/microservices/http-api/models"
	"cinerate/internal/observability/metrics"
)

// RatingCache keeps listByMedia results in Redis. A nil *RatingCache or one
// without a client is a no-op, so callers never need to branch on Redis
// being configured.
//
// Entries are keyed by a per-media generation. Invalidation bumps the
// generation, so a list read before the bump can only be written under a
// key nobody reads again.
type RatingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRatingCache(client *redis.Client, ttl time.Duration) *RatingCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &RatingCache{client: client, ttl: ttl}
}

func (c *RatingCache) disabled() bool {
	return c == nil || c.client == nil
}

// GetMediaRatings returns the cached list and the generation it was looked
// up under. On a miss the generation is still returned; pass it to
// SetMediaRatings after loading from the store.
func (c *RatingCache) GetMediaRatings(ctx context.Context, mediaID string) ([]models.Rating, int64, bool, error) {
	if c.disabled() {
		return nil, 0, false, nil
	}
	gen, err := c.client.Get(ctx, generationKey(mediaID)).Int64()
	if errors.Is(err, redis.Nil) {
		gen, err = 0, nil
	}
	if err != nil {
		metrics.RecordCacheLookup("error")
		return nil, 0, false, fmt.Errorf("redis get ratings generation failed: %w", err)
	}

	raw, err := c.client.Get(ctx, mediaKey(mediaID, gen)).Result()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheLookup("miss")
		return nil, gen, false, nil
	}
	if err != nil {
		metrics.RecordCacheLookup("error")
		return nil, gen, false, fmt.Errorf("redis get ratings failed: %w", err)
	}

	var ratings []models.Rating
	if err := json.Unmarshal([]byte(raw), &ratings); err != nil {
		metrics.RecordCacheLookup("error")
		return nil, gen, false, fmt.Errorf("unmarshal cached ratings failed: %w", err)
	}
	metrics.RecordCacheLookup("hit")
	return ratings, gen, true, nil
}

func (c *RatingCache) SetMediaRatings(ctx context.Context, mediaID string, generation int64, ratings []models.Rating) error {
	if c.disabled() {
		return nil
	}
	if ratings == nil {
		ratings = []models.Rating{}
	}
	payload, err := json.Marshal(ratings)
	if err != nil {
		return fmt.Errorf("marshal ratings cache failed: %w", err)
	}
	if err := c.client.Set(ctx, mediaKey(mediaID, generation), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set ratings failed: %w", err)
	}
	return nil
}

// InvalidateMedia bumps the generation of every media id. Entries under the
// old generation are left to expire.
func (c *RatingCache) InvalidateMedia(ctx context.Context, mediaIDs ...string) error {
	if c.disabled() || len(mediaIDs) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range mediaIDs {
			pipe.Incr(ctx, generationKey(id))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis bump ratings generation failed: %w", err)
	}
	return nil
}

// Ping reports whether Redis is reachable. A disabled cache is always healthy.
func (c *RatingCache) Ping(ctx context.Context) error {
	if c.disabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

func (c *RatingCache) Enabled() bool {
	return !c.disabled()
}

func mediaKey(mediaID string, generation int64) string {
	return fmt.Sprintf("ratings:media:%s:v%d", mediaID, generation)
}

func generationKey(mediaID string) string {
	return fmt.Sprintf("ratings:media:%s:gen", mediaID)
}
