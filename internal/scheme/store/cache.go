package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"sarkar/internal/scheme/models"
)

// ActiveSchemesKey holds the JSON encoded active catalog.
const ActiveSchemesKey = "sarkar:schemes:active"

// Catalog is the store contract the cache decorates.
type Catalog interface {
	ListActiveSchemes(ctx context.Context) ([]models.Scheme, error)
	ListActiveSchemesWithDeadline(ctx context.Context) ([]models.Scheme, error)
	Upsert(ctx context.Context, schemes []models.Scheme) error
}

// CachedStore serves ListActiveSchemes from Redis and falls back to the
// underlying store on a miss or any Redis failure. Upsert invalidates.
type CachedStore struct {
	next   Catalog
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(next Catalog, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedStore) ListActiveSchemes(ctx context.Context) ([]models.Scheme, error) {
	raw, err := c.client.Get(ctx, ActiveSchemesKey).Bytes()
	switch {
	case err == nil:
		var schemes []models.Scheme
		if jsonErr := json.Unmarshal(raw, &schemes); jsonErr == nil {
			return schemes, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable scheme cache entry")
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "scheme cache read failed", "error", err)
	}

	schemes, err := c.next.ListActiveSchemes(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(schemes); err == nil {
		if err := c.client.Set(ctx, ActiveSchemesKey, encoded, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "scheme cache write failed", "error", err)
		}
	}
	return schemes, nil
}

// ListActiveSchemesWithDeadline is only used by the daily sweep and is not cached.
func (c *CachedStore) ListActiveSchemesWithDeadline(ctx context.Context) ([]models.Scheme, error) {
	return c.next.ListActiveSchemesWithDeadline(ctx)
}

func (c *CachedStore) Upsert(ctx context.Context, schemes []models.Scheme) error {
	if err := c.next.Upsert(ctx, schemes); err != nil {
		return err
	}
	if err := c.client.Del(ctx, ActiveSchemesKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "scheme cache invalidation failed", "error", err)
	}
	return nil
}
