package service

import (
	"context"
	"errors"
	"log/slog"

	"cinerate/internal/microservices/http-api/models"
	"cinerate/internal/microservices/http-api/repository"
	"cinerate/internal/observability/metrics"
	"cinerate/internal/reliability/retry"
)

// DeleteUserResult is what a completed cascade removed.
type DeleteUserResult struct {
	DeletedUser        models.User
	DeletedRatingCount int64
}

// CascadeCoordinator deletes a user together with every rating it owns.
// Ratings go first and the user last, so an interrupted run leaves at worst
// a user without ratings, which the next call finishes off.
type CascadeCoordinator struct {
	store  repository.Store
	cache  RatingCache
	retry  *retry.Config
	logger *slog.Logger
}

// NewCascadeCoordinator builds a coordinator. cache and retryCfg may be nil.
func NewCascadeCoordinator(store repository.Store, cache RatingCache, retryCfg *retry.Config, logger *slog.Logger) *CascadeCoordinator {
	if cache == nil {
		cache = noopCache{}
	}
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	return &CascadeCoordinator{store: store, cache: cache, retry: retryCfg, logger: logger}
}

// DeleteUser returns ErrUserNotFound without writing anything when the user
// does not exist. Each step is retried on its own; a step that still fails
// is reported as ErrUnavailable and calling again resumes the work.
func (c *CascadeCoordinator) DeleteUser(ctx context.Context, userID int64) (*DeleteUserResult, error) {
	log := c.logger.With(slog.Int64("user_id", userID))

	user, err := retry.Do(ctx, c.retry, log, "find user", func(ctx context.Context) (*models.User, error) {
		u, err := c.store.Users().FindByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return u, err
	})
	if err != nil {
		metrics.RecordCascadeDelete("error", 0)
		return nil, unavailable("find user", err)
	}
	if user == nil {
		metrics.RecordCascadeDelete("not_found", 0)
		return nil, ErrUserNotFound
	}

	// Media ids are collected before the delete so their cache entries can
	// be dropped afterwards. A failed read only costs a stale cache entry.
	owned, err := c.store.Ratings().ListByUser(ctx, userID)
	if err != nil {
		log.Warn("could not list ratings before cascade", slog.String("error", err.Error()))
	}

	removed, err := retry.Do(ctx, c.retry, log, "delete ratings", func(ctx context.Context) (int64, error) {
		return c.store.Ratings().DeleteByUser(ctx, userID)
	})
	if err != nil {
		metrics.RecordCascadeDelete("error", 0)
		return nil, unavailable("delete ratings", err)
	}

	deleted, err := retry.Do(ctx, c.retry, log, "delete user", func(ctx context.Context) (*models.User, error) {
		u, err := c.store.Users().Delete(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			// gone already, e.g. an earlier attempt landed
			return nil, nil
		}
		return u, err
	})
	if err != nil {
		metrics.RecordCascadeDelete("error", removed)
		c.invalidate(ctx, log, owned)
		return nil, unavailable("delete user", err)
	}
	if deleted == nil {
		deleted = user
	}

	// A rating submitted between the first sweep and the user delete would
	// otherwise outlive its owner.
	late, err := c.store.Ratings().DeleteByUser(ctx, userID)
	if err != nil {
		log.Warn("second rating sweep failed", slog.String("error", err.Error()))
	}
	removed += late

	c.invalidate(ctx, log, owned)
	metrics.RecordCascadeDelete("ok", removed)
	log.Info("user deleted", slog.Int64("ratings_removed", removed))

	return &DeleteUserResult{DeletedUser: *deleted, DeletedRatingCount: removed}, nil
}

func (c *CascadeCoordinator) invalidate(ctx context.Context, log *slog.Logger, owned []models.Rating) {
	if len(owned) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(owned))
	mediaIDs := make([]string, 0, len(owned))
	for _, r := range owned {
		if _, ok := seen[r.MediaID]; ok {
			continue
		}
		seen[r.MediaID] = struct{}{}
		mediaIDs = append(mediaIDs, r.MediaID)
	}
	if err := c.cache.InvalidateMedia(ctx, mediaIDs...); err != nil {
		log.Warn("rating cache invalidation failed", slog.String("error", err.Error()))
	}
}
