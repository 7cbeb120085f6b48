package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cinerate/internal/microservices/http-api/models"
	"cinerate/internal/microservices/http-api/repository"
)

const (
	MinRating = 1
	MaxRating = 10
)

// RatingCache caches listByMedia results. Implementations must tolerate
// concurrent use; errors are logged by the caller and otherwise ignored.
//
// GetMediaRatings reports the generation it looked under, and a list may
// only be stored under that generation. InvalidateMedia moves every given
// media id to a new generation, so a list loaded before an invalidation
// is never served after it.
type RatingCache interface {
	GetMediaRatings(ctx context.Context, mediaID string) ([]models.Rating, int64, bool, error)
	SetMediaRatings(ctx context.Context, mediaID string, generation int64, ratings []models.Rating) error
	InvalidateMedia(ctx context.Context, mediaIDs ...string) error
}

type noopCache struct{}

func (noopCache) GetMediaRatings(context.Context, string) ([]models.Rating, int64, bool, error) {
	return nil, 0, false, nil
}
func (noopCache) SetMediaRatings(context.Context, string, int64, []models.Rating) error { return nil }
func (noopCache) InvalidateMedia(context.Context, ...string) error                      { return nil }

// SubmitRatingInput is a validated-at-the-boundary rating submission.
// Day, Month and Year are informational; all zero means "today".
type SubmitRatingInput struct {
	UserID    int64
	Username  string
	Rating    int
	Moviename string
	Comment   string
	MediaType string
	MediaID   string
	Day       int
	Month     int
	Year      int
}

type RatingService interface {
	Submit(ctx context.Context, in SubmitRatingInput) (*models.Rating, error)
	ListByMedia(ctx context.Context, mediaID string) ([]models.Rating, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Rating, error)
	DeleteByID(ctx context.Context, ratingID int64) (*models.Rating, error)
}

type ratingService struct {
	store  repository.Store
	ids    *IDAllocator
	cache  RatingCache
	logger *slog.Logger
	now    func() time.Time
}

// NewRatingService wires the rating ledger. cache may be nil.
func NewRatingService(store repository.Store, ids *IDAllocator, cache RatingCache, logger *slog.Logger) RatingService {
	if cache == nil {
		cache = noopCache{}
	}
	return &ratingService{
		store:  store,
		ids:    ids,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Submit validates the input, then allocates a rating id and persists.
// The stored username is the owner's name at submission time.
func (s *ratingService) Submit(ctx context.Context, in SubmitRatingInput) (*models.Rating, error) {
	in.Moviename = strings.TrimSpace(in.Moviename)
	in.MediaType = strings.TrimSpace(in.MediaType)
	in.MediaID = strings.TrimSpace(in.MediaID)

	if in.UserID <= 0 {
		return nil, invalid("userId", "User ID is required")
	}
	if in.Rating < MinRating || in.Rating > MaxRating {
		return nil, invalid("rating", "Rating must be between 1 and 10")
	}
	if in.Moviename == "" {
		return nil, invalid("moviename", "Movie name is required")
	}
	if in.MediaType == "" {
		return nil, invalid("mediaType", "Media type is required")
	}
	if in.MediaID == "" {
		return nil, invalid("mediaId", "Media ID is required")
	}

	now := s.now().UTC()
	day, month, year, err := submissionDate(in.Day, in.Month, in.Year, now)
	if err != nil {
		return nil, err
	}

	owner, err := s.store.Users().FindByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("userId", "User not found")
		}
		return nil, unavailable("lookup user", err)
	}

	id, err := s.ids.NextID(ctx, s.store.Counters(), KindRating)
	if err != nil {
		return nil, err
	}

	rating := &models.Rating{
		RatingID:  id,
		UserID:    owner.UserID,
		Username:  owner.Username,
		Rating:    in.Rating,
		Moviename: in.Moviename,
		Comment:   in.Comment,
		MediaType: in.MediaType,
		MediaID:   in.MediaID,
		Day:       day,
		Month:     month,
		Year:      year,
		CreatedAt: now,
	}
	if err := s.store.Ratings().Create(ctx, rating); err != nil {
		return nil, unavailable("create rating", err)
	}

	// A cascade may have run since the lookup above. It deletes the user
	// before its last sweep, so either that sweep or this check sees the
	// rating.
	if err := s.ensureOwnerExists(ctx, rating); err != nil {
		return nil, err
	}

	s.invalidate(ctx, rating.MediaID)
	s.logger.Info("rating saved",
		slog.Int64("rating_id", rating.RatingID),
		slog.Int64("user_id", rating.UserID),
		slog.String("media_id", rating.MediaID),
	)
	return rating, nil
}

// ensureOwnerExists removes rating again unless its owner can be confirmed.
func (s *ratingService) ensureOwnerExists(ctx context.Context, rating *models.Rating) error {
	_, lookupErr := s.store.Users().FindByID(ctx, rating.UserID)
	if lookupErr == nil {
		return nil
	}

	if _, err := s.store.Ratings().Delete(ctx, rating.RatingID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return unavailable("remove unowned rating", err)
	}
	s.invalidate(ctx, rating.MediaID)

	if errors.Is(lookupErr, repository.ErrNotFound) {
		s.logger.Info("rating dropped, owner deleted during submit",
			slog.Int64("rating_id", rating.RatingID),
			slog.Int64("user_id", rating.UserID),
		)
		return invalid("userId", "User not found")
	}
	return unavailable("recheck user", lookupErr)
}

// submissionDate fills an all-zero date from now and rejects partial or
// impossible dates.
func submissionDate(day, month, year int, now time.Time) (int, int, int, error) {
	if day == 0 && month == 0 && year == 0 {
		return now.Day(), int(now.Month()), now.Year(), nil
	}
	if month < 1 || month > 12 {
		return 0, 0, 0, invalid("month", "Month must be between 1 and 12")
	}
	if year < 1 {
		return 0, 0, 0, invalid("year", "Year must be positive")
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if day < 1 || t.Day() != day {
		return 0, 0, 0, invalid("day", "Day is not valid for the given month")
	}
	return day, month, year, nil
}

// ListByMedia returns the ratings of one media item ordered by rating id.
func (s *ratingService) ListByMedia(ctx context.Context, mediaID string) ([]models.Rating, error) {
	mediaID = strings.TrimSpace(mediaID)
	if mediaID == "" {
		return nil, invalid("mediaId", "Media ID is required")
	}

	cached, generation, ok, cacheErr := s.cache.GetMediaRatings(ctx, mediaID)
	if cacheErr != nil {
		s.logger.Warn("rating cache read failed", slog.String("media_id", mediaID), slog.String("error", cacheErr.Error()))
	} else if ok {
		return cached, nil
	}

	ratings, err := s.store.Ratings().ListByMedia(ctx, mediaID)
	if err != nil {
		return nil, unavailable("list ratings", err)
	}

	// Without a known generation the write could outlive an invalidation.
	if cacheErr != nil {
		return ratings, nil
	}
	if err := s.cache.SetMediaRatings(ctx, mediaID, generation, ratings); err != nil {
		s.logger.Warn("rating cache write failed", slog.String("media_id", mediaID), slog.String("error", err.Error()))
	}
	return ratings, nil
}

func (s *ratingService) ListByUser(ctx context.Context, userID int64) ([]models.Rating, error) {
	ratings, err := s.store.Ratings().ListByUser(ctx, userID)
	if err != nil {
		return nil, unavailable("list user ratings", err)
	}
	return ratings, nil
}

func (s *ratingService) DeleteByID(ctx context.Context, ratingID int64) (*models.Rating, error) {
	rating, err := s.store.Ratings().Delete(ctx, ratingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, unavailable("delete rating", err)
	}

	s.invalidate(ctx, rating.MediaID)
	s.logger.Info("rating deleted", slog.Int64("rating_id", rating.RatingID))
	return rating, nil
}

func (s *ratingService) invalidate(ctx context.Context, mediaIDs ...string) {
	if err := s.cache.InvalidateMedia(ctx, mediaIDs...); err != nil {
		s.logger.Warn("rating cache invalidation failed", slog.Any("media_ids", mediaIDs), slog.String("error", err.Error()))
	}
}
