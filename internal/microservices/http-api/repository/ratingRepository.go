package repository

import (
	"context"
	"fmt"

	"cinerate/internal/microservices/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

// Create a new rating
func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		return fmt.Errorf("create rating: %w", translateError(err))
	}
	return nil
}

func (r *ratingRepository) FindByID(ctx context.Context, ratingID int64) (*models.Rating, error) {
	var rating models.Rating
	if err := r.db.WithContext(ctx).Where("rating_id = ?", ratingID).First(&rating).Error; err != nil {
		return nil, translateError(err)
	}
	return &rating, nil
}

// ListByMedia retrieves all ratings for a media item
func (r *ratingRepository) ListByMedia(ctx context.Context, mediaID string) ([]models.Rating, error) {
	ratings := []models.Rating{}
	err := r.db.WithContext(ctx).
		Where("media_id = ?", mediaID).
		Order("rating_id ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("list ratings by media: %w", err)
	}
	return ratings, nil
}

// ListByUser retrieves all ratings submitted by a user
func (r *ratingRepository) ListByUser(ctx context.Context, userID int64) ([]models.Rating, error) {
	ratings := []models.Rating{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("rating_id ASC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("list ratings by user: %w", err)
	}
	return ratings, nil
}

func (r *ratingRepository) Delete(ctx context.Context, ratingID int64) (*models.Rating, error) {
	var deleted []models.Rating
	result := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("rating_id = ?", ratingID).
		Delete(&deleted)
	if result.Error != nil {
		return nil, fmt.Errorf("delete rating: %w", result.Error)
	}
	if result.RowsAffected == 0 || len(deleted) == 0 {
		return nil, ErrNotFound
	}
	return &deleted[0], nil
}

func (r *ratingRepository) DeleteByUser(ctx context.Context, userID int64) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Rating{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete ratings by user: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Count counts the total number of ratings
func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Rating{}).Count(&count).Error
	return count, err
}
