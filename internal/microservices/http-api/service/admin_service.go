package service

import (
	"context"
	"errors"

	"cinerate/internal/microservices/http-api/models"
	"cinerate/internal/microservices/http-api/repository"
)

// UserDetail is a user with the ratings it owns.
type UserDetail struct {
	User    models.User
	Ratings []models.Rating
}

type AdminService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, userID int64) (*UserDetail, error)
	DeleteUser(ctx context.Context, userID int64) (*DeleteUserResult, error)
	DeleteRating(ctx context.Context, ratingID int64) (*models.Rating, error)
}

type adminService struct {
	store   repository.Store
	ratings RatingService
	cascade *CascadeCoordinator
}

func NewAdminService(store repository.Store, ratings RatingService, cascade *CascadeCoordinator) AdminService {
	return &adminService{store: store, ratings: ratings, cascade: cascade}
}

func (s *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users().List(ctx)
	if err != nil {
		return nil, unavailable("list users", err)
	}
	return users, nil
}

func (s *adminService) GetUser(ctx context.Context, userID int64) (*UserDetail, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, unavailable("find user", err)
	}

	ratings, err := s.ratings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserDetail{User: *user, Ratings: ratings}, nil
}

func (s *adminService) DeleteUser(ctx context.Context, userID int64) (*DeleteUserResult, error) {
	return s.cascade.DeleteUser(ctx, userID)
}

func (s *adminService) DeleteRating(ctx context.Context, ratingID int64) (*models.Rating, error) {
	return s.ratings.DeleteByID(ctx, ratingID)
}
