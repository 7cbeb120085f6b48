package repository

import (
	"context"
	"errors"

	"cinerate/internal/microservices/http-api/models"
)

var (
	// ErrNotFound is returned when a lookup or delete matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines the storage operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Delete removes the user and returns the removed record.
	Delete(ctx context.Context, userID int64) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

// RatingRepository defines the storage operations for ratings.
// List methods order by rating id ascending.
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	FindByID(ctx context.Context, ratingID int64) (*models.Rating, error)
	ListByMedia(ctx context.Context, mediaID string) ([]models.Rating, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Rating, error)
	// Delete removes the rating and returns the removed record.
	Delete(ctx context.Context, ratingID int64) (*models.Rating, error)
	// DeleteByUser removes every rating owned by userID. Deleting nothing is not an error.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// CounterRepository backs the id allocator.
type CounterRepository interface {
	// Increment atomically adds one to the counter for kind, creating it at 1
	// when missing, and returns the new value. The increment is durable once
	// the call returns.
	Increment(ctx context.Context, kind string) (int64, error)
}

// Store is the record store shared by every service instance.
type Store interface {
	Users() UserRepository
	Ratings() RatingRepository
	Counters() CounterRepository
	// Atomic runs fn against a store bound to a single transaction when the
	// backend supports one, otherwise against the store itself.
	Atomic(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
