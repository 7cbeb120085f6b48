package dto

import "cinerate/internal/microservices/http-api/models"

// UserDetailResponse for GET /admin/users/:userId
type UserDetailResponse struct {
	User    models.User     `json:"user"`
	Ratings []models.Rating `json:"ratings"`
}

// DeleteUserResponse for DELETE /admin/users/:userId
type DeleteUserResponse struct {
	Message             string      `json:"message"`
	DeletedUser         models.User `json:"deletedUser"`
	DeletedRatingsCount int64       `json:"deletedRatingsCount"`
}

// DeleteRatingResponse for DELETE /admin/ratings/:ratingId
type DeleteRatingResponse struct {
	Message       string        `json:"message"`
	DeletedRating models.Rating `json:"deletedRating"`
}
