package dto

import (
	"cinerate/internal/microservices/http-api/models"
	"cinerate/internal/microservices/http-api/service"
)

// SubmitRatingRequest for creating a rating. Username is accepted for
// compatibility; the stored name comes from the user record.
type SubmitRatingRequest struct {
	UserID    int64  `json:"userId" binding:"required,gt=0"`
	Username  string `json:"username"`
	Rating    int    `json:"rating" binding:"required,min=1,max=10"`
	Moviename string `json:"moviename" binding:"required"`
	Comment   string `json:"comment" binding:"max=5000"`
	MediaType string `json:"mediaType" binding:"required"`
	MediaID   string `json:"mediaId" binding:"required"`
	Day       int    `json:"day" binding:"omitempty,min=1,max=31"`
	Month     int    `json:"month" binding:"omitempty,min=1,max=12"`
	Year      int    `json:"year" binding:"omitempty,min=1"`
}

// ToInput converts the request to the service input
func (r SubmitRatingRequest) ToInput() service.SubmitRatingInput {
	return service.SubmitRatingInput{
		UserID:    r.UserID,
		Username:  r.Username,
		Rating:    r.Rating,
		Moviename: r.Moviename,
		Comment:   r.Comment,
		MediaType: r.MediaType,
		MediaID:   r.MediaID,
		Day:       r.Day,
		Month:     r.Month,
		Year:      r.Year,
	}
}

// SubmitRatingResponse for returning the assigned rating id
type SubmitRatingResponse struct {
	Message  string `json:"message"`
	RatingID int64  `json:"ratingId"`
}

// ListRatingsQuery binds GET /ratings?mediaId=X
type ListRatingsQuery struct {
	MediaID string `form:"mediaId"`
}

// RatingList never serializes as null
func RatingList(ratings []models.Rating) []models.Rating {
	if ratings == nil {
		return []models.Rating{}
	}
	return ratings
}
