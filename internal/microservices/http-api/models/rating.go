package models

import "time"

// Rating is an immutable review of a media item. UserID is a soft reference
// to User.UserID and Username is a copy frozen at submission time.
type Rating struct {
	RatingID  int64  `gorm:"primaryKey;autoIncrement:false" json:"ratingId" bson:"ratingId"`
	UserID    int64  `gorm:"not null;index" json:"userId" bson:"userId"`
	Username  string `gorm:"size:64;not null" json:"username" bson:"username"`
	Rating    int    `gorm:"not null;check:rating >= 1 AND rating <= 10" json:"rating" bson:"rating"`
	Moviename string `gorm:"not null" json:"moviename" bson:"moviename"`
	Comment   string `gorm:"type:text" json:"comment" bson:"comment"`
	MediaType string `gorm:"size:32;not null" json:"mediaType" bson:"mediaType"`
	MediaID   string `gorm:"size:64;not null;index" json:"mediaId" bson:"mediaId"`

	// Caller-supplied date, informational only. CreatedAt is authoritative.
	Day   int `json:"day" bson:"day"`
	Month int `json:"month" bson:"month"`
	Year  int `json:"year" bson:"year"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

func (Rating) TableName() string {
	return "ratings"
}
