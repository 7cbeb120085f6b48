package models

import "time"

// User is a registered account. UserID is assigned by the id allocator,
// never by the database.
type User struct {
	UserID       int64     `gorm:"primaryKey;autoIncrement:false" json:"userId" bson:"userId"`
	Username     string    `gorm:"size:64;not null" json:"username" bson:"username"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email" bson:"email"` // stored lower-cased
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

func (User) TableName() string {
	return "users"
}
