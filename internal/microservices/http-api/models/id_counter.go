package models

// IDCounter holds how many ids have been handed out for one entity kind.
type IDCounter struct {
	Kind  string `gorm:"primaryKey;size:32" bson:"_id"`
	Value int64  `gorm:"not null" bson:"value"`
}

func (IDCounter) TableName() string {
	return "id_counters"
}
