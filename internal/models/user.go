package models

import "time"

// User is a registered reader who can leave comments.
type User struct {
	ID           string    `bson:"_id"           json:"id"       gorm:"primaryKey;size:36"`
	Username     string    `bson:"username"      json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string    `bson:"password_hash" json:"-"        gorm:"not null"`
	CreatedAt    time.Time `bson:"created_at"    json:"created_at"`
}
