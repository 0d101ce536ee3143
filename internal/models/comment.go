package models

import "time"

// Comment is a reader's note on a post. Comments are append-only.
type Comment struct {
	ID        string    `bson:"_id"        json:"id"         gorm:"primaryKey;size:36"`
	PostID    string    `bson:"post_id"    json:"post_id"    gorm:"index;not null;size:36"`
	UserID    string    `bson:"user_id"    json:"user_id"    gorm:"not null;size:36"`
	Username  string    `bson:"username"   json:"username"`
	Text      string    `bson:"text"       json:"text"       gorm:"not null"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
