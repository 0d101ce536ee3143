package models

import "time"

// Post statuses. Only Published posts are ever shown to readers.
const (
	StatusDraft     = "Draft"
	StatusPublished = "Published"
)

// Post is a single blog entry.
type Post struct {
	ID               string    `bson:"_id"               json:"id"                gorm:"primaryKey;size:36"`
	Title            string    `bson:"title"             json:"title"             gorm:"not null"`
	Slug             string    `bson:"slug"              json:"slug"              gorm:"uniqueIndex;not null"`
	ShortDescription string    `bson:"short_description" json:"short_description"`
	Body             string    `bson:"body"              json:"body"`
	Author           string    `bson:"author"            json:"author"`
	CategoryID       string    `bson:"category_id"       json:"category_id"       gorm:"index;size:36"`
	Status           string    `bson:"status"            json:"status"            gorm:"index;not null;default:Draft"`
	CreatedAt        time.Time `bson:"created_at"        json:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"        json:"updated_at"`

	// CategoryName is resolved at read time and never stored.
	CategoryName string `bson:"-" json:"category_name,omitempty" gorm:"-"`
}

// IsPublished reports whether readers may see the post.
func (p Post) IsPublished() bool {
	return p.Status == StatusPublished
}

// PostFilter narrows ListPublished queries. Zero values mean "no constraint".
type PostFilter struct {
	CategoryID string
	// Keyword is matched case-insensitively against title, short description and body.
	Keyword   string
	ExcludeID string
	Limit     int
}
