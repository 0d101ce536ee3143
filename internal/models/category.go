package models

// Category groups posts; posts reference it by ID.
type Category struct {
	ID   string `bson:"_id"  json:"id"   gorm:"primaryKey;size:36"`
	Name string `bson:"name" json:"name" gorm:"uniqueIndex;not null"`
}
