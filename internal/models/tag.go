package models

import "gorm.io/gorm"

// Tag represents an activity tag (e.g., "Outdoor", "Team", "Beginner-friendly").
type Tag struct {
	gorm.Model
	Name string `gorm:"size:100;unique;not null"`
}
