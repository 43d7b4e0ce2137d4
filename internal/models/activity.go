package models

import "gorm.io/gorm"

// Activity represents an activity in the catalog (e.g., "Soccer", "Climbing").
type Activity struct {
	gorm.Model
	Name        string `gorm:"size:255;unique;not null"`
	Description string
	Tags        []*Tag `gorm:"many2many:activity_tags;"`
}
