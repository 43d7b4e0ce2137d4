package models

import "gorm.io/gorm"

// Meetup represents a small gathering of users around one activity.
type Meetup struct {
	gorm.Model
	ActivityID  uint   `gorm:"not null"`
	HostID      uint   `gorm:"not null"`
	Title       string `gorm:"size:255;not null"`
	Description string
	MaxMembers  int `gorm:"not null;default:5"`

	Activity Activity `gorm:"foreignKey:ActivityID"`
	Host     User     `gorm:"foreignKey:HostID"`
	Members  []User   `gorm:"foreignKey:CurrentMeetupID"` // Has Many relationship
}
