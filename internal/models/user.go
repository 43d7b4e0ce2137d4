package models

import "gorm.io/gorm"

// User represents a student in the system.
type User struct {
	gorm.Model
	Nickname     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`

	// Profile attributes the candidate matcher filters and sorts on.
	University string   `gorm:"size:255;index"`
	Major      string   `gorm:"size:255;index"`
	ClassYear  int      `gorm:"index"`
	Heritage   []string `gorm:"serializer:json"`

	// OpenToAllActivities makes the user discoverable for every activity,
	// even ones they hold no explicit preference for.
	OpenToAllActivities bool `gorm:"not null;default:false"`

	Preferences []ActivityPreference `gorm:"foreignKey:UserID"`

	// A user can only be in one meetup at a time.
	CurrentMeetupID *uint   `gorm:"index"`
	CurrentMeetup   *Meetup `gorm:"foreignKey:CurrentMeetupID"`
}
