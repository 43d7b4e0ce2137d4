package models

import "time"

// SkillLevel describes how experienced a user is at an activity.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// ActivityPreference records a user's interest in a specific activity along
// with the attributes the matcher annotates candidates with. The primary key
// is a composite of (UserID, ActivityID) to ensure uniqueness.
type ActivityPreference struct {
	UserID       uint       `gorm:"primaryKey"`
	ActivityID   uint       `gorm:"primaryKey"`
	SkillLevel   SkillLevel `gorm:"type:varchar(20)"`
	HasEquipment bool
	HasTransport bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Activity Activity `gorm:"foreignKey:ActivityID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
