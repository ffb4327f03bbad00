package model

import "gorm.io/gorm"

// User is an account record. Accounts flagged as Provider can receive
// bookings and see their notifications and daily schedule.
type User struct {
	gorm.Model
	Name         string `json:"name" gorm:"not null"`
	Email        string `json:"email" gorm:"size:191;uniqueIndex;not null"`
	Password     string `json:"-" gorm:"not null"`
	PasswordSalt string `json:"-"`
	Provider     bool   `json:"provider" gorm:"default:false;index"`
	AvatarID     *uint  `json:"avatar_id"`
	Avatar       *File  `json:"avatar,omitempty" gorm:"foreignKey:AvatarID"`
}
