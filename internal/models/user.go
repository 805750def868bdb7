package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string     `json:"username" gorm:"uniqueIndex"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	LastLogin    *time.Time `json:"last_login"`

	Participant *ParticipantProfile `json:"participant,omitempty" gorm:"foreignKey:UserID"`
	Instructor  *InstructorProfile  `json:"instructor,omitempty" gorm:"foreignKey:UserID"`
}
