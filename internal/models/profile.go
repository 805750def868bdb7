package models

import (
	"gorm.io/gorm"
)

type ParticipantProfile struct {
	gorm.Model
	UserID     uint   `json:"user_id" gorm:"uniqueIndex"`
	University string `json:"university"`
	Accepted   bool   `json:"accepted" gorm:"default:true"`
}

type InstructorProfile struct {
	gorm.Model
	UserID  uint   `json:"user_id" gorm:"uniqueIndex"`
	Company string `json:"company"`
	Year    *int   `json:"year"`
	// The one seminar this instructor is currently responsible for.
	ChargeID *uint    `json:"charge_id"`
	Charge   *Seminar `json:"charge,omitempty" gorm:"foreignKey:ChargeID"`
}
