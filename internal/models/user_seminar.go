package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleInstructor  = "instructor"
	RoleParticipant = "participant"
)

// EnrollmentStatus has exactly one permitted transition: active -> dropped.
type EnrollmentStatus string

const (
	EnrollmentActive  EnrollmentStatus = "active"
	EnrollmentDropped EnrollmentStatus = "dropped"
)

// UserSeminar links a user and a seminar with a role. Rows are never
// deleted; leaving a seminar only transitions the status and stamps
// DroppedAt.
type UserSeminar struct {
	gorm.Model
	UserID    uint             `json:"user_id" gorm:"uniqueIndex:idx_user_seminar"`
	SeminarID uint             `json:"seminar_id" gorm:"uniqueIndex:idx_user_seminar"`
	User      User             `json:"-" gorm:"foreignKey:UserID"`
	Seminar   Seminar          `json:"-" gorm:"foreignKey:SeminarID"`
	Role      string           `json:"role" gorm:"index"`
	Status    EnrollmentStatus `json:"status" gorm:"default:'active'"`
	DroppedAt *time.Time       `json:"dropped_at"`
}

func (us *UserSeminar) IsActive() bool {
	return us.Status == EnrollmentActive
}
