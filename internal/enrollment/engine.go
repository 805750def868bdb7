package enrollment

import (
	"errors"
	"time"

	"github.com/YeonghyeonKO/waffle-sugang/internal/models"
	"gorm.io/gorm"
)

// Engine applies the enrollment rules. Every exported operation runs in a
// single transaction so a rule failure never leaves partial state behind.
type Engine struct {
	db *gorm.DB
	// Whether active instructor rows count toward a seminar's capacity.
	countInstructors bool
}

func NewEngine(db *gorm.DB, countInstructors bool) *Engine {
	return &Engine{db: db, countInstructors: countInstructors}
}

// CreateSeminar opens a seminar on behalf of an instructor without a
// current charge. The seminar row, the instructor's enrollment row and the
// charge assignment are written together.
func (e *Engine) CreateSeminar(userID uint, seminar *models.Seminar) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		if user.Instructor == nil {
			return ErrNotInstructor
		}
		if user.Instructor.ChargeID != nil {
			return ErrAlreadyCharged
		}

		if err := tx.Create(seminar).Error; err != nil {
			return err
		}
		row := models.UserSeminar{
			UserID:    user.ID,
			SeminarID: seminar.ID,
			Role:      models.RoleInstructor,
			Status:    models.EnrollmentActive,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		user.Instructor.ChargeID = &seminar.ID
		return tx.Save(user.Instructor).Error
	})
}

// Enroll assigns the given role to the user on the seminar.
func (e *Engine) Enroll(userID, seminarID uint, role string) error {
	if role != models.RoleInstructor && role != models.RoleParticipant {
		return ErrRoleInvalid
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		var seminar models.Seminar
		if err := tx.First(&seminar, seminarID).Error; err != nil {
			return err
		}

		if role == models.RoleInstructor {
			return e.enrollInstructor(tx, user, &seminar)
		}
		return e.enrollParticipant(tx, user, &seminar)
	})
}

func (e *Engine) enrollInstructor(tx *gorm.DB, user *models.User, seminar *models.Seminar) error {
	if user.Instructor == nil {
		return ErrNotInstructor
	}
	if user.Instructor.ChargeID != nil {
		return ErrAlreadyCharged
	}

	var row models.UserSeminar
	err := tx.Where("user_id = ? AND seminar_id = ?", user.ID, seminar.ID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.UserSeminar{
			UserID:    user.ID,
			SeminarID: seminar.ID,
			Role:      models.RoleInstructor,
			Status:    models.EnrollmentActive,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	user.Instructor.ChargeID = &seminar.ID
	return tx.Save(user.Instructor).Error
}

func (e *Engine) enrollParticipant(tx *gorm.DB, user *models.User, seminar *models.Seminar) error {
	occupied, err := e.activeCount(tx, seminar.ID)
	if err != nil {
		return err
	}
	if occupied >= int64(seminar.Capacity) {
		return ErrCapacityExceeded
	}

	if user.Participant == nil {
		return ErrMissingParticipantProfile
	}
	if user.Instructor != nil && user.Instructor.ChargeID != nil && *user.Instructor.ChargeID == seminar.ID {
		return ErrSelfChargeConflict
	}

	var existing models.UserSeminar
	err = tx.Where("user_id = ? AND seminar_id = ? AND role = ?", user.ID, seminar.ID, models.RoleParticipant).
		Order("id DESC").First(&existing).Error
	if err == nil {
		if existing.IsActive() {
			return ErrAlreadyEnrolled
		}
		return ErrPreviouslyDropped
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if !user.Participant.Accepted {
		return ErrNotAccepted
	}

	row := models.UserSeminar{
		UserID:    user.ID,
		SeminarID: seminar.ID,
		Role:      models.RoleParticipant,
		Status:    models.EnrollmentActive,
	}
	return tx.Create(&row).Error
}

// Drop deactivates the user's participant enrollment. The row stays behind
// with a drop timestamp; only the active -> dropped transition is allowed.
func (e *Engine) Drop(userID, seminarID uint) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		var seminar models.Seminar
		if err := tx.First(&seminar, seminarID).Error; err != nil {
			return err
		}
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		if user.Instructor != nil && user.Instructor.ChargeID != nil && *user.Instructor.ChargeID == seminarID {
			return ErrInstructorCannotDrop
		}

		var row models.UserSeminar
		err = tx.Where("user_id = ? AND seminar_id = ? AND role = ?", userID, seminarID, models.RoleParticipant).
			Order("id DESC").First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNeverEnrolled
		}
		if err != nil {
			return err
		}
		if !row.IsActive() {
			// Already dropped; nothing left to transition.
			return nil
		}

		now := time.Now()
		row.Status = models.EnrollmentDropped
		row.DroppedAt = &now
		return tx.Save(&row).Error
	})
}

// SeminarUpdate holds a partial update; nil fields keep the current value.
type SeminarUpdate struct {
	Name     *string
	Capacity *int
	Count    *int
	Time     *string
	Online   *bool
}

// UpdateSeminar applies a partial update, enforcing that the capacity never
// falls below the number of active participants.
func (e *Engine) UpdateSeminar(userID, seminarID uint, upd SeminarUpdate) (*models.Seminar, error) {
	var seminar models.Seminar
	err := e.db.Transaction(func(tx *gorm.DB) error {
		user, err := loadUser(tx, userID)
		if err != nil {
			return err
		}
		if user.Instructor == nil {
			return ErrNotInstructor
		}

		if err := tx.First(&seminar, seminarID).Error; err != nil {
			return err
		}

		if upd.Name != nil {
			if *upd.Name == "" {
				return ErrBlankName
			}
			seminar.Name = *upd.Name
		}
		if upd.Capacity != nil {
			enrolled, err := e.activeCount(tx, seminar.ID)
			if err != nil {
				return err
			}
			if int64(*upd.Capacity) < enrolled {
				return ErrCapacityBelowEnrollment
			}
			seminar.Capacity = *upd.Capacity
		}
		if upd.Count != nil {
			seminar.Count = *upd.Count
		}
		if upd.Time != nil {
			seminar.Time = *upd.Time
		}
		if upd.Online != nil {
			seminar.Online = *upd.Online
		}

		return tx.Save(&seminar).Error
	})
	if err != nil {
		return nil, err
	}
	return &seminar, nil
}

func (e *Engine) activeCount(tx *gorm.DB, seminarID uint) (int64, error) {
	q := tx.Model(&models.UserSeminar{}).
		Where("seminar_id = ? AND status = ?", seminarID, models.EnrollmentActive)
	if !e.countInstructors {
		q = q.Where("role = ?", models.RoleParticipant)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func loadUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.Preload("Participant").Preload("Instructor").First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
