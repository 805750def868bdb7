package handlers

import (
	"time"

	"github.com/YeonghyeonKO/waffle-sugang/internal/models"
	"gorm.io/gorm"
)

type ChargePayload struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

type EnrolledSeminarPayload struct {
	ID        uint       `json:"id"`
	Name      string     `json:"name"`
	JoinedAt  time.Time  `json:"joined_at"`
	IsActive  bool       `json:"is_active"`
	DroppedAt *time.Time `json:"dropped_at"`
}

type ParticipantPayload struct {
	ID         uint                     `json:"id"`
	University string                   `json:"university"`
	Accepted   bool                     `json:"accepted"`
	Seminars   []EnrolledSeminarPayload `json:"seminars"`
}

type InstructorPayload struct {
	ID      uint           `json:"id"`
	Company string         `json:"company"`
	Year    *int           `json:"year"`
	Charge  *ChargePayload `json:"charge"`
}

type UserPayload struct {
	ID          uint                `json:"id"`
	Username    string              `json:"username"`
	Email       string              `json:"email"`
	FirstName   string              `json:"first_name"`
	LastName    string              `json:"last_name"`
	LastLogin   *time.Time          `json:"last_login"`
	DateJoined  time.Time           `json:"date_joined"`
	Participant *ParticipantPayload `json:"participant"`
	Instructor  *InstructorPayload  `json:"instructor"`
}

type SeminarMember struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	JoinedAt  time.Time `json:"joined_at"`
}

type SeminarParticipant struct {
	SeminarMember
	IsActive  bool       `json:"is_active"`
	DroppedAt *time.Time `json:"dropped_at"`
}

type SeminarPayload struct {
	ID           uint                 `json:"id"`
	Name         string               `json:"name"`
	Capacity     int                  `json:"capacity"`
	Count        int                  `json:"count"`
	Time         string               `json:"time"`
	Online       bool                 `json:"online"`
	Instructors  []SeminarMember      `json:"instructors"`
	Participants []SeminarParticipant `json:"participants"`
}

type SeminarSummaryPayload struct {
	ID               uint            `json:"id"`
	Name             string          `json:"name"`
	Instructors      []SeminarMember `json:"instructors"`
	ParticipantCount int             `json:"participant_count"`
}

func buildUserPayload(db *gorm.DB, userID uint) (*UserPayload, error) {
	var user models.User
	if err := db.Preload("Participant").Preload("Instructor").Preload("Instructor.Charge").
		First(&user, userID).Error; err != nil {
		return nil, err
	}

	payload := &UserPayload{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		LastLogin:  user.LastLogin,
		DateJoined: user.CreatedAt,
	}

	if user.Participant != nil {
		var rows []models.UserSeminar
		if err := db.Preload("Seminar").
			Where("user_id = ? AND role = ?", user.ID, models.RoleParticipant).
			Order("id ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		seminars := make([]EnrolledSeminarPayload, 0, len(rows))
		for _, row := range rows {
			seminars = append(seminars, EnrolledSeminarPayload{
				ID:        row.SeminarID,
				Name:      row.Seminar.Name,
				JoinedAt:  row.CreatedAt,
				IsActive:  row.IsActive(),
				DroppedAt: row.DroppedAt,
			})
		}
		payload.Participant = &ParticipantPayload{
			ID:         user.Participant.ID,
			University: user.Participant.University,
			Accepted:   user.Participant.Accepted,
			Seminars:   seminars,
		}
	}

	if user.Instructor != nil {
		instructor := &InstructorPayload{
			ID:      user.Instructor.ID,
			Company: user.Instructor.Company,
			Year:    user.Instructor.Year,
		}
		if user.Instructor.Charge != nil {
			instructor.Charge = &ChargePayload{
				ID:       user.Instructor.Charge.ID,
				Name:     user.Instructor.Charge.Name,
				JoinedAt: user.Instructor.Charge.CreatedAt,
			}
		}
		payload.Instructor = instructor
	}

	return payload, nil
}

func buildSeminarPayload(db *gorm.DB, seminarID uint) (*SeminarPayload, error) {
	var seminar models.Seminar
	if err := db.First(&seminar, seminarID).Error; err != nil {
		return nil, err
	}

	var rows []models.UserSeminar
	if err := db.Preload("User").Where("seminar_id = ?", seminar.ID).
		Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	payload := &SeminarPayload{
		ID:           seminar.ID,
		Name:         seminar.Name,
		Capacity:     seminar.Capacity,
		Count:        seminar.Count,
		Time:         seminar.Time,
		Online:       seminar.Online,
		Instructors:  []SeminarMember{},
		Participants: []SeminarParticipant{},
	}
	for _, row := range rows {
		member := SeminarMember{
			ID:        row.UserID,
			Username:  row.User.Username,
			Email:     row.User.Email,
			FirstName: row.User.FirstName,
			LastName:  row.User.LastName,
			JoinedAt:  row.CreatedAt,
		}
		if row.Role == models.RoleInstructor {
			payload.Instructors = append(payload.Instructors, member)
		} else {
			payload.Participants = append(payload.Participants, SeminarParticipant{
				SeminarMember: member,
				IsActive:      row.IsActive(),
				DroppedAt:     row.DroppedAt,
			})
		}
	}

	return payload, nil
}

func buildSeminarSummary(db *gorm.DB, seminar models.Seminar) (*SeminarSummaryPayload, error) {
	var rows []models.UserSeminar
	if err := db.Preload("User").
		Where("seminar_id = ? AND role = ?", seminar.ID, models.RoleInstructor).
		Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	payload := &SeminarSummaryPayload{
		ID:          seminar.ID,
		Name:        seminar.Name,
		Instructors: []SeminarMember{},
	}
	for _, row := range rows {
		payload.Instructors = append(payload.Instructors, SeminarMember{
			ID:        row.UserID,
			Username:  row.User.Username,
			Email:     row.User.Email,
			FirstName: row.User.FirstName,
			LastName:  row.User.LastName,
			JoinedAt:  row.CreatedAt,
		})
	}

	var count int64
	if err := db.Model(&models.UserSeminar{}).
		Where("seminar_id = ? AND role = ? AND status = ?", seminar.ID, models.RoleParticipant, models.EnrollmentActive).
		Count(&count).Error; err != nil {
		return nil, err
	}
	payload.ParticipantCount = int(count)

	return payload, nil
}
