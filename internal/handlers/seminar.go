package handlers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/YeonghyeonKO/waffle-sugang/internal/auth"
	"github.com/YeonghyeonKO/waffle-sugang/internal/cache"
	"github.com/YeonghyeonKO/waffle-sugang/internal/enrollment"
	"github.com/YeonghyeonKO/waffle-sugang/internal/models"
	"github.com/YeonghyeonKO/waffle-sugang/internal/notifier"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type SeminarHandler struct {
	db          *gorm.DB
	engine      *enrollment.Engine
	listCache   *cache.SeminarList
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
}

func NewSeminarHandler(db *gorm.DB, engine *enrollment.Engine, listCache *cache.SeminarList, notifier notifier.Notifier, authHandler *auth.AuthHandler) *SeminarHandler {
	return &SeminarHandler{
		db:          db,
		engine:      engine,
		listCache:   listCache,
		notifier:    notifier,
		authHandler: authHandler,
	}
}

type SeminarResponse struct {
	Body SeminarPayload
}

type CreateSeminarRequest struct {
	auth.AuthInput
	Body struct {
		Name     string `json:"name" required:"true" minLength:"1"`
		Capacity int    `json:"capacity" required:"true" minimum:"1"`
		Count    int    `json:"count" required:"true" minimum:"1"`
		Time     string `json:"time" required:"true" doc:"Scheduled time as HH:MM"`
		Online   *bool  `json:"online,omitempty"`
	}
}

func (h *SeminarHandler) HandleCreateSeminar(ctx context.Context, input *CreateSeminarRequest) (*SeminarResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if input.Body.Name == "" {
		return nil, huma.Error400BadRequest("The name of seminar cannot be blank")
	}
	if input.Body.Capacity < 1 || input.Body.Count < 1 {
		return nil, huma.Error400BadRequest("Capacity and count must be at least 1")
	}
	tm, err := parseTimeOfDay(input.Body.Time)
	if err != nil {
		return nil, err
	}

	online := true
	if input.Body.Online != nil {
		online = *input.Body.Online
	}
	seminar := models.Seminar{
		Name:     input.Body.Name,
		Capacity: input.Body.Capacity,
		Count:    input.Body.Count,
		Time:     tm,
		Online:   online,
	}

	if err := h.engine.CreateSeminar(userID, &seminar); err != nil {
		if errors.Is(err, enrollment.ErrNotInstructor) {
			return nil, huma.Error403Forbidden("Only an instructor can open a seminar")
		}
		if errors.Is(err, enrollment.ErrAlreadyCharged) {
			return nil, huma.Error403Forbidden("You are in charge of another seminar")
		}
		return nil, ruleError(err)
	}

	payload, err := buildSeminarPayload(h.db, seminar.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load seminar")
	}
	return &SeminarResponse{Body: *payload}, nil
}

type ListSeminarsRequest struct {
	auth.AuthInput
	Name  string `query:"name" doc:"Case-insensitive substring filter on seminar name"`
	Order string `query:"order" doc:"'earliest' for ascending creation order; anything else is newest-first"`
}

type ListSeminarsResponse struct {
	Body []SeminarSummaryPayload
}

func (h *SeminarHandler) HandleListSeminars(ctx context.Context, input *ListSeminarsRequest) (*ListSeminarsResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Authorization); err != nil {
		return nil, err
	}

	seminars, err := h.listCache.List(input.Order)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list seminars")
	}

	// Filtering happens after the cache read so both cache entries hold
	// the complete listing.
	seminars = filterByName(seminars, input.Name)

	summaries := make([]SeminarSummaryPayload, 0, len(seminars))
	for _, seminar := range seminars {
		summary, err := buildSeminarSummary(h.db, seminar)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to list seminars")
		}
		summaries = append(summaries, *summary)
	}

	return &ListSeminarsResponse{Body: summaries}, nil
}

type GetSeminarRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *SeminarHandler) HandleGetSeminar(ctx context.Context, input *GetSeminarRequest) (*SeminarResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Authorization); err != nil {
		return nil, err
	}

	payload, err := buildSeminarPayload(h.db, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Seminar not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load seminar")
	}
	return &SeminarResponse{Body: *payload}, nil
}

type UpdateSeminarRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Name     *string `json:"name,omitempty"`
		Capacity *int    `json:"capacity,omitempty" minimum:"1"`
		Count    *int    `json:"count,omitempty" minimum:"1"`
		Time     *string `json:"time,omitempty" doc:"Scheduled time as HH:MM"`
		Online   *bool   `json:"online,omitempty"`
	}
}

func (h *SeminarHandler) HandleUpdateSeminar(ctx context.Context, input *UpdateSeminarRequest) (*SeminarResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	upd := enrollment.SeminarUpdate{
		Name:     input.Body.Name,
		Capacity: input.Body.Capacity,
		Count:    input.Body.Count,
		Online:   input.Body.Online,
	}
	if input.Body.Time != nil {
		tm, err := parseTimeOfDay(*input.Body.Time)
		if err != nil {
			return nil, err
		}
		upd.Time = &tm
	}
	if input.Body.Capacity != nil && *input.Body.Capacity < 1 {
		return nil, huma.Error400BadRequest("Capacity must be at least 1")
	}
	if input.Body.Count != nil && *input.Body.Count < 1 {
		return nil, huma.Error400BadRequest("Count must be at least 1")
	}

	seminar, err := h.engine.UpdateSeminar(userID, input.ID, upd)
	if err != nil {
		if errors.Is(err, enrollment.ErrNotInstructor) {
			return nil, huma.Error403Forbidden("Only an instructor of seminar can change its information")
		}
		return nil, ruleError(err)
	}

	payload, err := buildSeminarPayload(h.db, seminar.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load seminar")
	}
	return &SeminarResponse{Body: *payload}, nil
}

type EnrollRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Role string `json:"role" required:"true" enum:"instructor,participant"`
	}
}

func (h *SeminarHandler) HandleEnroll(ctx context.Context, input *EnrollRequest) (*SeminarResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := h.engine.Enroll(userID, input.ID, input.Body.Role); err != nil {
		return nil, ruleError(err)
	}

	h.notifyEnrollment(userID, input.ID, input.Body.Role, false)

	payload, err := buildSeminarPayload(h.db, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load seminar")
	}
	return &SeminarResponse{Body: *payload}, nil
}

type DropRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *SeminarHandler) HandleDrop(ctx context.Context, input *DropRequest) (*SeminarResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := h.engine.Drop(userID, input.ID); err != nil {
		return nil, ruleError(err)
	}

	h.notifyEnrollment(userID, input.ID, "", true)

	payload, err := buildSeminarPayload(h.db, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load seminar")
	}
	return &SeminarResponse{Body: *payload}, nil
}

// Notification failures are logged, never surfaced to the caller.
func (h *SeminarHandler) notifyEnrollment(userID, seminarID uint, role string, dropped bool) {
	if h.notifier == nil {
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return
	}
	var seminar models.Seminar
	if err := h.db.First(&seminar, seminarID).Error; err != nil {
		return
	}

	var err error
	if dropped {
		err = h.notifier.NotifyDrop(user, seminar)
	} else {
		err = h.notifier.NotifyEnrollment(user, seminar, role)
	}
	if err != nil {
		log.Printf("Failed to send enrollment notification: %v", err)
	}
}

func ruleError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return huma.Error404NotFound("Seminar not found")
	case errors.Is(err, enrollment.ErrNotInstructor),
		errors.Is(err, enrollment.ErrMissingParticipantProfile),
		errors.Is(err, enrollment.ErrSelfChargeConflict),
		errors.Is(err, enrollment.ErrNotAccepted),
		errors.Is(err, enrollment.ErrInstructorCannotDrop):
		return huma.Error403Forbidden(err.Error())
	case errors.Is(err, enrollment.ErrRoleInvalid),
		errors.Is(err, enrollment.ErrAlreadyCharged),
		errors.Is(err, enrollment.ErrCapacityExceeded),
		errors.Is(err, enrollment.ErrAlreadyEnrolled),
		errors.Is(err, enrollment.ErrPreviouslyDropped),
		errors.Is(err, enrollment.ErrNeverEnrolled),
		errors.Is(err, enrollment.ErrBlankName),
		errors.Is(err, enrollment.ErrCapacityBelowEnrollment):
		return huma.Error400BadRequest(err.Error())
	}
	return huma.Error500InternalServerError("Failed to process request: " + err.Error())
}

func parseTimeOfDay(value string) (string, error) {
	tm, err := time.Parse("15:04", value)
	if err != nil {
		return "", huma.Error400BadRequest("Time must be in HH:MM format")
	}
	return tm.Format("15:04"), nil
}

func filterByName(seminars []models.Seminar, name string) []models.Seminar {
	if name == "" {
		return seminars
	}
	needle := strings.ToLower(name)
	filtered := make([]models.Seminar, 0, len(seminars))
	for _, seminar := range seminars {
		if strings.Contains(strings.ToLower(seminar.Name), needle) {
			filtered = append(filtered, seminar)
		}
	}
	return filtered
}
