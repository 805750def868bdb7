package handlers

import (
	"context"
	"errors"
	"time"
	"unicode"

	"github.com/YeonghyeonKO/waffle-sugang/internal/auth"
	"github.com/YeonghyeonKO/waffle-sugang/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type UserHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewUserHandler(db *gorm.DB, authHandler *auth.AuthHandler) *UserHandler {
	return &UserHandler{db: db, authHandler: authHandler}
}

type RegisterRequest struct {
	Body struct {
		Username   string `json:"username" required:"true" minLength:"1" doc:"Unique login name"`
		Password   string `json:"password" required:"true" minLength:"1"`
		Email      string `json:"email" required:"true" format:"email"`
		FirstName  string `json:"first_name,omitempty"`
		LastName   string `json:"last_name,omitempty"`
		Role       string `json:"role" required:"true" enum:"instructor,participant" doc:"Profile created at registration"`
		University string `json:"university,omitempty" doc:"Participant only"`
		Accepted   *bool  `json:"accepted,omitempty" doc:"Participant only"`
		Company    string `json:"company,omitempty" doc:"Instructor only"`
		Year       *int   `json:"year,omitempty" minimum:"0" doc:"Instructor only"`
	}
}

type UserTokenResponse struct {
	Body struct {
		User  UserPayload `json:"user"`
		Token string      `json:"token"`
	}
}

type UserResponse struct {
	Body UserPayload
}

func (h *UserHandler) HandleRegister(ctx context.Context, input *RegisterRequest) (*UserTokenResponse, error) {
	if input.Body.Role != models.RoleInstructor && input.Body.Role != models.RoleParticipant {
		return nil, huma.Error400BadRequest("Role must be 'instructor' or 'participant'")
	}
	if err := validateName(input.Body.FirstName, input.Body.LastName); err != nil {
		return nil, err
	}
	if input.Body.Year != nil && *input.Body.Year < 0 {
		return nil, huma.Error400BadRequest("Year must not be negative")
	}

	hash, err := auth.HashPassword(input.Body.Password)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}

	user := models.User{
		Username:     input.Body.Username,
		Email:        input.Body.Email,
		PasswordHash: hash,
		FirstName:    input.Body.FirstName,
		LastName:     input.Body.LastName,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if input.Body.Role == models.RoleInstructor {
			instructor := models.InstructorProfile{
				UserID:  user.ID,
				Company: input.Body.Company,
				Year:    input.Body.Year,
			}
			return tx.Create(&instructor).Error
		}
		accepted := true
		if input.Body.Accepted != nil {
			accepted = *input.Body.Accepted
		}
		participant := models.ParticipantProfile{
			UserID:     user.ID,
			University: input.Body.University,
			Accepted:   accepted,
		}
		return tx.Create(&participant).Error
	})
	if err != nil {
		return nil, huma.Error400BadRequest("That username is already taken")
	}

	token, err := h.authHandler.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	payload, err := buildUserPayload(h.db, user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load user")
	}

	res := &UserTokenResponse{}
	res.Body.User = *payload
	res.Body.Token = token
	return res, nil
}

type LoginRequest struct {
	Body struct {
		Username string `json:"username" required:"true" minLength:"1"`
		Password string `json:"password" required:"true" minLength:"1"`
	}
}

func (h *UserHandler) HandleLogin(ctx context.Context, input *LoginRequest) (*UserTokenResponse, error) {
	var user models.User
	if err := h.db.Where("username = ?", input.Body.Username).First(&user).Error; err != nil {
		return nil, huma.Error403Forbidden("Wrong username or password")
	}
	if !auth.CheckPassword(user.PasswordHash, input.Body.Password) {
		return nil, huma.Error403Forbidden("Wrong username or password")
	}

	now := time.Now()
	if err := h.db.Model(&user).Update("last_login", now).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to record login")
	}

	token, err := h.authHandler.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	payload, err := buildUserPayload(h.db, user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load user")
	}

	res := &UserTokenResponse{}
	res.Body.User = *payload
	res.Body.Token = token
	return res, nil
}

type MeRequest struct {
	auth.AuthInput
}

func (h *UserHandler) HandleMe(ctx context.Context, input *MeRequest) (*UserResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	payload, err := buildUserPayload(h.db, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load user")
	}
	return &UserResponse{Body: *payload}, nil
}

type UpdateMeRequest struct {
	auth.AuthInput
	Body struct {
		Email      *string `json:"email,omitempty" format:"email"`
		FirstName  *string `json:"first_name,omitempty"`
		LastName   *string `json:"last_name,omitempty"`
		University *string `json:"university,omitempty" doc:"Participant only"`
		Company    *string `json:"company,omitempty" doc:"Instructor only"`
		Year       *int    `json:"year,omitempty" minimum:"0" doc:"Instructor only"`
	}
}

func (h *UserHandler) HandleUpdateMe(ctx context.Context, input *UpdateMeRequest) (*UserResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Preload("Participant").Preload("Instructor").First(&user, userID).Error; err != nil {
			return err
		}

		first, last := user.FirstName, user.LastName
		if input.Body.FirstName != nil {
			first = *input.Body.FirstName
		}
		if input.Body.LastName != nil {
			last = *input.Body.LastName
		}
		if err := validateName(first, last); err != nil {
			return err
		}
		user.FirstName, user.LastName = first, last

		if input.Body.Email != nil {
			user.Email = *input.Body.Email
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if user.Participant != nil && input.Body.University != nil {
			user.Participant.University = *input.Body.University
			if err := tx.Save(user.Participant).Error; err != nil {
				return err
			}
		}
		if user.Instructor != nil {
			changed := false
			if input.Body.Company != nil {
				user.Instructor.Company = *input.Body.Company
				changed = true
			}
			if input.Body.Year != nil {
				user.Instructor.Year = input.Body.Year
				changed = true
			}
			if changed {
				if err := tx.Save(user.Instructor).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}
		return nil, huma.Error500InternalServerError("Failed to update user")
	}

	payload, err := buildUserPayload(h.db, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load user")
	}
	return &UserResponse{Body: *payload}, nil
}

type GetUserRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *UserHandler) HandleGetUser(ctx context.Context, input *GetUserRequest) (*UserResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.Authorization); err != nil {
		return nil, err
	}

	payload, err := buildUserPayload(h.db, input.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("User not found")
		}
		return nil, huma.Error500InternalServerError("Failed to load user")
	}
	return &UserResponse{Body: *payload}, nil
}

type GrantParticipantRequest struct {
	auth.AuthInput
	Body struct {
		University string `json:"university,omitempty"`
		Accepted   *bool  `json:"accepted,omitempty"`
	}
}

// HandleGrantParticipant lets an existing user, typically an instructor,
// acquire the participant role.
func (h *UserHandler) HandleGrantParticipant(ctx context.Context, input *GrantParticipantRequest) (*UserResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := h.db.Preload("Participant").First(&user, userID).Error; err != nil {
		return nil, huma.Error404NotFound("User not found")
	}
	if user.Participant != nil {
		return nil, huma.Error400BadRequest("You are already a participant")
	}

	accepted := true
	if input.Body.Accepted != nil {
		accepted = *input.Body.Accepted
	}
	participant := models.ParticipantProfile{
		UserID:     user.ID,
		University: input.Body.University,
		Accepted:   accepted,
	}
	if err := h.db.Create(&participant).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create participant profile")
	}

	payload, err := buildUserPayload(h.db, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load user")
	}
	return &UserResponse{Body: *payload}, nil
}

// First and last name appear together and contain letters only.
func validateName(first, last string) error {
	if (first == "") != (last == "") {
		return huma.Error400BadRequest("First name and last name should appear together")
	}
	if !isAlpha(first) || !isAlpha(last) {
		return huma.Error400BadRequest("First name or last name should not have a number")
	}
	return nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
