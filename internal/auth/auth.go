package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/YeonghyeonKO/waffle-sugang/internal/config"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const TokenDuration = 24 * time.Hour

// AuthInput is embedded in every request type that requires a bearer token.
type AuthInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token issued at registration or login"`
}

type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// Authorize resolves the Authorization header to a user ID. Errors are
// already status-coded huma errors and can be returned to the caller as-is.
func (h *AuthHandler) Authorize(ctx context.Context, header string) (uint, error) {
	if header == "" {
		return 0, huma.Error401Unauthorized("Unauthorized: no token provided")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 0, huma.Error401Unauthorized("Unauthorized: malformed Authorization header")
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, huma.Error401Unauthorized("Unauthorized: invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, huma.Error401Unauthorized("Unauthorized: invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, huma.Error401Unauthorized("Unauthorized: invalid token claims")
	}

	return uint(userIDFloat), nil
}
