package dto

import "github.com/meowls-gov/visa-portal/internal/domain"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionExchangeRequest carries the ephemeral token the external login flow
// hands back in the redirect fragment.
type SessionExchangeRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Picture   *string `json:"picture,omitempty"`
	Role      string  `json:"role"`
	CreatedAt string  `json:"created_at"`
}

func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:    u.UserID,
		Email:     u.Email,
		Name:      u.Name,
		Picture:   u.Picture,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// AuthClaims is the verified content of a bearer access token.
type AuthClaims struct {
	UserID string
	Email  string
	Role   string
	Expiry float64
	Iat    float64
}
