package domain

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type User struct {
	ID           uint    `gorm:"primaryKey" json:"-"`
	UserID       string  `gorm:"type:varchar(40);uniqueIndex;not null" json:"user_id"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `json:"-"`
	Name         string  `gorm:"not null" json:"name"`
	Picture      *string `json:"picture,omitempty"`
	Role         Role    `gorm:"type:varchar(20);not null;default:user" json:"role"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Session is a server-side login credential. Only the sha256 of the token is
// stored; the raw token lives in the client cookie.
type Session struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"type:varchar(40);not null;index" json:"user_id"`
	TokenHash string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
