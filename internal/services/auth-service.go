package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/meowls-gov/visa-portal/internal/clients/identity"
	"github.com/meowls-gov/visa-portal/internal/domain"
	"github.com/meowls-gov/visa-portal/internal/dto"
	"github.com/meowls-gov/visa-portal/internal/helper"
	"github.com/meowls-gov/visa-portal/internal/helper/utils"
	"github.com/meowls-gov/visa-portal/internal/repository"
)

const sessionTTL = 7 * 24 * time.Hour

type AuthService interface {
	Register(input dto.RegisterRequest) (*domain.User, string, error)
	Login(input dto.UserLogin) (*domain.User, string, error)
	ExchangeSession(ctx context.Context, sessionID string) (*domain.User, string, error)

	// Authenticate resolves an opaque session token from the cookie.
	Authenticate(token string) (*domain.User, error)
	// AuthenticateBearer resolves a JWT access token.
	AuthenticateBearer(token string) (*domain.User, error)

	Logout(token string) error
	IssueToken(user *domain.User) (string, error)
}

type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	identity    *identity.Client
	auth        helper.Auth
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	identityClient *identity.Client,
	auth helper.Auth,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		identity:    identityClient,
		auth:        auth,
	}
}

func (s *authService) Register(input dto.RegisterRequest) (*domain.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	name := strings.TrimSpace(input.Name)

	if email == "" || !strings.Contains(email, "@") || name == "" {
		return nil, "", fmt.Errorf("%w: email and name are required", ErrValidation)
	}
	if len(input.Password) < 6 {
		return nil, "", fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	existing, err := s.userRepo.FindUserByEmail(email)
	if err == nil && existing != nil && existing.ID != 0 {
		return nil, "", fmt.Errorf("%w: email already registered", ErrValidation)
	}

	hashed, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		UserID:       utils.NewUserID(),
		Email:        email,
		PasswordHash: hashed,
		Name:         name,
		Role:         domain.RoleUser,
	}
	if _, err := s.userRepo.CreateUser(user); err != nil {
		return nil, "", err
	}

	token, err := s.createSession(user.UserID, "")
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Login(input dto.UserLogin) (*domain.User, string, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	password := strings.TrimSpace(input.Password)

	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.userRepo.FindUserByEmail(email)
	if err != nil || user == nil || user.ID == 0 {
		return nil, "", ErrNotAuthenticated
	}
	if user.PasswordHash == "" {
		// account was created through external login only
		return nil, "", ErrNotAuthenticated
	}
	if err := s.auth.VerifyPassword(password, user.PasswordHash); err != nil {
		return nil, "", ErrNotAuthenticated
	}

	token, err := s.createSession(user.UserID, "")
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// ExchangeSession trades the redirect-fragment token for a portal session. The
// upstream token is single use; any failure means the user restarts login.
func (s *authService) ExchangeSession(ctx context.Context, sessionID string) (*domain.User, string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, "", fmt.Errorf("%w: session_id is required", ErrValidation)
	}

	profile, err := s.identity.Resolve(ctx, sessionID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	email := strings.TrimSpace(strings.ToLower(profile.Email))

	user, err := s.userRepo.FindUserByEmail(email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", err
		}
		user = &domain.User{
			UserID: utils.NewUserID(),
			Email:  email,
			Name:   profile.Name,
			Role:   domain.RoleUser,
		}
		if profile.Picture != "" {
			user.Picture = &profile.Picture
		}
		if _, err := s.userRepo.CreateUser(user); err != nil {
			return nil, "", err
		}
	} else {
		user.Name = profile.Name
		if profile.Picture != "" {
			user.Picture = &profile.Picture
		}
		if err := s.userRepo.SaveUser(user); err != nil {
			return nil, "", err
		}
	}

	// the provider may hand back a long-lived token of its own; reuse it so
	// the cookie matches what the client already holds
	token, err := s.createSession(user.UserID, profile.SessionToken)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) Authenticate(token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	session, err := s.sessionRepo.FindByTokenHash(utils.Sha256Hex(token))
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	if session.Expired(time.Now()) {
		_ = s.sessionRepo.DeleteByTokenHash(session.TokenHash)
		return nil, ErrNotAuthenticated
	}

	user, err := s.userRepo.FindUserByUserID(session.UserID)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

func (s *authService) AuthenticateBearer(token string) (*domain.User, error) {
	claims, err := s.auth.VerifyToken(token)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	user, err := s.userRepo.FindUserByUserID(claims.UserID)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	return user, nil
}

func (s *authService) Logout(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.sessionRepo.DeleteByTokenHash(utils.Sha256Hex(token))
}

func (s *authService) IssueToken(user *domain.User) (string, error) {
	return s.auth.GenerateToken(user.UserID, user.Email, string(user.Role))
}

func (s *authService) createSession(userID, token string) (string, error) {
	if token == "" {
		token = utils.NewSessionToken()
	}
	session := &domain.Session{
		UserID:    userID,
		TokenHash: utils.Sha256Hex(token),
		ExpiresAt: time.Now().Add(sessionTTL),
	}
	if err := s.sessionRepo.CreateSession(session); err != nil {
		return "", err
	}
	return token, nil
}
