package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/meowls-gov/visa-portal/internal/clients/identity"
	"github.com/meowls-gov/visa-portal/internal/domain"
	"github.com/meowls-gov/visa-portal/internal/dto"
	"github.com/meowls-gov/visa-portal/internal/helper"
	"github.com/meowls-gov/visa-portal/internal/helper/utils"
	"github.com/meowls-gov/visa-portal/internal/repository"
)

func newAuthService(t *testing.T, db *gorm.DB, identityClient *identity.Client) AuthService {
	t.Helper()
	return NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		identityClient,
		helper.SetupAuth("test-secret"),
	)
}

func validRegisterInput() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:    "mittens@example.com",
		Password: "hunter22",
		Name:     "Mittens",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db, nil)

	user, token, err := svc.Register(validRegisterInput())
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(user.UserID, "user_"))
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.True(t, strings.HasPrefix(token, "session_"))

	loggedIn, loginToken, err := svc.Login(dto.UserLogin{
		Email:    "mittens@example.com",
		Password: "hunter22",
	})
	assert.NoError(t, err)
	assert.Equal(t, user.UserID, loggedIn.UserID)
	assert.NotEqual(t, token, loginToken, "each login mints a fresh session")
}

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db, nil)

	t.Run("short password", func(t *testing.T) {
		input := validRegisterInput()
		input.Password = "meow"
		_, _, err := svc.Register(input)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("bad email", func(t *testing.T) {
		input := validRegisterInput()
		input.Email = "not-an-email"
		_, _, err := svc.Register(input)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing name", func(t *testing.T) {
		input := validRegisterInput()
		input.Name = "   "
		_, _, err := svc.Register(input)
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db, nil)

	_, _, err := svc.Register(validRegisterInput())
	assert.NoError(t, err)

	input := validRegisterInput()
	input.Email = "MITTENS@example.com"
	_, _, err = svc.Register(input)
	assert.ErrorIs(t, err, ErrValidation, "email match is case-insensitive")
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db, nil)

	_, _, err := svc.Register(validRegisterInput())
	assert.NoError(t, err)

	_, _, err = svc.Login(dto.UserLogin{Email: "mittens@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, _, err = svc.Login(dto.UserLogin{Email: "nobody@example.com", Password: "hunter22"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAuthenticateSession(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db, nil)

	user, token, err := svc.Register(validRegisterInput())
	assert.NoError(t, err)

	got, err := svc.Authenticate(token)
	assert.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)

	_, err = svc.Authenticate("session_" + strings.Repeat("0", 32))
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = svc.Authenticate("")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAuthenticateExpiredSession(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db, nil)
	user := seedUser(t, db, domain.RoleUser)

	token := utils.NewSessionToken()
	session := &domain.Session{
		UserID:    user.UserID,
		TokenHash: utils.Sha256Hex(token),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	assert.NoError(t, db.Create(session).Error)

	_, err := svc.Authenticate(token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	// the expired row is gone, not just ignored
	var count int64
	db.Model(&domain.Session{}).Where("token_hash = ?", session.TokenHash).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db, nil)

	_, token, err := svc.Register(validRegisterInput())
	assert.NoError(t, err)

	assert.NoError(t, svc.Logout(token))

	_, err = svc.Authenticate(token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	// logging out twice is harmless
	assert.NoError(t, svc.Logout(token))
}

func TestAuthenticateBearer(t *testing.T) {
	db := setupTestDB(t)
	svc := newAuthService(t, db, nil)

	user, _, err := svc.Register(validRegisterInput())
	assert.NoError(t, err)

	jwt, err := svc.IssueToken(user)
	assert.NoError(t, err)

	got, err := svc.AuthenticateBearer(jwt)
	assert.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)

	_, err = svc.AuthenticateBearer("garbage")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func identityStub(t *testing.T, wantSessionID string, body string, status int) *identity.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Session-ID") != wantSessionID {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return identity.New(server.URL)
}

func TestExchangeSessionNewUser(t *testing.T) {
	db := setupTestDB(t)
	client := identityStub(t, "frag-123",
		`{"email":"Whiskers@Example.com","name":"Whiskers","picture":"https://img.example.com/w.png","session_token":"session_abcdefabcdefabcdefabcdefabcdefab"}`,
		http.StatusOK)
	svc := newAuthService(t, db, client)

	user, token, err := svc.ExchangeSession(context.Background(), "frag-123")
	assert.NoError(t, err)
	assert.Equal(t, "whiskers@example.com", user.Email)
	assert.Equal(t, "Whiskers", user.Name)
	assert.NotNil(t, user.Picture)
	assert.Equal(t, "session_abcdefabcdefabcdefabcdefabcdefab", token,
		"the provider token is reused so the cookie matches the client")

	// the exchanged token authenticates like any other session
	got, err := svc.Authenticate(token)
	assert.NoError(t, err)
	assert.Equal(t, user.UserID, got.UserID)
}

func TestExchangeSessionExistingUser(t *testing.T) {
	db := setupTestDB(t)
	client := identityStub(t, "frag-456",
		`{"email":"mittens@example.com","name":"Mittens Updated","session_token":""}`,
		http.StatusOK)
	svc := newAuthService(t, db, client)

	registered, _, err := svc.Register(validRegisterInput())
	assert.NoError(t, err)

	user, token, err := svc.ExchangeSession(context.Background(), "frag-456")
	assert.NoError(t, err)
	assert.Equal(t, registered.UserID, user.UserID, "same email maps to the same account")
	assert.Equal(t, "Mittens Updated", user.Name)
	assert.True(t, strings.HasPrefix(token, "session_"), "a local token is minted when the provider sends none")
}

func TestExchangeSessionFailures(t *testing.T) {
	db := setupTestDB(t)

	t.Run("spent token", func(t *testing.T) {
		client := identityStub(t, "frag-789", `{"detail":"invalid session"}`, http.StatusUnauthorized)
		svc := newAuthService(t, db, client)
		_, _, err := svc.ExchangeSession(context.Background(), "frag-789")
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("missing session id", func(t *testing.T) {
		svc := newAuthService(t, db, nil)
		_, _, err := svc.ExchangeSession(context.Background(), "   ")
		assert.ErrorIs(t, err, ErrValidation)
	})
}
