package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(32)
	assert.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := RandomToken(32)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSha256Hex(t *testing.T) {
	assert.Equal(t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		Sha256Hex("hello"))
}

func TestPublicIDs(t *testing.T) {
	userID := NewUserID()
	assert.True(t, strings.HasPrefix(userID, "user_"))
	assert.Len(t, userID, len("user_")+12)

	appID := NewApplicationID()
	assert.True(t, strings.HasPrefix(appID, "app_"))
	assert.Len(t, appID, len("app_")+12)

	token := NewSessionToken()
	assert.True(t, strings.HasPrefix(token, "session_"))
	assert.Len(t, token, len("session_")+32)

	assert.NotEqual(t, NewApplicationID(), NewApplicationID())
}
