package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// RandomToken returns n random bytes hex encoded.
func RandomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func uuidHex() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Public identifiers mirror the wire format the client tracks applications by:
// a short type prefix plus opaque hex.

func NewUserID() string {
	return "user_" + uuidHex()[:12]
}

func NewApplicationID() string {
	return "app_" + uuidHex()[:12]
}

func NewSessionToken() string {
	return "session_" + uuidHex()
}
