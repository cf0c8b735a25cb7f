package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "frag-123", r.Header.Get("X-Session-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"email":"mittens@example.com","name":"Mittens","picture":"https://img.example.com/m.png","session_token":"session_abc"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	profile, err := client.Resolve(context.Background(), "frag-123")
	assert.NoError(t, err)
	assert.Equal(t, "mittens@example.com", profile.Email)
	assert.Equal(t, "Mittens", profile.Name)
	assert.Equal(t, "session_abc", profile.SessionToken)
}

func TestResolveFailures(t *testing.T) {
	t.Run("missing session id", func(t *testing.T) {
		_, err := New("http://localhost:0").Resolve(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("spent token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"detail":"invalid session"}`, http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := New(server.URL).Resolve(context.Background(), "frag-spent")
		assert.ErrorContains(t, err, "401")
	})

	t.Run("empty profile", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		_, err := New(server.URL).Resolve(context.Background(), "frag-empty")
		assert.ErrorContains(t, err, "no email")
	})
}
