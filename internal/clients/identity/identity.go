package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Profile is what the external login provider returns for a valid ephemeral
// session id.
type Profile struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture"`
	SessionToken string `json:"session_token"`
}

type Client struct {
	baseURL string

	// HTTPClient is replaceable in tests.
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Resolve exchanges the redirect-fragment token for the user's identity. A
// non-200 upstream response means the token is spent or bogus; the caller
// treats any error as a failed login, no retry.
func (c *Client) Resolve(ctx context.Context, sessionID string) (*Profile, error) {
	if sessionID == "" {
		return nil, errors.New("missing session id")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Session-ID", sessionID)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, err
	}
	if profile.Email == "" {
		return nil, errors.New("identity provider returned no email")
	}

	return &profile, nil
}
