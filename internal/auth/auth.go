package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hamed0406/twitchalerts/internal/domain"
)

const DefaultTokenURL = "https://id.twitch.tv/oauth2/token"

// AuthError is returned when no credential could be obtained.
// StatusCode is 0 for transport or decode failures.
type AuthError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("auth: token request failed: %v", e.Err)
	}
	return fmt.Sprintf("auth: token request returned %d: %s", e.StatusCode, e.Body)
}

func (e *AuthError) Unwrap() error { return e.Err }

// Manager performs the client-credentials exchange.
type Manager struct {
	Client   *http.Client
	TokenURL string
	Now      func() time.Time
}

func NewManager(tokenURL string, timeout time.Duration) *Manager {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Manager{
		Client:   &http.Client{Timeout: timeout},
		TokenURL: tokenURL,
		Now:      time.Now,
	}
}

type tokenResponse struct {
	AccessToken string  `json:"access_token"`
	ExpiresIn   float64 `json:"expires_in"`
}

// Ensure returns current unchanged while it is still valid, otherwise it
// requests a new credential. There is no retry.
func (m *Manager) Ensure(ctx context.Context, clientID, clientSecret string, current *domain.Credential) (domain.Credential, error) {
	now := m.Now()
	if current != nil && current.Valid(now) {
		return *current, nil
	}

	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"grant_type":    {"client_credentials"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Credential{}, &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.Client.Do(req)
	if err != nil {
		return domain.Credential{}, &AuthError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return domain.Credential{}, &AuthError{StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode/100 != 2 {
		return domain.Credential{}, &AuthError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return domain.Credential{}, &AuthError{Err: fmt.Errorf("decode token response: %w", err)}
	}
	if tr.AccessToken == "" {
		return domain.Credential{}, &AuthError{Err: fmt.Errorf("token response has no access_token")}
	}

	return domain.Credential{
		Token:     tr.AccessToken,
		ClientID:  clientID,
		ExpiresAt: now.Add(time.Duration(tr.ExpiresIn * float64(time.Second))),
	}, nil
}
