package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultRequestTimeout bounds every issuer call. A timeout surfaces as
// ErrIssuerUnreachable and is handled like any other transport failure.
const DefaultRequestTimeout = 10 * time.Second

// Credentials is the transient login input pair. It is never persisted.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUser carries the identity fields returned alongside the token pair.
type LoginUser struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// LoginResponse is the issuer's successful login payload.
type LoginResponse struct {
	Token        string    `json:"token"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	User         LoginUser `json:"user"`
}

// Profile is the issuer's /auth/me payload.
type Profile struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// IssuerClient is the session issuer as the manager sees it.
type IssuerClient interface {
	Login(ctx context.Context, credentials Credentials) (*LoginResponse, error)
	WhoAmI(ctx context.Context, accessToken string) (*Profile, error)
	Logout(ctx context.Context, refreshToken string) error
}

// HTTPIssuerClient talks to the issuer over HTTP/JSON.
type HTTPIssuerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPIssuerClient creates a client for the issuer at baseURL. A
// non-positive timeout falls back to DefaultRequestTimeout.
func NewHTTPIssuerClient(baseURL string, timeout time.Duration) *HTTPIssuerClient {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &HTTPIssuerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Login posts credentials and decodes the token pair response.
func (client *HTTPIssuerClient) Login(ctx context.Context, credentials Credentials) (*LoginResponse, error) {
	body, marshalErr := json.Marshal(credentials)
	if marshalErr != nil {
		return nil, fmt.Errorf("session.client.login.encode: %w", marshalErr)
	}
	request, requestErr := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+"/auth/login", bytes.NewReader(body))
	if requestErr != nil {
		return nil, fmt.Errorf("session.client.login.request: %w", requestErr)
	}
	request.Header.Set("Content-Type", "application/json")

	response, doErr := client.httpClient.Do(request)
	if doErr != nil {
		return nil, fmt.Errorf("session.client.login: %w: %v", ErrIssuerUnreachable, doErr)
	}
	defer func() { _ = response.Body.Close() }()

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, fmt.Errorf("session.client.login: %w: %s", ErrMissingCredentials, readMessage(response.Body))
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("session.client.login: %w: %s", ErrInvalidCredentials, readMessage(response.Body))
	default:
		return nil, fmt.Errorf("session.client.login: %w: status %d", ErrIssuerFailure, response.StatusCode)
	}

	loginResponse := &LoginResponse{}
	if decodeErr := json.NewDecoder(response.Body).Decode(loginResponse); decodeErr != nil {
		return nil, fmt.Errorf("session.client.login: %w", ErrMalformedResponse)
	}
	return loginResponse, nil
}

// WhoAmI fetches the profile behind the bearer-protected endpoint.
func (client *HTTPIssuerClient) WhoAmI(ctx context.Context, accessToken string) (*Profile, error) {
	request, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, client.baseURL+"/auth/me", nil)
	if requestErr != nil {
		return nil, fmt.Errorf("session.client.whoami.request: %w", requestErr)
	}
	request.Header.Set("Authorization", "Bearer "+accessToken)

	response, doErr := client.httpClient.Do(request)
	if doErr != nil {
		return nil, fmt.Errorf("session.client.whoami: %w: %v", ErrIssuerUnreachable, doErr)
	}
	defer func() { _ = response.Body.Close() }()

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("session.client.whoami: %w", ErrUnauthorized)
	default:
		return nil, fmt.Errorf("session.client.whoami: %w: status %d", ErrIssuerFailure, response.StatusCode)
	}

	profile := &Profile{}
	if decodeErr := json.NewDecoder(response.Body).Decode(profile); decodeErr != nil {
		return nil, fmt.Errorf("session.client.whoami: %w", ErrMalformedResponse)
	}
	return profile, nil
}

// Logout posts the refresh token reference. Callers treat any error as
// best-effort: the local session is purged regardless.
func (client *HTTPIssuerClient) Logout(ctx context.Context, refreshToken string) error {
	logoutURL := client.baseURL + "/auth/logout"
	if refreshToken != "" {
		logoutURL += "?refreshToken=" + url.QueryEscape(refreshToken)
	}
	request, requestErr := http.NewRequestWithContext(ctx, http.MethodPost, logoutURL, nil)
	if requestErr != nil {
		return fmt.Errorf("session.client.logout.request: %w", requestErr)
	}

	response, doErr := client.httpClient.Do(request)
	if doErr != nil {
		return fmt.Errorf("session.client.logout: %w: %v", ErrIssuerUnreachable, doErr)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return fmt.Errorf("session.client.logout: %w: status %d", ErrIssuerFailure, response.StatusCode)
	}
	return nil
}

func readMessage(body io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	if decodeErr := json.NewDecoder(body).Decode(&payload); decodeErr != nil || payload.Message == "" {
		return "no message"
	}
	return payload.Message
}
