package backofficesdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the back-office API without credentials.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with a 10 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login exchanges a username or email and password for a Session.
func (c *Client) Login(ctx context.Context, login, password string) (*Session, error) {
	form := url.Values{}
	form.Set("login", login)
	form.Set("password", password)

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/sessions", strings.NewReader(form.Encode()), formHeaders)
	if err != nil {
		return nil, err
	}

	var sr SessionResponse
	if err := decodeJSON(resp, &sr, http.StatusOK); err != nil {
		return nil, err
	}

	return NewSession(c, sr.AccessToken, sr.ExpiresIn, sr.User), nil
}

// Register creates an account without privileges.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/users", bytes.NewReader(body), jsonHeaders)
	if err != nil {
		return nil, err
	}

	var ur UserResponse
	if err := decodeJSON(resp, &ur, http.StatusCreated); err != nil {
		return nil, err
	}
	return &ur, nil
}

// Bootstrap creates the first general manager on an empty system.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*BootstrapResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type":      "application/json",
		"X-Bootstrap-Token": token,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/bootstrap", bytes.NewReader(body), headers)
	if err != nil {
		return nil, err
	}

	var br BootstrapResponse
	if err := decodeJSON(resp, &br, http.StatusCreated); err != nil {
		return nil, err
	}
	return &br, nil
}

// Liveness calls GET /livez.
func (c *Client) Liveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// Readiness calls GET /readyz. A degraded service answers 503, which is
// returned as an *APIError.
func (c *Client) Readiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *Client) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var hr HealthResponse
	if err := decodeJSON(resp, &hr, http.StatusOK); err != nil {
		return nil, err
	}
	return &hr, nil
}
