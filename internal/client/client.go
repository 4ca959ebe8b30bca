// Package client is the dashboard client runtime: an API client with a cookie
// jar on which the setup stores, synchronizer and redirect observer run
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"perfsuite/dashboard/dashboard-backend/internal/setup"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUserNotFound    = errors.New("user not found")
)

// StatusError is a non-2xx answer from the API
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned status %d", e.Code)
	}
	return fmt.Sprintf("api returned status %d: %s", e.Code, e.Message)
}

// Config holds client runtime settings
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	PollInterval time.Duration
	StaleTime    time.Duration
}

// DefaultConfig returns settings for a local API server
func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://localhost:8080",
		Timeout:      10 * time.Second,
		PollInterval: 30 * time.Second,
		StaleTime:    time.Minute,
	}
}

// Organization is the organization as seen by the client
type Organization struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Activities setup.Activities `json:"activities"`
}

// Team is a team as seen by the client
type Team struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Performer is a performer as seen by the client
type Performer struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Tags  []string `json:"tags"`
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Client talks to the dashboard API. Identity travels in the cookie jar
type Client struct {
	baseURL *url.URL
	http    *http.Client
	jar     http.CookieJar
	logger  *zap.Logger
}

// New creates a client with an empty cookie jar
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", base.Scheme)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL: base,
		http:    &http.Client{Jar: jar, Timeout: cfg.Timeout},
		jar:     jar,
		logger:  logger,
	}, nil
}

// BaseURL returns the API origin
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Jar returns the cookie jar shared with the websocket listener
func (c *Client) Jar() http.CookieJar {
	return c.jar
}

// Secure reports whether the client talks over an encrypted transport
func (c *Client) Secure() bool {
	return c.baseURL.Scheme == "https"
}

// SignIn authenticates and stores the session cookie in the jar
func (c *Client) SignIn(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/api/auth/sign-in", body, nil)
}

// OnboardingStatus asks the server whether onboarding is complete
func (c *Client) OnboardingStatus(ctx context.Context) (bool, error) {
	var status struct {
		IsOnboardingComplete bool `json:"isOnboardingComplete"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/onboarding/status", nil, &status); err != nil {
		return false, err
	}
	return status.IsOnboardingComplete, nil
}

// Organization fetches the user's organization
func (c *Client) Organization(ctx context.Context) (*Organization, error) {
	var org Organization
	if err := c.do(ctx, http.MethodGet, "/api/organization", nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateOrganization saves the organization name and activity selection
func (c *Client) UpdateOrganization(ctx context.Context, name string, activities setup.Activities) (*Organization, error) {
	body := map[string]any{"name": name, "activities": activities}
	var org Organization
	if err := c.do(ctx, http.MethodPut, "/api/organization", body, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// Teams lists the organization's teams
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	var teams []Team
	if err := c.do(ctx, http.MethodGet, "/api/teams", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Performers lists the organization's performers
func (c *Client) Performers(ctx context.Context) ([]Performer, error) {
	var performers []Performer
	if err := c.do(ctx, http.MethodGet, "/api/performers", nil, &performers); err != nil {
		return nil, err
	}
	return performers, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		c.logger.Debug("Undecodable API response", zap.String("path", path), zap.Int("status", resp.StatusCode), zap.Error(err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthenticated
	case resp.StatusCode == http.StatusNotFound && path == "/api/onboarding/status":
		return ErrUserNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Code: resp.StatusCode, Message: env.Error}
	case !env.Success:
		return &StatusError{Code: resp.StatusCode, Message: env.Error}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
