// Package backend is the HTTP client for the remote NeuroCare auth/data
// service. The service owns accounts, passwords, token issuance and AI
// completions; this package only shapes requests and classifies responses.
//
// Non-2xx responses come back as *StatusError so callers can tell a server
// rejection from a transport failure (which is returned wrapped, as-is).
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Endpoint paths on the backend.
const (
	SignupPath      = "/api/auth/signup"
	LoginPath       = "/api/auth/login"
	LogoutPath      = "/api/auth/logout"
	CurrentUserPath = "/api/auth/current-user"
	ChatPath        = "/api/chat"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Client defines the calls this application makes against the backend.
// Handlers and services depend on this interface, never on *http.Client.
type Client interface {
	Signup(ctx context.Context, req SignupRequest) error
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*CurrentUser, error)

	// PostChat sends a chat message to an absolute endpoint URL and returns
	// the raw response body. Endpoint selection belongs to the caller.
	PostChat(ctx context.Context, endpoint, message string) (string, error)

	// URL resolves a backend path against the configured base URL.
	URL(path string) string
}

// httpClient implements Client over net/http.
type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a backend client rooted at baseURL. A zero timeout
// leaves requests bounded only by their context.
func NewClient(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// URL resolves a backend path against the base URL.
func (c *httpClient) URL(path string) string {
	return c.baseURL + path
}

// Signup registers a new account. Any 2xx counts as success; the response
// body of a rejection is kept verbatim in the StatusError.
func (c *httpClient) Signup(ctx context.Context, req SignupRequest) error {
	_, err := c.do(ctx, http.MethodPost, c.URL(SignupPath), "", req)
	return err
}

// Login exchanges credentials for a token. Rejections carry the server's
// "message" field when the body is JSON.
func (c *httpClient) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	body, err := c.do(ctx, http.MethodPost, c.URL(LoginPath), "", req)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			var rejected struct {
				Message string `json:"message"`
			}
			if json.Unmarshal([]byte(statusErr.Body), &rejected) == nil {
				statusErr.Message = rejected.Message
			}
		}
		return nil, err
	}

	var resp LoginResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	return &resp, nil
}

// Logout asks the backend to invalidate the token.
func (c *httpClient) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, c.URL(LogoutPath), token, nil)
	return err
}

// CurrentUser looks up the identity behind a bearer token.
func (c *httpClient) CurrentUser(ctx context.Context, token string) (*CurrentUser, error) {
	body, err := c.do(ctx, http.MethodGet, c.URL(CurrentUserPath), token, nil)
	if err != nil {
		return nil, err
	}

	var user CurrentUser
	if err := json.Unmarshal([]byte(body), &user); err != nil {
		return nil, fmt.Errorf("decoding current user: %w", err)
	}
	return &user, nil
}

// PostChat posts {"message": ...} to endpoint and returns the body text.
func (c *httpClient) PostChat(ctx context.Context, endpoint, message string) (string, error) {
	return c.do(ctx, http.MethodPost, endpoint, "", ChatRequest{Message: message})
}

// do performs one JSON request. It returns the body text on 2xx, a
// *StatusError on any other status, and a wrapped error on transport failure.
func (c *httpClient) do(ctx context.Context, method, url, token string, payload any) (string, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s response: %w", url, err)
	}

	slog.Debug("backend request",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("status", res.StatusCode),
		slog.Duration("latency", time.Since(start)),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &StatusError{Status: res.StatusCode, Body: string(data)}
	}
	return string(data), nil
}
