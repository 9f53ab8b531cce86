// Package portalapi is the HTTP client for the portal backend's token,
// registration and current-user endpoints.
package portalapi

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

	perrors "github.com/jrsteele09/go-job-portal/internal/errors"
	"github.com/jrsteele09/go-job-portal/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxBodySize bounds how much of a backend response is read
const maxBodySize = 1 << 20

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// New creates a client for the backend rooted at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("[portalapi New] invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("[portalapi New] base url needs an http(s) scheme: %q", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "portalapi").Logger()
	return c, nil
}

// BaseURL returns the backend root, for building other REST calls
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

func (c *Client) Login(ctx context.Context, creds users.Credentials) (TokenResponse, error) {
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, RouteLogin, "", creds, &resp); err != nil {
		return TokenResponse{}, perrors.Wrapf(err, "[Client Login]")
	}
	return resp, validateTokens(resp)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	var resp TokenResponse
	if err := c.do(ctx, http.MethodPost, RouteRefreshToken, "", refreshRequest{RefreshToken: refreshToken}, &resp); err != nil {
		return TokenResponse{}, perrors.Wrapf(err, "[Client Refresh]")
	}
	return resp, validateTokens(resp)
}

// Signup creates an account. It does not sign the user in.
func (c *Client) Signup(ctx context.Context, reg users.Registration) (*users.UserProfile, error) {
	var user users.UserProfile
	if err := c.do(ctx, http.MethodPost, RouteSignup, "", reg, &user); err != nil {
		return nil, perrors.Wrapf(err, "[Client Signup]")
	}
	return &user, nil
}

// Me fetches the profile behind accessToken. Safe to repeat.
func (c *Client) Me(ctx context.Context, accessToken string) (*users.UserProfile, error) {
	var user users.UserProfile
	if err := c.do(ctx, http.MethodGet, RouteMe, accessToken, nil, &user); err != nil {
		return nil, perrors.Wrapf(err, "[Client Me]")
	}
	return &user, nil
}

func validateTokens(resp TokenResponse) error {
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return fmt.Errorf("%w: token response is missing a token", perrors.ErrInternal)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).Msg("Backend call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return decodeBody(data, out)
}

// decodeBody accepts both bare payloads and {"data": payload} envelopes
func decodeBody(data []byte, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		data = envelope.Data
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", perrors.ErrInternal, err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body errorBody
	_ = json.Unmarshal(data, &body)
	message := body.Message
	if message == "" {
		message = body.Error
	}
	return &perrors.APIError{Status: status, Message: message}
}
