// Package authclient is the HTTP implementation of the session store's auth
// boundary. It speaks the dashboard backend's OAuth2 password flow.
package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/repairdesk/dashboard-state/internal/core/domain"
	"github.com/repairdesk/dashboard-state/internal/core/ports"
)

const (
	loginPath   = "/auth/login"
	profilePath = "/auth/profile"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

var errUnexpectedStatus = errors.New("unexpected status")

// Client talks to the backend's auth endpoints.
type Client struct {
	baseURL string
	http    *http.Client
	oauth   oauth2.Config
	log     zerolog.Logger

	mu          sync.Mutex
	tokenSource func() string
	listeners   map[int]func()
	nextID      int
}

var (
	_ ports.AuthGateway        = (*Client)(nil)
	_ ports.UnauthorizedSource = (*Client)(nil)
)

type Option func(*Client)

// WithHTTPClient replaces the default client. Its timeout wins over the one
// passed to New.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, timeout time.Duration, log zerolog.Logger, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      &http.Client{Timeout: timeout},
		log:       log.With().Str("component", "authclient").Logger(),
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.oauth = oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + loginPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return c
}

// SetTokenSource tells Do where to find the current bearer token.
func (c *Client) SetTokenSource(fn func() string) {
	c.mu.Lock()
	c.tokenSource = fn
	c.mu.Unlock()
}

// OnUnauthorized registers fn to run whenever Do receives a 401.
func (c *Client) OnUnauthorized(fn func()) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// Login runs the OAuth2 resource-owner password grant against the login
// endpoint. The backend returns the user record next to the token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	tok, err := c.oauth.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			cause := errUnexpectedStatus
			if re.Response.StatusCode == http.StatusUnauthorized {
				cause = domain.ErrInvalidCredentials
			}
			return nil, c.boundaryError(re.Response, re.Body, cause)
		}
		return nil, &ports.BoundaryError{Err: fmt.Errorf("login request: %w", err)}
	}

	res := &domain.AuthResult{AccessToken: tok.AccessToken, TokenType: tok.TokenType}
	if raw := tok.Extra("user"); raw != nil {
		user, err := decodeExtra(raw)
		if err != nil {
			return nil, &ports.BoundaryError{Err: fmt.Errorf("decode login user: %w", err)}
		}
		res.User = user
	}

	c.logToken(res.AccessToken)
	return res, nil
}

// decodeExtra converts the generic JSON value oauth2 keeps for unknown
// response fields into a User.
func decodeExtra(raw any) (*domain.User, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FetchProfile asks the backend who token belongs to. A 401 is reported as
// ErrUnauthorized and does not fire the unauthorized listeners; the caller
// already handles it.
func (c *Client) FetchProfile(ctx context.Context, token string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+profilePath, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ports.BoundaryError{Err: fmt.Errorf("profile request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		cause := errUnexpectedStatus
		if resp.StatusCode == http.StatusUnauthorized {
			cause = domain.ErrUnauthorized
		}
		return nil, c.failure(resp, cause)
	}

	var user domain.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, &ports.BoundaryError{Status: resp.StatusCode, Err: fmt.Errorf("decode profile: %w", err)}
	}
	return &user, nil
}

// Do sends an authenticated request to the backend. path is relative to the
// base URL. A 401 response fires the unauthorized listeners and is returned
// as an ErrUnauthorized boundary error with the body already closed.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.mu.Lock()
	source := c.tokenSource
	c.mu.Unlock()
	if source != nil {
		if token := source(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ports.BoundaryError{Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		defer resp.Body.Close()
		failure := c.failure(resp, domain.ErrUnauthorized)
		c.log.Warn().Str("method", method).Str("path", path).Msg("request rejected as unauthorized")
		c.emitUnauthorized()
		return nil, failure
	}
	return resp, nil
}

func (c *Client) emitUnauthorized() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// failure builds a BoundaryError from a non-2xx response, keeping whatever
// human-readable reason the server sent.
func (c *Client) failure(resp *http.Response, cause error) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return c.boundaryError(resp, raw, cause)
}

func (c *Client) boundaryError(resp *http.Response, body []byte, cause error) error {
	msg := serverMessage(body)

	ev := c.log.Debug().Int("status", resp.StatusCode).Str("detail", msg)
	if resp.Request != nil {
		ev = ev.Str("path", resp.Request.URL.Path)
	}
	ev.Msg("auth boundary returned an error")

	if errors.Is(cause, errUnexpectedStatus) {
		cause = fmt.Errorf("%w %d", errUnexpectedStatus, resp.StatusCode)
	}
	return &ports.BoundaryError{Status: resp.StatusCode, Message: msg, Err: cause}
}

// serverMessage reads {"detail": "..."} or {"error": "..."}. Validation
// errors with a structured detail yield no message.
func serverMessage(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	var detail string
	if len(body.Detail) > 0 && json.Unmarshal(body.Detail, &detail) == nil && detail != "" {
		return detail
	}
	return body.Error
}

// logToken records the token's subject and expiry. The signature is not
// checked.
func (c *Client) logToken(raw string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		c.log.Debug().Err(err).Msg("access token is not a readable JWT")
		return
	}

	ev := c.log.Debug()
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		ev = ev.Str("sub", sub)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		ev = ev.Time("expires_at", exp.Time)
	}
	ev.Msg("access token issued")
}
