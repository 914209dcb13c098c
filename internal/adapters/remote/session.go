// internal/adapters/remote/session.go

// Package remote talks to the external billing/inventory system. Its
// contract is only partially known: the auth scheme, inventory endpoint and
// response envelope all vary, so this package probes rather than assumes.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hpratama/gudang-be/internal/core/ports"
)

// ErrAuthFailed indicates the remote system rejected our credentials.
var ErrAuthFailed = errors.New("remote authentication failed")

// SessionCache holds the process-wide bearer token and its expiry. It is
// constructed once and shared by reference between the session manager and
// whichever component issues the run; last writer wins.
type SessionCache struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewSessionCache returns an empty cache.
func NewSessionCache() *SessionCache {
	return &SessionCache{}
}

func (c *SessionCache) get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || time.Now().After(c.expiry) {
		return "", false
	}
	return c.token, true
}

func (c *SessionCache) set(token string, expiry time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.expiry = expiry
}

func (c *SessionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiry = time.Time{}
}

// SessionConfig holds remote authentication settings.
type SessionConfig struct {
	AuthURL  string
	Username string
	Password string
	// DefaultTokenTTL applies when the auth response carries no expiry field.
	DefaultTokenTTL time.Duration
}

// SessionManager acquires and caches the remote bearer credential.
type SessionManager struct {
	cfg    SessionConfig
	cache  *SessionCache
	client *http.Client
	logger *slog.Logger
}

var _ ports.SessionProvider = (*SessionManager)(nil)

// NewSessionManager creates a session manager sharing the given cache.
func NewSessionManager(cfg SessionConfig, cache *SessionCache, client *http.Client, logger *slog.Logger) *SessionManager {
	if cfg.DefaultTokenTTL == 0 {
		cfg.DefaultTokenTTL = 50 * time.Minute
	}
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &SessionManager{
		cfg:    cfg,
		cache:  cache,
		client: client,
		logger: logger.With(slog.String("component", "remote_session")),
	}
}

// authResponse is the best-guess shape of the auth endpoint's reply. Field
// names differ between remote deployments.
type authResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	Jwt         string `json:"jwt"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AuthHeader returns "Bearer <token>", authenticating if no valid token is
// cached. A failed call does not poison the cache: the next call
// re-authenticates rather than failing permanently.
func (s *SessionManager) AuthHeader(ctx context.Context) (string, error) {
	if token, ok := s.cache.get(); ok {
		return "Bearer " + token, nil
	}

	token, expiry, err := s.authenticate(ctx)
	if err != nil {
		return "", err
	}

	s.cache.set(token, expiry)
	return "Bearer " + token, nil
}

// Invalidate drops the cached token; the next AuthHeader call re-authenticates.
func (s *SessionManager) Invalidate() {
	s.cache.clear()
}

// Connected reports whether a valid token is cached or a fresh one can be
// acquired within a short timeout.
func (s *SessionManager) Connected(ctx context.Context) bool {
	if _, ok := s.cache.get(); ok {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := s.AuthHeader(ctx)
	return err == nil
}

func (s *SessionManager) authenticate(ctx context.Context) (string, time.Time, error) {
	form := url.Values{}
	form.Set("username", s.cfg.Username)
	form.Set("password", s.cfg.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.WarnContext(ctx, "auth endpoint rejected credentials",
			slog.Int("status", resp.StatusCode))
		return "", time.Time{}, fmt.Errorf("%w: status %d", ErrAuthFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: reading auth response: %v", ErrAuthFailed, err)
	}

	var parsed authResponse
	_ = json.Unmarshal(body, &parsed) // body may not be JSON; header fallback below

	token := firstNonEmpty(parsed.Token, parsed.AccessToken, parsed.Jwt)
	if token == "" {
		// Some deployments return the token in a response header instead of
		// the body.
		token = strings.TrimPrefix(resp.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = resp.Header.Get("X-Auth-Token")
		}
	}
	if token == "" {
		return "", time.Time{}, fmt.Errorf("%w: no token in response body or headers", ErrAuthFailed)
	}

	ttl := s.cfg.DefaultTokenTTL
	if parsed.ExpiresIn > 0 {
		ttl = time.Duration(parsed.ExpiresIn) * time.Second
	}

	s.logger.InfoContext(ctx, "remote session established",
		slog.Duration("token_ttl", ttl))

	return token, time.Now().Add(ttl), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
