// Package googleauth manages OAuth2 authentication against Google using the
// authorization-code grant: it builds the oauth2 config from credentials
// sourced elsewhere, runs the browser consent flow with a local redirect
// listener, and persists the resulting token under the user config dir.
package googleauth

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ahd-playgrounds/google-task-cli/internal/logger"
)

const (
	ScopePhotosLibrary = "https://www.googleapis.com/auth/photoslibrary"
	ScopeTasksReadonly = "https://www.googleapis.com/auth/tasks.readonly"

	tokenFileName = "token.json"
)

// Scopes are requested on every authorization; the token on disk always
// covers both APIs.
var Scopes = []string{ScopePhotosLibrary, ScopeTasksReadonly}

// Options carries the OAuth client identity and flow settings.
type Options struct {
	ClientID     string
	ClientSecret string
	RedirectPort int
	Timeout      time.Duration
}

// Manager handles token lifecycle and hands out authenticated HTTP clients.
type Manager struct {
	store   *TokenStore
	conf    *oauth2.Config
	port    int
	timeout time.Duration
}

// NewManager creates an authentication manager storing its token under
// configDir.
func NewManager(configDir string, opts *Options) (*Manager, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("missing OAuth client credentials")
	}
	if opts.RedirectPort <= 0 {
		return nil, fmt.Errorf("invalid redirect port %d", opts.RedirectPort)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	conf := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/oauth2callback", opts.RedirectPort),
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}

	return &Manager{
		store:   NewTokenStore(filepath.Join(configDir, tokenFileName)),
		conf:    conf,
		port:    opts.RedirectPort,
		timeout: timeout,
	}, nil
}

// Client returns an HTTP client that attaches and refreshes the stored
// token. When no usable token exists the full browser flow runs first.
func (m *Manager) Client(ctx context.Context) (*http.Client, error) {
	token, err := m.store.Load()
	if err != nil {
		logger.Info("no stored token, starting authorization flow", "error", err)
		token, err = m.Authorize(ctx)
		if err != nil {
			return nil, err
		}
	} else if !token.Valid() && token.RefreshToken == "" {
		logger.Info("stored token expired with no refresh token, re-authorizing")
		token, err = m.Authorize(ctx)
		if err != nil {
			return nil, err
		}
	}

	// conf.Client refreshes expired tokens transparently using the refresh
	// token; the refreshed access token lives only in memory.
	return m.conf.Client(ctx, token), nil
}

// Authorize runs the authorization-code flow and saves the new token,
// replacing any previous one.
func (m *Manager) Authorize(ctx context.Context) (*oauth2.Token, error) {
	token, err := authorizeViaWeb(ctx, m.conf, m.port, m.timeout)
	if err != nil {
		return nil, err
	}

	if err := m.store.Save(token); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	logger.Info("token saved", "path", m.store.Path(), "expiry", token.Expiry.Format(time.RFC3339))
	return token, nil
}

// HasValidToken reports whether a stored token is usable, either still
// valid or refreshable.
func (m *Manager) HasValidToken() bool {
	token, err := m.store.Load()
	if err != nil {
		return false
	}
	return token.Valid() || token.RefreshToken != ""
}

// ClearToken removes the stored token.
func (m *Manager) ClearToken() error {
	return m.store.Clear()
}

// TokenPath returns where the token is persisted.
func (m *Manager) TokenPath() string {
	return m.store.Path()
}
