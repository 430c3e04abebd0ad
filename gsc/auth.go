package gsc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gsc-exporter/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ScopeReadonly is the only scope the exporter needs.
const ScopeReadonly = "https://www.googleapis.com/auth/webmasters.readonly"

// CredentialProvider supplies a valid, auto-refreshing token source for
// the Search Console API. Implementations own the token lifecycle:
// refresh on expiry, re-authenticate when the refresh token is revoked.
type CredentialProvider interface {
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
	Invalidate() error
}

// FileCredentials is the CredentialProvider backed by the conventional
// client_secret.json / token.json file pair. Refreshed tokens are
// written back to the token file so the next run skips the browser.
type FileCredentials struct {
	ClientSecretPath string
	TokenPath        string
	logger           *utils.Logger
}

// NewFileCredentials creates a FileCredentials provider.
func NewFileCredentials(clientSecretPath, tokenPath string, logger *utils.Logger) *FileCredentials {
	return &FileCredentials{
		ClientSecretPath: clientSecretPath,
		TokenPath:        tokenPath,
		logger:           logger,
	}
}

// TokenSource loads the stored token, refreshing or re-authenticating
// as needed, and returns a source that persists refreshed tokens.
func (c *FileCredentials) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	b, err := os.ReadFile(c.ClientSecretPath)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", c.ClientSecretPath, err)
	}
	conf, err := google.ConfigFromJSON(b, ScopeReadonly)
	if err != nil {
		return nil, fmt.Errorf("invalid client secret file: %w", err)
	}

	tok, err := c.loadToken()
	if err != nil {
		c.logger.Warn("Could not load credentials from %s: %v", c.TokenPath, err)
		tok = nil
	}

	if tok != nil {
		// Probe once so a revoked refresh token is caught up front
		// rather than mid-pipeline.
		if _, err := conf.TokenSource(ctx, tok).Token(); err != nil {
			if strings.Contains(err.Error(), "invalid_grant") {
				c.logger.Warn("Refresh token expired or revoked, re-authenticating")
				if err := c.Invalidate(); err != nil {
					return nil, err
				}
				tok = nil
			} else {
				return nil, fmt.Errorf("token refresh failed: %w", err)
			}
		}
	}

	if tok == nil {
		tok, err = c.authorize(ctx, conf)
		if err != nil {
			return nil, err
		}
	}

	inner := conf.TokenSource(ctx, tok)
	return oauth2.ReuseTokenSource(tok, &savingTokenSource{
		inner:    inner,
		path:     c.TokenPath,
		lastAcc:  tok.AccessToken,
		provider: c,
	}), nil
}

// Invalidate removes the stored token, forcing re-authentication.
func (c *FileCredentials) Invalidate() error {
	if err := os.Remove(c.TokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not remove %s: %w", c.TokenPath, err)
	}
	return nil
}

// authorize runs the out-of-band console flow: the user opens the
// printed URL, grants access and pastes the code back.
func (c *FileCredentials) authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	url := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Open the following URL in your browser, authorize access, then paste the code here:\n%s\n\nCode: ", url)

	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("could not read authorization code: %w", err)
	}
	tok, err := conf.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("authorization code exchange failed: %w", err)
	}
	if err := c.saveToken(tok); err != nil {
		return nil, err
	}
	c.logger.Info("Authentication successful. Credentials saved to %s", c.TokenPath)
	return tok, nil
}

func (c *FileCredentials) loadToken() (*oauth2.Token, error) {
	f, err := os.Open(c.TokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("malformed token file: %w", err)
	}
	return tok, nil
}

func (c *FileCredentials) saveToken(tok *oauth2.Token) error {
	f, err := os.OpenFile(c.TokenPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("could not write token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}

// savingTokenSource persists the token whenever a refresh produces a
// new access token.
type savingTokenSource struct {
	inner    oauth2.TokenSource
	path     string
	lastAcc  string
	provider *FileCredentials
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.inner.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.lastAcc {
		s.lastAcc = tok.AccessToken
		if err := s.provider.saveToken(tok); err != nil {
			s.provider.logger.Warn("Could not persist refreshed token: %v", err)
		}
	}
	return tok, nil
}
