// Package globus uploads figures through a Globus transfer to a guest
// collection whose HTTPS URL Slides can fetch from.
package globus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"github.com/mittoalb/tomolog-cli/internal/common"
)

const (
	authURL  = "https://auth.globus.org/v2/oauth2/authorize"
	tokenURL = "https://auth.globus.org/v2/oauth2/token"

	// native app flow: the code is shown in the browser for the user
	// to paste back
	redirectURL = "https://auth.globus.org/v2/web/auth-code"

	transferScope = "urn:globus:auth:scope:transfer.api.globus.org:all"
)

func oauthConfig(clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:    clientID,
		Endpoint:    oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
		RedirectURL: redirectURL,
		Scopes:      []string{transferScope},
	}
}

// LoadToken reads a saved Globus token.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse Globus token %s: %w", path, err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("Globus token %s has no refresh token", path)
	}
	return &tok, nil
}

// SaveToken persists a Globus token, readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write Globus token: %w", err)
	}
	return nil
}

// Authorize runs the native app flow: the user visits the authorize URL
// and pastes the code back. The resulting refresh token is saved.
func Authorize(ctx context.Context, clientID, tokenPath string, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	conf := oauthConfig(clientID)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, common.NewHTTPClient())

	url := conf.AuthCodeURL("", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "Globus authentication required.\nPlease visit:\n\n  %s\n\nPaste authorization code: ", url)

	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return nil, fmt.Errorf("no authorization code provided")
	}
	code := strings.TrimSpace(scanner.Text())

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("globus code exchange failed: %w", err)
	}
	if err := SaveToken(tokenPath, tok); err != nil {
		return nil, err
	}
	fmt.Fprintln(out, "Globus tokens saved.")
	return tok, nil
}

// persistingSource saves refreshed tokens back to disk so the refresh
// token chain survives across runs.
type persistingSource struct {
	mu   sync.Mutex
	path string
	src  oauth2.TokenSource
	last *oauth2.Token
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if p.last == nil || tok.AccessToken != p.last.AccessToken {
		if tok.RefreshToken == "" && p.last != nil {
			tok.RefreshToken = p.last.RefreshToken
		}
		if err := SaveToken(p.path, tok); err != nil {
			return nil, err
		}
		p.last = tok
	}
	return tok, nil
}

// TokenSource returns a refreshing, persisting token source for the
// saved Globus token.
func TokenSource(ctx context.Context, clientID, tokenPath string) (oauth2.TokenSource, error) {
	tok, err := LoadToken(tokenPath)
	if err != nil {
		return nil, err
	}
	conf := oauthConfig(clientID)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, common.NewHTTPClient())
	return &persistingSource{
		path: tokenPath,
		src:  conf.TokenSource(ctx, tok),
		last: tok,
	}, nil
}
