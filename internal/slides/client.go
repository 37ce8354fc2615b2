package slides

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/slides/v1"

	"github.com/mittoalb/tomolog-cli/internal/common"
)

// token is the on-disk OAuth token layout, as produced by the Google
// quickstart flow and shared between the facility machines.
type token struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`
	AccessToken  string `json:"access_token,omitempty"`
}

// Client wraps the Slides API for the page operations tomolog performs.
type Client struct {
	svc *slides.Service
}

// NewClient builds a Slides client from the token file. Requests go
// through the shared HTTP client so the SOCKS proxy applies.
func NewClient(ctx context.Context, tokenPath string) (*Client, error) {
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read Google token %s: %w", tokenPath, err)
	}
	var tok token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse Google token %s: %w", tokenPath, err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("Google token %s has no refresh token", tokenPath)
	}

	conf := &oauth2.Config{
		ClientID:     tok.ClientID,
		ClientSecret: tok.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{slides.PresentationsScope},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, common.NewHTTPClient())
	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	})

	svc, err := slides.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Slides service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func (c *Client) batchUpdate(ctx context.Context, presentationID string, reqs []*slides.Request) error {
	_, err := c.svc.Presentations.BatchUpdate(presentationID, &slides.BatchUpdatePresentationRequest{
		Requests: reqs,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("slides batch update failed: %w", err)
	}
	return nil
}

// CreateSlide appends a blank slide with the given page id.
func (c *Client) CreateSlide(ctx context.Context, presentationID, pageID string) error {
	return c.batchUpdate(ctx, presentationID, createSlideRequests(pageID))
}

// CreateTextbox places a text box on the page. Sizes and positions are
// in points.
func (c *Client) CreateTextbox(ctx context.Context, presentationID, pageID, text string, w, h, x, y, fontSize float64) error {
	reqs := textboxRequests(pageID, NewPageID(), text, w, h, x, y, fontSize)
	return c.batchUpdate(ctx, presentationID, reqs)
}

// CreateTextboxWithBullets places a text box whose paragraphs become
// bullets.
func (c *Client) CreateTextboxWithBullets(ctx context.Context, presentationID, pageID, text string, w, h, x, y, fontSize float64) error {
	objectID := NewPageID()
	reqs := textboxRequests(pageID, objectID, text, w, h, x, y, fontSize)
	reqs = append(reqs, bulletRequests(objectID)...)
	return c.batchUpdate(ctx, presentationID, reqs)
}

// CreateImage places an image fetched from imageURL on the page.
func (c *Client) CreateImage(ctx context.Context, presentationID, pageID, imageURL string, w, h, x, y float64) error {
	reqs := imageRequests(pageID, NewPageID(), imageURL, w, h, x, y)
	return c.batchUpdate(ctx, presentationID, reqs)
}
