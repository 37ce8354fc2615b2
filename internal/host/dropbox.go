package host

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
)

// Dropbox hosts figures in a Dropbox app folder, handing out temporary
// links that stay valid long enough for Slides to fetch the image.
type Dropbox struct {
	client files.Client
}

// NewDropbox builds a Dropbox host from a token file containing
// {"access_token": "..."}.
func NewDropbox(tokenPath string) (*Dropbox, error) {
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read Dropbox token %s: %w", tokenPath, err)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse Dropbox token %s: %w", tokenPath, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("Dropbox token %s has no access_token", tokenPath)
	}

	cfg := dropbox.Config{Token: tok.AccessToken}
	return &Dropbox{client: files.New(cfg)}, nil
}

// Upload overwrites the file in the app folder and returns a temporary
// link to it.
func (d *Dropbox) Upload(ctx context.Context, localPath string) (string, error) {
	name := "/" + filepath.Base(localPath)

	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	arg := files.NewUploadArg(name)
	arg.Mode = &files.WriteMode{Tagged: dropbox.Tagged{Tag: "overwrite"}}
	if _, err := d.client.Upload(arg, f); err != nil {
		return "", fmt.Errorf("dropbox upload of %s failed: %w", name, err)
	}

	res, err := d.client.GetTemporaryLink(files.NewGetTemporaryLinkArg(name))
	if err != nil {
		return "", fmt.Errorf("dropbox temporary link for %s failed: %w", name, err)
	}
	return res.Link, nil
}
