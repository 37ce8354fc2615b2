package globus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"

	"github.com/mittoalb/tomolog-cli/internal/config"
)

const transferAPI = "https://transfer.api.globus.org/v0.10"

// sync level 2 is "transfer when mtime differs"
const syncLevelMtime = 2

// Transfer submits uploads to a Globus guest collection. It implements
// the host.Host interface: the returned URL is the HTTPS address of the
// file on the collection.
type Transfer struct {
	hc  *http.Client
	cfg config.GlobusConfig
}

// NewTransfer builds a transfer client around the saved refresh token.
func NewTransfer(ctx context.Context, cfg config.GlobusConfig) (*Transfer, error) {
	if cfg.ClientID == "" || cfg.LocalEndpoint == "" || cfg.RemoteEndpoint == "" || cfg.BaseURL == "" {
		return nil, fmt.Errorf("globus hosting needs client_id, local_endpoint, remote_endpoint and base_url in the globus section")
	}

	ts, err := TokenSource(ctx, cfg.ClientID, cfg.TokenPath)
	if err != nil {
		return nil, fmt.Errorf("globus is not authorized yet, run: tomolog globus login: %w", err)
	}
	return &Transfer{hc: oauth2.NewClient(ctx, ts), cfg: cfg}, nil
}

// transferDoc is the v0.10 transfer submission body.
type transferDoc struct {
	DataType     string         `json:"DATA_TYPE"`
	SubmissionID string         `json:"submission_id"`
	Source       string         `json:"source_endpoint"`
	Destination  string         `json:"destination_endpoint"`
	Label        string         `json:"label"`
	SyncLevel    int            `json:"sync_level"`
	Data         []transferItem `json:"DATA"`
}

type transferItem struct {
	DataType        string `json:"DATA_TYPE"`
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
}

// Upload submits a one-item transfer and returns the HTTPS URL the file
// will have on the collection.
func (t *Transfer) Upload(ctx context.Context, localPath string) (string, error) {
	name := filepath.Base(localPath)

	submissionID, err := t.submissionID(ctx)
	if err != nil {
		return "", err
	}

	doc := transferDoc{
		DataType:     "transfer",
		SubmissionID: submissionID,
		Source:       t.cfg.LocalEndpoint,
		Destination:  t.cfg.RemoteEndpoint,
		Label:        "tomolog upload " + name,
		SyncLevel:    syncLevelMtime,
		Data: []transferItem{{
			DataType:        "transfer_item",
			SourcePath:      localPath,
			DestinationPath: RemotePath(t.cfg.BasePath, name),
		}},
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, transferAPI+"/transfer", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("globus transfer submission failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("globus transfer submission failed: %s", resp.Status)
	}

	return FileURL(t.cfg.BaseURL, name), nil
}

// submissionID fetches the one-time id required for a submission.
func (t *Transfer) submissionID(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, transferAPI+"/submission_id", nil)
	if err != nil {
		return "", err
	}
	resp, err := t.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("globus submission id request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("globus submission id request failed: %s", resp.Status)
	}

	var out struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("globus submission id response invalid: %w", err)
	}
	return out.Value, nil
}

// RemotePath joins the collection base path and a file name.
func RemotePath(basePath, name string) string {
	return path.Join("/", basePath, name)
}

// FileURL builds the HTTPS address of a transferred file.
func FileURL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + "/" + name
}
