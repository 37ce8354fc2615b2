// Package config handles tomolog configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration. Sections mirror the
// parameter groups accepted by the run command; run writes the values
// it used back to the file so the next invocation starts from them.
type Config struct {
	General GeneralConfig `toml:"general"`
	Scan    ScanConfig    `toml:"scan"`
	Slides  SlidesConfig  `toml:"slides"`
	Cloud   CloudConfig   `toml:"cloud"`
	Globus  GlobusConfig  `toml:"globus"`
}

// GeneralConfig holds process-wide settings.
type GeneralConfig struct {
	// Verbose enables debug-level output.
	Verbose bool `toml:"verbose"`

	// Proxy is an optional SOCKS5 proxy URL applied to all outbound
	// HTTP clients, e.g. socks5://host:1080.
	Proxy string `toml:"proxy"`
}

// ScanConfig describes the data set to publish.
type ScanConfig struct {
	// FileName is an HDF5 file or a directory of HDF5 files.
	FileName string `toml:"file_name"`

	// Beamline selects the slide layout: 2-bm, 7-bm, 32-id or empty
	// for the generic layout.
	Beamline string `toml:"beamline"`

	// DoubleFOV marks a 0-360 scan whose projections must be stitched.
	DoubleFOV bool `toml:"double_fov"`

	// RecType is the reconstruction folder suffix: rec or recgpu.
	RecType string `toml:"rec_type"`

	// IdX, IdY, IdZ are the orthoslice indices; -1 selects the center.
	IdX int `toml:"idx"`
	IdY int `toml:"idy"`
	IdZ int `toml:"idz"`

	// Min and Max fix the display intensity window. When equal the
	// window is derived from the histogram using Scale as the tail
	// quantile.
	Min   float64 `toml:"min"`
	Max   float64 `toml:"max"`
	Scale float64 `toml:"scale"`
}

// SlidesConfig holds Google Slides settings.
type SlidesConfig struct {
	// PresentationURL is the full URL of the target presentation.
	PresentationURL string `toml:"presentation_url"`

	// TokenPath is the Google OAuth token file
	// (default ~/tokens/google_token.json).
	TokenPath string `toml:"token_path"`
}

// CloudConfig selects and configures the image hosting backend.
type CloudConfig struct {
	// Host is one of: dropbox, s3, globus.
	Host string `toml:"host"`

	DropboxTokenPath string `toml:"dropbox_token_path"`

	S3Endpoint  string `toml:"s3_endpoint"`
	S3Bucket    string `toml:"s3_bucket"`
	S3AccessKey string `toml:"s3_access_key"`
	S3SecretKey string `toml:"s3_secret_key"`
	S3Secure    bool   `toml:"s3_secure"`
}

// GlobusConfig holds Globus transfer settings.
type GlobusConfig struct {
	ClientID       string `toml:"client_id"`
	LocalEndpoint  string `toml:"local_endpoint"`
	RemoteEndpoint string `toml:"remote_endpoint"`

	// BasePath is the destination directory on the remote collection.
	BasePath string `toml:"base_path"`

	// BaseURL is the HTTPS root of the guest collection used to build
	// public links for transferred files.
	BaseURL string `toml:"base_url"`

	TokenPath string `toml:"token_path"`
}

// Default returns a configuration with the stock parameter values.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Scan: ScanConfig{
			RecType: "rec",
			IdX:     -1,
			IdY:     -1,
			IdZ:     -1,
			Scale:   0.005,
		},
		Slides: SlidesConfig{
			TokenPath: filepath.Join(home, "tokens", "google_token.json"),
		},
		Cloud: CloudConfig{
			Host:             "dropbox",
			DropboxTokenPath: filepath.Join(home, "tokens", "dropbox_token.json"),
			S3Secure:         true,
		},
		Globus: GlobusConfig{
			BasePath:  "/tomolog/",
			TokenPath: filepath.Join(home, ".tomolog_globus_tokens.json"),
		},
	}
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tomolog.toml"
	}
	return filepath.Join(home, ".tomolog", "config.toml")
}

// Load loads configuration from a file. A missing file yields the
// defaults so the tool works before init has been run.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to a file.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	content := "# tomolog configuration\n# Updated after every run with the parameters used.\n\n" + string(data)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Exists checks if a config file exists.
func Exists(path string) bool {
	if path == "" {
		path = DefaultConfigPath()
	}
	_, err := os.Stat(path)
	return err == nil
}

// CreateDefault creates a config file with the stock values.
func CreateDefault(path string) error {
	return Save(Default(), path)
}
