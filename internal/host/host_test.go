package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mittoalb/tomolog-cli/internal/config"
)

func TestObjectName(t *testing.T) {
	assert.Equal(t, "slides/projection.jpg", ObjectName("/tmp/work/projection.jpg"))
	assert.Equal(t, "slides/recon.jpg", ObjectName("recon.jpg"))
}

func TestNewDropboxTokenValidation(t *testing.T) {
	dir := t.TempDir()

	_, err := NewDropbox(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0600))
	_, err = NewDropbox(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte(`{"access_token": ""}`), 0600))
	_, err = NewDropbox(empty)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_token")

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"access_token": "sl.xyz"}`), 0600))
	d, err := NewDropbox(good)
	require.NoError(t, err)
	assert.NotNil(t, d)
}

func TestNewS3RequiresEndpointAndBucket(t *testing.T) {
	_, err := NewS3(config.CloudConfig{})
	assert.Error(t, err)

	_, err = NewS3(config.CloudConfig{S3Endpoint: "minio.aps.anl.gov:9000"})
	assert.Error(t, err)

	s, err := NewS3(config.CloudConfig{
		S3Endpoint:  "minio.aps.anl.gov:9000",
		S3Bucket:    "tomolog",
		S3AccessKey: "key",
		S3SecretKey: "secret",
		S3Secure:    true,
	})
	require.NoError(t, err)
	assert.NotNil(t, s)
}
