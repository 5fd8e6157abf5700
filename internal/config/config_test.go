package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no stray .env
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, BackendLocal, cfg.AttachmentBackend)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 19.0, cfg.DefaultTaxRate)
	assert.False(t, cfg.Migrations)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("MIGRATIONS", "1")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("ATTACHMENT_BACKEND", "GCS")
	t.Setenv("GCS_BUCKET", "rentals-files")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.Migrations)
	assert.Equal(t, 5, cfg.MaxUploadMB)
	assert.Equal(t, BackendGCS, cfg.AttachmentBackend)
	assert.Equal(t, "rentals-files", cfg.GCSBucket)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("port: \"7070\"\nlog_level: debug\n"), 0o600))
	cfg, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	base := Config{AttachmentBackend: BackendLocal, MaxUploadMB: 10}
	require.NoError(t, base.Validate())

	gcs := base
	gcs.AttachmentBackend = BackendGCS
	assert.ErrorContains(t, gcs.Validate(), "GCS_BUCKET")

	prod := base
	prod.Env = "production"
	assert.ErrorContains(t, prod.Validate(), "SESSION_SECRET")

	bad := base
	bad.AttachmentBackend = "s3"
	assert.Error(t, bad.Validate())
}
