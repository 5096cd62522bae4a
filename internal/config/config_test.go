package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "public/uploads", cfg.UploadsDir)
	assert.Equal(t, "/uploads", cfg.UploadsBaseURL)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.False(t, cfg.DevMode)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9090"
database_url: "postgres://localhost/campus"
uploads_dir: "/var/lib/campus/uploads"
max_upload_bytes: 1048576
dev_mode: true
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "postgres://localhost/campus", cfg.DatabaseURL)
	assert.Equal(t, "/var/lib/campus/uploads", cfg.UploadsDir)
	assert.Equal(t, int64(1<<20), cfg.MaxUploadBytes)
	assert.True(t, cfg.DevMode)
	// Не заданные в файле поля остаются со значениями по умолчанию.
	assert.Equal(t, "/uploads", cfg.UploadsBaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, "postgres://env/db", cfg.DatabaseURL)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: [broken"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)

	path = filepath.Join(t.TempDir(), "zero.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_upload_bytes: -1"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}
