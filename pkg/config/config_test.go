package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "csv:ledger.csv", cfg.Out)
	assert.Equal(t, DefaultRedirect, cfg.Redirect)
	assert.Empty(t, cfg.Secrets.ID)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
secrets:
  id: file-id
  key: file-key
country: SE
out: jsonfile:ledger.json
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-id", cfg.Secrets.ID)
	assert.Equal(t, "file-key", cfg.Secrets.Key)
	assert.Equal(t, "SE", cfg.Country)
	assert.Equal(t, "jsonfile:ledger.json", cfg.Out)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("country: SE\n"), 0600))

	t.Setenv("BANKMATCH_COUNTRY", "NO")
	t.Setenv("NORDIGEN_SECRET_ID", "env-id")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "NO", cfg.Country)
	assert.Equal(t, "env-id", cfg.Secrets.ID)
}

func TestMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("secrets: [not a map"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}
