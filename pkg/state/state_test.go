package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankmatch/pkg/domain"
)

func TestLoadMissingFileIsZeroState(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "state.json"), "")
	require.NoError(t, err)

	assert.False(t, s.HasSecrets())
	assert.Empty(t, s.Institutions)
	assert.True(t, s.MarkSeen("acc", "tx"))
}

func TestRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := Load(path, "")
	require.NoError(t, err)

	s.Secrets = Secrets{ID: "secret-id", Key: "secret-key"}
	s.Institutions = []domain.Institution{
		{ID: "BANK_A", Name: "Bank A", Countries: []string{"SE"}, RequisitionID: "req-1"},
	}
	assert.True(t, s.MarkSeen("acc-1", "tx-1"))
	assert.False(t, s.MarkSeen("acc-1", "tx-1"))
	require.NoError(t, s.Save())

	loaded, err := Load(path, "")
	require.NoError(t, err)

	assert.True(t, loaded.HasSecrets())
	assert.Equal(t, "secret-key", loaded.Secrets.Key)
	require.Len(t, loaded.Institutions, 1)
	assert.Equal(t, "req-1", loaded.Institutions[0].RequisitionID)

	// the sighting survives the roundtrip
	assert.False(t, loaded.MarkSeen("acc-1", "tx-1"))
	assert.True(t, loaded.MarkSeen("acc-1", "tx-2"))
}

func TestSecretsSealedOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	passphrase := "correct-horse-battery-staple"

	s, err := Load(path, passphrase)
	require.NoError(t, err)
	s.Secrets = Secrets{ID: "secret-id", Key: "very-secret-key"}
	require.NoError(t, s.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "very-secret-key")

	loaded, err := Load(path, passphrase)
	require.NoError(t, err)
	assert.Equal(t, "very-secret-key", loaded.Secrets.Key)

	// missing passphrase must not silently yield unusable secrets
	_, err = Load(path, "")
	assert.Error(t, err)
}

func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := Load(path, "")
	require.NoError(t, err)
	s.Secrets = Secrets{ID: "id", Key: "key"}
	s.MarkSeen("acc", "tx")

	s.Reset()
	require.NoError(t, s.Save())

	loaded, err := Load(path, "")
	require.NoError(t, err)
	assert.False(t, loaded.HasSecrets())
	assert.True(t, loaded.MarkSeen("acc", "tx"))
}
