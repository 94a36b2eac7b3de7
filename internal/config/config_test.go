package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db:\n  path: /tmp/custom.db\ncache:\n  max_entries: 16\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", cfg.DB.Path)
	assert.Equal(t, 16, cfg.Cache.MaxEntries)
	// Untouched sections keep their defaults.
	assert.Equal(t, 60*time.Second, cfg.LLM.CallTimeout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  max_entries: -1\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "promptforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
