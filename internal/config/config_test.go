package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 4*time.Second, cfg.Notify.TTL)
	assert.True(t, cfg.Session.Encrypt)
	assert.Equal(t, filepath.Join(cfg.Session.Dir, "master.key"), cfg.Session.MasterKeyFile)
	assert.Equal(t, ":8081", cfg.Shell.Addr)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api": {"base_url": "https://eco.example.com/api/", "timeout": "5s"},
		"session": {"dir": "`+dir+`", "encrypt": false},
		"notify": {"ttl": "2s"}
	}`), 0600))
	t.Setenv("RECOLECTOR_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://eco.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Notify.TTL)
	assert.False(t, cfg.Session.Encrypt)
	assert.Equal(t, dir, cfg.Session.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsBadURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"api": {"base_url": "localhost:8000"}}`), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.base_url")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}
