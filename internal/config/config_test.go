package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-task-client/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	// An explicitly named file must exist.
	require.Error(t, err)

	cfg, err = config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "taskctl", cfg.AppName)
	assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.NotEmpty(t, cfg.Session.CredentialsFile)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Output.Colors)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskctl.yaml")
	content := `
app_name: taskctl-staging
server:
  base_url: https://tasks.example.com
  timeout: 5s
session:
  credentials_file: /tmp/creds.json
logging:
  level: debug
output:
  colors: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "taskctl-staging", cfg.AppName)
	assert.Equal(t, "https://tasks.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "/tmp/creds.json", cfg.Session.CredentialsFile)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.False(t, cfg.Output.Colors)
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid logging level")
}
