package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Ledger.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Ledger.AttemptTimeout)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yml", `
server:
  port: "9090"
ledger:
  max_retries: 3
  attempt_timeout: 500ms
admin:
  handles: [root, ops]
`)
	writeFile(t, dir, ".env", "JWT_SECRET_KEY=from-dotenv\n")
	t.Setenv("SERVER_PORT", "7070")
	t.Cleanup(func() { os.Unsetenv("JWT_SECRET_KEY") })

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Ledger.AttemptTimeout)
	assert.Equal(t, "from-dotenv", cfg.JWT.SecretKey)
	assert.True(t, cfg.IsAdminHandle("ops"))
	assert.False(t, cfg.IsAdminHandle("alice"))
}

func TestLoad_RejectsZeroRetries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yml", "ledger:\n  max_retries: 0\n")

	_, err := Load(dir)
	assert.Error(t, err)
}
