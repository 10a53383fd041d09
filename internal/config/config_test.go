package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should use defaults when config file is missing", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		assert.Equal(t, ":8181", cfg.Addr)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "tripkas", cfg.Database.Schema)
		assert.Equal(t, 3, cfg.Limits.FreePlans)
		assert.Equal(t, 12*time.Hour, cfg.Auth.PublicTokenTTL)
	})

	t.Run("should override defaults with yaml file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "application.yaml")
		content := "db:\n  host: db.internal\n  port: 6543\nlimits:\n  freeplans: 10\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.Equal(t, 10, cfg.Limits.FreePlans)
		assert.Equal(t, "tripkas", cfg.Database.User)
	})

	t.Run("should override file values with environment variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "application.yaml")
		require.NoError(t, os.WriteFile(path, []byte("db:\n  host: db.internal\n"), 0o644))
		t.Setenv("TRIPKAS_DB_HOST", "env-host")
		t.Setenv("TRIPKAS_REDIS_ADDR", "localhost:6379")
		t.Setenv("TRIPKAS_AUTH_ENVADMINS", "uid-1,uid-2")

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "env-host", cfg.Database.Host)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.Equal(t, []string{"uid-1", "uid-2"}, cfg.Auth.EnvAdmins)
	})
}
