package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 0\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 300*time.Second, cfg.Server.CacheTTL)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "officehours.db", cfg.Database.DSN)
	assert.Equal(t, 300*time.Second, cfg.Storage.CacheTTL)
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Push.Enabled())
	assert.Empty(t, cfg.Offices)
}

func TestLoad_Offices(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
push:
  vapid_public_key: pub
  vapid_private_key: priv
offices:
  - id: "3"
    title: Biblioteca
    subtitle: Abierto de 9:00 am a 5:00 pm
`))
	require.NoError(t, err)

	require.Len(t, cfg.Offices, 1)
	assert.Equal(t, "Biblioteca", cfg.Offices[0].Title)
	assert.Equal(t, "Abierto de 9:00 am a 5:00 pm", cfg.Offices[0].Subtitle)
	assert.True(t, cfg.Push.Enabled())
}

func TestLoad_Invalid(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "Duplicate office id", body: "offices:\n  - id: \"1\"\n  - id: \"1\"\n"},
		{name: "Missing office id", body: "offices:\n  - title: Nameless\n"},
		{name: "Unknown driver", body: "database:\n  driver: mysql\n"},
		{name: "Postgres without dsn", body: "database:\n  driver: postgres\n"},
		{name: "Malformed yaml", body: "server: [\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
