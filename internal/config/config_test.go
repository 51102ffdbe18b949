package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cadence.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
database_path: show.db
default_beat_duration: 0.4
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "show.db"), cfg.DatabasePath)
	assert.Equal(t, 0.4, cfg.DefaultBeatDuration)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `database_path: show.db`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.DefaultBeatDuration)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, `
database_path: show.db
databse_path: typo.db
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"empty database path", `database_path: ""`},
		{"negative duration", "default_beat_duration: -1\n"},
		{"bad log level", "log_level: loud\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
		})
	}
}

func TestLoadAbsoluteDatabasePathKept(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "deep", "show.db")
	path := writeConfig(t, "database_path: "+abs+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, abs, cfg.DatabasePath)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "cadence.db", cfg.DatabasePath)
	assert.Equal(t, 0.5, cfg.DefaultBeatDuration)
	assert.Equal(t, "info", cfg.LogLevel)
}
