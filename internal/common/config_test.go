package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mediascope.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFilesDefaults(t *testing.T) {
	t.Setenv("MEDIASCOPE_ENV", "development")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "development", config.Environment)
	assert.NotZero(t, config.Server.Port)
	assert.NotEmpty(t, config.Storage.Badger.Path)
	assert.True(t, config.Cleanup.Enabled)
}

func TestLoadFromFilesLaterFileWins(t *testing.T) {
	first := writeConfigFile(t, `
[server]
port = 9001
host = "first"
`)
	second := writeConfigFile(t, `
[server]
port = 9002
`)

	t.Setenv("MEDIASCOPE_SERVER_PORT", "")

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)

	assert.Equal(t, 9002, config.Server.Port)
	// Unset keys in the second file keep the first file's value
	assert.Equal(t, "first", config.Server.Host)
}

func TestLoadFromFilesEnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
environment = "development"

[server]
port = 9001

[upload]
dir = "./data/file-uploads"
`)

	t.Setenv("MEDIASCOPE_ENV", "production")
	t.Setenv("MEDIASCOPE_SERVER_PORT", "9100")
	t.Setenv("MEDIASCOPE_UPLOAD_DIR", "/tmp/uploads")

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, 9100, config.Server.Port)
	assert.Equal(t, "/tmp/uploads", config.Upload.Dir)
}

func TestLoadFromFilesMissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()
	ApplyFlagOverrides(config, 8123, "0.0.0.0")

	assert.Equal(t, 8123, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestParseDurationOr(t *testing.T) {
	assert.Equal(t, 2*time.Hour, ParseDurationOr("2h", time.Minute))
	assert.Equal(t, time.Minute, ParseDurationOr("", time.Minute))
	assert.Equal(t, time.Minute, ParseDurationOr("bogus", time.Minute))
}

func TestValidateCleanupSchedule(t *testing.T) {
	assert.NoError(t, ValidateCleanupSchedule("0 */30 * * * *"))
	assert.Error(t, ValidateCleanupSchedule("not a schedule"))
}
