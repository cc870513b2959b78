package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acfileserver/internal/model"
)

// writeSettings writes content as the settings file in a temp dir and
// returns its path.
func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), SettingsFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoadSettings_JSONCComments verifies comments and trailing commas are
// accepted, which is the whole point of the JSONC format.
func TestLoadSettings_JSONCComments(t *testing.T) {
	path := writeSettings(t, `{
	// shared directory, relative to the working dir
	"filesDir": "exports",
	/* keep the QR code off on headless boxes */
	"showQr": false,
	"pageTitle": "Team Drop Box",
}`)

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, "exports", s.FilesDir)
	require.NotNil(t, s.ShowQR)
	assert.False(t, *s.ShowQR)
	assert.Equal(t, "Team Drop Box", s.PageTitle)
	assert.Empty(t, s.StateDir, "unset fields stay empty")
}

// TestLoadSettings_Missing verifies an absent file is treated as empty
// settings rather than an error.
func TestLoadSettings_Missing(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), SettingsFileName))
	require.NoError(t, err)
	assert.Equal(t, &Settings{}, s)
}

// TestLoadSettings_Malformed verifies a present but broken file fails
// loudly with a config exit code.
func TestLoadSettings_Malformed(t *testing.T) {
	path := writeSettings(t, `{"filesDir": `)

	_, err := LoadSettings(path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestSettings_Apply verifies only set fields override the config.
func TestSettings_Apply(t *testing.T) {
	on := true
	cfg := &Config{FilesDir: "files", StateDir: "data", ShowQR: false, PageTitle: DefaultPageTitle}

	(&Settings{FilesDir: "exports", ShowQR: &on}).apply(cfg)

	assert.Equal(t, "exports", cfg.FilesDir)
	assert.Equal(t, "data", cfg.StateDir)
	assert.True(t, cfg.ShowQR)
	assert.Equal(t, DefaultPageTitle, cfg.PageTitle)
}
