package config

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acfileserver/internal/model"
)

// clearRecognizedEnv removes every environment variable the config layer
// reads, and restores nothing: each test starts from a clean slate.
// godotenv.Load writes into the real process environment, so cleanup is
// registered to keep tests independent.
func clearRecognizedEnv(t *testing.T) {
	t.Helper()
	keys := []string{EnvAdminUsername, EnvAdminPassword, EnvAdminRoute, EnvFilesDir, EnvStateDir}
	for _, key := range keys {
		require.NoError(t, os.Unsetenv(key))
	}
	t.Cleanup(func() {
		for _, key := range keys {
			_ = os.Unsetenv(key)
		}
	})
}

// TestLoad_Defaults verifies a bare directory yields the documented
// defaults plus a freshly generated admin route.
func TestLoad_Defaults(t *testing.T) {
	clearRecognizedEnv(t)
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, DefaultAdminUsername, cfg.AdminUsername)
	assert.Equal(t, DefaultAdminPassword, cfg.AdminPassword)
	assert.Equal(t, filepath.Join(dir, DefaultFilesDir), cfg.FilesDir)
	assert.Equal(t, filepath.Join(dir, DefaultStateDir), cfg.StateDir)
	assert.True(t, cfg.ShowQR)

	assert.True(t, cfg.AdminRouteGenerated, "route should be generated when unset")
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{16}$`), cfg.AdminRoute)
}

// TestLoad_EnvFile verifies values from .env are applied.
func TestLoad_EnvFile(t *testing.T) {
	clearRecognizedEnv(t)
	dir := t.TempDir()

	env := "ADMIN_USERNAME=alice\nADMIN_PASSWORD=s3cret\nADMIN_ROUTE=panel-route_1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte(env), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "alice", cfg.AdminUsername)
	assert.Equal(t, "s3cret", cfg.AdminPassword)
	assert.Equal(t, "panel-route_1", cfg.AdminRoute)
	assert.False(t, cfg.AdminRouteGenerated, "configured route must not be marked generated")
}

// TestLoad_ProcessEnvWins verifies the process environment beats .env,
// mirroring godotenv's no-override semantics.
func TestLoad_ProcessEnvWins(t *testing.T) {
	clearRecognizedEnv(t)
	dir := t.TempDir()

	env := "ADMIN_USERNAME=from-file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, EnvFileName), []byte(env), 0o600))
	t.Setenv(EnvAdminUsername, "from-process")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-process", cfg.AdminUsername)
}

// TestLoad_MissingEnvFile verifies an absent .env is not an error.
func TestLoad_MissingEnvFile(t *testing.T) {
	clearRecognizedEnv(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.AdminRoute)
}

// TestLoad_InvalidAdminRoute verifies path-unsafe routes are rejected
// with a configuration exit code.
func TestLoad_InvalidAdminRoute(t *testing.T) {
	clearRecognizedEnv(t)
	t.Setenv(EnvAdminRoute, "has/slash")

	_, err := Load(t.TempDir())
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

// TestLoad_ReservedAdminRoute verifies routes that collide with the
// server's own paths are rejected at load time rather than blowing up
// route registration later.
func TestLoad_ReservedAdminRoute(t *testing.T) {
	for _, route := range []string{"healthz", "download"} {
		t.Run(route, func(t *testing.T) {
			clearRecognizedEnv(t)
			t.Setenv(EnvAdminRoute, route)

			_, err := Load(t.TempDir())
			require.Error(t, err)

			var cliErr *model.CLIError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, model.ExitConfigError, cliErr.Code)
			assert.Contains(t, cliErr.Message, "reserved")
		})
	}
}

// TestLoad_DirOverridesFromEnv verifies FILES_DIR / STATE_DIR are applied
// and relative values resolve against the working directory.
func TestLoad_DirOverridesFromEnv(t *testing.T) {
	clearRecognizedEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvFilesDir, "shared")
	t.Setenv(EnvStateDir, filepath.Join(dir, "var"))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "shared"), cfg.FilesDir)
	assert.Equal(t, filepath.Join(dir, "var"), cfg.StateDir, "absolute paths pass through untouched")
}

// TestGenerateAdminRoute verifies format and that consecutive tokens differ.
func TestGenerateAdminRoute(t *testing.T) {
	first, err := GenerateAdminRoute()
	require.NoError(t, err)
	second, err := GenerateAdminRoute()
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{16}$`), first)
	assert.NotEqual(t, first, second, "two generated routes should not collide")
}
