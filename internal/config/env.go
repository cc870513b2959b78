package config

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"

	"acfileserver/internal/model"
)

// Default values applied before any settings file or environment variable
// is consulted. The credential defaults mirror the documented fallback
// behavior: a fresh install is reachable as admin/password until the
// operator writes real credentials into .env.
const (
	DefaultPort          = 5000
	DefaultFilesDir      = "files"
	DefaultStateDir      = "data"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "password"
	DefaultPageTitle     = "Shared Files"

	// EnvFileName is the active environment file read at startup.
	EnvFileName = ".env"

	// EnvTemplateName is the template the setup command copies from.
	EnvTemplateName = ".env.example"

	// adminRouteLength is the number of characters in a generated admin
	// route token.
	adminRouteLength = 16
)

// Environment variable names recognized in .env and the process environment.
const (
	EnvAdminUsername = "ADMIN_USERNAME"
	EnvAdminPassword = "ADMIN_PASSWORD"
	EnvAdminRoute    = "ADMIN_ROUTE"
	EnvFilesDir      = "FILES_DIR"
	EnvStateDir      = "STATE_DIR"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	// FilesDir is the directory whose regular files are shared.
	FilesDir string

	// StateDir holds persistent state (the publication registry file).
	StateDir string

	// Host is the listen address. Empty means all interfaces, which is
	// the normal mode for a LAN server.
	Host string

	// AdminUsername and AdminPassword guard the admin panel via HTTP
	// Basic auth.
	AdminUsername string
	AdminPassword string

	// AdminRoute is the URL path segment of the admin panel, without a
	// leading slash.
	AdminRoute string

	// AdminRouteGenerated is true when AdminRoute was generated for this
	// process rather than configured. A generated route changes on every
	// restart.
	AdminRouteGenerated bool

	// ShowQR controls whether the serve command renders a terminal QR
	// code of the public URL.
	ShowQR bool

	// PageTitle is the heading of the public index page.
	PageTitle string
}

// adminRouteRegex restricts configured admin routes to URL-path-safe
// characters. A route with slashes or percent escapes would silently
// produce an unreachable panel.
var adminRouteRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// reservedRoutes are the top-level path segments the server claims for
// itself. An admin route with one of these names would clash with gin's
// route table at startup, so it is rejected up front.
var reservedRoutes = map[string]bool{
	"healthz":  true,
	"download": true,
}

// Load assembles the configuration for a working directory.
//
// Order of operations:
//  1. Start from defaults.
//  2. Apply the optional settings file (acfileserver.jsonc) in dir.
//  3. Load dir/.env into the process environment (existing variables win).
//  4. Apply recognized environment variables.
//  5. Generate an admin route if none was configured.
//
// Relative directory values are resolved against dir so the server behaves
// the same regardless of the invocation directory.
func Load(dir string) (*Config, error) {
	cfg := &Config{
		FilesDir:      DefaultFilesDir,
		StateDir:      DefaultStateDir,
		AdminUsername: DefaultAdminUsername,
		AdminPassword: DefaultAdminPassword,
		ShowQR:        true,
		PageTitle:     DefaultPageTitle,
	}

	settings, err := LoadSettings(filepath.Join(dir, SettingsFileName))
	if err != nil {
		return nil, err // LoadSettings already returns a CLIError
	}
	settings.apply(cfg)

	// godotenv.Load never overrides variables that are already set in the
	// process environment, so `ADMIN_PASSWORD=... acfileserver serve`
	// beats the .env file. A missing .env is not an error.
	envPath := filepath.Join(dir, EnvFileName)
	if _, statErr := os.Stat(envPath); statErr == nil {
		if loadErr := godotenv.Load(envPath); loadErr != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to load %s", envPath), loadErr)
		}
	}

	if v := os.Getenv(EnvAdminUsername); v != "" {
		cfg.AdminUsername = v
	}
	if v := os.Getenv(EnvAdminPassword); v != "" {
		cfg.AdminPassword = v
	}
	if v := os.Getenv(EnvFilesDir); v != "" {
		cfg.FilesDir = v
	}
	if v := os.Getenv(EnvStateDir); v != "" {
		cfg.StateDir = v
	}

	if v := os.Getenv(EnvAdminRoute); v != "" {
		if !adminRouteRegex.MatchString(v) {
			return nil, model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid %s %q: only letters, digits, '-' and '_' are allowed", EnvAdminRoute, v))
		}
		if reservedRoutes[v] {
			return nil, model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid %s %q: the path is reserved by the server", EnvAdminRoute, v))
		}
		cfg.AdminRoute = v
	} else {
		route, genErr := GenerateAdminRoute()
		if genErr != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				"failed to generate admin route", genErr)
		}
		cfg.AdminRoute = route
		cfg.AdminRouteGenerated = true
	}

	// Resolve relative paths against the working directory.
	if !filepath.IsAbs(cfg.FilesDir) {
		cfg.FilesDir = filepath.Join(dir, cfg.FilesDir)
	}
	if !filepath.IsAbs(cfg.StateDir) {
		cfg.StateDir = filepath.Join(dir, cfg.StateDir)
	}

	return cfg, nil
}

// adminRouteAlphabet is the character set for generated admin routes,
// matching the alphanumeric token format operators expect to see in the
// panel URL.
const adminRouteAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateAdminRoute returns a cryptographically random 16-character
// alphanumeric token. crypto/rand is used rather than math/rand because
// the route is the only thing hiding the admin panel from the LAN.
func GenerateAdminRoute() (string, error) {
	alphabetLen := big.NewInt(int64(len(adminRouteAlphabet)))
	buf := make([]byte, adminRouteLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		buf[i] = adminRouteAlphabet[n.Int64()]
	}
	return string(buf), nil
}
