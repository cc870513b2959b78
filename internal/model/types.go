// Package model defines the domain types for acfileserver.
//
// These types are used throughout the application for passing data between
// the registry, the HTTP server, and the CLI output layer.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FileEntry is a snapshot of a single file in the shared directory together
// with its publication state. Entries are produced by the registry; the
// size and modification time reflect the last directory scan, not a live
// stat call.
type FileEntry struct {
	// Name is the bare file name (no directory components).
	Name string `json:"name"`

	// Published reports whether the file is visible to and downloadable
	// by unauthenticated visitors. New files always start unpublished.
	Published bool `json:"published"`

	// Size is the file size in bytes at the last scan.
	Size int64 `json:"size"`

	// ModTime is the file modification time at the last scan.
	ModTime time.Time `json:"modTime"`
}

// HumanSize renders the file size for humans ("512 B", "3.4 MB").
// Shared files are usually megabytes, so one decimal is plenty.
func (f FileEntry) HumanSize() string {
	const unit = 1024
	if f.Size < unit {
		return fmt.Sprintf("%d B", f.Size)
	}
	div, exp := int64(unit), 0
	for m := f.Size / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(f.Size)/float64(div), "KMGTPE"[exp])
}

// ServerInfo describes a running (or about to run) server instance.
// It is what the serve command prints and logs at startup.
type ServerInfo struct {
	// URL is the public base URL, e.g. "http://192.168.1.20:5000".
	URL string `json:"url"`

	// AdminURL is the full admin panel URL including the secret route.
	// It is only disclosed on the server's own console.
	AdminURL string `json:"adminUrl"`

	// LocalIP is the LAN IPv4 address the URLs are built from.
	LocalIP string `json:"localIp"`

	// Port is the TCP port the server listens on.
	Port int `json:"port"`

	// FilesDir is the absolute path of the shared directory.
	FilesDir string `json:"filesDir"`
}

// fileNameRegex accepts bare file names: no path separators, no leading
// dot, at least one character. Interior dots are fine ("report.v2.pdf").
var fileNameRegex = regexp.MustCompile(`^[^/\\]+$`)

// ValidateFileName checks that name is a bare file name safe to join under
// the shared directory. It rejects empty names, path separators, the "."
// and ".." components, and dot-files (which the registry never tracks).
//
// Every inbound file name (URL parameter, form field, or CLI argument)
// must pass through this check before it is used to build a path.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("file name must not be empty")
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q", name)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("invalid file name %q: hidden files are not served", name)
	}
	if !fileNameRegex.MatchString(name) {
		return fmt.Errorf("invalid file name %q: must not contain path separators", name)
	}
	return nil
}

// ExitCode defines the CLI exit codes. These codes allow scripts and CI
// systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the configuration (settings file or
	// environment file) could not be loaded or is invalid.
	ExitConfigError ExitCode = 2

	// ExitSetupFailed indicates provisioning failed and any freshly
	// created artifacts were rolled back.
	ExitSetupFailed ExitCode = 3

	// ExitPortUnavailable indicates the requested listen port is invalid
	// or already in use and no alternative was requested.
	ExitPortUnavailable ExitCode = 4

	// ExitFileNotFound indicates the named file is not known to the
	// registry.
	ExitFileNotFound ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
