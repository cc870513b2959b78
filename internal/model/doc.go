// Package model defines the domain types and value objects for the
// acfileserver CLI and HTTP server.
//
// This package contains pure data structures with no external dependencies.
// FileEntry values are transient snapshots produced by the registry; the
// only persistent state is the publication map the registry writes to disk.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
