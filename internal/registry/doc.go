// Package registry tracks the files in the shared directory and their
// publication state.
//
// Every regular, non-hidden file in the shared directory has an entry.
// New files start unpublished so nothing leaks to the LAN before an admin
// opts in. Publication state survives restarts via a YAML state file
// written atomically on every mutation.
//
// A fsnotify watcher keeps the registry in sync with the directory, so
// HTTP handlers read from an in-memory snapshot instead of scanning the
// filesystem per request. All access is guarded by a RWMutex; the watcher
// goroutine and concurrent HTTP handlers share one Registry.
package registry
