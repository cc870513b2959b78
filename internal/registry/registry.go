package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"acfileserver/internal/model"
)

// StateFileName is the publication state file kept under the state
// directory.
const StateFileName = "publications.yml"

// ErrUnknownFile is returned when an operation names a file the registry
// does not track. Callers translate it into a 404 or ExitFileNotFound.
var ErrUnknownFile = errors.New("unknown file")

// entry is the internal per-file record. FileEntry snapshots are built
// from it on demand.
type entry struct {
	published bool
	size      int64
	modTime   time.Time
}

// stateFile is the on-disk YAML structure. Only the published set is
// persisted; sizes and modification times are rescanned on load, and an
// unpublished entry carries no information beyond the file's existence.
type stateFile struct {
	// Published lists the names of published files, sorted for stable
	// diffs when the file is kept under version control.
	Published []string `yaml:"published"`
}

// Registry holds the publication state for one shared directory.
type Registry struct {
	mu sync.RWMutex

	filesDir  string
	statePath string
	entries   map[string]*entry

	log *zap.Logger
}

// New creates a Registry for filesDir, restoring publication state from
// stateDir if a state file exists, then performing an initial scan.
//
// The state directory is created if absent. Published names whose file no
// longer exists are dropped during the initial scan, so publication never
// outlives the file it refers to.
func New(filesDir, stateDir string, log *zap.Logger) (*Registry, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory %s: %w", stateDir, err)
	}

	r := &Registry{
		filesDir:  filesDir,
		statePath: filepath.Join(stateDir, StateFileName),
		entries:   make(map[string]*entry),
		log:       log,
	}

	published, err := r.loadState()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.refreshLocked(published); err != nil {
		return nil, err
	}
	return r, nil
}

// FilesDir returns the shared directory this registry scans.
func (r *Registry) FilesDir() string {
	return r.filesDir
}

// loadState reads the persisted published set. A missing or empty state
// file yields an empty set; a corrupted file is an error rather than a
// silent reset, because resetting would unpublish everything.
func (r *Registry) loadState() (map[string]bool, error) {
	data, err := os.ReadFile(r.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("reading state file %s: %w", r.statePath, err)
	}

	var sf stateFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", r.statePath, err)
	}

	published := make(map[string]bool, len(sf.Published))
	for _, name := range sf.Published {
		published[name] = true
	}
	return published, nil
}

// Refresh rescans the shared directory. New files enter as unpublished,
// entries whose file disappeared are dropped, and sizes/mod times are
// updated in place. The state file is rewritten only when the published
// set actually changed (a published file vanished).
func (r *Registry) Refresh() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refreshLocked(nil)
}

// refreshLocked performs the scan with r.mu held. When restore is non-nil
// it seeds publication state for names not yet tracked (used by New to
// apply the persisted set).
func (r *Registry) refreshLocked(restore map[string]bool) error {
	dirEntries, err := os.ReadDir(r.filesDir)
	if err != nil {
		return fmt.Errorf("reading shared directory %s: %w", r.filesDir, err)
	}

	seen := make(map[string]bool, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		// Directories, sockets etc. are never shared; dot-files are
		// skipped so .env-style droppings can't be published.
		if !de.Type().IsRegular() || strings.HasPrefix(name, ".") {
			continue
		}
		info, infoErr := de.Info()
		if infoErr != nil {
			// The file disappeared mid-scan; the next refresh settles it.
			continue
		}
		seen[name] = true

		if existing, ok := r.entries[name]; ok {
			existing.size = info.Size()
			existing.modTime = info.ModTime()
			continue
		}
		r.entries[name] = &entry{
			published: restore[name],
			size:      info.Size(),
			modTime:   info.ModTime(),
		}
	}

	publishedChanged := false
	for name, e := range r.entries {
		if !seen[name] {
			if e.published {
				publishedChanged = true
			}
			delete(r.entries, name)
		}
	}

	if publishedChanged || restore != nil {
		if err := r.persistLocked(); err != nil {
			return err
		}
	}
	return nil
}

// persistLocked writes the published set atomically (temp file + rename)
// so a crash mid-write never leaves a truncated state file.
func (r *Registry) persistLocked() error {
	var sf stateFile
	for name, e := range r.entries {
		if e.published {
			sf.Published = append(sf.Published, name)
		}
	}
	sort.Strings(sf.Published)

	data, err := yaml.Marshal(&sf)
	if err != nil {
		return fmt.Errorf("encoding state file: %w", err)
	}

	tmp := r.statePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := os.Rename(tmp, r.statePath); err != nil {
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// SetPublished sets the publication state of a single file.
// Returns ErrUnknownFile (wrapped with the name) for untracked names.
func (r *Registry) SetPublished(name string, published bool) error {
	if err := model.ValidateFileName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFile, name)
	}
	if e.published == published {
		return nil
	}
	e.published = published
	r.log.Info("publication changed",
		zap.String("file", name),
		zap.Bool("published", published))
	return r.persistLocked()
}

// Apply replaces the publication state of every tracked file at once:
// a file is published iff published[name] is true. This matches the admin
// form semantics where an unchecked box arrives as an absent field.
func (r *Registry) Apply(published map[string]bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := false
	for name, e := range r.entries {
		want := published[name]
		if e.published != want {
			e.published = want
			changed = true
		}
	}
	if !changed {
		return nil
	}
	r.log.Info("publication state replaced", zap.Int("published", countTrue(published)))
	return r.persistLocked()
}

func countTrue(m map[string]bool) int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// IsPublished reports whether name is tracked and published.
func (r *Registry) IsPublished(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return ok && e.published
}

// Has reports whether name is tracked at all.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// List returns a snapshot of all tracked files sorted by name.
func (r *Registry) List() []model.FileEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(false)
}

// Published returns a snapshot of the published files sorted by name.
func (r *Registry) Published() []model.FileEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(true)
}

// snapshotLocked builds sorted FileEntry values with r.mu held (read or
// write). publishedOnly filters to the public subset.
func (r *Registry) snapshotLocked(publishedOnly bool) []model.FileEntry {
	out := make([]model.FileEntry, 0, len(r.entries))
	for name, e := range r.entries {
		if publishedOnly && !e.published {
			continue
		}
		out = append(out, model.FileEntry{
			Name:      name,
			Published: e.published,
			Size:      e.size,
			ModTime:   e.modTime,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Path resolves a tracked file name to its absolute path under the shared
// directory. The name is validated again here so no caller can bypass the
// traversal checks on the way to the filesystem.
func (r *Registry) Path(name string) (string, error) {
	if err := model.ValidateFileName(name); err != nil {
		return "", err
	}
	if !r.Has(name) {
		return "", fmt.Errorf("%w: %s", ErrUnknownFile, name)
	}
	return filepath.Join(r.filesDir, name), nil
}
