// Package lockfile implements .fluentkit.lock, a lock file that tracks
// MD5 checksums of the default-language resource files each generated
// bindings file was built from. This makes regeneration incremental:
// outputs whose sources are unchanged are skipped, and `generate --check`
// can tell a build that its bindings are stale.
//
// The lock file is stored alongside .fluentkit.yaml:
//
//	version: 1
//	checksums:
//	  internal/l10n/localizer_gen.go:
//	    '@options': 5d41402abc4b2a76b9719d911017c592
//	    base.ftl: 7d793037a0760186574b0282f2f435e7
package lockfile

import (
	"crypto/md5"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/fluentkit/ftl"
)

// LockFileName is the default lock file name.
const LockFileName = ".fluentkit.lock"

// Version is the lock file format version.
const Version = 1

// OptionsKey records the generator options of a target next to its files,
// so changing the package or type name also regenerates.
const OptionsKey = "@options"

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// LockFile represents the .fluentkit.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // output -> file -> md5

	mu   sync.Mutex `yaml:"-"`
	path string     `yaml:"-"`
}

// ---------------------------------------------------------------------------
// Loading and saving
// ---------------------------------------------------------------------------

// Load reads a lock file from the given directory.
// Returns an empty lock file if the file doesn't exist.
func Load(dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		path:      path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	lf.path = path

	if lf.Version > Version {
		return nil, fmt.Errorf("%s: unsupported lock file version %d", path, lf.Version)
	}
	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file to disk.
func (lf *LockFile) Save() error {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.path == "" {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := os.WriteFile(lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// ---------------------------------------------------------------------------
// Sources
// ---------------------------------------------------------------------------

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// TargetKey builds the key of a generated file: its path relative to the
// project root, with forward slashes.
func TargetKey(root, output string) string {
	if rel, err := filepath.Rel(root, output); err == nil && !strings.HasPrefix(rel, "..") {
		output = rel
	}
	return filepath.ToSlash(output)
}

// Snapshot reads every resource file directly inside dir.
// Returns a map of file name -> content.
func Snapshot(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	files := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ftl.FileExtension {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		files[e.Name()] = string(data)
	}
	return files, nil
}

// ---------------------------------------------------------------------------
// Checksum operations
// ---------------------------------------------------------------------------

// Stale reports whether files differ from what was recorded for target:
// a file was added, removed or edited, or target was never generated.
func (lf *LockFile) Stale(target string, files map[string]string) bool {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	existing, ok := lf.Checksums[target]
	if !ok || len(existing) != len(files) {
		return true
	}
	for key, content := range files {
		if existing[key] != Hash(content) {
			return true
		}
	}
	return false
}

// FilterChanged returns only the files whose content has changed since
// the last generation. The input is a map of file -> content.
func (lf *LockFile) FilterChanged(target string, files map[string]string) map[string]string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	existing := lf.Checksums[target]
	changed := make(map[string]string)

	for key, content := range files {
		hash := Hash(content)
		if existing == nil || existing[key] != hash {
			changed[key] = content
		}
	}

	return changed
}

// UpdateBatch records checksums for multiple files at once.
func (lf *LockFile) UpdateBatch(target string, files map[string]string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	if lf.Checksums[target] == nil {
		lf.Checksums[target] = make(map[string]string)
	}
	for key, content := range files {
		lf.Checksums[target][key] = Hash(content)
	}
}

// Replace records files as the complete source set of target, forgetting
// files recorded earlier.
func (lf *LockFile) Replace(target string, files map[string]string) {
	lf.RemoveTarget(target)
	lf.UpdateBatch(target, files)
}

// RemoveTarget removes all checksums for a target.
func (lf *LockFile) RemoveTarget(target string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()
	delete(lf.Checksums, target)
}

// Prune removes every target not listed in keep. This prevents entries of
// deleted outputs from accumulating.
func (lf *LockFile) Prune(keep []string) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	valid := make(map[string]bool, len(keep))
	for _, k := range keep {
		valid[k] = true
	}
	for t := range lf.Checksums {
		if !valid[t] {
			delete(lf.Checksums, t)
		}
	}
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

// Stats returns the number of targets and total files in the lock file.
func (lf *LockFile) Stats() (targets, files int) {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	targets = len(lf.Checksums)
	for _, m := range lf.Checksums {
		for k := range m {
			if k != OptionsKey {
				files++
			}
		}
	}
	return
}

// Targets returns sorted list of target keys.
func (lf *LockFile) Targets() []string {
	lf.mu.Lock()
	defer lf.mu.Unlock()

	targets := make([]string, 0, len(lf.Checksums))
	for t := range lf.Checksums {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// ---------------------------------------------------------------------------
// Human-readable summary
// ---------------------------------------------------------------------------

// Summary returns a human-readable summary string.
func (lf *LockFile) Summary() string {
	targets, files := lf.Stats()
	if targets == 0 {
		return "empty"
	}

	var parts []string
	for _, t := range lf.Targets() {
		n := len(lf.Checksums[t])
		if _, ok := lf.Checksums[t][OptionsKey]; ok {
			n--
		}
		parts = append(parts, fmt.Sprintf("%s: %d files", t, n))
	}
	return fmt.Sprintf("%d targets, %d files (%s)", targets, files, strings.Join(parts, ", "))
}
