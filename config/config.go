// Package config resolves the settings of a fluentkit run from flags, the
// environment, the project file and auto-detection, in that order of
// precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/minios-linux/fluentkit/ftl"
)

// Env holds the environment overrides shared with the runtime loader.
type Env struct {
	Dir         string `env:"TRANSLATION_DIR"`
	DefaultLang string `env:"DEFAULT_LANG"`
}

// Overrides are explicit command-line values. Empty fields are unset.
type Overrides struct {
	Dir         string
	DefaultLang string
}

// Settings is the effective configuration of one run.
type Settings struct {
	// Root is the absolute project root.
	Root string
	// Dir is the absolute localization root.
	Dir string
	// DefaultLang is the default language directory name.
	DefaultLang string
	// Targets come from the project file; outputs are relative to Root.
	Targets []Target
	// ProjectFile is the project file used, "" when none exists.
	ProjectFile string
	// Detected is true when Dir was found by scanning the project.
	Detected bool
}

// Load resolves settings for rootDir. Precedence: flags, environment,
// project file, auto-detection, defaults.
func Load(rootDir string, flags Overrides) (*Settings, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}

	pf, err := LoadProjectFile(absRoot)
	if err != nil {
		return nil, err
	}

	var e Env
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	s := &Settings{Root: absRoot, DefaultLang: DefaultLang}
	dir := ""
	if pf != nil {
		dir = pf.Dir
		s.DefaultLang = pf.DefaultLang
		s.Targets = pf.Targets
		s.ProjectFile = pf.Path()
	}
	if e.Dir != "" {
		dir = e.Dir
	}
	if e.DefaultLang != "" {
		s.DefaultLang = e.DefaultLang
	}
	if flags.Dir != "" {
		dir = flags.Dir
	}
	if flags.DefaultLang != "" {
		s.DefaultLang = flags.DefaultLang
	}

	if dir == "" {
		if detected := DetectDir(absRoot); detected != "" {
			dir = detected
			s.Detected = true
		} else {
			dir = DefaultDir
		}
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(absRoot, dir)
	}
	s.Dir = dir
	return s, nil
}

// OutputPath returns the absolute path of a target's output.
func (s *Settings) OutputPath(t Target) string {
	if filepath.IsAbs(t.Output) {
		return t.Output
	}
	return filepath.Join(s.Root, t.Output)
}

// ---------------------------------------------------------------------------
// Auto-detection
// ---------------------------------------------------------------------------

// candidateDirs are the localization roots probed when nothing is configured.
var candidateDirs = []string{
	"localizations",
	"locales",
	"i18n",
	"l10n",
	filepath.Join("assets", "localizations"),
	filepath.Join("resources", "localizations"),
}

// DetectDir returns the first candidate directory under rootDir that holds
// at least one language directory with .ftl files, relative to rootDir.
func DetectDir(rootDir string) string {
	for _, c := range candidateDirs {
		if len(DetectLanguages(filepath.Join(rootDir, c))) > 0 {
			return c
		}
	}
	return ""
}

// DetectLanguages lists the subdirectories of dir that contain .ftl files,
// sorted. The alias directory "default" is included.
func DetectLanguages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var langs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if hasResources(filepath.Join(dir, entry.Name())) {
			langs = append(langs, entry.Name())
		}
	}
	sort.Strings(langs)
	return langs
}

func hasResources(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ftl.FileExtension) {
			return true
		}
	}
	return false
}
