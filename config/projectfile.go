// Project file support: .fluentkit.yaml or .fluentkit.toml.
//
// When a project file exists in the project root, fluentkit takes the
// localization directory, the default language and the list of generated
// bindings from it:
//
//	dir: localizations
//	default_lang: en_US
//	targets:
//	  - name: app
//	    output: internal/l10n/localizer_gen.go
//	    package: l10n
//	    type: Localizer

package config

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// ProjectFile is the top-level project file structure.
type ProjectFile struct {
	// Dir is the localization root relative to the project root (default "localizations").
	Dir string `yaml:"dir,omitempty" toml:"dir"`
	// DefaultLang is the default language directory name (default "en_US").
	DefaultLang string `yaml:"default_lang,omitempty" toml:"default_lang"`
	// Targets are the bindings files to generate.
	Targets []Target `yaml:"targets" toml:"targets"`

	// path is the file the project was loaded from.
	path string
}

// Target describes one generated bindings file.
type Target struct {
	// Name is a human-readable label shown in status/logs.
	Name string `yaml:"name" toml:"name"`
	// Output is the generated file relative to the project root.
	Output string `yaml:"output" toml:"output"`
	// Package is the package clause of the generated file
	// (default: the output directory name, or "l10n").
	Package string `yaml:"package,omitempty" toml:"package"`
	// Type is the generated type name (default "Localizer").
	Type string `yaml:"type,omitempty" toml:"type"`
}

const (
	// FileName is the YAML project file name.
	FileName = ".fluentkit.yaml"
	// TOMLFileName is the TOML project file name.
	TOMLFileName = ".fluentkit.toml"

	// DefaultDir is the localization root used when nothing else is configured.
	DefaultDir = "localizations"
	// DefaultLang is the default language used when nothing else is configured.
	DefaultLang = "en_US"
	// DefaultPackage is the package used for generated files outside a named directory.
	DefaultPackage = "l10n"
	// DefaultType is the default generated type name.
	DefaultType = "Localizer"
)

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// LoadProjectFile loads and validates the project file of rootDir.
// Returns nil if neither .fluentkit.yaml nor .fluentkit.toml exists.
func LoadProjectFile(rootDir string) (*ProjectFile, error) {
	yamlPath := filepath.Join(rootDir, FileName)
	tomlPath := filepath.Join(rootDir, TOMLFileName)

	yamlData, yamlErr := readOptional(yamlPath)
	if yamlErr != nil {
		return nil, yamlErr
	}
	tomlData, tomlErr := readOptional(tomlPath)
	if tomlErr != nil {
		return nil, tomlErr
	}

	var (
		pf   ProjectFile
		path string
	)
	switch {
	case yamlData != nil && tomlData != nil:
		return nil, fmt.Errorf("both %s and %s exist in %s, keep one", FileName, TOMLFileName, rootDir)
	case yamlData != nil:
		path = yamlPath
		if err := decodeYAML(yamlData, &pf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case tomlData != nil:
		path = tomlPath
		if err := decodeTOML(tomlData, &pf); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, nil
	}
	pf.path = path

	if err := pf.applyDefaults(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &pf, nil
}

// Path returns the file the project was loaded from.
func (pf *ProjectFile) Path() string {
	return pf.path
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// decodeYAML rejects keys that are not part of the schema.
func decodeYAML(data []byte, pf *ProjectFile) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(pf); err != nil && !errors.Is(err, io.EOF) {
		if strings.Contains(err.Error(), "not found in type") {
			return fmt.Errorf("unsupported key: %w", err)
		}
		return err
	}
	return nil
}

func decodeTOML(data []byte, pf *ProjectFile) error {
	md, err := toml.Decode(string(data), pf)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unsupported key: %s", strings.Join(keys, ", "))
	}
	return nil
}

// applyDefaults fills in defaults and validates targets.
func (pf *ProjectFile) applyDefaults() error {
	if pf.Dir == "" {
		pf.Dir = DefaultDir
	}
	if pf.DefaultLang == "" {
		pf.DefaultLang = DefaultLang
	}

	outputs := make(map[string]string)
	for i := range pf.Targets {
		t := &pf.Targets[i]

		if t.Name == "" {
			return fmt.Errorf("target #%d has no name", i+1)
		}
		if t.Output == "" {
			return fmt.Errorf("target %q requires \"output\"", t.Name)
		}
		if filepath.Ext(t.Output) != ".go" {
			return fmt.Errorf("target %q: output %q must be a .go file", t.Name, t.Output)
		}
		clean := filepath.Clean(t.Output)
		if prev, ok := outputs[clean]; ok {
			return fmt.Errorf("targets %q and %q write the same output %s", prev, t.Name, t.Output)
		}
		outputs[clean] = t.Name

		if t.Package == "" {
			t.Package = PackageFor(t.Output)
		}
		if t.Type == "" {
			t.Type = DefaultType
		}
		if !token.IsIdentifier(t.Package) {
			return fmt.Errorf("target %q: invalid package name %q", t.Name, t.Package)
		}
		if !token.IsIdentifier(t.Type) || !token.IsExported(t.Type) {
			return fmt.Errorf("target %q: type %q must be an exported identifier", t.Name, t.Type)
		}
	}
	return nil
}

// PackageFor derives a package name from the directory of a generated file.
func PackageFor(output string) string {
	dir := filepath.Base(filepath.Dir(filepath.Clean(output)))
	name := strings.ToLower(strings.NewReplacer("-", "", ".", "", "_", "").Replace(dir))
	if !token.IsIdentifier(name) || token.IsKeyword(name) {
		return DefaultPackage
	}
	return name
}
