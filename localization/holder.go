// Package localization loads per-language Fluent bundles and resolves
// messages with fallback to a default language.
//
// Layout:
//
//	localizations/
//	  default/      used for the default language if en_US/ is absent
//	  en_US/*.ftl
//	  fr_FR/*.ftl
//
// A Holder is built once by Load and is safe for concurrent use afterwards.
package localization

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/minios-linux/fluentkit/bundle"
)

// Args are the named arguments passed to a message.
type Args map[string]any

// Holder owns one bundle per loaded language.
type Holder struct {
	dir             string
	defaultLanguage string

	bundles   map[string]*bundle.Bundle
	languages []string
	failures  map[string]error

	tags     map[string]language.Tag
	printers map[string]*message.Printer
}

type candidate struct {
	name string
	path string
	tag  language.Tag
}

// Load builds a bundle for every language subdirectory of dir.
//
// A language that fails to load is logged and left out. Load fails with
// *MissingDefaultLanguageError when defaultLanguage has no bundle.
func Load(dir, defaultLanguage string, opts ...Option) (*Holder, error) {
	o := buildOptions(opts)
	log := o.logger.With(zap.String("dir", dir))

	candidates, err := discover(dir, defaultLanguage, log)
	if err != nil {
		return nil, err
	}

	type result struct {
		bundle *bundle.Bundle
		err    error
	}
	results := make([]result, len(candidates))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			b, err := bundle.LoadDir(c.name, c.path, bundle.WithLogger(o.logger))
			results[i] = result{bundle: b, err: err}
			return nil
		})
	}
	_ = g.Wait()

	h := &Holder{
		dir:             dir,
		defaultLanguage: defaultLanguage,
		bundles:         make(map[string]*bundle.Bundle),
		failures:        make(map[string]error),
		tags:            make(map[string]language.Tag),
		printers:        make(map[string]*message.Printer),
	}

	for i, c := range candidates {
		r := results[i]
		if r.err != nil {
			if c.name == defaultLanguage {
				return nil, &MissingDefaultLanguageError{Language: defaultLanguage, Dir: dir, Err: r.err}
			}
			log.Warn("language not loaded", zap.String("language", c.name), zap.Error(r.err))
			h.failures[c.name] = r.err
			continue
		}
		h.bundles[c.name] = r.bundle
		h.languages = append(h.languages, c.name)
		h.tags[c.name] = c.tag
		h.printers[c.name] = message.NewPrinter(c.tag)
		log.Debug("language loaded",
			zap.String("language", c.name),
			zap.String("path", c.path),
			zap.Int("messages", r.bundle.Len()))
	}

	if _, ok := h.bundles[defaultLanguage]; !ok {
		return nil, &MissingDefaultLanguageError{Language: defaultLanguage, Dir: dir}
	}
	sort.Strings(h.languages)
	return h, nil
}

// discover lists the language directories of dir. The alias directory is
// only used when the default language has no directory of its own.
func discover(dir, defaultLanguage string, log *zap.Logger) ([]candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading localization directory %s: %w", dir, err)
	}

	var (
		out      []candidate
		alias    string
		hasOwner bool
	)
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		// Stat follows symlinks, so a symlinked language directory counts.
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		if e.Name() == AliasDir {
			alias = path
			continue
		}
		tag, err := ParseTag(e.Name())
		if err != nil {
			log.Warn("skipping directory with invalid language name",
				zap.String("path", path), zap.Error(err))
			continue
		}
		if e.Name() == defaultLanguage {
			hasOwner = true
		}
		out = append(out, candidate{name: e.Name(), path: path, tag: tag})
	}

	if alias != "" {
		if hasOwner {
			log.Debug("alias directory ignored, default language has its own directory",
				zap.String("language", defaultLanguage))
			return out, nil
		}
		tag, err := ParseTag(defaultLanguage)
		if err != nil {
			return nil, &MissingDefaultLanguageError{Language: defaultLanguage, Dir: dir, Err: err}
		}
		out = append(out, candidate{name: defaultLanguage, path: alias, tag: tag})
	}
	return out, nil
}

// ParseTag parses a directory-style language name such as en_US.
func ParseTag(name string) (language.Tag, error) {
	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("invalid language %q: %w", name, err)
	}
	return tag, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Dir returns the root directory the holder was loaded from.
func (h *Holder) Dir() string { return h.dir }

// DefaultLanguage returns the designated default language.
func (h *Holder) DefaultLanguage() string { return h.defaultLanguage }

// Languages returns the loaded languages, sorted.
func (h *Holder) Languages() []string {
	return append([]string(nil), h.languages...)
}

// Bundle returns the bundle of a loaded language.
func (h *Holder) Bundle(lang string) (*bundle.Bundle, bool) {
	b, ok := h.bundles[lang]
	return b, ok
}

// DefaultBundle returns the default language's bundle. It is never nil.
func (h *Holder) DefaultBundle() *bundle.Bundle {
	return h.bundles[h.defaultLanguage]
}

// Tag returns the parsed tag of a loaded language, or language.Und.
func (h *Holder) Tag(lang string) language.Tag {
	if t, ok := h.tags[lang]; ok {
		return t
	}
	return language.Und
}

// Failures returns the load error of every language that was left out.
func (h *Holder) Failures() map[string]error {
	out := make(map[string]error, len(h.failures))
	for k, v := range h.failures {
		out[k] = v
	}
	return out
}

// ---------------------------------------------------------------------------
// Lookup
// ---------------------------------------------------------------------------

// Resolve returns the message of lang when lang is loaded and defines id,
// otherwise the default language's message.
func (h *Holder) Resolve(lang, id string) (*bundle.Message, error) {
	if b, ok := h.bundles[lang]; ok {
		if m, ok := b.Message(id); ok {
			return m, nil
		}
	}
	if m, ok := h.DefaultBundle().Message(id); ok {
		return m, nil
	}
	return nil, &MissingMessageError{Language: lang, ID: id}
}

// Missing returns the ids absent from the loaded default bundle, in the
// order given. Ids starting with '-' name terms.
func (h *Holder) Missing(ids []string) []string {
	var missing []string
	def := h.DefaultBundle()
	for _, id := range ids {
		if !def.Has(id) {
			missing = append(missing, id)
		}
	}
	return missing
}

// ValidateComplete checks every id against the loaded default bundle and
// reports all gaps at once.
func (h *Holder) ValidateComplete(ids []string) error {
	if missing := h.Missing(ids); len(missing) > 0 {
		return &IncompleteBundleError{Language: h.defaultLanguage, Missing: missing}
	}
	return nil
}

// Localize renders the value of message id for lang.
func (h *Holder) Localize(lang, id string, args Args) (string, error) {
	return h.localize(lang, id, "", args)
}

// LocalizeAttribute renders one attribute of message id for lang.
func (h *Holder) LocalizeAttribute(lang, id, attr string, args Args) (string, error) {
	return h.localize(lang, id, attr, args)
}

func (h *Holder) localize(lang, id, attr string, args Args) (string, error) {
	m, err := h.Resolve(lang, id)
	if err != nil {
		return "", err
	}

	r := h.newRenderer(lang)
	out, err := r.message(m, attr, args)
	if err != nil {
		return "", &RenderError{Language: r.language, ID: id, Err: err}
	}
	return out, nil
}

// renderLanguage is lang when it is loaded, else the default language.
func (h *Holder) renderLanguage(lang string) string {
	if _, ok := h.bundles[lang]; ok {
		return lang
	}
	return h.defaultLanguage
}
