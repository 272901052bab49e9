// Package bundle indexes the Fluent resources of one language directory.
//
// Layout: every immediate *.ftl file of the directory is one resource, named
// after the file without its extension. Entries are merged into a single
// namespace under the qualified id <resource>_<key>:
//
//	localizations/en_US/base.ftl      name = English      -> base_name
//	localizations/en_US/settings.ftl  title = Settings    -> settings_title
//
// Terms (-key) get the same qualified ids in a separate namespace.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/fluentkit/ftl"
)

// QualifiedID joins a resource name and an entry key.
func QualifiedID(resource, key string) string {
	return resource + "_" + key
}

// ---------------------------------------------------------------------------
// Types
// ---------------------------------------------------------------------------

// Message is one entry of a bundle.
type Message struct {
	ID       string
	Resource string
	Key      string
	Term     bool
	Entry    *ftl.Entry
	// Path is the file the entry was read from.
	Path string
}

// Value returns the message's main pattern, nil for attribute-only messages.
func (m *Message) Value() *ftl.Pattern {
	return m.Entry.Value
}

// Attribute returns the pattern of the named attribute, or nil.
func (m *Message) Attribute(name string) *ftl.Pattern {
	if a := m.Entry.Attribute(name); a != nil {
		return a.Value
	}
	return nil
}

// Location returns path:line of the entry.
func (m *Message) Location() string {
	return fmt.Sprintf("%s:%d", m.Path, m.Entry.Line)
}

// Resource is one parsed .ftl file.
type Resource struct {
	Name     string
	Path     string
	Resource *ftl.Resource
}

// Bundle is the merged content of one language directory. It is not
// modified after New returns.
type Bundle struct {
	language  string
	dir       string
	resources []*Resource

	messages map[string]*Message
	terms    map[string]*Message
	// declaration order: resources by name, entries as written
	messageOrder []*Message
	termOrder    []*Message
}

// DuplicateKeyError is returned when two entries of one language map to the
// same qualified id.
type DuplicateKeyError struct {
	Language string
	ID       string
	First    string
	Second   string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate id %s in language %s: defined at %s and %s", e.ID, e.Language, e.First, e.Second)
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

type options struct {
	logger *zap.Logger
}

// Option configures resource loading.
type Option func(*options)

// WithLogger sets the logger used for debug output. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// LoadResources parses every immediate .ftl file of dir. Files are parsed
// concurrently; the result is sorted by file name. The first parse error
// aborts the whole directory.
func LoadResources(dir string, opts ...Option) ([]*Resource, error) {
	o := buildOptions(opts)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	// os.ReadDir returns entries sorted by file name.
	var paths []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			o.logger.Debug("skipping subdirectory", zap.String("path", path))
			continue
		}
		if filepath.Ext(e.Name()) != ftl.FileExtension {
			o.logger.Debug("skipping non-resource file", zap.String("path", path))
			continue
		}
		paths = append(paths, path)
	}

	resources := make([]*Resource, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			res, err := ftl.ParseFile(path)
			if err != nil {
				return err
			}
			resources[i] = &Resource{
				Name:     strings.TrimSuffix(filepath.Base(path), ftl.FileExtension),
				Path:     path,
				Resource: res,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.logger.Debug("loaded resources", zap.String("dir", dir), zap.Int("files", len(resources)))
	return resources, nil
}

// New merges resources into a bundle for language. resources must be sorted
// by name, as returned by LoadResources.
func New(language, dir string, resources []*Resource) (*Bundle, error) {
	b := &Bundle{
		language:  language,
		dir:       dir,
		resources: resources,
		messages:  make(map[string]*Message),
		terms:     make(map[string]*Message),
	}

	for _, r := range resources {
		for _, e := range r.Resource.Entries {
			msg := &Message{
				ID:       QualifiedID(r.Name, e.ID),
				Resource: r.Name,
				Key:      e.ID,
				Term:     e.Term,
				Entry:    e,
				Path:     r.Path,
			}

			ns := b.messages
			if e.Term {
				ns = b.terms
			}
			if prev, ok := ns[msg.ID]; ok {
				id := msg.ID
				if e.Term {
					id = "-" + id
				}
				return nil, &DuplicateKeyError{
					Language: language,
					ID:       id,
					First:    prev.Location(),
					Second:   msg.Location(),
				}
			}
			ns[msg.ID] = msg

			if e.Term {
				b.termOrder = append(b.termOrder, msg)
			} else {
				b.messageOrder = append(b.messageOrder, msg)
			}
		}
	}
	return b, nil
}

// LoadDir loads and merges every resource of dir.
func LoadDir(language, dir string, opts ...Option) (*Bundle, error) {
	resources, err := LoadResources(dir, opts...)
	if err != nil {
		return nil, err
	}
	return New(language, dir, resources)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Language returns the language the bundle was built for.
func (b *Bundle) Language() string { return b.language }

// Dir returns the directory the bundle was loaded from.
func (b *Bundle) Dir() string { return b.dir }

// Resources returns the parsed files, sorted by name.
func (b *Bundle) Resources() []*Resource { return b.resources }

// Message returns the message with the given qualified id.
func (b *Bundle) Message(id string) (*Message, bool) {
	m, ok := b.messages[id]
	return m, ok
}

// Term returns the term with the given qualified id (without the leading '-').
func (b *Bundle) Term(id string) (*Message, bool) {
	m, ok := b.terms[id]
	return m, ok
}

// Has reports whether the bundle defines the qualified id. Ids starting
// with '-' are looked up among terms.
func (b *Bundle) Has(id string) bool {
	if strings.HasPrefix(id, "-") {
		_, ok := b.terms[id[1:]]
		return ok
	}
	_, ok := b.messages[id]
	return ok
}

// Lookup resolves a reference written inside resource. The same-file id
// <resource>_<id> wins over id taken as an already qualified id.
func (b *Bundle) Lookup(resource, id string, term bool) (*Message, bool) {
	ns := b.messages
	if term {
		ns = b.terms
	}
	if m, ok := ns[QualifiedID(resource, id)]; ok {
		return m, true
	}
	m, ok := ns[id]
	return m, ok
}

// Messages returns all messages in declaration order.
func (b *Bundle) Messages() []*Message { return b.messageOrder }

// Terms returns all terms in declaration order.
func (b *Bundle) Terms() []*Message { return b.termOrder }

// Len returns the number of messages (terms excluded).
func (b *Bundle) Len() int { return len(b.messages) }
