// Package bindgen generates typed Go accessors for the messages of a
// default-language Fluent directory.
//
// Analysis reads only the default language. Every message with a value
// becomes one accessor; its parameters are the variables the message uses,
// including those of the messages it references:
//
//	base.ftl:   counter = count is at {$counter}
//	generated:  func (l *Localizer) BaseCounter(counter any) (string, error)
//
// The emitted file talks to the runtime through localization.Holder and
// the <file>_<key> id convention only.
package bindgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minios-linux/fluentkit/bundle"
	"github.com/minios-linux/fluentkit/ftl"
	"github.com/minios-linux/fluentkit/localization"
)

// Param is one accessor parameter.
type Param struct {
	// Name is the Fluent variable name without '$'.
	Name string
	// Ident is the Go parameter name.
	Ident string
}

// Descriptor describes one generated accessor.
type Descriptor struct {
	Name     string
	Method   string
	ID       string
	Resource string
	Key      string
	Params   []Param
	// Source is the first line of the message value, for doc comments.
	Source string
}

// Analysis is the result of analysing a default-language bundle.
type Analysis struct {
	Descriptors []Descriptor
	// Terms are the qualified term ids, each with a leading '-'.
	Terms []string
}

// IDs returns every id the generated bindings expect: message ids first,
// then term ids.
func (a *Analysis) IDs() []string {
	ids := make([]string, 0, len(a.Descriptors)+len(a.Terms))
	for _, d := range a.Descriptors {
		ids = append(ids, d.ID)
	}
	return append(ids, a.Terms...)
}

// DefaultDir returns the directory analysed for root: root/default, or
// root/<defaultLang> when there is no alias directory.
func DefaultDir(root, defaultLang string) string {
	alias := filepath.Join(root, localization.AliasDir)
	if info, err := os.Stat(alias); err == nil && info.IsDir() {
		return alias
	}
	return filepath.Join(root, defaultLang)
}

// AnalyzeDir loads the default-language directory of root and analyses it.
func AnalyzeDir(root, defaultLang string, opts ...bundle.Option) (*Analysis, error) {
	dir := DefaultDir(root, defaultLang)
	b, err := bundle.LoadDir(defaultLang, dir, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading default language: %w", err)
	}
	return Analyze(b)
}

// Analyze derives one descriptor per message with a value, in declaration
// order. Any error aborts the whole analysis.
func Analyze(b *bundle.Bundle) (*Analysis, error) {
	an := &analyzer{
		bundle: b,
		memo:   make(map[string][]string),
		active: make(map[string]bool),
	}

	out := &Analysis{}
	methods := make(map[string]string)

	for _, m := range b.Messages() {
		vars, err := an.entryVariables(m)
		if err != nil {
			return nil, err
		}
		// Attribute-only messages are checked but get no accessor; their
		// attributes render through Holder.LocalizeAttribute.
		if m.Value() == nil {
			continue
		}

		name := AccessorName(m.Resource, m.Key)
		method := MethodName(name)
		if reason := checkMethod(method); reason != "" {
			return nil, &InvalidIdentifierError{ID: m.ID, Identifier: method, Reason: reason}
		}
		if prev, ok := methods[method]; ok {
			return nil, &DuplicateAccessorError{Method: method, First: prev, Second: m.ID}
		}
		methods[method] = m.ID

		params, err := buildParams(m.ID, vars)
		if err != nil {
			return nil, err
		}

		source, _, _ := strings.Cut(m.Value().Raw, "\n")
		out.Descriptors = append(out.Descriptors, Descriptor{
			Name:     name,
			Method:   method,
			ID:       m.ID,
			Resource: m.Resource,
			Key:      m.Key,
			Params:   params,
			Source:   source,
		})
	}

	// Terms get no accessor but must still resolve.
	for _, t := range b.Terms() {
		if _, err := an.entryVariables(t); err != nil {
			return nil, err
		}
		out.Terms = append(out.Terms, "-"+t.ID)
	}
	return out, nil
}

func buildParams(id string, vars []string) ([]Param, error) {
	params := make([]Param, 0, len(vars))
	seen := make(map[string]string)
	for _, v := range vars {
		ident := ParamName(v)
		if prev, ok := seen[ident]; ok {
			return nil, &AmbiguousParameterError{ID: id, Ident: ident, Names: []string{prev, v}}
		}
		seen[ident] = v
		params = append(params, Param{Name: v, Ident: ident})
	}
	return params, nil
}

// ---------------------------------------------------------------------------
// Reference walking
// ---------------------------------------------------------------------------

type analyzer struct {
	bundle *bundle.Bundle
	// memo caches the variables of a part (id or id.attr)
	memo   map[string][]string
	active map[string]bool
	stack  []string
}

// entryVariables returns the variables of m's value followed by those of its
// attributes, first occurrence first.
func (an *analyzer) entryVariables(m *bundle.Message) ([]string, error) {
	var vars []string
	seen := make(map[string]bool)
	add := func(names []string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				vars = append(vars, n)
			}
		}
	}

	if m.Value() != nil {
		v, err := an.partVariables(m, "")
		if err != nil {
			return nil, err
		}
		add(v)
	}
	for _, a := range m.Entry.Attributes {
		v, err := an.partVariables(m, a.ID)
		if err != nil {
			return nil, err
		}
		add(v)
	}
	return vars, nil
}

func partName(m *bundle.Message, attr string) string {
	name := m.ID
	if m.Term {
		name = "-" + name
	}
	if attr != "" {
		name += "." + attr
	}
	return name
}

// partVariables returns the variables of one pattern of m with message
// references expanded in place.
func (an *analyzer) partVariables(m *bundle.Message, attr string) ([]string, error) {
	name := partName(m, attr)
	if vars, ok := an.memo[name]; ok {
		return vars, nil
	}
	if an.active[name] {
		start := 0
		for i, s := range an.stack {
			if s == name {
				start = i
				break
			}
		}
		cycle := append(append([]string(nil), an.stack[start:]...), name)
		return nil, &CyclicReferenceError{Cycle: cycle}
	}

	an.active[name] = true
	an.stack = append(an.stack, name)
	defer func() {
		delete(an.active, name)
		an.stack = an.stack[:len(an.stack)-1]
	}()

	p := m.Value()
	if attr != "" {
		p = m.Attribute(attr)
	}

	var (
		vars     []string
		seen     = make(map[string]bool)
		firstErr error
	)
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			vars = append(vars, n)
		}
	}

	ftl.Inspect(p, func(e ftl.Expression) bool {
		if firstErr != nil {
			return false
		}
		switch e := e.(type) {
		case *ftl.VariableReference:
			add(e.ID)
		case *ftl.MessageReference:
			ref, err := an.reference(m, e.ID, e.Attribute, false)
			if err != nil {
				firstErr = err
				return false
			}
			for _, v := range ref {
				add(v)
			}
		case *ftl.TermReference:
			// Terms only see their call arguments; walk them for errors only.
			if _, err := an.reference(m, e.ID, e.Attribute, true); err != nil {
				firstErr = err
				return false
			}
		}
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}

	if m.Term {
		vars = nil
	}
	an.memo[name] = vars
	return vars, nil
}

// reference resolves a reference written inside from and returns the
// variables of the referenced part.
func (an *analyzer) reference(from *bundle.Message, id, attr string, term bool) ([]string, error) {
	written := id
	if term {
		written = "-" + id
	}
	if attr != "" {
		written += "." + attr
	}
	unresolved := &UnresolvedReferenceError{
		ID:        partName(from, ""),
		Reference: written,
		Location:  from.Location(),
	}

	target, ok := an.bundle.Lookup(from.Resource, id, term)
	if !ok {
		return nil, unresolved
	}
	switch {
	case attr != "" && target.Attribute(attr) == nil:
		return nil, unresolved
	case attr == "" && target.Value() == nil:
		return nil, unresolved
	}
	return an.partVariables(target, attr)
}
