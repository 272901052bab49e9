package bindgen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"text/template"
)

// RuntimeImport is the import path generated code uses for the holder.
const RuntimeImport = "github.com/minios-linux/fluentkit/localization"

// EmitOptions controls the generated file.
type EmitOptions struct {
	// Package is the package clause of the generated file. Default "l10n".
	Package string
	// TypeName is the generated type. Default "Localizer".
	TypeName string
	// Source is recorded in the file header, usually the analysed directory.
	Source string
}

func (o EmitOptions) withDefaults() EmitOptions {
	if o.Package == "" {
		o.Package = "l10n"
	}
	if o.TypeName == "" {
		o.TypeName = "Localizer"
	}
	return o
}

var bindingTemplate = template.Must(template.New("bindings").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).Parse(`// Code generated by fluentkit; DO NOT EDIT.
{{- if .Source}}
// Source: {{.Source}}
{{- end}}

package {{.Package}}

import (
	"errors"

	"{{.Import}}"
)

// {{.Type}}MessageIDs lists every message and term the bindings expect in the
// default language.
var {{.Type}}MessageIDs = []string{
{{- range .IDs}}
	{{quote .}},
{{- end}}
}

// {{.Type}} renders the messages of one language. The holder is borrowed and
// must outlive the bindings.
type {{.Type}} struct {
	holder   *localization.Holder
	language string
}

// New{{.Type}} returns bindings rendering language through holder.
func New{{.Type}}(holder *localization.Holder, language string) *{{.Type}} {
	return &{{.Type}}{holder: holder, language: language}
}

// Language returns the language the bindings render.
func (l *{{.Type}}) Language() string {
	return l.language
}

// ValidateDefaultBundleComplete checks that every id in {{.Type}}MessageIDs
// exists in the loaded default language. It reports all missing ids at once
// as *localization.IncompleteBundleError.
func (l *{{.Type}}) ValidateDefaultBundleComplete() error {
	return l.holder.ValidateComplete({{.Type}}MessageIDs)
}

func (l *{{.Type}}) localize(accessor, id string, args localization.Args) (string, error) {
	s, err := l.holder.Localize(l.language, id, args)
	var rerr *localization.RenderError
	if errors.As(err, &rerr) {
		rerr.Accessor = accessor
	}
	return s, err
}
{{range .Descriptors}}
// {{.Method}} renders {{.ID}}: {{quote .Source}}.
func (l *{{$.Type}}) {{.Method}}({{range $i, $p := .Params}}{{if $i}}, {{end}}{{$p.Ident}}{{end}}{{if .Params}} any{{end}}) (string, error) {
	return l.localize({{quote .Method}}, {{quote .ID}}, {{if .Params}}localization.Args{
	{{- range .Params}}
		{{quote .Name}}: {{.Ident}},
	{{- end}}
	}{{else}}nil{{end}})
}
{{end}}`))

type templateData struct {
	Package     string
	Type        string
	Import      string
	Source      string
	IDs         []string
	Descriptors []Descriptor
}

// Emit renders the analysis as a formatted Go source file.
func Emit(a *Analysis, opts EmitOptions) ([]byte, error) {
	opts = opts.withDefaults()
	if !token.IsIdentifier(opts.Package) {
		return nil, fmt.Errorf("invalid package name %q", opts.Package)
	}
	if !token.IsIdentifier(opts.TypeName) || !token.IsExported(opts.TypeName) {
		return nil, fmt.Errorf("invalid type name %q: must be an exported identifier", opts.TypeName)
	}

	data := templateData{
		Package:     opts.Package,
		Type:        opts.TypeName,
		Import:      RuntimeImport,
		Source:      filepath.ToSlash(opts.Source),
		IDs:         a.IDs(),
		Descriptors: a.Descriptors,
	}

	var buf bytes.Buffer
	if err := bindingTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering bindings: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting bindings: %w", err)
	}
	return src, nil
}

// WriteFile writes generated source to path, creating parent directories.
func WriteFile(path string, src []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, src, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
