package localization

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/minios-linux/fluentkit/bundle"
	"github.com/minios-linux/fluentkit/ftl"
)

// renderer evaluates patterns for one Localize call.
type renderer struct {
	language string
	tag      language.Tag
	printer  *message.Printer
	// bundles consulted for references, in order
	chain    []*bundle.Bundle
	visiting map[string]bool
	// termDepth counts the term bodies being rendered.
	termDepth int
}

func (h *Holder) newRenderer(lang string) *renderer {
	rl := h.renderLanguage(lang)
	chain := []*bundle.Bundle{h.bundles[rl]}
	if rl != h.defaultLanguage {
		chain = append(chain, h.DefaultBundle())
	}
	return &renderer{
		language: rl,
		tag:      h.tags[rl],
		printer:  h.printers[rl],
		chain:    chain,
		visiting: make(map[string]bool),
	}
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// value is an evaluated expression: a string or a number.
type value interface {
	format(r *renderer) string
}

type stringValue string

func (s stringValue) format(*renderer) string { return string(s) }

// numberValue keeps the caller's Go value for printing and a float for
// comparisons and plural rules.
type numberValue struct {
	raw  any
	f    float64
	opts *numberOptions
}

type numberOptions struct {
	minFraction int
	maxFraction int
	noGrouping  bool
}

func (n numberValue) format(r *renderer) string {
	if n.opts == nil {
		return r.printer.Sprint(n.raw)
	}
	var opts []number.Option
	if n.opts.minFraction > 0 {
		opts = append(opts, number.MinFractionDigits(n.opts.minFraction))
	}
	if n.opts.maxFraction >= 0 {
		opts = append(opts, number.MaxFractionDigits(n.opts.maxFraction))
	}
	if n.opts.noGrouping {
		opts = append(opts, number.NoSeparator())
	}
	return r.printer.Sprint(number.Decimal(n.raw, opts...))
}

// argValue converts a caller-supplied argument.
func argValue(v any) value {
	switch v := v.(type) {
	case nil:
		return stringValue("")
	case string:
		return stringValue(v)
	case stringValue:
		return v
	case numberValue:
		return v
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numberValue{raw: rv.Int(), f: float64(rv.Int())}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return numberValue{raw: rv.Uint(), f: float64(rv.Uint())}
	case reflect.Float32, reflect.Float64:
		return numberValue{raw: rv.Float(), f: rv.Float()}
	}

	if s, ok := v.(fmt.Stringer); ok {
		return stringValue(s.String())
	}
	return stringValue(fmt.Sprint(v))
}

func parseNumberLiteral(s string) (numberValue, error) {
	if !strings.Contains(s, ".") {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return numberValue{raw: i, f: float64(i)}, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return numberValue{}, fmt.Errorf("%w: number %q", ErrInvalidArgument, s)
	}
	return numberValue{raw: f, f: f}, nil
}

// ---------------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------------

// message renders the value of m, or its attribute attr when set.
func (r *renderer) message(m *bundle.Message, attr string, args Args) (string, error) {
	p := m.Value()
	name := m.ID
	if attr != "" {
		p = m.Attribute(attr)
		name += "." + attr
		if p == nil {
			return "", fmt.Errorf("%w: attribute %s", ErrUnknownReference, name)
		}
	}
	if m.Term {
		name = "-" + name
	}
	if p == nil {
		return "", fmt.Errorf("%w: %s", ErrNoValue, name)
	}

	if r.visiting[name] {
		return "", fmt.Errorf("%w: %s", ErrCyclicReference, name)
	}
	r.visiting[name] = true
	defer delete(r.visiting, name)

	return r.pattern(m.Resource, p, args)
}

func (r *renderer) pattern(resource string, p *ftl.Pattern, args Args) (string, error) {
	var sb strings.Builder
	for _, el := range p.Elements {
		switch el := el.(type) {
		case *ftl.TextElement:
			sb.WriteString(el.Value)
		case *ftl.Placeable:
			v, err := r.expression(resource, el.Expression, args)
			if err != nil {
				return "", err
			}
			sb.WriteString(v.format(r))
		}
	}
	return sb.String(), nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (r *renderer) expression(resource string, e ftl.Expression, args Args) (value, error) {
	switch e := e.(type) {
	case *ftl.StringLiteral:
		return stringValue(e.Value), nil

	case *ftl.NumberLiteral:
		return parseNumberLiteral(e.Value)

	case *ftl.VariableReference:
		v, ok := args[e.ID]
		if !ok {
			return nil, fmt.Errorf("%w: $%s", ErrMissingArgument, e.ID)
		}
		return argValue(v), nil

	case *ftl.MessageReference:
		m, ok := r.lookup(resource, e.ID, false)
		if !ok {
			return nil, fmt.Errorf("%w: message %s", ErrUnknownReference, e.ID)
		}
		s, err := r.message(m, e.Attribute, args)
		if err != nil {
			return nil, err
		}
		return stringValue(s), nil

	case *ftl.TermReference:
		m, ok := r.lookup(resource, e.ID, true)
		if !ok {
			return nil, fmt.Errorf("%w: term -%s", ErrUnknownReference, e.ID)
		}
		termArgs, err := r.termArguments(resource, e.Arguments)
		if err != nil {
			return nil, err
		}
		r.termDepth++
		s, err := r.message(m, e.Attribute, termArgs)
		r.termDepth--
		if err != nil {
			return nil, err
		}
		return stringValue(s), nil

	case *ftl.FunctionReference:
		return r.call(resource, e, args)

	case *ftl.Placeable:
		return r.expression(resource, e.Expression, args)

	case *ftl.SelectExpression:
		var v *ftl.Variant
		sel, err := r.expression(resource, e.Selector, args)
		switch {
		case err == nil:
			v = r.selectVariant(sel, e)
		case r.termDepth > 0 && errors.Is(err, ErrMissingArgument):
			// A term variable not passed by the caller selects the default.
			v = e.Default()
		default:
			return nil, err
		}
		s, err := r.pattern(resource, v.Value, args)
		if err != nil {
			return nil, err
		}
		return stringValue(s), nil
	}
	return nil, fmt.Errorf("unsupported expression %T", e)
}

// lookup resolves a reference in the rendering language, then the default.
func (r *renderer) lookup(resource, id string, term bool) (*bundle.Message, bool) {
	for _, b := range r.chain {
		if m, ok := b.Lookup(resource, id, term); ok {
			return m, true
		}
	}
	return nil, false
}

// termArguments builds the only arguments a term sees: its named call
// arguments.
func (r *renderer) termArguments(resource string, call *ftl.CallArguments) (Args, error) {
	args := Args{}
	if call == nil {
		return args, nil
	}
	for _, n := range call.Named {
		v, err := r.expression(resource, n.Value, nil)
		if err != nil {
			return nil, err
		}
		args[n.Name] = v
	}
	return args, nil
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

func (r *renderer) call(resource string, fn *ftl.FunctionReference, args Args) (value, error) {
	switch fn.ID {
	case "NUMBER":
		return r.number(resource, fn.Arguments, args)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, fn.ID)
}

// number implements NUMBER(value, minimumFractionDigits:,
// maximumFractionDigits:, useGrouping:).
func (r *renderer) number(resource string, call *ftl.CallArguments, args Args) (value, error) {
	if call == nil || len(call.Positional) != 1 {
		return nil, fmt.Errorf("%w: NUMBER takes exactly one positional argument", ErrInvalidArgument)
	}
	v, err := r.expression(resource, call.Positional[0], args)
	if err != nil {
		return nil, err
	}
	n, ok := v.(numberValue)
	if !ok {
		parsed, err := parseNumberLiteral(v.format(r))
		if err != nil {
			return nil, err
		}
		n = parsed
	}

	opts := &numberOptions{maxFraction: -1}
	for _, named := range call.Named {
		lit, err := r.expression(resource, named.Value, nil)
		if err != nil {
			return nil, err
		}
		switch named.Name {
		case "minimumFractionDigits":
			if opts.minFraction, err = intOption(named.Name, lit); err != nil {
				return nil, err
			}
		case "maximumFractionDigits":
			if opts.maxFraction, err = intOption(named.Name, lit); err != nil {
				return nil, err
			}
		case "useGrouping":
			opts.noGrouping = lit.format(r) == "false"
		default:
			return nil, fmt.Errorf("%w: unknown NUMBER option %s", ErrInvalidArgument, named.Name)
		}
	}
	n.opts = opts
	return n, nil
}

func intOption(name string, v value) (int, error) {
	n, ok := v.(numberValue)
	if !ok || n.f != math.Trunc(n.f) || n.f < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidArgument, name)
	}
	return int(n.f), nil
}

// ---------------------------------------------------------------------------
// Select
// ---------------------------------------------------------------------------

// selectVariant picks the variant for sel: an exact key match first, then
// the plural category of a numeric selector, then the default.
func (r *renderer) selectVariant(sel value, e *ftl.SelectExpression) *ftl.Variant {
	switch s := sel.(type) {
	case numberValue:
		for _, v := range e.Variants {
			if !v.Key.Numeric {
				continue
			}
			if f, err := strconv.ParseFloat(v.Key.Name, 64); err == nil && f == s.f {
				return v
			}
		}
		category := pluralCategory(r.tag, s)
		for _, v := range e.Variants {
			if !v.Key.Numeric && v.Key.Name == category {
				return v
			}
		}
	case stringValue:
		for _, v := range e.Variants {
			if v.Key.Name == string(s) {
				return v
			}
		}
	}
	return e.Default()
}

// pluralCategory returns the CLDR cardinal category of n in tag.
func pluralCategory(tag language.Tag, n numberValue) string {
	precision := -1
	if n.opts != nil && n.opts.minFraction > 0 {
		precision = n.opts.minFraction
	}
	digits := strconv.FormatFloat(math.Abs(n.f), 'f', precision, 64)

	intPart, frac, _ := strings.Cut(digits, ".")
	if len(intPart) > 9 {
		// Plural rules only look at the low digits of large numbers.
		intPart = intPart[len(intPart)-9:]
	}
	i, _ := strconv.Atoi(intPart)
	f, _ := strconv.Atoi("0" + frac)
	trimmed := strings.TrimRight(frac, "0")
	t, _ := strconv.Atoi("0" + trimmed)

	switch plural.Cardinal.MatchPlural(tag, i, len(frac), len(trimmed), f, t) {
	case plural.Zero:
		return "zero"
	case plural.One:
		return "one"
	case plural.Two:
		return "two"
	case plural.Few:
		return "few"
	case plural.Many:
		return "many"
	}
	return "other"
}
