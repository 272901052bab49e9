package ftl

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseError reports a malformed entry. Line and Column are 1-based.
type ParseError struct {
	Line   int
	Column int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Line, e.Column, e.Reason)
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// ParseFile reads and parses a .ftl file from disk.
func ParseFile(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	res, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return res, nil
}

// Parse parses Fluent content from a byte slice. The first malformed entry
// aborts parsing; there is no junk recovery.
func Parse(data []byte) (*Resource, error) {
	// Normalise Windows line endings.
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimPrefix(text, "\ufeff")

	p := &parser{src: text, line: 1}
	res := &Resource{}

	for !p.eof() {
		switch c := p.peek(); {
		case c == '\n':
			p.advance()
		case c == ' ' || c == '\t':
			p.skipInline()
			if !p.eof() && p.peek() != '\n' {
				return nil, p.errorf("unexpected indented line outside of an entry")
			}
		case c == '#':
			p.skipLine()
		case c == '-' || isIdentStart(c):
			entry, err := p.parseEntry()
			if err != nil {
				return nil, err
			}
			res.Entries = append(res.Entries, entry)
		default:
			return nil, p.errorf("expected message, term or comment, found %s", p.describe())
		}
	}

	return res, nil
}

// ---------------------------------------------------------------------------
// Cursor
// ---------------------------------------------------------------------------

type parser struct {
	src       string
	pos       int
	line      int
	lineStart int
}

type mark struct {
	pos, line, lineStart int
}

func (p *parser) mark() mark {
	return mark{pos: p.pos, line: p.line, lineStart: p.lineStart}
}

func (p *parser) reset(m mark) {
	p.pos, p.line, p.lineStart = m.pos, m.line, m.lineStart
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(off int) byte {
	if i := p.pos + off; i < len(p.src) {
		return p.src[i]
	}
	return 0
}

func (p *parser) advance() {
	if p.src[p.pos] == '\n' {
		p.line++
		p.lineStart = p.pos + 1
	}
	p.pos++
}

func (p *parser) advanceTo(pos int) {
	for p.pos < pos && !p.eof() {
		p.advance()
	}
}

func (p *parser) skipInline() {
	for c := p.peek(); c == ' ' || c == '\t'; c = p.peek() {
		p.advance()
	}
}

// skipBlank skips spaces and line breaks.
func (p *parser) skipBlank() {
	for c := p.peek(); c == ' ' || c == '\t' || c == '\n'; c = p.peek() {
		p.advance()
	}
}

func (p *parser) skipLine() {
	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}
}

func (p *parser) expect(c byte) error {
	if p.peek() != c {
		return p.errorf("expected %q, found %s", c, p.describe())
	}
	p.advance()
	return nil
}

// describe names the byte under the cursor for error messages.
func (p *parser) describe() string {
	switch {
	case p.eof():
		return "end of file"
	case p.peek() == '\n':
		return "end of line"
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return strconv.QuoteRune(r)
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{
		Line:   p.line,
		Column: p.pos - p.lineStart + 1,
		Reason: fmt.Sprintf(format, args...),
	}
}

// ---------------------------------------------------------------------------
// Entries
// ---------------------------------------------------------------------------

func (p *parser) parseEntry() (*Entry, error) {
	entry := &Entry{Line: p.line}
	if p.peek() == '-' {
		entry.Term = true
		p.advance()
	}

	id, err := p.parseIdentifier()
	if err != nil {
		return nil, err
	}
	entry.ID = id

	p.skipInline()
	if err := p.expect('='); err != nil {
		return nil, err
	}
	if entry.Value, err = p.parsePattern(); err != nil {
		return nil, err
	}
	if entry.Attributes, err = p.parseAttributes(); err != nil {
		return nil, err
	}

	switch {
	case entry.Term && entry.Value == nil:
		return nil, &ParseError{Line: entry.Line, Column: 1, Reason: fmt.Sprintf("term -%s has no value", id)}
	case entry.Value == nil && len(entry.Attributes) == 0:
		return nil, &ParseError{Line: entry.Line, Column: 1, Reason: fmt.Sprintf("message %s has no value and no attributes", id)}
	}
	return entry, nil
}

func (p *parser) parseAttributes() ([]*Attribute, error) {
	var attrs []*Attribute
	for {
		m := p.mark()
		p.skipBlank()
		// Attributes must be indented.
		if p.peek() != '.' || p.pos == p.lineStart {
			p.reset(m)
			return attrs, nil
		}
		line := p.line
		p.advance()

		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		for _, a := range attrs {
			if a.ID == id {
				return nil, p.errorf("duplicate attribute .%s", id)
			}
		}

		p.skipInline()
		if err := p.expect('='); err != nil {
			return nil, err
		}
		value, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, p.errorf("attribute .%s has no value", id)
		}
		attrs = append(attrs, &Attribute{ID: id, Value: value, Line: line})
	}
}

func (p *parser) parseIdentifier() (string, error) {
	if !isIdentStart(p.peek()) {
		return "", p.errorf("expected identifier, found %s", p.describe())
	}
	start := p.pos
	for isIdentChar(p.peek()) {
		p.advance()
	}
	return p.src[start:p.pos], nil
}

// ---------------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------------

// parsePattern reads a pattern starting after '=' or ']' and stops before
// the line break that ends it. Returns nil for an empty pattern.
func (p *parser) parsePattern() (*Pattern, error) {
	p.skipInline()
	start := p.pos

	var (
		elems []PatternElement
		text  strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			elems = append(elems, &TextElement{Value: text.String()})
			text.Reset()
		}
	}

loop:
	for !p.eof() {
		switch c := p.peek(); c {
		case '{':
			flush()
			pl, err := p.parsePlaceable()
			if err != nil {
				return nil, err
			}
			elems = append(elems, pl)
		case '}':
			return nil, p.errorf("unbalanced closing brace")
		case '\n':
			next, breaks, ok := p.continuation()
			if !ok {
				break loop
			}
			if len(elems) > 0 || text.Len() > 0 {
				text.WriteString(strings.Repeat("\n", breaks))
			}
			p.advanceTo(next)
		default:
			text.WriteByte(c)
			p.advance()
		}
	}
	end := p.pos
	flush()

	for len(elems) > 0 {
		last, ok := elems[len(elems)-1].(*TextElement)
		if !ok {
			break
		}
		last.Value = strings.TrimRight(last.Value, " \t\n")
		if last.Value != "" {
			break
		}
		elems = elems[:len(elems)-1]
	}
	if len(elems) == 0 {
		return nil, nil
	}
	return &Pattern{Elements: elems, Raw: strings.TrimSpace(p.src[start:end])}, nil
}

// continuation looks past the line break under the cursor. It reports
// whether the next non-blank line continues the current pattern, the offset
// of its first significant byte and the number of line breaks crossed.
func (p *parser) continuation() (next, breaks int, ok bool) {
	i := p.pos
	for i < len(p.src) && p.src[i] == '\n' {
		i++
		breaks++
		j := i
		for j < len(p.src) && p.src[j] == ' ' {
			j++
		}
		if j == len(p.src) {
			return 0, 0, false
		}
		if p.src[j] == '\n' {
			i = j
			continue
		}
		if j == i {
			return 0, 0, false
		}
		switch p.src[j] {
		case '[', '*', '.', '}':
			return 0, 0, false
		}
		return j, breaks, true
	}
	return 0, 0, false
}

// ---------------------------------------------------------------------------
// Placeables and expressions
// ---------------------------------------------------------------------------

func (p *parser) parsePlaceable() (*Placeable, error) {
	if err := p.expect('{'); err != nil {
		return nil, err
	}
	p.skipBlank()

	expr, err := p.parseInlineExpression()
	if err != nil {
		return nil, err
	}
	p.skipBlank()

	if p.peek() == '-' && p.peekAt(1) == '>' {
		if err := p.checkSelector(expr); err != nil {
			return nil, err
		}
		p.advance()
		p.advance()
		variants, err := p.parseVariants()
		if err != nil {
			return nil, err
		}
		expr = &SelectExpression{Selector: expr, Variants: variants}
		p.skipBlank()
	}

	if err := p.expect('}'); err != nil {
		return nil, err
	}
	return &Placeable{Expression: expr}, nil
}

func (p *parser) checkSelector(expr Expression) error {
	switch e := expr.(type) {
	case *MessageReference:
		return p.errorf("message references cannot be used as selectors")
	case *Placeable:
		return p.errorf("placeables cannot be used as selectors")
	case *TermReference:
		if e.Attribute == "" {
			return p.errorf("term -%s cannot be used as a selector, use one of its attributes", e.ID)
		}
	}
	return nil
}

func (p *parser) parseVariants() ([]*Variant, error) {
	var variants []*Variant
	defaults := 0

	for {
		p.skipBlank()
		v := &Variant{}
		if p.peek() == '*' {
			v.Default = true
			defaults++
			p.advance()
		}
		if p.peek() != '[' {
			if v.Default {
				return nil, p.errorf("expected \"[\" after \"*\", found %s", p.describe())
			}
			break
		}
		p.advance()
		p.skipBlank()

		key, err := p.parseVariantKey()
		if err != nil {
			return nil, err
		}
		v.Key = key

		p.skipBlank()
		if err := p.expect(']'); err != nil {
			return nil, err
		}
		if v.Value, err = p.parsePattern(); err != nil {
			return nil, err
		}
		if v.Value == nil {
			return nil, p.errorf("variant [%s] has no value", key.Name)
		}
		variants = append(variants, v)
	}

	if len(variants) == 0 {
		return nil, p.errorf("select expression has no variants")
	}
	if defaults != 1 {
		return nil, p.errorf("select expression must have exactly one default variant, found %d", defaults)
	}
	return variants, nil
}

func (p *parser) parseVariantKey() (VariantKey, error) {
	if c := p.peek(); isDigit(c) || (c == '-' && isDigit(p.peekAt(1))) {
		n, err := p.parseNumber()
		return VariantKey{Name: n, Numeric: true}, err
	}
	id, err := p.parseIdentifier()
	return VariantKey{Name: id}, err
}

func (p *parser) parseInlineExpression() (Expression, error) {
	c := p.peek()
	switch {
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return &StringLiteral{Value: s}, nil

	case isDigit(c) || (c == '-' && isDigit(p.peekAt(1))):
		n, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		return &NumberLiteral{Value: n}, nil

	case c == '$':
		p.advance()
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		return &VariableReference{ID: id}, nil

	case c == '-':
		p.advance()
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		ref := &TermReference{ID: id}
		if ref.Attribute, err = p.parseAttributeAccessor(); err != nil {
			return nil, err
		}
		if p.peek() == '(' {
			if ref.Arguments, err = p.parseCallArguments(); err != nil {
				return nil, err
			}
		}
		return ref, nil

	case c == '{':
		pl, err := p.parsePlaceable()
		if err != nil {
			return nil, err
		}
		return pl, nil

	case isIdentStart(c):
		id, err := p.parseIdentifier()
		if err != nil {
			return nil, err
		}
		if p.peek() == '(' {
			if !isFunctionName(id) {
				return nil, p.errorf("function names must be upper case, found %s", id)
			}
			args, err := p.parseCallArguments()
			if err != nil {
				return nil, err
			}
			return &FunctionReference{ID: id, Arguments: args}, nil
		}
		attr, err := p.parseAttributeAccessor()
		if err != nil {
			return nil, err
		}
		return &MessageReference{ID: id, Attribute: attr}, nil
	}

	return nil, p.errorf("expected expression, found %s", p.describe())
}

func (p *parser) parseAttributeAccessor() (string, error) {
	if p.peek() != '.' {
		return "", nil
	}
	p.advance()
	return p.parseIdentifier()
}

func (p *parser) parseCallArguments() (*CallArguments, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	args := &CallArguments{}
	for {
		p.skipBlank()
		if p.peek() == ')' {
			p.advance()
			return args, nil
		}
		if err := p.parseArgument(args); err != nil {
			return nil, err
		}
		p.skipBlank()
		switch p.peek() {
		case ',':
			p.advance()
		case ')':
			p.advance()
			return args, nil
		default:
			return nil, p.errorf("expected \",\" or \")\" in argument list, found %s", p.describe())
		}
	}
}

func (p *parser) parseArgument(args *CallArguments) error {
	if isIdentStart(p.peek()) {
		m := p.mark()
		name, _ := p.parseIdentifier()
		p.skipBlank()
		if p.peek() == ':' {
			p.advance()
			p.skipBlank()
			value, err := p.parseLiteral()
			if err != nil {
				return err
			}
			if args.Lookup(name) != nil {
				return p.errorf("duplicate named argument %s", name)
			}
			args.Named = append(args.Named, &NamedArgument{Name: name, Value: value})
			return nil
		}
		p.reset(m)
	}

	if len(args.Named) > 0 {
		return p.errorf("positional arguments must precede named arguments")
	}
	expr, err := p.parseInlineExpression()
	if err != nil {
		return err
	}
	args.Positional = append(args.Positional, expr)
	return nil
}

func (p *parser) parseLiteral() (Expression, error) {
	if p.peek() == '"' {
		s, err := p.parseString()
		if err != nil {
			return nil, err
		}
		return &StringLiteral{Value: s}, nil
	}
	n, err := p.parseNumber()
	if err != nil {
		return nil, err
	}
	return &NumberLiteral{Value: n}, nil
}

// ---------------------------------------------------------------------------
// Literals
// ---------------------------------------------------------------------------

func (p *parser) parseNumber() (string, error) {
	start := p.pos
	if p.peek() == '-' {
		p.advance()
	}
	if !isDigit(p.peek()) {
		return "", p.errorf("expected number, found %s", p.describe())
	}
	for isDigit(p.peek()) {
		p.advance()
	}
	if p.peek() == '.' {
		p.advance()
		if !isDigit(p.peek()) {
			return "", p.errorf("expected digit after decimal point, found %s", p.describe())
		}
		for isDigit(p.peek()) {
			p.advance()
		}
	}
	return p.src[start:p.pos], nil
}

func (p *parser) parseString() (string, error) {
	if err := p.expect('"'); err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		if p.eof() || p.peek() == '\n' {
			return "", p.errorf("unterminated string literal")
		}
		c := p.peek()
		switch c {
		case '"':
			p.advance()
			return sb.String(), nil
		case '\\':
			p.advance()
			switch e := p.peek(); e {
			case '\\', '"':
				sb.WriteByte(e)
				p.advance()
			case 'u', 'U':
				n := 4
				if e == 'U' {
					n = 6
				}
				p.advance()
				if p.pos+n > len(p.src) {
					return "", p.errorf("truncated unicode escape")
				}
				hex := p.src[p.pos : p.pos+n]
				r, err := strconv.ParseUint(hex, 16, 32)
				if err != nil || !utf8.ValidRune(rune(r)) {
					return "", p.errorf("invalid unicode escape \\%c%s", e, hex)
				}
				sb.WriteRune(rune(r))
				p.advanceTo(p.pos + n)
			default:
				return "", p.errorf("unknown escape sequence \\%s", p.describe())
			}
		default:
			sb.WriteByte(c)
			p.advance()
		}
	}
}

// ---------------------------------------------------------------------------
// Character classes
// ---------------------------------------------------------------------------

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '_' || c == '-'
}

// isFunctionName reports whether id follows the [A-Z][A-Z0-9_-]* convention.
func isFunctionName(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'A' && c <= 'Z':
		case i > 0 && (isDigit(c) || c == '_' || c == '-'):
		default:
			return false
		}
	}
	return id != ""
}
