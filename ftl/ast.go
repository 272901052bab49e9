// Package ftl implements a parser for Fluent (.ftl) localization files.
//
// Format: one entry per line, either a message (id = pattern) or a term
// (-id = pattern). Indented lines starting with '.' declare attributes of
// the preceding entry; other indented lines continue its pattern. Lines
// starting with '#' are comments and are dropped.
//
//	# comment
//	name = English
//	counter = count is at {$counter}
//	-brand = Fluentkit
//	login = Log in to { -brand }
//	    .title = Log in
//	emails = { $count ->
//	    [one] one email
//	   *[other] { $count } emails
//	}
//
// The parser produces a Resource holding the entries in document order.
// Rendering is not part of this package; see package localization.
package ftl

// FileExtension is the extension of Fluent resource files.
const FileExtension = ".ftl"

// ---------------------------------------------------------------------------
// Entries
// ---------------------------------------------------------------------------

// Resource is the parsed content of one .ftl file.
type Resource struct {
	Entries []*Entry
}

// Entry is a message or a term.
type Entry struct {
	ID   string
	Term bool
	// Value is nil for messages declaring only attributes.
	Value      *Pattern
	Attributes []*Attribute
	// Line is the 1-based line the entry starts on.
	Line int
}

// Attribute returns the attribute named name, or nil.
func (e *Entry) Attribute(name string) *Attribute {
	for _, a := range e.Attributes {
		if a.ID == name {
			return a
		}
	}
	return nil
}

// Attribute is a named sub-pattern of an entry (.title = ...).
type Attribute struct {
	ID    string
	Value *Pattern
	Line  int
}

// Messages returns the non-term entries in document order.
func (r *Resource) Messages() []*Entry {
	var out []*Entry
	for _, e := range r.Entries {
		if !e.Term {
			out = append(out, e)
		}
	}
	return out
}

// Terms returns the term entries in document order.
func (r *Resource) Terms() []*Entry {
	var out []*Entry
	for _, e := range r.Entries {
		if e.Term {
			out = append(out, e)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------------

// Pattern is a sequence of text and placeables.
type Pattern struct {
	Elements []PatternElement
	// Raw is the trimmed source text of the pattern.
	Raw string
}

// PatternElement is either *TextElement or *Placeable.
type PatternElement interface {
	patternElement()
}

// TextElement is literal text.
type TextElement struct {
	Value string
}

// Placeable is a { ... } expression. It is also an Expression when nested.
type Placeable struct {
	Expression Expression
}

func (*TextElement) patternElement() {}
func (*Placeable) patternElement()   {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// Expression is any value that may appear inside a placeable.
type Expression interface {
	expression()
}

// StringLiteral is a quoted string with escapes already decoded.
type StringLiteral struct {
	Value string
}

// NumberLiteral keeps the number as written (e.g. "-1.50").
type NumberLiteral struct {
	Value string
}

// VariableReference is $id.
type VariableReference struct {
	ID string
}

// MessageReference is id or id.attr.
type MessageReference struct {
	ID        string
	Attribute string
}

// TermReference is -id, -id.attr or -id(args).
type TermReference struct {
	ID        string
	Attribute string
	Arguments *CallArguments
}

// FunctionReference is FUNC(args).
type FunctionReference struct {
	ID        string
	Arguments *CallArguments
}

// SelectExpression chooses one of its variants based on Selector.
type SelectExpression struct {
	Selector Expression
	Variants []*Variant
}

// Default returns the variant marked with '*'.
func (s *SelectExpression) Default() *Variant {
	for _, v := range s.Variants {
		if v.Default {
			return v
		}
	}
	return nil
}

// Variant is one [key] pattern branch of a select expression.
type Variant struct {
	Key     VariantKey
	Default bool
	Value   *Pattern
}

// VariantKey is either an identifier (plural category or string) or a number.
type VariantKey struct {
	Name    string
	Numeric bool
}

// CallArguments are the arguments of a function or parametrized term.
type CallArguments struct {
	Positional []Expression
	Named      []*NamedArgument
}

// NamedArgument is name: literal.
type NamedArgument struct {
	Name  string
	Value Expression
}

// Lookup returns the value of the named argument, or nil.
func (c *CallArguments) Lookup(name string) Expression {
	if c == nil {
		return nil
	}
	for _, n := range c.Named {
		if n.Name == name {
			return n.Value
		}
	}
	return nil
}

func (*StringLiteral) expression()     {}
func (*NumberLiteral) expression()     {}
func (*VariableReference) expression() {}
func (*MessageReference) expression()  {}
func (*TermReference) expression()     {}
func (*FunctionReference) expression() {}
func (*SelectExpression) expression()  {}
func (*Placeable) expression()         {}
