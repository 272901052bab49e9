package ftl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Resource {
	t.Helper()
	res, err := Parse([]byte(src))
	require.NoError(t, err)
	return res
}

func textOf(t *testing.T, p *Pattern) string {
	t.Helper()
	require.NotNil(t, p)
	require.Len(t, p.Elements, 1)
	el, ok := p.Elements[0].(*TextElement)
	require.True(t, ok, "expected a single text element, got %T", p.Elements[0])
	return el.Value
}

func TestParse_Basic(t *testing.T) {
	res := mustParse(t, "name=English\ngreeting = Hello, world!\n")
	require.Len(t, res.Entries, 2)

	assert.Equal(t, "name", res.Entries[0].ID)
	assert.Equal(t, "English", textOf(t, res.Entries[0].Value))
	assert.Equal(t, 1, res.Entries[0].Line)

	assert.Equal(t, "greeting", res.Entries[1].ID)
	assert.Equal(t, "Hello, world!", textOf(t, res.Entries[1].Value))
	assert.Equal(t, 2, res.Entries[1].Line)
}

func TestParse_CommentsAndBlanks(t *testing.T) {
	src := "### Resource comment\n\n# Message comment\nkey = value\n\n## Group\n"
	res := mustParse(t, src)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "value", textOf(t, res.Entries[0].Value))
}

func TestParse_CRLFAndBOM(t *testing.T) {
	res := mustParse(t, "\ufeffa = one\r\nb = two\r\n")
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "one", textOf(t, res.Entries[0].Value))
	assert.Equal(t, "two", textOf(t, res.Entries[1].Value))
}

func TestParse_Placeable(t *testing.T) {
	res := mustParse(t, "counter = count is at {$counter}\n")
	p := res.Entries[0].Value
	require.Len(t, p.Elements, 2)

	text, ok := p.Elements[0].(*TextElement)
	require.True(t, ok)
	assert.Equal(t, "count is at ", text.Value)

	pl, ok := p.Elements[1].(*Placeable)
	require.True(t, ok)
	assert.Equal(t, &VariableReference{ID: "counter"}, pl.Expression)
	assert.Equal(t, "count is at {$counter}", p.Raw)
}

func TestParse_Multiline(t *testing.T) {
	src := "about =\n    First line\n    second line\n\n    after blank\nnext = x\n"
	res := mustParse(t, src)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "First line\nsecond line\n\nafter blank", textOf(t, res.Entries[0].Value))
	assert.Equal(t, "next", res.Entries[1].ID)
}

func TestParse_Attributes(t *testing.T) {
	src := "login = Log in\n    .title = Log in to { -brand }\n    .aria = Button\nonly-attrs =\n    .placeholder = Search\n"
	res := mustParse(t, src)
	require.Len(t, res.Entries, 2)

	login := res.Entries[0]
	require.Len(t, login.Attributes, 2)
	assert.Equal(t, "title", login.Attributes[0].ID)
	assert.Equal(t, 2, login.Attributes[0].Line)
	assert.Equal(t, "Button", textOf(t, login.Attribute("aria").Value))
	assert.Nil(t, login.Attribute("missing"))

	onlyAttrs := res.Entries[1]
	assert.Nil(t, onlyAttrs.Value)
	require.Len(t, onlyAttrs.Attributes, 1)
	assert.Equal(t, "Search", textOf(t, onlyAttrs.Attributes[0].Value))
}

func TestParse_Terms(t *testing.T) {
	src := "-brand = Fluentkit\n    .gender = neuter\nabout = About { -brand }\n"
	res := mustParse(t, src)
	require.Len(t, res.Terms(), 1)
	require.Len(t, res.Messages(), 1)

	term := res.Terms()[0]
	assert.True(t, term.Term)
	assert.Equal(t, "brand", term.ID)

	pl := res.Messages()[0].Value.Elements[1].(*Placeable)
	assert.Equal(t, &TermReference{ID: "brand"}, pl.Expression)
}

func TestParse_SelectExpression(t *testing.T) {
	src := `emails = { $count ->
    [0] no emails
    [one] one email
   *[other] { $count } emails
}
`
	res := mustParse(t, src)
	pl := res.Entries[0].Value.Elements[0].(*Placeable)
	sel, ok := pl.Expression.(*SelectExpression)
	require.True(t, ok)

	assert.Equal(t, &VariableReference{ID: "count"}, sel.Selector)
	require.Len(t, sel.Variants, 3)
	assert.Equal(t, VariantKey{Name: "0", Numeric: true}, sel.Variants[0].Key)
	assert.Equal(t, VariantKey{Name: "one"}, sel.Variants[1].Key)
	assert.Equal(t, "one email", textOf(t, sel.Variants[1].Value))
	assert.True(t, sel.Variants[2].Default)
	assert.Same(t, sel.Variants[2], sel.Default())
}

func TestParse_Expressions(t *testing.T) {
	src := `all = { "quoted \"text\" é" } { -12.5 } { other.title } { -term.attr } { -term(case: "gen", n: 2) } { NUMBER($n, minimumFractionDigits: 2) } { { $nested } }
`
	res := mustParse(t, src)
	var exprs []Expression
	for _, el := range res.Entries[0].Value.Elements {
		if pl, ok := el.(*Placeable); ok {
			exprs = append(exprs, pl.Expression)
		}
	}
	require.Len(t, exprs, 7)

	assert.Equal(t, &StringLiteral{Value: `quoted "text" é`}, exprs[0])
	assert.Equal(t, &NumberLiteral{Value: "-12.5"}, exprs[1])
	assert.Equal(t, &MessageReference{ID: "other", Attribute: "title"}, exprs[2])
	assert.Equal(t, &TermReference{ID: "term", Attribute: "attr"}, exprs[3])

	term := exprs[4].(*TermReference)
	require.NotNil(t, term.Arguments)
	assert.Equal(t, &StringLiteral{Value: "gen"}, term.Arguments.Lookup("case"))
	assert.Equal(t, &NumberLiteral{Value: "2"}, term.Arguments.Lookup("n"))

	fn := exprs[5].(*FunctionReference)
	assert.Equal(t, "NUMBER", fn.ID)
	assert.Equal(t, []Expression{&VariableReference{ID: "n"}}, fn.Arguments.Positional)
	assert.Equal(t, &NumberLiteral{Value: "2"}, fn.Arguments.Lookup("minimumFractionDigits"))

	nested := exprs[6].(*Placeable)
	assert.Equal(t, &VariableReference{ID: "nested"}, nested.Expression)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		line   int
		column int
	}{
		{name: "missing equals", src: "ok = fine\nbroken value\n", line: 2, column: 8},
		{name: "unclosed placeable", src: "a = {$x", line: 1, column: 8},
		{name: "stray closing brace", src: "a = b }\n", line: 1, column: 7},
		{name: "no default variant", src: "a = { $n ->\n    [one] x\n   [other] y\n}\n", line: 4, column: 1},
		{name: "message as selector", src: "a = { b ->\n   *[x] y\n}\n", line: 1, column: 9},
		{name: "lowercase function", src: "a = { number($n) }\n", line: 1, column: 13},
		{name: "term without value", src: "-t =\n", line: 1, column: 1},
		{name: "empty message", src: "a =\nb = c\n", line: 1, column: 1},
		{name: "unterminated string", src: "a = { \"abc }\n", line: 1, column: 13},
		{name: "indented junk", src: "   junk\n", line: 1, column: 4},
		{name: "invalid start", src: "a = ok\n!bad = x\n", line: 2, column: 1},
		{name: "duplicate attribute", src: "a = x\n  .t = 1\n  .t = 2\n", line: 3, column: 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src))
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "want *ParseError, got %T", err)
			assert.Equal(t, tc.line, perr.Line, "line (%s)", perr.Reason)
			assert.Equal(t, tc.column, perr.Column, "column (%s)", perr.Reason)
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "base.ftl")
	require.NoError(t, os.WriteFile(good, []byte("name = English\n"), 0644))

	res, err := ParseFile(good)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)

	bad := filepath.Join(dir, "bad.ftl")
	require.NoError(t, os.WriteFile(bad, []byte("{oops}\n"), 0644))
	_, err = ParseFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)

	_, err = ParseFile(filepath.Join(dir, "missing.ftl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVariables(t *testing.T) {
	src := `msg = { $b } and { $a } { $count ->
    [one] { $b }
   *[other] { $c } { NUMBER($d) } { -t(x: 1) }
}
`
	res := mustParse(t, src)
	assert.Equal(t, []string{"b", "a", "count", "c", "d"}, Variables(res.Entries[0].Value))
	assert.Empty(t, Variables(nil))
}
