package bindgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minios-linux/fluentkit/bundle"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func analyzeFiles(t *testing.T, files map[string]string) (*Analysis, error) {
	t.Helper()
	dir := t.TempDir()
	writeTree(t, dir, files)
	b, err := bundle.LoadDir("en_US", dir)
	require.NoError(t, err)
	return Analyze(b)
}

func methods(a *Analysis) []string {
	var out []string
	for _, d := range a.Descriptors {
		out = append(out, d.Method)
	}
	return out
}

func TestAnalyze_Basic(t *testing.T) {
	a, err := analyzeFiles(t, map[string]string{
		"base.ftl": "name=English\ncounter=count is at {$counter}\n",
	})
	require.NoError(t, err)
	require.Len(t, a.Descriptors, 2)

	name := a.Descriptors[0]
	assert.Equal(t, "base_name", name.Name)
	assert.Equal(t, "BaseName", name.Method)
	assert.Equal(t, "base_name", name.ID)
	assert.Equal(t, "base", name.Resource)
	assert.Equal(t, "name", name.Key)
	assert.Empty(t, name.Params)
	assert.Equal(t, "English", name.Source)

	counter := a.Descriptors[1]
	assert.Equal(t, "BaseCounter", counter.Method)
	assert.Equal(t, []Param{{Name: "counter", Ident: "counter"}}, counter.Params)
	assert.Equal(t, "count is at {$counter}", counter.Source)

	assert.Equal(t, []string{"base_name", "base_counter"}, a.IDs())
}

func TestAnalyze_Deterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"en_US/zeta.ftl":  "last = { $b } { $a }\n",
		"en_US/alpha.ftl": "first = { $x }\nsecond = { $y } { $x }\n    .title = { $z }\n",
		"en_US/mid.ftl":   "-brand = Kit\nmiddle = { -brand } { $q }\n",
	})

	var runs []*Analysis
	for i := 0; i < 5; i++ {
		a, err := AnalyzeDir(root, "en_US")
		require.NoError(t, err)
		runs = append(runs, a)
	}

	assert.Equal(t, []string{"AlphaFirst", "AlphaSecond", "MidMiddle", "ZetaLast"}, methods(runs[0]))
	assert.Equal(t, []Param{{Name: "y", Ident: "y"}, {Name: "x", Ident: "x"}, {Name: "z", Ident: "z"}}, runs[0].Descriptors[1].Params)
	assert.Equal(t, []Param{{Name: "b", Ident: "b"}, {Name: "a", Ident: "a"}}, runs[0].Descriptors[3].Params)
	assert.Equal(t, []string{"-mid_brand"}, runs[0].Terms)
	for _, r := range runs[1:] {
		assert.Equal(t, runs[0], r)
	}
}

func TestAnalyzeDir_PrefersAlias(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"default/base.ftl": "name = English\nextra = Only in default\n",
		"en_US/base.ftl":   "name = English\n",
	})

	a, err := AnalyzeDir(root, "en_US")
	require.NoError(t, err)
	assert.Equal(t, []string{"BaseName", "BaseExtra"}, methods(a))
	assert.Equal(t, filepath.Join(root, "default"), DefaultDir(root, "en_US"))
}

func TestAnalyze_References(t *testing.T) {
	a, err := analyzeFiles(t, map[string]string{
		"base.ftl": `greeting = Hello, { $name }!
welcome = { $title } { greeting } { shared_footer }
-brand = { $case ->
    [genitive] Kita
   *[nominative] Kit
}
about = About { -brand(case: "genitive") }
login =
    .title = Log in as { $user }
login-hint = { login.title } { $extra }
`,
		"shared.ftl": "footer = Bye { $name } and { $signature }\n",
	})
	require.NoError(t, err)

	byMethod := make(map[string]Descriptor)
	for _, d := range a.Descriptors {
		byMethod[d.Method] = d
	}

	assert.NotContains(t, byMethod, "BaseLogin", "attribute-only messages get no accessor")

	var welcome []string
	for _, p := range byMethod["BaseWelcome"].Params {
		welcome = append(welcome, p.Name)
	}
	assert.Equal(t, []string{"title", "name", "signature"}, welcome)

	assert.Empty(t, byMethod["BaseAbout"].Params, "term variables are not caller parameters")

	var hint []string
	for _, p := range byMethod["BaseLoginHint"].Params {
		hint = append(hint, p.Name)
	}
	assert.Equal(t, []string{"user", "extra"}, hint)

	assert.Equal(t, []string{"-base_brand"}, a.Terms)
}

func TestAnalyze_Errors(t *testing.T) {
	t.Run("unresolved message", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"base.ftl": "a = { missing }\n"})
		var unresolved *UnresolvedReferenceError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "base_a", unresolved.ID)
		assert.Equal(t, "missing", unresolved.Reference)
		assert.Contains(t, unresolved.Location, "base.ftl:1")
	})

	t.Run("unresolved attribute", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"base.ftl": "a = A\nb = { a.title }\n"})
		var unresolved *UnresolvedReferenceError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "a.title", unresolved.Reference)
	})

	t.Run("unresolved term", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"base.ftl": "a = { -nope }\n"})
		var unresolved *UnresolvedReferenceError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "-nope", unresolved.Reference)
	})

	t.Run("unresolved inside attribute-only message", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"base.ftl": "a =\n    .t = { gone }\n"})
		var unresolved *UnresolvedReferenceError
		assert.ErrorAs(t, err, &unresolved)
	})

	t.Run("unresolved inside term", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"base.ftl": "-t = { gone }\n"})
		var unresolved *UnresolvedReferenceError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "-base_t", unresolved.ID)
	})

	t.Run("value-less reference", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"base.ftl": "a =\n    .t = T\nb = { a }\n"})
		var unresolved *UnresolvedReferenceError
		assert.ErrorAs(t, err, &unresolved)
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"base.ftl": "a = { b }\nb = { c }\nc = { a }\n"})
		var cyclic *CyclicReferenceError
		require.ErrorAs(t, err, &cyclic)
		assert.Equal(t, []string{"base_a", "base_b", "base_c", "base_a"}, cyclic.Cycle)
	})

	t.Run("cycle through term", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"base.ftl": "a = { -t }\n-t = { a }\n"})
		var cyclic *CyclicReferenceError
		require.ErrorAs(t, err, &cyclic)
		assert.Equal(t, []string{"base_a", "-base_t", "base_a"}, cyclic.Cycle)
	})

	t.Run("leading digit", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"1st.ftl": "a = A\n"})
		var invalid *InvalidIdentifierError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "1stA", invalid.Identifier)
	})

	t.Run("reserved method", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"validate_default.ftl": "bundle_complete = x\n"})
		var invalid *InvalidIdentifierError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "ValidateDefaultBundleComplete", invalid.Identifier)

		_, err = analyzeFiles(t, map[string]string{".ftl": "language = x\n"})
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Language", invalid.Identifier)
	})

	t.Run("duplicate accessor", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"base.ftl": "my-key = A\nmy_key = B\n"})
		var dup *DuplicateAccessorError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "BaseMyKey", dup.Method)
		assert.Equal(t, "base_my-key", dup.First)
		assert.Equal(t, "base_my_key", dup.Second)
	})

	t.Run("ambiguous parameter", func(t *testing.T) {
		_, err := analyzeFiles(t, map[string]string{"base.ftl": "a = { $user-name } { $user_name }\n"})
		var amb *AmbiguousParameterError
		require.ErrorAs(t, err, &amb)
		assert.Equal(t, "userName", amb.Ident)
		assert.Equal(t, []string{"user-name", "user_name"}, amb.Names)
	})
}

func TestNaming(t *testing.T) {
	assert.Equal(t, "base_only_default", AccessorName("base", "only-default"))
	assert.Equal(t, "my_app_title", AccessorName("my.app", "title"))
	assert.Equal(t, "BaseOnlyDefault", MethodName("base_only_default"))
	assert.Equal(t, "AppHTTPError", MethodName("app_HTTPError"))

	tests := map[string]string{
		"counter":   "counter",
		"user-name": "userName",
		"URL":       "url",
		"fileCount": "fileCount",
		"type":      "typeArg",
		"func":      "funcArg",
		"l":         "lArg",
		"args":      "argsArg",
		"x_1":       "x1",
	}
	for in, want := range tests {
		assert.Equal(t, want, ParamName(in), in)
	}
}
