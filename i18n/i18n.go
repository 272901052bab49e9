// Package i18n translates the fluentkit command's own user-facing strings.
//
// It wraps the gotext library to provide simple T() and N() functions.
// Translations are embedded in the binary via //go:embed and loaded at
// startup via Init().
//
// Usage:
//
//	import "github.com/minios-linux/fluentkit/i18n"
//
//	func main() {
//	    i18n.Init("")  // auto-detect from FLUENTKIT_LANG, then the locale variables
//	    fmt.Println(i18n.T("Hello, world!"))
//	    fmt.Println(i18n.N("Found %d file", "Found %d files", count))
//	}
package i18n

import (
	"embed"
	"io/fs"
	"path"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/leonelquinteros/gotext"
)

// locales embeds the compiled .po/.mo translation files.
// Directory structure: locales/{lang}/LC_MESSAGES/fluentkit.po
//
//go:embed all:locales
var locales embed.FS

// domain is the gettext domain name.
const domain = "fluentkit"

// po is the gotext locale object used for translations.
var po *gotext.Locale

// current is the language passed to the last Init.
var current string

// Language returns the language chosen by Init, "" before Init.
func Language() string {
	return current
}

// Init initializes the i18n system. If lang is empty, it is detected from
// FLUENTKIT_LANG and the gettext locale variables (see localeEnv).
//
// Init should be called once at program startup, before any T() or N() calls.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	current = lang

	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T translates a string. If no translation is available, returns the
// original string unchanged (standard gettext passthrough behavior).
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N translates a string with plural forms. The singular form is used
// when n == 1, the plural form otherwise (exact rules depend on the
// target language's plural formula).
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// localeEnv holds the variables consulted when Init gets no language.
// FLUENTKIT_LANG comes first, then the GNU gettext order
// LANGUAGE > LC_ALL > LC_MESSAGES > LANG.
type localeEnv struct {
	Override   string   `env:"FLUENTKIT_LANG"`
	Language   []string `env:"LANGUAGE" envSeparator:":"`
	LCAll      string   `env:"LC_ALL"`
	LCMessages string   `env:"LC_MESSAGES"`
	Lang       string   `env:"LANG"`
}

func (e localeEnv) candidates() []string {
	var out []string
	for _, raw := range append(append([]string{e.Override}, e.Language...), e.LCAll, e.LCMessages, e.Lang) {
		// "ru_RU.UTF-8@euro" -> "ru_RU"
		if idx := strings.IndexAny(raw, ".@"); idx >= 0 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == "C" || raw == "POSIX" {
			continue
		}
		out = append(out, raw)
	}
	return out
}

// hasCatalog reports whether lang, or its base language, is embedded.
func hasCatalog(lang string) bool {
	base, _, _ := strings.Cut(strings.ReplaceAll(lang, "-", "_"), "_")
	for _, l := range []string{lang, base} {
		if _, err := fs.Stat(locales, path.Join("locales", l, "LC_MESSAGES", domain+".po")); err == nil {
			return true
		}
	}
	return false
}

// detectLanguage picks the first candidate with an embedded catalog, else
// the first candidate at all, else "en".
func detectLanguage() string {
	var e localeEnv
	if err := env.Parse(&e); err != nil {
		return "en"
	}
	cands := e.candidates()
	for _, c := range cands {
		if hasCatalog(c) {
			return c
		}
	}
	if len(cands) > 0 {
		return cands[0]
	}
	return "en"
}
