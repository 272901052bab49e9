// Package langmeta resolves display metadata (native and English names,
// emoji flags) for language directory names such as en_US or pt-BR.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Tag is the canonical BCP 47 form, "" when the name did not parse.
	Tag string
	// Name is the language's name for itself.
	Name string
	// English is the English name.
	English string
	// Flag is the emoji flag of the language's region, "" when none applies.
	Flag string
}

var englishNamer = display.English.Tags()

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 && len(parts[1]) == 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort metadata for a language code. Directory
// style names (pt_BR) are accepted. Unknown codes resolve to themselves
// with no flag.
func Resolve(lang string) Meta {
	tag, err := language.Parse(canonicalize(lang))
	if err != nil {
		return Meta{Name: lang, English: lang}
	}

	m := Meta{
		Tag:     tag.String(),
		Name:    display.Self.Name(tag),
		English: englishNamer.Name(tag),
	}
	if m.Name == "" {
		m.Name = lang
	}
	if m.English == "" {
		m.English = m.Name
	}
	if region, conf := tag.Region(); conf != language.No && region.IsCountry() {
		m.Flag = FlagFromRegion(region.String())
	}
	return m
}

// FlagFromRegion converts a two-letter region code to its emoji flag.
// Anything else yields "".
func FlagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	region = strings.ToUpper(region)
	var b strings.Builder
	for _, r := range region {
		if r < 'A' || r > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}
