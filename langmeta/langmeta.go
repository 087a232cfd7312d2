// Package langmeta provides language display metadata (native names, English
// names and emoji flags) for pack descriptors and CLI output.
package langmeta

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	// Code is the canonical BCP 47 tag, e.g. "pt-BR".
	Code string
	// Name is the language's name in itself, e.g. "português (Brasil)".
	Name string
	// EnglishName is e.g. "Brazilian Portuguese".
	EnglishName string
	Flag        string
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Parse resolves a language code such as "pt_br" or "zh-CN". It fails for
// codes that are not well-formed BCP 47 tags or name no known language.
func Parse(lang string) (Meta, error) {
	code := canonicalize(lang)
	tag, err := language.Parse(code)
	if err != nil {
		return Meta{}, fmt.Errorf("language %q: %w", lang, err)
	}
	if base, conf := tag.Base(); conf == language.No || base.String() == "und" {
		return Meta{}, fmt.Errorf("language %q: unknown language", lang)
	}
	name := display.Self.Name(tag)
	english := display.English.Tags().Name(tag)
	if name == "" && english == "" {
		return Meta{}, fmt.Errorf("language %q: unknown language", lang)
	}
	if name == "" {
		name = english
	}
	return Meta{Code: tag.String(), Name: name, EnglishName: english, Flag: flagFor(tag)}, nil
}

// Resolve returns best-effort metadata, passing unknown codes through as
// their own name.
func Resolve(lang string) Meta {
	m, err := Parse(lang)
	if err != nil {
		return Meta{Code: lang, Name: lang, EnglishName: lang}
	}
	return m
}

// flagFor returns the emoji flag of the tag's region, using the most likely
// region when none is given.
func flagFor(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No {
		return ""
	}
	code := region.String()
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return ""
	}
	return string([]rune{0x1F1E6 + rune(code[0]-'A'), 0x1F1E6 + rune(code[1]-'A')})
}
