// Package i18n translates the messages i18nkit prints about itself.
//
// Catalogs are gettext PO files embedded from locales/<lang>/LC_MESSAGES.
// Init picks the catalog that best matches the user's locale settings;
// English is the source language and needs no catalog.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var locales embed.FS

const (
	domain     = "i18nkit"
	localesDir = "locales"
)

var (
	po      *gotext.Locale
	current = "en"
)

// Available returns the languages that have an embedded catalog, sorted.
func Available() []string {
	entries, err := fs.ReadDir(locales, localesDir)
	if err != nil {
		return nil
	}
	var langs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := fs.Stat(locales, localesDir+"/"+e.Name()+"/LC_MESSAGES/"+domain+".po"); err == nil {
			langs = append(langs, e.Name())
		}
	}
	slices.Sort(langs)
	return langs
}

// Init selects the catalog for lang, or for the locale environment
// (LANGUAGE, LC_ALL, LC_MESSAGES, LANG) when lang is empty, and returns
// the language chosen. Without a matching catalog messages stay English.
func Init(lang string) string {
	prefs := []string{lang}
	if lang == "" {
		prefs = preferences()
	}

	current = match(prefs, Available())
	if current == "en" {
		po = nil
		return current
	}
	po = gotext.NewLocaleFSWithPath(current, locales, localesDir)
	po.AddDomain(domain)
	po.SetDomain(domain)
	return current
}

// Language returns the language selected by the last Init.
func Language() string { return current }

// match picks the catalog closest to the preference list. Index 0 of the
// matcher is English so that an English preference never falls through to
// another catalog.
func match(prefs, available []string) string {
	supported := []language.Tag{language.English}
	for _, a := range available {
		tag, err := language.Parse(a)
		if err != nil {
			continue
		}
		supported = append(supported, tag)
	}

	var tags []language.Tag
	for _, p := range prefs {
		tag, err := language.Parse(strings.ReplaceAll(p, "_", "-"))
		if err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 || len(supported) == 1 {
		return "en"
	}

	_, idx, conf := language.NewMatcher(supported).Match(tags...)
	if idx == 0 || conf == language.No {
		return "en"
	}
	return available[idx-1]
}

// preferences lists the user's languages in gettext priority order,
// without encodings and without the C and POSIX locales.
func preferences() []string {
	var out []string
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		list := []string{val}
		if env == "LANGUAGE" {
			list = strings.Split(val, ":")
		}
		for _, v := range list {
			if i := strings.IndexAny(v, ".@"); i >= 0 {
				v = v[:i]
			}
			if v == "" || v == "C" || v == "POSIX" {
				continue
			}
			out = append(out, v)
		}
	}
	return out
}

// T translates msgid and formats it with args, if any.
func T(msgid string, args ...any) string {
	if po == nil {
		return sprintf(msgid, args)
	}
	return po.Get(msgid, args...)
}

// N translates a message with plural forms chosen by n and formats it
// with args.
func N(singular, plural string, n int, args ...any) string {
	if po == nil {
		if n == 1 {
			return sprintf(singular, args)
		}
		return sprintf(plural, args)
	}
	return po.GetN(singular, plural, n, args...)
}

func sprintf(format string, args []any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
