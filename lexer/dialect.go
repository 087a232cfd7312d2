package lexer

import (
	"path/filepath"
	"slices"
	"strings"
)

// Dialect describes the lexical conventions of a source language.
type Dialect struct {
	Name string

	LineComments   []string
	BlockOpen      string
	BlockClose     string
	NestedComments bool

	// Quotes lists the characters that open escaped strings besides '"'.
	Quotes string
	// CharLiterals enables 'x' character literals.
	CharLiterals     bool
	TripleQuotes     bool
	RawBacktick      bool
	TemplateBacktick bool
	RustRaw          bool
	// StringPrefixes lists the letters allowed before a quote (Python).
	StringPrefixes string

	MultilineStrings     bool
	LineContinuationTrim bool
	MacroBang            bool
	DollarIdents         bool
}

var (
	Rust = Dialect{
		Name:                 "rust",
		LineComments:         []string{"//"},
		BlockOpen:            "/*",
		BlockClose:           "*/",
		NestedComments:       true,
		CharLiterals:         true,
		RustRaw:              true,
		MultilineStrings:     true,
		LineContinuationTrim: true,
		MacroBang:            true,
	}
	Go = Dialect{
		Name:         "go",
		LineComments: []string{"//"},
		BlockOpen:    "/*",
		BlockClose:   "*/",
		CharLiterals: true,
		RawBacktick:  true,
	}
	CLike = Dialect{
		Name:         "c",
		LineComments: []string{"//"},
		BlockOpen:    "/*",
		BlockClose:   "*/",
		CharLiterals: true,
	}
	JavaScript = Dialect{
		Name:             "javascript",
		LineComments:     []string{"//"},
		BlockOpen:        "/*",
		BlockClose:       "*/",
		Quotes:           "'",
		TemplateBacktick: true,
		DollarIdents:     true,
	}
	Python = Dialect{
		Name:             "python",
		LineComments:     []string{"#"},
		Quotes:           "'",
		TripleQuotes:     true,
		StringPrefixes:   "rbfu",
		MultilineStrings: false,
	}
)

var byExt = map[string]*Dialect{
	".rs":    &Rust,
	".go":    &Go,
	".c":     &CLike,
	".h":     &CLike,
	".cc":    &CLike,
	".cpp":   &CLike,
	".hpp":   &CLike,
	".m":     &CLike,
	".java":  &CLike,
	".kt":    &CLike,
	".cs":    &CLike,
	".swift": &CLike,
	".dart":  &JavaScript,
	".js":    &JavaScript,
	".jsx":   &JavaScript,
	".mjs":   &JavaScript,
	".ts":    &JavaScript,
	".tsx":   &JavaScript,
	".vue":   &JavaScript,
	".py":    &Python,
}

// ForFile returns the dialect for a file name, keyed by extension.
func ForFile(name string) (Dialect, bool) {
	d, ok := byExt[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return Dialect{}, false
	}
	return *d, true
}

// Extensions returns every extension ForFile recognizes, sorted.
func Extensions() []string {
	exts := make([]string, 0, len(byExt))
	for ext := range byExt {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}
