// Package menus extracts menu labels from a menu definition file into a
// separate defaults file and later rewrites those labels into translation
// calls.
//
// The two phases are deliberately separate commands: Scan only writes the
// defaults file, which is reviewed before Replace edits any source.
package menus

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/minios-linux/i18nkit/lexer"
	"github.com/minios-linux/i18nkit/registry"
	"github.com/minios-linux/i18nkit/scan"
)

// Config describes the menu construct and the replacement syntax.
type Config struct {
	// Containers are struct types whose NameField labels a menu.
	Containers []string
	NameField  string
	// ItemCalls are item constructors with the position of the label,
	// in keyword syntax ("MenuItem::action:1").
	ItemCalls []scan.Keyword
	// Keywords are translation calls; labels inside them are already done.
	Keywords  []scan.Keyword
	KeyPrefix string
	// CallTemplate is the replacement for a label; {key} is substituted.
	CallTemplate string
	// Import is added to a rewritten file that lacks it, after the inner
	// attributes and leading use declarations.
	Import string
	Logger *slog.Logger
}

// DefaultConfig matches gpui style menu definitions.
func DefaultConfig() Config {
	items, _ := scan.ParseKeywords([]string{"MenuItem::action:1", "MenuItem::os_action:1"})
	kws, _ := scan.ParseKeywords(scan.DefaultKeywords)
	return Config{
		Containers:   []string{"Menu"},
		NameField:    "name",
		ItemCalls:    items,
		Keywords:     kws,
		KeyPrefix:    "i18n.menu",
		CallTemplate: `t!(cx, "{key}")`,
		Import:       "use crate::i18n::t;",
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Label is one menu string found in the source.
type Label struct {
	// Key is the derived key. Replace ignores it and matches by text.
	Key  string
	Text string
	Line int
	Col  int
	// Start and End delimit the literal, quotes included.
	Start int
	End   int
	// Menu is set for menu names, unset for items.
	Menu bool
}

// Extract returns the menu labels of src in source order. Labels already
// wrapped in a translation call are skipped.
func Extract(name string, src []byte, cfg Config) ([]Label, error) {
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("%s: not valid UTF-8 text", name)
	}
	d, ok := lexer.ForFile(name)
	if !ok {
		d = lexer.Rust
	}
	toks, err := lexer.Tokenize(src, d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	// Path segment of each container frame, from its name field.
	names := map[int]string{}
	var labels []Label
	for _, s := range lexer.Strings(toks) {
		if s.Token.Value == "" {
			continue
		}
		if cfg.translated(s) {
			cfg.recordTranslatedName(s, names)
			continue
		}
		top, ok := s.Top()
		if !ok || !s.Direct() {
			continue
		}
		l := Label{
			Text:  s.Token.Value,
			Line:  s.Token.Line,
			Col:   s.Token.Col,
			Start: s.Token.Start,
			End:   s.Token.End,
		}
		switch {
		case top.Kind == lexer.Brace && cfg.isContainer(top.Callee) && s.Label == cfg.NameField:
			names[top.ID] = registry.Slug(l.Text)
			l.Menu = true
			l.Key = registry.Join(cfg.KeyPrefix, cfg.path(s.Frames, names))
		case cfg.isItem(top):
			if strings.HasPrefix(l.Text, "https://") || strings.HasPrefix(l.Text, "http://") {
				continue
			}
			l.Key = registry.Join(cfg.KeyPrefix, cfg.path(s.Frames, names), registry.Slug(l.Text))
		default:
			continue
		}
		labels = append(labels, l)
	}
	return labels, nil
}

func (c Config) translated(s lexer.Site) bool {
	for _, f := range s.Calls() {
		for _, kw := range c.Keywords {
			if kw.Matches(f.Callee) {
				return true
			}
		}
	}
	return false
}

// recordTranslatedName keeps menu paths intact in partly rewritten files:
// a translated key directly under a container names it by its last segment.
func (c Config) recordTranslatedName(s lexer.Site, names map[int]string) {
	n := len(s.Frames)
	if n < 2 {
		return
	}
	call, parent := s.Frames[n-1], s.Frames[n-2]
	if parent.Kind != lexer.Brace || !c.isContainer(parent.Callee) || !s.Direct() {
		return
	}
	for _, kw := range c.Keywords {
		if kw.Matches(call.Callee) && call.Arg == kw.KeyArg && strings.HasPrefix(s.Token.Value, c.KeyPrefix+".") {
			names[parent.ID] = s.Token.Value[strings.LastIndexByte(s.Token.Value, '.')+1:]
			return
		}
	}
}

func (c Config) isContainer(callee string) bool {
	for _, name := range c.Containers {
		if callee == name || strings.HasSuffix(callee, "::"+name) || strings.HasSuffix(callee, "."+name) {
			return true
		}
	}
	return false
}

func (c Config) isItem(top lexer.Frame) bool {
	if top.Kind != lexer.Paren {
		return false
	}
	for _, kw := range c.ItemCalls {
		if kw.Matches(top.Callee) && top.Arg == kw.KeyArg {
			return true
		}
	}
	return false
}

// path joins the names of the enclosing containers, outermost first.
func (c Config) path(frames []lexer.Frame, names map[int]string) string {
	var parts []string
	for _, f := range frames {
		if f.Kind == lexer.Brace && c.isContainer(f.Callee) {
			if n := names[f.ID]; n != "" {
				parts = append(parts, n)
			}
		}
	}
	return strings.Join(parts, ".")
}

// Defaults builds the menu defaults for src on top of prev, which may be
// empty. Entries already in prev keep their key, text and position; a label
// whose derived key is taken by another text gets a numeric suffix.
func Defaults(prev *registry.Registry, rel string, labels []Label) (*registry.Registry, error) {
	entries := prev.Entries()
	taken := map[string]string{}
	byText := map[string]bool{}
	for _, e := range entries {
		taken[e.Key] = e.Text
		byText[e.Text+"\x00"+e.Origin] = true
	}
	for _, l := range labels {
		origin := fmt.Sprintf("%s:%d", rel, l.Line)
		if byText[l.Text+"\x00"+origin] {
			continue
		}
		key := l.Key
		for n := 2; ; n++ {
			text, ok := taken[key]
			if !ok || text == l.Text {
				break
			}
			key = fmt.Sprintf("%s_%d", l.Key, n)
		}
		taken[key] = l.Text
		entries = append(entries, registry.Entry{Key: key, Text: l.Text, Origin: origin, Group: "menu"})
	}
	return registry.FromEntries(entries)
}

// Scan reads the menu file at srcPath and writes the menu defaults to
// defaultsPath, keeping entries that are already there. rel is the source
// path recorded in origins. The source file is never modified.
func Scan(srcPath, rel, defaultsPath string, cfg Config) (*registry.Registry, bool, error) {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", srcPath, err)
	}
	labels, err := Extract(rel, src, cfg)
	if err != nil {
		return nil, false, err
	}
	prev, err := registry.LoadOrEmpty(defaultsPath)
	if err != nil {
		return nil, false, err
	}
	reg, err := Defaults(prev, rel, labels)
	if err != nil {
		return nil, false, err
	}
	changed, err := registry.Save(defaultsPath, reg)
	if err != nil {
		return nil, false, err
	}
	cfg.logger().Debug("menu scan", "file", rel, "labels", len(labels), "entries", reg.Len())
	return reg, changed, nil
}
