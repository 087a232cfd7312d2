// Package builder merges scan findings into the key registry.
//
// Merging never drops or reorders existing entries: entries the scan did not
// observe are reported as stale and kept, and call sites naming keys the
// registry does not know are reported rather than silently registered.
// New keys are appended within their group: at the end of the group when it
// already exists, which may be mid-file, and as a new group at the end of
// the file otherwise.
package builder

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/minios-linux/i18nkit/registry"
	"github.com/minios-linux/i18nkit/scan"
)

// Options control a merge.
type Options struct {
	// KeyPrefix starts every derived key. Defaults to registry.DefaultPrefix.
	KeyPrefix string
	// KeyPattern validates keys. Defaults to registry.DefaultKeyPattern.
	KeyPattern *regexp.Regexp
	// MinConfidence drops literal candidates scoring lower.
	MinConfidence int
	// AdoptCallSites registers unknown call-site keys that carry a default
	// text instead of only reporting them.
	AdoptCallSites bool
	Logger         *slog.Logger
}

// Update records a changed default text.
type Update struct {
	Key string
	Old string
	New string
}

// Report describes what a merge did.
type Report struct {
	Added   []registry.Entry
	Updated []Update
	// Unresolved are call sites whose key is not registered.
	Unresolved []scan.Finding
	// Invalid are call sites whose key is not well formed.
	Invalid []scan.Finding
	// Stale lists registered keys the scan did not observe.
	Stale []string
}

// Merge folds findings into prev and returns the new registry. prev is not
// modified. A key given two different default texts in the same scan, by
// call sites or by a call site and a literal, fails with
// *registry.DuplicateKeyError.
func Merge(prev *registry.Registry, findings []scan.Finding, opts Options) (*registry.Registry, *Report, error) {
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = registry.DefaultPrefix
	}
	if opts.KeyPattern == nil {
		opts.KeyPattern = registry.DefaultKeyPattern
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	if err := checkDefaults(findings); err != nil {
		return nil, nil, err
	}

	m := &merger{
		opts:    opts,
		entries: prev.Entries(),
		index:   map[string]int{},
		seen:    map[string]bool{},
		claimed: map[string]scan.Finding{},
		report:  &Report{},
	}
	for i, e := range m.entries {
		m.index[e.Key] = i
	}

	for _, f := range findings {
		var err error
		switch f.Kind {
		case scan.CallSiteKey:
			err = m.callSite(f)
		case scan.LiteralCandidate:
			if f.Confidence >= opts.MinConfidence {
				err = m.literal(f)
			}
		}
		if err != nil {
			return nil, nil, err
		}
	}

	for _, k := range prev.Keys() {
		if !m.seen[k] {
			m.report.Stale = append(m.report.Stale, k)
		}
	}
	for _, f := range m.report.Unresolved {
		log.Warn("key not in registry", "key", f.Key, "at", f.Pos.String())
	}
	for _, f := range m.report.Invalid {
		log.Warn("malformed key", "key", f.Key, "at", f.Pos.String())
	}

	reg, err := registry.FromEntries(m.entries)
	if err != nil {
		return nil, nil, err
	}
	return reg, m.report, nil
}

// checkDefaults rejects one key bound to two different default texts.
func checkDefaults(findings []scan.Finding) error {
	first := map[string]scan.Finding{}
	for _, f := range findings {
		if f.Kind != scan.CallSiteKey || f.Text == "" {
			continue
		}
		prev, ok := first[f.Key]
		if !ok {
			first[f.Key] = f
			continue
		}
		if prev.Text != f.Text {
			return conflict(f.Key, prev, f)
		}
	}
	return nil
}

func conflict(key string, first, second scan.Finding) *registry.DuplicateKeyError {
	return &registry.DuplicateKeyError{
		Key:    key,
		First:  registry.Entry{Key: key, Text: first.Text, Origin: first.Pos.String()},
		Second: registry.Entry{Key: key, Text: second.Text, Origin: second.Pos.String()},
	}
}

type merger struct {
	opts    Options
	entries []registry.Entry
	index   map[string]int
	seen    map[string]bool
	// claimed holds the finding that set a key's text in this scan.
	claimed map[string]scan.Finding
	report  *Report
}

func (m *merger) claim(key string, f scan.Finding) error {
	if c, ok := m.claimed[key]; ok {
		if c.Text != f.Text {
			return conflict(key, c, f)
		}
		return nil
	}
	m.claimed[key] = f
	return nil
}

func (m *merger) add(e registry.Entry) {
	m.index[e.Key] = len(m.entries)
	m.entries = append(m.entries, e)
	m.seen[e.Key] = true
	m.report.Added = append(m.report.Added, e)
}

func (m *merger) callSite(f scan.Finding) error {
	if !m.opts.KeyPattern.MatchString(f.Key) {
		m.report.Invalid = append(m.report.Invalid, f)
		return nil
	}
	if f.Text != "" {
		if err := m.claim(f.Key, f); err != nil {
			return err
		}
	}
	i, ok := m.index[f.Key]
	if !ok {
		if m.opts.AdoptCallSites && f.Text != "" {
			m.add(registry.Entry{Key: f.Key, Text: f.Text, Origin: f.Pos.String(), Group: registry.GroupOf(f.Key)})
			return nil
		}
		m.report.Unresolved = append(m.report.Unresolved, f)
		return nil
	}
	m.seen[f.Key] = true
	e := &m.entries[i]
	if f.Text != "" && f.Text != e.Text {
		m.report.Updated = append(m.report.Updated, Update{Key: e.Key, Old: e.Text, New: f.Text})
		e.Text = f.Text
		e.Origin = f.Pos.String()
	}
	if e.Origin == "" {
		e.Origin = f.Pos.String()
	}
	return nil
}

// literal registers a candidate under prefix.group.slug, reusing a key that
// already holds the same text and suffixing _2, _3... on collisions. A key a
// call site in this scan bound to other text is a conflict, not a collision.
func (m *merger) literal(f scan.Finding) error {
	base := registry.Join(m.opts.KeyPrefix, f.Group, registry.Slug(f.Text))
	for n := 1; ; n++ {
		key := base
		if n > 1 {
			key = base + "_" + strconv.Itoa(n)
		}
		if c, ok := m.claimed[key]; ok && c.Kind == scan.CallSiteKey && c.Text != f.Text {
			return conflict(key, c, f)
		}
		i, ok := m.index[key]
		if !ok {
			if !m.opts.KeyPattern.MatchString(key) {
				m.report.Invalid = append(m.report.Invalid, scan.Finding{
					Kind: f.Kind, Key: key, Text: f.Text, Pos: f.Pos, Group: f.Group,
				})
				return nil
			}
			m.add(registry.Entry{Key: key, Text: f.Text, Origin: f.Pos.String(), Group: f.Group})
			return m.claim(key, f)
		}
		if m.entries[i].Text == f.Text {
			m.seen[key] = true
			if m.entries[i].Origin == "" {
				m.entries[i].Origin = f.Pos.String()
			}
			return m.claim(key, f)
		}
	}
}

// Summary renders the report counts for log output.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d added, %d updated, %d unresolved, %d invalid, %d stale",
		len(r.Added), len(r.Updated), len(r.Unresolved), len(r.Invalid), len(r.Stale))
}
