// Package registry holds the key registry: the ordered, authoritative list of
// translation keys with their default texts and origins.
//
// A Registry is immutable once built. It is serialized as YAML grouped by
// feature area, with each entry's origin kept as a line comment, so that a
// regenerated registry diffs cleanly against the previous one.
package registry

import (
	"fmt"
	"slices"
)

// Entry is one registered key.
type Entry struct {
	Key  string
	Text string
	// Origin is "path:line" of the first observed use, or empty.
	Origin string
	Group  string
}

// Registry is an ordered set of entries with unique keys.
type Registry struct {
	entries []Entry
	index   map[string]int
}

// DuplicateKeyError reports a key bound to two different default texts.
type DuplicateKeyError struct {
	Key    string
	First  Entry
	Second Entry
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("key %q has conflicting default texts: %q (%s) and %q (%s)",
		e.Key, e.First.Text, originOr(e.First.Origin), e.Second.Text, originOr(e.Second.Origin))
}

func originOr(o string) string {
	if o == "" {
		return "unknown origin"
	}
	return o
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{index: map[string]int{}}
}

// FromEntries builds a registry. Entries are regrouped so that each group is
// contiguous, groups appear in order of first occurrence and entries keep
// their relative order within a group. An entry without a group gets the one
// implied by its key. Repeated keys with identical text collapse into the
// first; repeated keys with different text fail with *DuplicateKeyError.
func FromEntries(entries []Entry) (*Registry, error) {
	var groups []string
	byGroup := map[string][]Entry{}
	seen := map[string]Entry{}

	for _, e := range entries {
		if e.Group == "" {
			e.Group = GroupOf(e.Key)
		}
		if prev, ok := seen[e.Key]; ok {
			if prev.Text != e.Text {
				return nil, &DuplicateKeyError{Key: e.Key, First: prev, Second: e}
			}
			continue
		}
		seen[e.Key] = e
		if _, ok := byGroup[e.Group]; !ok {
			groups = append(groups, e.Group)
		}
		byGroup[e.Group] = append(byGroup[e.Group], e)
	}

	r := &Registry{index: make(map[string]int, len(seen))}
	for _, g := range groups {
		for _, e := range byGroup[g] {
			r.index[e.Key] = len(r.entries)
			r.entries = append(r.entries, e)
		}
	}
	return r, nil
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// Entries returns a copy of the entries in registry order.
func (r *Registry) Entries() []Entry { return slices.Clone(r.entries) }

// Keys returns the keys in registry order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}

// Lookup returns the entry for key.
func (r *Registry) Lookup(key string) (Entry, bool) {
	i, ok := r.index[key]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Groups returns group names in order.
func (r *Registry) Groups() []string {
	var out []string
	for _, e := range r.entries {
		if len(out) == 0 || out[len(out)-1] != e.Group {
			out = append(out, e.Group)
		}
	}
	return out
}

// Equal reports whether both registries hold the same entries in the same
// order.
func (r *Registry) Equal(o *Registry) bool {
	return slices.Equal(r.entries, o.entries)
}
