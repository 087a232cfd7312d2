// Package validate checks a translation pack against the key registry.
package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/minios-linux/i18nkit/pack"
	"github.com/minios-linux/i18nkit/registry"
)

// ErrReportNotEmpty is returned by callers that turn a failing report into
// an exit status.
var ErrReportNotEmpty = errors.New("validation failed")

// Report lists every problem found in a pack. Untranslated and Quarantined
// are informational and do not make a report fail.
type Report struct {
	Pack string
	// Missing are registry keys absent from the pack.
	Missing []string
	// Extra are active pack keys the registry does not know.
	Extra []string
	// Malformed are entries or descriptor fields that break the format.
	Malformed    []pack.Problem
	MissingFiles []string

	Untranslated []string
	Quarantined  []string
}

// OK reports whether the pack passed.
func (r *Report) OK() bool {
	return len(r.Missing) == 0 && len(r.Extra) == 0 && len(r.Malformed) == 0 && len(r.MissingFiles) == 0
}

// Options configure validation.
type Options struct {
	Layout     pack.Layout
	KeyPattern *regexp.Regexp
}

func (o Options) withDefaults() Options {
	if o.Layout == (pack.Layout{}) {
		o.Layout = pack.DefaultLayout()
	}
	if o.KeyPattern == nil {
		o.KeyPattern = registry.DefaultKeyPattern
	}
	return o
}

// Pack validates the pack in dir. It returns an error only for I/O failures
// other than missing files; everything else is recorded in the report.
func Pack(dir string, reg *registry.Registry, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	r := &Report{Pack: dir}

	descPath := opts.Layout.DescriptorPath(dir)
	desc, unknown, err := pack.LoadDescriptor(descPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.MissingFiles = append(r.MissingFiles, opts.Layout.Descriptor)
	case err != nil:
		r.Malformed = append(r.Malformed, pack.Problem{Key: opts.Layout.Descriptor, Reason: err.Error()})
	default:
		for _, p := range desc.Check() {
			r.Malformed = append(r.Malformed, pack.Problem{Key: opts.Layout.Descriptor + "#" + p.Key, Reason: p.Reason})
		}
		for _, k := range unknown {
			r.Malformed = append(r.Malformed, pack.Problem{Key: opts.Layout.Descriptor + "#" + k, Reason: "unknown field"})
		}
	}

	storagePath := opts.Layout.StoragePath(dir)
	data, err := os.ReadFile(storagePath)
	if errors.Is(err, fs.ErrNotExist) {
		r.MissingFiles = append(r.MissingFiles, opts.Layout.Storage)
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", storagePath, err)
	}
	f, err := pack.Parse(data)
	if err != nil {
		r.Malformed = append(r.Malformed, pack.Problem{Key: opts.Layout.Storage, Reason: err.Error()})
		return r, nil
	}
	Storage(r, f, reg, opts.KeyPattern)
	return r, nil
}

// Storage compares a parsed storage file with the registry and adds the
// findings to r.
func Storage(r *Report, f *pack.File, reg *registry.Registry, keyPattern *regexp.Regexp) {
	if keyPattern == nil {
		keyPattern = registry.DefaultKeyPattern
	}
	r.Malformed = append(r.Malformed, f.Problems...)

	present := map[string]bool{}
	for _, k := range f.Keys() {
		present[k] = true
	}
	for _, k := range f.Rejected {
		present[k] = true
	}
	for _, k := range reg.Keys() {
		if !present[k] {
			r.Missing = append(r.Missing, k)
		}
	}
	for _, k := range f.Rejected {
		if !reg.Has(k) {
			r.Extra = append(r.Extra, k)
		}
	}

	for _, e := range f.Entries {
		if !keyPattern.MatchString(e.Key) {
			r.Malformed = append(r.Malformed, pack.Problem{Key: e.Key, Reason: "key does not match " + keyPattern.String()})
		}
		def, ok := reg.Lookup(e.Key)
		if !ok {
			r.Extra = append(r.Extra, e.Key)
			continue
		}
		if e.Placeholder {
			r.Untranslated = append(r.Untranslated, e.Key)
			continue
		}
		if e.Value == "" {
			continue
		}
		if want, got := Placeholders(def.Text), Placeholders(e.Value); !slices.Equal(want, got) {
			r.Malformed = append(r.Malformed, pack.Problem{
				Key:    e.Key,
				Reason: fmt.Sprintf("placeholders %s do not match default text %s", list(got), list(want)),
			})
		}
	}
	for _, q := range f.Quarantine {
		r.Quarantined = append(r.Quarantined, q.Key)
	}
}

var placeholderRE = regexp.MustCompile(`\{[A-Za-z0-9_]*\}|%(?:\d+\$)?[-+#0]*\d*(?:\.\d+)?[a-zA-Z]|%\d+`)

// Placeholders returns the sorted multiset of interpolation markers in s:
// {name}, {}, printf verbs and Qt-style %1.
func Placeholders(s string) []string {
	found := placeholderRE.FindAllString(s, -1)
	slices.Sort(found)
	return found
}

func list(ps []string) string {
	if len(ps) == 0 {
		return "(none)"
	}
	return strings.Join(ps, " ")
}

// String renders the report for terminals, one problem per line.
func (r *Report) String() string {
	var b strings.Builder
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s (%d):\n", title, len(items))
		for _, it := range items {
			fmt.Fprintf(&b, "  %s\n", it)
		}
	}
	var malformed []string
	for _, p := range r.Malformed {
		malformed = append(malformed, p.String())
	}
	section("missing files", r.MissingFiles)
	section("missing keys", r.Missing)
	section("extra keys", r.Extra)
	section("malformed", malformed)
	return b.String()
}
