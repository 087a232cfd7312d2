// Package reorganize rewrites a translation pack so that its keys match the
// registry in content and order.
package reorganize

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/minios-linux/i18nkit/atomicfile"
	"github.com/minios-linux/i18nkit/pack"
	"github.com/minios-linux/i18nkit/registry"
)

// Result is the reorganized pack plus what happened to each moved key.
type Result struct {
	File *pack.File
	// Inserted are registry keys added as placeholders.
	Inserted []string
	// Restored are quarantined keys brought back into the registry order.
	Restored []string
	// Quarantined are keys moved out of the active section by this run.
	Quarantined []string
	// Dropped are untranslated keys unknown to the registry. They carry no
	// translation and are removed instead of quarantined.
	Dropped []string
}

// Changed reports whether anything was moved, added or removed.
func (r *Result) Changed() bool {
	return len(r.Inserted)+len(r.Restored)+len(r.Quarantined)+len(r.Dropped) > 0
}

// Reorganize returns a pack whose active keys are exactly the registry keys
// in registry order:
//   - Keys present in p keep their value, placeholder or not.
//   - Missing keys are restored from the quarantine when possible and
//     inserted as placeholders otherwise.
//   - Translated keys the registry does not know are appended to the
//     quarantine after the entries already there.
//
// A pack with Conflicts is refused with a *ProblemsError, since one of the
// two translations would have to be discarded.
//
// p is not modified. Reorganize(Reorganize(p)) is Reorganize(p).
func Reorganize(p *pack.File, reg *registry.Registry) (*Result, error) {
	if conflicts := Conflicts(p); len(conflicts) > 0 {
		return nil, &ProblemsError{Problems: conflicts}
	}
	res := &Result{File: &pack.File{}}

	active := make(map[string]pack.Entry, len(p.Entries))
	for _, e := range p.Entries {
		active[e.Key] = e
	}
	quarantined := make(map[string]pack.Entry, len(p.Quarantine))
	for _, e := range p.Quarantine {
		quarantined[e.Key] = e
	}

	for _, key := range reg.Keys() {
		e, ok := active[key]
		if q, found := quarantined[key]; found && !q.Placeholder && (!ok || e.Placeholder) {
			e, ok = q, true
			res.Restored = append(res.Restored, key)
		}
		if !ok {
			e = pack.Entry{Key: key, Placeholder: true}
			res.Inserted = append(res.Inserted, key)
		}
		res.File.Entries = append(res.File.Entries, e)
	}

	// The quarantine keeps its order; a key that is also active outside the
	// registry takes the active value.
	var moved []pack.Entry
	for _, e := range p.Entries {
		if reg.Has(e.Key) {
			continue
		}
		if e.Placeholder {
			res.Dropped = append(res.Dropped, e.Key)
			continue
		}
		if _, ok := quarantined[e.Key]; ok {
			quarantined[e.Key] = e
		} else {
			moved = append(moved, e)
		}
		res.Quarantined = append(res.Quarantined, e.Key)
	}
	for _, e := range p.Quarantine {
		if reg.Has(e.Key) {
			continue
		}
		e = quarantined[e.Key]
		if e.Placeholder {
			res.Dropped = append(res.Dropped, e.Key)
			continue
		}
		res.File.Quarantine = append(res.File.Quarantine, e)
	}
	res.File.Quarantine = append(res.File.Quarantine, moved...)
	return res, nil
}

// Conflicts lists keys that carry one translation in the active section and
// a different one in the quarantine.
func Conflicts(p *pack.File) []pack.Problem {
	active := make(map[string]pack.Entry, len(p.Entries))
	for _, e := range p.Entries {
		active[e.Key] = e
	}
	var out []pack.Problem
	for _, q := range p.Quarantine {
		e, ok := active[q.Key]
		if !ok || e.Placeholder || q.Placeholder || e.Value == q.Value {
			continue
		}
		out = append(out, pack.Problem{
			Key:    q.Key,
			Reason: fmt.Sprintf("translated as %q and quarantined as %q; keep one", e.Value, q.Value),
		})
	}
	return out
}

// ProblemsError is returned by File when the storage file has entries that
// cannot be carried over safely.
type ProblemsError struct {
	Path     string
	Problems []pack.Problem
}

func (e *ProblemsError) Error() string {
	errs := make([]error, len(e.Problems))
	for i, p := range e.Problems {
		errs[i] = errors.New(p.String())
	}
	msg := fmt.Sprintf("refusing to reorganize a malformed pack:\n%v", errors.Join(errs...))
	if e.Path == "" {
		return msg
	}
	return e.Path + ": " + msg
}

// File reorganizes the storage file at path in place. The new content is
// built in full and written atomically, and only when it differs from the
// current file.
func File(path string, reg *registry.Registry) (*Result, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	p, err := pack.Parse(data)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	if len(p.Problems) > 0 {
		return nil, false, &ProblemsError{Path: path, Problems: p.Problems}
	}

	res, err := Reorganize(p, reg)
	if err != nil {
		var perr *ProblemsError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, false, err
	}
	out := res.File.Marshal()
	if bytes.Equal(out, data) {
		return res, false, nil
	}
	if err := atomicfile.WriteFile(path, out, 0o644); err != nil {
		return nil, false, err
	}
	return res, true, nil
}
