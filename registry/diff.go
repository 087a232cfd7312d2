package registry

// ChangeKind classifies a Change.
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Changed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "changed"
	}
}

// Change is one difference between two registries. Old is zero for
// additions and New is zero for removals.
type Change struct {
	Kind ChangeKind
	Key  string
	Old  Entry
	New  Entry
}

// Diff lists what changed from old to new: additions and text changes in
// new's order, then removals in old's order. Origin-only changes are not
// reported.
func Diff(old, new *Registry) []Change {
	var out []Change
	for _, e := range new.entries {
		prev, ok := old.Lookup(e.Key)
		switch {
		case !ok:
			out = append(out, Change{Kind: Added, Key: e.Key, New: e})
		case prev.Text != e.Text:
			out = append(out, Change{Kind: Changed, Key: e.Key, Old: prev, New: e})
		}
	}
	for _, e := range old.entries {
		if !new.Has(e.Key) {
			out = append(out, Change{Kind: Removed, Key: e.Key, Old: e})
		}
	}
	return out
}
