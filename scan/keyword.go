package scan

import (
	"fmt"
	"strconv"
	"strings"
)

// Keyword describes a translation call and where its arguments live.
// Keyword strings follow xgettext's --keyword syntax:
//
//	"t!:2"   t!(cx, "key"): the key is argument 2
//	"tr:1,2" tr("key", "Default text"): key 1, default text 2
//	"T"      T("key"): key is argument 1, no default text
type Keyword struct {
	// Name is matched against the whole callee path ("i18n::t!") or its
	// last segment ("t!").
	Name string
	// KeyArg is the 1-based position of the key argument.
	KeyArg int
	// DefaultArg is the 1-based position of the default text, 0 if none.
	DefaultArg int
}

// DefaultKeywords covers the common translation macros and functions.
var DefaultKeywords = []string{"t!:2", "t:1,2", "tr:1,2", "T:1,2", "$t:1"}

// ParseKeyword parses a keyword string such as "t!:2" or "tr:1,2".
func ParseKeyword(s string) (Keyword, error) {
	kw := Keyword{KeyArg: 1}
	// Names may contain "::", so only a trailing ":<positions>" is split off.
	name, args, hasArgs := strings.TrimSpace(s), "", false
	if i := strings.LastIndexByte(name, ':'); i >= 0 && i+1 < len(name) &&
		strings.Trim(name[i+1:], "0123456789, ") == "" {
		name, args, hasArgs = name[:i], name[i+1:], true
	}
	if name == "" {
		return Keyword{}, fmt.Errorf("keyword %q: missing name", s)
	}
	kw.Name = name
	if !hasArgs {
		return kw, nil
	}

	parts := strings.Split(args, ",")
	if len(parts) > 2 {
		return Keyword{}, fmt.Errorf("keyword %q: at most two argument positions", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 1 {
			return Keyword{}, fmt.Errorf("keyword %q: bad argument position %q", s, p)
		}
		if i == 0 {
			kw.KeyArg = n
		} else {
			kw.DefaultArg = n
		}
	}
	if kw.KeyArg == kw.DefaultArg {
		return Keyword{}, fmt.Errorf("keyword %q: key and default text share position %d", s, kw.KeyArg)
	}
	return kw, nil
}

// ParseKeywords parses a list of keyword strings.
func ParseKeywords(specs []string) ([]Keyword, error) {
	out := make([]Keyword, 0, len(specs))
	for _, spec := range specs {
		kw, err := ParseKeyword(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, kw)
	}
	return out, nil
}

// Matches reports whether callee invokes this keyword.
func (k Keyword) Matches(callee string) bool {
	return callee == k.Name || lastSegment(callee) == k.Name
}

func lastSegment(callee string) string {
	if i := strings.LastIndexAny(callee, ":."); i >= 0 {
		return callee[i+1:]
	}
	return callee
}
