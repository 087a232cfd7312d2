package menus

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/minios-linux/i18nkit/atomicfile"
	"github.com/minios-linux/i18nkit/registry"
)

// MatchError reports a label that does not map to exactly one defaults
// entry. Candidates is empty when no entry has the label's text.
type MatchError struct {
	File       string
	Line       int
	Text       string
	Candidates []string
}

func (e *MatchError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("%s:%d: %q has no defaults entry", e.File, e.Line, e.Text)
	}
	return fmt.Sprintf("%s:%d: %q is ambiguous between keys %s", e.File, e.Line, e.Text, strings.Join(e.Candidates, ", "))
}

// match finds the defaults key for a label. Entries are matched by text;
// among several, the one whose origin is the label's own position wins.
func match(defaults *registry.Registry, rel string, l Label) (string, error) {
	var same []registry.Entry
	for _, e := range defaults.Entries() {
		if e.Text == l.Text {
			same = append(same, e)
		}
	}
	if len(same) == 1 {
		return same[0].Key, nil
	}
	origin := fmt.Sprintf("%s:%d", rel, l.Line)
	var here []string
	for _, e := range same {
		if e.Origin == origin {
			here = append(here, e.Key)
		}
	}
	if len(here) == 1 {
		return here[0], nil
	}
	keys := make([]string, len(same))
	for i, e := range same {
		keys[i] = e.Key
	}
	return "", &MatchError{File: rel, Line: l.Line, Text: l.Text, Candidates: keys}
}

// Replace returns src with every menu label rewritten into a translation
// call, and the number of labels replaced. If any label cannot be matched,
// it returns all match errors joined and no output.
func Replace(src []byte, rel string, defaults *registry.Registry, cfg Config) ([]byte, int, error) {
	labels, err := Extract(rel, src, cfg)
	if err != nil {
		return nil, 0, err
	}
	keys := make([]string, len(labels))
	var errs []error
	for i, l := range labels {
		key, err := match(defaults, rel, l)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		keys[i] = key
	}
	if len(errs) > 0 {
		return nil, 0, errors.Join(errs...)
	}
	if len(labels) == 0 {
		return src, 0, nil
	}

	var imp []byte
	at := 0
	if cfg.Import != "" && !bytes.Contains(src, []byte(cfg.Import)) {
		imp = []byte(cfg.Import + "\n")
		at = importOffset(src)
	}
	var out bytes.Buffer
	last := 0
	for i, l := range labels {
		if imp != nil && at <= l.Start {
			out.Write(src[last:at])
			out.Write(imp)
			last, imp = at, nil
		}
		out.Write(src[last:l.Start])
		out.WriteString(strings.ReplaceAll(cfg.CallTemplate, "{key}", keys[i]))
		last = l.End
	}
	if imp != nil {
		at = max(at, last)
		out.Write(src[last:at])
		out.Write(imp)
		last = at
	}
	out.Write(src[last:])
	return out.Bytes(), len(labels), nil
}

// importOffset is where an import line belongs in src: after the leading
// inner doc comments and inner attributes, and after the first block of use
// declarations when one follows them.
func importOffset(src []byte) int {
	lines := bytes.SplitAfter(src, []byte("\n"))
	pos, i := 0, 0

	inAttr := false
	for ; i < len(lines); i++ {
		line := bytes.TrimSpace(lines[i])
		if inAttr || bytes.HasPrefix(line, []byte("#![")) {
			inAttr = !bytes.HasSuffix(line, []byte("]"))
		} else if len(line) > 0 && !bytes.HasPrefix(line, []byte("//!")) {
			break
		}
		pos += len(lines[i])
	}

	off, inUse := pos, false
	for ; i < len(lines); i++ {
		line := bytes.TrimSpace(lines[i])
		off += len(lines[i])
		switch {
		case inUse, bytes.HasPrefix(line, []byte("use ")), bytes.HasPrefix(line, []byte("pub use ")):
			inUse = !bytes.Contains(line, []byte(";"))
		case len(line) == 0:
			continue
		default:
			return pos
		}
		if !inUse {
			pos = off
		}
	}
	return pos
}

// ReplaceFile rewrites the menu file at srcPath using the reviewed defaults
// at defaultsPath. The file is replaced atomically and only when labels were
// rewritten; on any error it is left untouched.
func ReplaceFile(srcPath, rel, defaultsPath string, cfg Config) (int, error) {
	defaults, err := registry.Load(defaultsPath)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(srcPath)
	if err != nil {
		return 0, err
	}
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", srcPath, err)
	}
	out, n, err := Replace(src, rel, defaults, cfg)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		cfg.logger().Info("nothing to replace", "file", rel)
		return 0, nil
	}
	if err := atomicfile.WriteFile(srcPath, out, info.Mode().Perm()); err != nil {
		return 0, err
	}
	cfg.logger().Debug("menu labels replaced", "file", rel, "count", n)
	return n, nil
}
