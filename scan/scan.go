// Package scan walks a source tree and reports translation call sites and
// candidate literals.
//
// Files are tokenized with the lexer and scanned in parallel; the result is
// sorted by file, line and column so repeated runs are identical. A file
// that cannot be read or tokenized is skipped with a *SkipError and never
// aborts the scan.
package scan

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/minios-linux/i18nkit/classify"
	"github.com/minios-linux/i18nkit/lexer"
)

// Kind distinguishes findings.
type Kind int

const (
	// CallSiteKey is a key passed to a translation call.
	CallSiteKey Kind = iota
	// LiteralCandidate is a bare literal the classifier accepted.
	LiteralCandidate
)

func (k Kind) String() string {
	if k == CallSiteKey {
		return "call-site"
	}
	return "literal"
}

// Pos is a position in a scanned file. File is slash separated and relative
// to the scan root.
type Pos struct {
	File string
	Line int
	Col  int
}

// String formats the position as "file:line", the origin format used by the
// registry.
func (p Pos) String() string { return fmt.Sprintf("%s:%d", p.File, p.Line) }

// Finding is one observation from the scan.
type Finding struct {
	Kind Kind
	// Key is set for call sites.
	Key string
	// Text is the literal for candidates, or the default text passed to the
	// call, if any.
	Text string
	Pos  Pos
	// Group is the feature area derived from the file's location.
	Group      string
	Callee     string
	Confidence int
}

// Ignored is a literal the classifier rejected, kept when Options.Explain is
// set.
type Ignored struct {
	Pos    Pos
	Text   string
	Reason string
}

// SkipError reports a file left out of the scan.
type SkipError struct {
	File string
	Err  error
}

func (e *SkipError) Error() string { return fmt.Sprintf("skipped %s: %v", e.File, e.Err) }

func (e *SkipError) Unwrap() error { return e.Err }

// Result is the outcome of a scan.
type Result struct {
	Root     string
	Files    []string
	Findings []Finding
	Skipped  []*SkipError
	Ignored  []Ignored
}

// CallSites returns the call-site findings.
func (r *Result) CallSites() []Finding { return r.filter(CallSiteKey) }

// Literals returns the literal candidates.
func (r *Result) Literals() []Finding { return r.filter(LiteralCandidate) }

func (r *Result) filter(k Kind) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Kind == k {
			out = append(out, f)
		}
	}
	return out
}

// Options configure a scan. The zero value scans every known extension with
// the default keywords and policy.
type Options struct {
	// Extensions limits the scan to these file extensions (".rs").
	Extensions []string
	// Include, when set, keeps only files matching one of the patterns.
	Include []string
	// Exclude drops files and directories matching any pattern. Patterns use
	// path.Match against the relative path or the base name; a trailing
	// "/**" matches a whole directory.
	Exclude []string
	Keywords []Keyword
	Policy   *classify.Policy
	// GroupNoise lists directory names ignored when deriving groups.
	GroupNoise []string
	// NoLiterals disables literal discovery; only call sites are reported.
	NoLiterals bool
	Explain    bool
	Workers    int
	Logger     *slog.Logger
}

// DefaultGroupNoise are directory names that say nothing about a feature.
var DefaultGroupNoise = []string{"src", "lib", "internal", "pkg", "crates", "app", "source", "sources", "main"}

// skipDirs contains directory names never scanned.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"__pycache__":  true,
	".tox":         true,
	".venv":        true,
	"venv":         true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".eggs":        true,
}

func (o *Options) withDefaults() (Options, error) {
	out := *o
	if len(out.Extensions) == 0 {
		out.Extensions = lexer.Extensions()
	}
	if out.Keywords == nil {
		kws, err := ParseKeywords(DefaultKeywords)
		if err != nil {
			return out, err
		}
		out.Keywords = kws
	}
	if out.Policy == nil {
		p := classify.DefaultPolicy()
		out.Policy = &p
	}
	if out.GroupNoise == nil {
		out.GroupNoise = DefaultGroupNoise
	}
	if out.Workers <= 0 {
		out.Workers = runtime.GOMAXPROCS(0)
	}
	if out.Logger == nil {
		out.Logger = slog.New(slog.DiscardHandler)
	}
	return out, nil
}

// Run scans root. It fails only when root is unusable or ctx is cancelled.
func Run(ctx context.Context, root string, opts Options) (*Result, error) {
	o, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s: not a directory", root)
	}

	files, err := collectFiles(root, o)
	if err != nil {
		return nil, err
	}
	o.Logger.Debug("collected source files", "root", root, "files", len(files))

	results := make([]fileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Workers)
	for i, rel := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = scanFile(root, rel, o)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Root: root, Files: files}
	for _, fr := range results {
		if fr.skip != nil {
			o.Logger.Warn("skipping file", "file", fr.skip.File, "err", fr.skip.Err)
			res.Skipped = append(res.Skipped, fr.skip)
			continue
		}
		res.Findings = append(res.Findings, fr.findings...)
		res.Ignored = append(res.Ignored, fr.ignored...)
	}
	slices.SortStableFunc(res.Findings, func(a, b Finding) int { return comparePos(a.Pos, b.Pos) })
	slices.SortStableFunc(res.Ignored, func(a, b Ignored) int { return comparePos(a.Pos, b.Pos) })
	return res, nil
}

func comparePos(a, b Pos) int {
	return cmp.Or(
		cmp.Compare(a.File, b.File),
		cmp.Compare(a.Line, b.Line),
		cmp.Compare(a.Col, b.Col),
	)
}

// collectFiles returns slash-separated paths relative to root, sorted.
func collectFiles(root string, o Options) ([]string, error) {
	exts := make(map[string]bool, len(o.Extensions))
	for _, e := range o.Extensions {
		exts[strings.ToLower(e)] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			o.Logger.Warn("cannot read path", "path", p, "err", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == "." {
				return nil
			}
			if skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".") || matchAny(o.Exclude, rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !exts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		if matchAny(o.Exclude, rel) {
			return nil
		}
		if len(o.Include) > 0 && !matchAny(o.Include, rel) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	slices.Sort(files)
	return files, nil
}

// matchAny matches rel against patterns as a full path, as a base name, or
// as a directory prefix for patterns ending in "/**".
func matchAny(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, pat := range patterns {
		if dir, ok := strings.CutSuffix(pat, "/**"); ok {
			if rel == dir || strings.HasPrefix(rel, dir+"/") {
				return true
			}
			continue
		}
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
		if ok, _ := path.Match(pat, base); ok {
			return true
		}
	}
	return false
}

// GroupFor derives a feature group from a relative file path: the first
// directory that is not noise, or the file's stem.
func GroupFor(rel string, noise []string) string {
	dirs := strings.Split(path.Dir(rel), "/")
	for _, d := range dirs {
		if d == "." || d == "" || slices.Contains(noise, strings.ToLower(d)) {
			continue
		}
		if g := groupSlug(d); g != "" {
			return g
		}
	}
	stem := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	if g := groupSlug(stem); g != "" && !slices.Contains(noise, g) {
		return g
	}
	return "general"
}

func groupSlug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ' || r == '.':
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
