package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/minios-linux/i18nkit/builder"
	"github.com/minios-linux/i18nkit/classify"
	"github.com/minios-linux/i18nkit/lexer"
	"github.com/minios-linux/i18nkit/menus"
	"github.com/minios-linux/i18nkit/pack"
	"github.com/minios-linux/i18nkit/registry"
	"github.com/minios-linux/i18nkit/scan"
)

// DefaultRegistry is the registry path used when none is configured.
var DefaultRegistry = filepath.Join("i18n", "defaults.yaml")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "I18NKIT_"

// Env holds the environment overrides.
type Env struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	NoColor  bool   `env:"NO_COLOR"`
	Workers  int    `env:"WORKERS"`
	Registry string `env:"REGISTRY"`
}

// LoadEnv reads the I18NKIT_* variables.
func LoadEnv() (Env, error) {
	e, err := env.ParseAsWithOptions[Env](env.Options{Prefix: EnvPrefix})
	if err != nil {
		return Env{}, fmt.Errorf("environment: %w", err)
	}
	return e, nil
}

// FieldError names the project file field that failed validation.
type FieldError struct {
	File  string
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %s: %v", e.File, e.Field, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }

// Config is the resolved configuration for one project root.
type Config struct {
	Root string
	Env  Env

	// RegistryPath and PacksDir are absolute.
	RegistryPath string
	PacksDir     string
	KeyPrefix    string
	KeyPattern   *regexp.Regexp
	Layout       pack.Layout

	Scan    scan.Options
	Builder builder.Options
	Menus   menus.Config
}

// Load resolves the configuration for root from the project file, if any,
// and the environment. Environment values win over the file.
func Load(root string) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	f, err := LoadFile(absRoot)
	if err != nil {
		return nil, err
	}
	if f == nil {
		f = &File{}
	}
	e, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	return Resolve(absRoot, f, e)
}

// Resolve applies defaults to f and e and validates the result.
func Resolve(root string, f *File, e Env) (*Config, error) {
	path := filepath.Join(root, FileName)
	fieldErr := func(field string, err error) error {
		return &FieldError{File: path, Field: field, Err: err}
	}

	c := &Config{
		Root:         root,
		Env:          e,
		RegistryPath: abs(root, firstNonEmpty(e.Registry, f.Registry, DefaultRegistry)),
		PacksDir:     abs(root, firstNonEmpty(f.PacksDir, ".")),
		KeyPrefix:    firstNonEmpty(f.KeyPrefix, registry.DefaultPrefix),
		KeyPattern:   registry.DefaultKeyPattern,
		Layout:       pack.DefaultLayout(),
	}
	if f.KeyPattern != "" {
		re, err := regexp.Compile(f.KeyPattern)
		if err != nil {
			return nil, fieldErr("key_pattern", err)
		}
		c.KeyPattern = re
	} else if f.KeyPrefix != "" {
		c.KeyPattern = regexp.MustCompile(`^` + regexp.QuoteMeta(f.KeyPrefix) + `(\.[a-z0-9_]+)+$`)
	}
	if f.Pack.Descriptor != "" {
		c.Layout.Descriptor = filepath.FromSlash(f.Pack.Descriptor)
	}
	if f.Pack.Storage != "" {
		c.Layout.Storage = filepath.FromSlash(f.Pack.Storage)
	}

	keywordSpecs := f.Keywords
	if len(keywordSpecs) == 0 {
		keywordSpecs = scan.DefaultKeywords
	}
	keywords, err := scan.ParseKeywords(keywordSpecs)
	if err != nil {
		return nil, fieldErr("keywords", err)
	}

	policy, err := resolvePolicy(f.Classifier)
	if err != nil {
		return nil, fieldErr("classifier", err)
	}

	exts := slices.Clone(f.Extensions)
	if len(exts) == 0 {
		exts = lexer.Extensions()
	}
	for i, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			exts[i] = "." + ext
		}
	}
	workers := f.Workers
	if e.Workers > 0 {
		workers = e.Workers
	}
	if workers < 0 {
		return nil, fieldErr("workers", fmt.Errorf("must not be negative, got %d", workers))
	}
	noise := f.GroupNoise
	if len(noise) == 0 {
		noise = scan.DefaultGroupNoise
	}
	c.Scan = scan.Options{
		Extensions: exts,
		Include:    f.Include,
		Exclude:    f.Exclude,
		Keywords:   keywords,
		Policy:     policy,
		GroupNoise: noise,
		Workers:    workers,
	}
	c.Builder = builder.Options{
		KeyPrefix:     c.KeyPrefix,
		KeyPattern:    c.KeyPattern,
		MinConfidence: policy.Threshold,
	}

	c.Menus, err = resolveMenus(f.Menus, keywords)
	if err != nil {
		return nil, fieldErr("menus", err)
	}
	return c, nil
}

func resolvePolicy(s Classifier) (*classify.Policy, error) {
	p := classify.DefaultPolicy()
	if s.Threshold != nil {
		if *s.Threshold < 0 || *s.Threshold > 100 {
			return nil, fmt.Errorf("threshold must be within 0..100, got %d", *s.Threshold)
		}
		p.Threshold = *s.Threshold
	}
	if s.MinLength != nil {
		p.MinLength = *s.MinLength
	}
	if s.MinWords != nil {
		p.MinWords = *s.MinWords
	}
	if s.IgnoreMarker != "" {
		p.IgnoreMarker = s.IgnoreMarker
	}
	if s.NoDefaultRules {
		p.Exclude = nil
	}
	pairs := make([][2]string, len(s.Exclude))
	for i, r := range s.Exclude {
		pairs[i] = [2]string{r.Name, r.Pattern}
	}
	rules, err := classify.CompileRules(pairs)
	if err != nil {
		return nil, err
	}
	p.Exclude = append(p.Exclude, rules...)
	p.IgnoreCalls = append(p.IgnoreCalls, s.IgnoreCalls...)
	p.UILabels = append(p.UILabels, s.UILabels...)
	p.UICalls = append(p.UICalls, s.UICalls...)
	return &p, nil
}

func resolveMenus(s Menus, keywords []scan.Keyword) (menus.Config, error) {
	m := menus.DefaultConfig()
	m.Keywords = keywords
	if len(s.Containers) > 0 {
		m.Containers = s.Containers
	}
	if s.NameField != "" {
		m.NameField = s.NameField
	}
	if len(s.ItemCalls) > 0 {
		items, err := scan.ParseKeywords(s.ItemCalls)
		if err != nil {
			return menus.Config{}, err
		}
		m.ItemCalls = items
	}
	if s.KeyPrefix != "" {
		m.KeyPrefix = s.KeyPrefix
	}
	if s.CallTemplate != "" {
		if !strings.Contains(s.CallTemplate, "{key}") {
			return menus.Config{}, fmt.Errorf("call_template %q has no {key}", s.CallTemplate)
		}
		m.CallTemplate = s.CallTemplate
	}
	if s.Import != nil {
		m.Import = *s.Import
	}
	return m, nil
}

// Rel returns path relative to the project root with forward slashes, or
// path itself when it lies outside the root.
func (c *Config) Rel(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(c.Root, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// PackDirs lists the pack directories under PacksDir: directories named
// i18n-<lang> that hold a descriptor.
func (c *Config) PackDirs() []string {
	entries, err := os.ReadDir(c.PacksDir)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "i18n-") {
			continue
		}
		dir := filepath.Join(c.PacksDir, entry.Name())
		if _, err := os.Stat(c.Layout.DescriptorPath(dir)); err == nil {
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

func abs(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
