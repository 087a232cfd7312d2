package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("I18NKIT_REGISTRY", "")
	t.Setenv("I18NKIT_WORKERS", "")

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if want := filepath.Join(dir, "i18n", "defaults.yaml"); c.RegistryPath != want {
		t.Fatalf("RegistryPath = %q, want %q", c.RegistryPath, want)
	}
	if c.PacksDir != dir || c.KeyPrefix != "i18n" {
		t.Fatalf("PacksDir = %q, KeyPrefix = %q", c.PacksDir, c.KeyPrefix)
	}
	if !c.KeyPattern.MatchString("i18n.menu.file") || c.KeyPattern.MatchString("menu.file") {
		t.Fatalf("KeyPattern = %s", c.KeyPattern)
	}
	if !slices.Contains(c.Scan.Extensions, ".rs") || len(c.Scan.Keywords) == 0 || c.Scan.Policy == nil {
		t.Fatalf("scan options not defaulted: %+v", c.Scan)
	}
	if c.Menus.CallTemplate != `t!(cx, "{key}")` || c.Menus.Import == "" {
		t.Fatalf("menus config not defaulted: %+v", c.Menus)
	}
	if c.Env.LogLevel != "info" {
		t.Fatalf("Env.LogLevel = %q, want info", c.Env.LogLevel)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("I18NKIT_REGISTRY", "")
	t.Setenv("I18NKIT_WORKERS", "")
	writeConfig(t, dir, `registry: locales/keys.yaml
packs_dir: packs
key_prefix: app
extensions: [rs, .ts]
exclude: ["tests/**"]
keywords: ["tr:1,2"]
workers: 3
classifier:
  threshold: 75
  min_words: 2
  ignore_calls: ["metrics::*"]
  exclude:
    - name: ticket
      pattern: '^[A-Z]+-\d+$'
menus:
  key_prefix: app.menu
  import: ""
pack:
  storage: translation.json
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if want := filepath.Join(dir, "locales", "keys.yaml"); c.RegistryPath != want {
		t.Fatalf("RegistryPath = %q, want %q", c.RegistryPath, want)
	}
	if c.PacksDir != filepath.Join(dir, "packs") {
		t.Fatalf("PacksDir = %q", c.PacksDir)
	}
	if !c.KeyPattern.MatchString("app.menu.file") || c.KeyPattern.MatchString("i18n.menu.file") {
		t.Fatalf("KeyPattern = %s, want one derived from key_prefix", c.KeyPattern)
	}
	if !slices.Equal(c.Scan.Extensions, []string{".rs", ".ts"}) {
		t.Fatalf("Extensions = %q", c.Scan.Extensions)
	}
	if len(c.Scan.Keywords) != 1 || c.Scan.Keywords[0].Name != "tr" || c.Scan.Keywords[0].DefaultArg != 2 {
		t.Fatalf("Keywords = %+v", c.Scan.Keywords)
	}
	if c.Scan.Workers != 3 {
		t.Fatalf("Workers = %d, want 3", c.Scan.Workers)
	}
	p := c.Scan.Policy
	if p.Threshold != 75 || p.MinWords != 2 || c.Builder.MinConfidence != 75 {
		t.Fatalf("policy = %+v", p)
	}
	if !slices.Contains(p.IgnoreCalls, "metrics::*") || !slices.Contains(p.IgnoreCalls, "println!") {
		t.Fatalf("IgnoreCalls should extend the defaults: %q", p.IgnoreCalls)
	}
	if last := p.Exclude[len(p.Exclude)-1]; last.Name != "ticket" || !last.Pattern.MatchString("ABC-12") {
		t.Fatalf("last exclusion rule = %+v", last)
	}
	if c.Menus.KeyPrefix != "app.menu" || c.Menus.Import != "" {
		t.Fatalf("menus = %+v", c.Menus)
	}
	if c.Layout.Storage != "translation.json" || c.Layout.Descriptor != "extension.toml" {
		t.Fatalf("Layout = %+v", c.Layout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "registry: a.yaml\nworkers: 2\n")
	t.Setenv("I18NKIT_REGISTRY", "/tmp/other.yaml")
	t.Setenv("I18NKIT_WORKERS", "8")
	t.Setenv("I18NKIT_LOG_LEVEL", "debug")
	t.Setenv("I18NKIT_NO_COLOR", "true")

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.RegistryPath != "/tmp/other.yaml" || c.Scan.Workers != 8 {
		t.Fatalf("RegistryPath = %q, Workers = %d", c.RegistryPath, c.Scan.Workers)
	}
	if c.Env.LogLevel != "debug" || !c.Env.NoColor {
		t.Fatalf("Env = %+v", c.Env)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"bad key pattern", "key_pattern: '('\n", "key_pattern"},
		{"bad keyword", "keywords: ['t:0']\n", "keywords"},
		{"bad rule", "classifier:\n  exclude:\n    - name: x\n      pattern: '['\n", "classifier"},
		{"threshold range", "classifier:\n  threshold: 140\n", "classifier"},
		{"negative workers", "workers: -1\n", "workers"},
		{"template without key", "menus:\n  call_template: 'tr()'\n", "menus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Setenv("I18NKIT_WORKERS", "")
			writeConfig(t, dir, tt.content)
			_, err := Load(dir)
			var ferr *FieldError
			if !errors.As(err, &ferr) {
				t.Fatalf("Load() error = %v, want *FieldError", err)
			}
			if ferr.Field != tt.field || !strings.HasSuffix(ferr.File, FileName) {
				t.Fatalf("FieldError = %+v, want field %s", ferr, tt.field)
			}
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		dir := t.TempDir()
		writeConfig(t, dir, "registy: typo.yaml\n")
		if _, err := Load(dir); err == nil || !strings.Contains(err.Error(), "registy") {
			t.Fatalf("Load() error = %v, want unknown field error", err)
		}
	})
}

func TestRelAndPackDirs(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("I18NKIT_REGISTRY", "")
	t.Setenv("I18NKIT_WORKERS", "")
	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got := c.Rel(filepath.Join(dir, "src", "main.rs")); got != "src/main.rs" {
		t.Fatalf("Rel() = %q, want src/main.rs", got)
	}
	if got := c.Rel("/elsewhere/x.rs"); got != "/elsewhere/x.rs" {
		t.Fatalf("Rel(outside) = %q", got)
	}

	for _, name := range []string{"i18n-de", "i18n-fr", "notes"} {
		if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, name := range []string{"i18n-fr", "i18n-de"} {
		if err := os.WriteFile(c.Layout.DescriptorPath(filepath.Join(dir, name)), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.MkdirAll(filepath.Join(dir, "i18n-ru"), 0o755); err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "i18n-de"), filepath.Join(dir, "i18n-fr")}
	if got := c.PackDirs(); !slices.Equal(got, want) {
		t.Fatalf("PackDirs() = %q, want %q", got, want)
	}
}
