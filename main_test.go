package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minios-linux/i18nkit/pack"
	"github.com/minios-linux/i18nkit/registry"
	"github.com/minios-linux/i18nkit/validate"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{
			name:    "clamps below zero",
			percent: -10,
			width:   4,
			want:    colorRed + "░░░░" + colorReset + "   0%",
		},
		{
			name:    "mid range uses yellow",
			percent: 50,
			width:   4,
			want:    colorYellow + "██░░" + colorReset + "  50%",
		},
		{
			name:    "clamps above hundred",
			percent: 120,
			width:   4,
			want:    colorGreen + "████" + colorReset + " 100%",
		},
	}

	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Fatalf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestPackCell(t *testing.T) {
	cell := packCell("/packs/i18n-de", 10)
	if !strings.Contains(cell, "🇩🇪") || !strings.Contains(cell, "i18n-de") {
		t.Fatalf("packCell() = %q, want flag and directory name", cell)
	}
}

// run executes the CLI against root and returns stdout.
func run(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--root", root, "--no-color", "--log-level", "warn"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

const editorSource = `fn toolbar(cx: &mut App) -> Toolbar {
    Toolbar::new()
        .child(Button::new("save", "Save File"))
        .child(Label::new(t!(cx, "i18n.editor.close")))
        .tooltip("Close the current tab")
}
`

func TestScanNewValidateReorganize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "crates", "editor", "src", "toolbar.rs"), editorSource)
	regPath := filepath.Join(root, "i18n", "defaults.yaml")

	// Unknown call-site keys are reported, not added.
	if _, err := run(t, root, "scan", "crates"); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	reg, err := registry.Load(regPath)
	if err != nil {
		t.Fatalf("registry.Load() error: %v", err)
	}
	if reg.Has("i18n.editor.close") {
		t.Fatal("unresolved call-site key was added without --adopt-keys")
	}
	e, ok := reg.Lookup("i18n.editor.save_file")
	if !ok || e.Text != "Save File" || e.Origin != "crates/editor/src/toolbar.rs:3" {
		t.Fatalf("save_file entry = %+v, %v", e, ok)
	}
	first, _ := os.ReadFile(regPath)

	// A second scan of unchanged sources leaves the file byte-identical.
	if _, err := run(t, root, "scan", "crates"); err != nil {
		t.Fatalf("second scan error: %v", err)
	}
	if second, _ := os.ReadFile(regPath); !bytes.Equal(first, second) {
		t.Fatalf("rescan changed the registry:\n%s\n---\n%s", first, second)
	}

	// Dry run prints the diff and writes nothing.
	writeFile(t, filepath.Join(root, "crates", "editor", "src", "find.rs"),
		"fn f() { Button::new(\"find\", \"Find Next\"); }\n")
	out, err := run(t, root, "scan", "crates", "--dry-run")
	if err != nil {
		t.Fatalf("dry-run error: %v", err)
	}
	if !strings.Contains(out, `+ i18n.editor.find_next: "Find Next"`) {
		t.Fatalf("dry-run output = %q", out)
	}
	if after, _ := os.ReadFile(regPath); !bytes.Equal(first, after) {
		t.Fatal("dry run wrote the registry")
	}
	if err := os.Remove(filepath.Join(root, "crates", "editor", "src", "find.rs")); err != nil {
		t.Fatal(err)
	}

	// new scaffolds a pack with every key untranslated; it validates.
	if _, err := run(t, root, "new", "de"); err != nil {
		t.Fatalf("new error: %v", err)
	}
	packDir := filepath.Join(root, "i18n-de")
	storagePath := pack.DefaultLayout().StoragePath(packDir)
	p, err := pack.ParseFile(storagePath)
	if err != nil {
		t.Fatalf("pack.ParseFile() error: %v", err)
	}
	if len(p.UntranslatedKeys()) != reg.Len() {
		t.Fatalf("new pack has %d untranslated keys, want %d", len(p.UntranslatedKeys()), reg.Len())
	}
	if _, err := run(t, root, "new", "de"); !errors.Is(err, pack.ErrPackExists) {
		t.Fatalf("second new error = %v, want ErrPackExists", err)
	}
	if _, err := run(t, root, "validate", "i18n-de"); err != nil {
		t.Fatalf("validate error on fresh pack: %v", err)
	}

	// A translator drops a key and adds an unknown one.
	writeFile(t, storagePath, `{
    "i18n.legacy.title": "Titel",
    "i18n.editor.save_file": "Datei speichern"
}
`)
	out, err = run(t, root, "validate", "--all")
	if !errors.Is(err, validate.ErrReportNotEmpty) {
		t.Fatalf("validate error = %v, want ErrReportNotEmpty", err)
	}
	if !strings.Contains(out, "extra keys (1):\n      i18n.legacy.title") {
		t.Fatalf("validate output lacks the extra key:\n%s", out)
	}

	// reorganize restores the key set and quarantines the unknown key.
	if _, err := run(t, root, "reorganize", "i18n-de"); err != nil {
		t.Fatalf("reorganize error: %v", err)
	}
	if _, err := run(t, root, "validate", "i18n-de"); err != nil {
		t.Fatalf("validate after reorganize: %v", err)
	}
	p, err = pack.ParseFile(storagePath)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := p.Lookup("i18n.editor.save_file"); got.Value != "Datei speichern" {
		t.Fatalf("translation lost: %+v", got)
	}
	if len(p.Quarantine) != 1 || p.Quarantine[0].Key != "i18n.legacy.title" {
		t.Fatalf("Quarantine = %+v", p.Quarantine)
	}
}

func TestScanAdoptKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "app.ts"), "const s = tr(\"i18n.app.welcome\", \"Welcome Home\");\n")

	if _, err := run(t, root, "scan", "src", "keys.yaml", "--adopt-keys"); err != nil {
		t.Fatalf("scan error: %v", err)
	}
	reg, err := registry.Load(filepath.Join(root, "keys.yaml"))
	if err != nil {
		t.Fatalf("registry.Load() error: %v", err)
	}
	if e, ok := reg.Lookup("i18n.app.welcome"); !ok || e.Text != "Welcome Home" {
		t.Fatalf("adopted entry = %+v, %v", e, ok)
	}
}

const appMenus = `pub fn app_menus() -> Vec<Menu> {
    vec![Menu {
        name: "File".into(),
        items: vec![
            MenuItem::action("Open File", workspace::OpenFiles),
            MenuItem::action("Close", workspace::CloseWindow),
        ],
    }]
}
`

func TestScanAppMenus(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "crates", "zed", "src", "app_menus.rs")
	writeFile(t, src, appMenus)

	if _, err := run(t, root, "scan-app-menus", "scan", "crates/zed/src/app_menus.rs", "i18n/menus.yaml"); err != nil {
		t.Fatalf("scan-app-menus scan error: %v", err)
	}
	if got, _ := os.ReadFile(src); string(got) != appMenus {
		t.Fatal("menu scan modified the source")
	}
	defaults, err := registry.Load(filepath.Join(root, "i18n", "menus.yaml"))
	if err != nil {
		t.Fatalf("registry.Load() error: %v", err)
	}
	if e, ok := defaults.Lookup("i18n.menu.file.open_file"); !ok || e.Origin != "crates/zed/src/app_menus.rs:5" {
		t.Fatalf("open_file entry = %+v, %v", e, ok)
	}

	for i := range 2 {
		if _, err := run(t, root, "scan-app-menus", "replace", "crates/zed/src/app_menus.rs", "i18n/menus.yaml"); err != nil {
			t.Fatalf("replace run %d error: %v", i+1, err)
		}
	}
	got, _ := os.ReadFile(src)
	want := "use crate::i18n::t;\n" + strings.NewReplacer(
		`"File"`, `t!(cx, "i18n.menu.file")`,
		`"Open File"`, `t!(cx, "i18n.menu.file.open_file")`,
		`"Close"`, `t!(cx, "i18n.menu.file.close")`,
	).Replace(appMenus)
	if string(got) != want {
		t.Fatalf("replaced source =\n%s\nwant\n%s", got, want)
	}
}

func TestVersion(t *testing.T) {
	out, err := run(t, t.TempDir(), "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "i18nkit version dev\n") {
		t.Fatalf("version output = %q", out)
	}
}
