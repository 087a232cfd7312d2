package pack

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	src := `{
    "i18n.menu.file": "Datei",
    "i18n.menu.edit": null,
    "i18n.menu.bad": 42,
    "i18n.menu.file": "Again",
    "i18n.menu.empty": "",
    "_quarantine": {
        "i18n.menu.old": "Alt",
        "i18n.menu.obj": {}
    }
}`
	f, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got := strings.Join(f.Keys(), ","); got != "i18n.menu.file,i18n.menu.edit,i18n.menu.empty" {
		t.Fatalf("Keys() = %s", got)
	}
	if e, _ := f.Lookup("i18n.menu.file"); e.Value != "Datei" {
		t.Fatalf("first occurrence should win, got %+v", e)
	}
	if e, _ := f.Lookup("i18n.menu.edit"); !e.Placeholder {
		t.Fatalf("null should be a placeholder, got %+v", e)
	}
	if e, _ := f.Lookup("i18n.menu.empty"); e.Placeholder || e.Value != "" {
		t.Fatalf("empty string is a genuine translation, got %+v", e)
	}
	if len(f.Quarantine) != 1 || f.Quarantine[0].Value != "Alt" {
		t.Fatalf("Quarantine = %+v", f.Quarantine)
	}
	if len(f.Problems) != 3 {
		t.Fatalf("Problems = %v, want bad value, duplicate and quarantined object", f.Problems)
	}
	if strings.Join(f.Rejected, ",") != "i18n.menu.bad" {
		t.Fatalf("Rejected = %q", f.Rejected)
	}
	total, translated, untranslated := f.Stats()
	if total != 3 || translated != 2 || untranslated != 1 {
		t.Fatalf("Stats() = %d, %d, %d", total, translated, untranslated)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	for _, src := range []string{`[1, 2]`, `{"a": `, `{"a": "b"} {}`, `"str"`} {
		if _, err := Parse([]byte(src)); err == nil {
			t.Fatalf("Parse(%q) should fail", src)
		}
	}
	f, err := Parse([]byte("  \n"))
	if err != nil || len(f.Entries) != 0 {
		t.Fatalf("Parse(blank) = %+v, %v", f, err)
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	f := &File{
		Entries: []Entry{
			{Key: "i18n.a.x", Value: "<b>Tom & Jerry</b>"},
			{Key: "i18n.a.y", Placeholder: true},
		},
		Quarantine: []Entry{{Key: "i18n.a.old", Value: "Line\nbreak"}},
	}
	want := `{
    "i18n.a.x": "<b>Tom & Jerry</b>",
    "i18n.a.y": null,
    "_quarantine": {
        "i18n.a.old": "Line\nbreak"
    }
}
`
	if got := string(f.Marshal()); got != want {
		t.Fatalf("Marshal() =\n%s\nwant\n%s", got, want)
	}

	back, err := Parse(f.Marshal())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if string(back.Marshal()) != want {
		t.Fatalf("round trip changed output:\n%s", back.Marshal())
	}

	if got := string((&File{}).Marshal()); got != "{\n}\n" {
		t.Fatalf("empty Marshal() = %q", got)
	}
}

func validDescriptor() *Descriptor {
	return &Descriptor{
		ID:            "i18n-de",
		Name:          "German",
		Version:       "0.1.0",
		SchemaVersion: SchemaVersion,
		Language:      "de",
		Authors:       []string{"Translators"},
	}
}

func TestDescriptorCheck(t *testing.T) {
	t.Parallel()

	if p := validDescriptor().Check(); len(p) != 0 {
		t.Fatalf("Check() = %v, want none", p)
	}

	tests := []struct {
		name   string
		mutate func(*Descriptor)
		field  string
	}{
		{"missing id", func(d *Descriptor) { d.ID = "" }, "id"},
		{"bad id prefix", func(d *Descriptor) { d.ID = "de" }, "id"},
		{"missing name", func(d *Descriptor) { d.Name = "" }, "name"},
		{"bad version", func(d *Descriptor) { d.Version = "1.0" }, "version"},
		{"schema", func(d *Descriptor) { d.SchemaVersion = 0 }, "schema_version"},
		{"empty author", func(d *Descriptor) { d.Authors = []string{""} }, "authors"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := validDescriptor()
			tt.mutate(d)
			problems := d.Check()
			if len(problems) != 1 || problems[0].Key != tt.field {
				t.Fatalf("Check() = %v, want one problem on %s", problems, tt.field)
			}
		})
	}
}

func TestDescriptorRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "extension.toml")
	d := validDescriptor()
	d.Description = "German translations"
	if err := d.WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	back, unknown, err := LoadDescriptor(path)
	if err != nil {
		t.Fatalf("LoadDescriptor() error: %v", err)
	}
	if len(unknown) != 0 {
		t.Fatalf("unknown fields = %q", unknown)
	}
	if back.ID != d.ID || back.Version != d.Version || back.Description != d.Description || len(back.Authors) != 1 {
		t.Fatalf("LoadDescriptor() = %+v, want %+v", back, d)
	}

	if err := os.WriteFile(path, []byte("id = \"i18n-x\"\nflavour = \"odd\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, unknown, err = LoadDescriptor(path)
	if err != nil {
		t.Fatalf("LoadDescriptor() error: %v", err)
	}
	if strings.Join(unknown, ",") != "flavour" {
		t.Fatalf("unknown fields = %q, want flavour", unknown)
	}
}

func TestScaffold(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "i18n-de")
	layout := DefaultLayout()
	storage := &File{Entries: []Entry{{Key: "i18n.a.x", Placeholder: true}}}

	if err := Scaffold(dir, validDescriptor(), storage, layout); err != nil {
		t.Fatalf("Scaffold() error: %v", err)
	}
	for _, p := range []string{layout.DescriptorPath(dir), layout.StoragePath(dir)} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
	}
	f, err := ParseFile(layout.StoragePath(dir))
	if err != nil || len(f.UntranslatedKeys()) != 1 {
		t.Fatalf("scaffolded storage = %+v, %v", f, err)
	}

	if err := Scaffold(dir, validDescriptor(), storage, layout); !errors.Is(err, ErrPackExists) {
		t.Fatalf("second Scaffold() error = %v, want ErrPackExists", err)
	}
}
