package pack

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"

	"github.com/minios-linux/i18nkit/atomicfile"
)

// SchemaVersion is the descriptor schema this tool writes.
const SchemaVersion = 1

// Descriptor is the pack's extension.toml.
type Descriptor struct {
	ID            string   `toml:"id" validate:"required,startswith=i18n-"`
	Name          string   `toml:"name" validate:"required"`
	Description   string   `toml:"description,omitempty"`
	Version       string   `toml:"version" validate:"required"`
	SchemaVersion int      `toml:"schema_version" validate:"gte=1"`
	Language      string   `toml:"language" validate:"required"`
	Authors       []string `toml:"authors" validate:"dive,required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Layout names the files inside a pack directory.
type Layout struct {
	Descriptor string
	Storage    string
}

// DefaultLayout is the standard pack layout.
func DefaultLayout() Layout {
	return Layout{
		Descriptor: "extension.toml",
		Storage:    filepath.Join("resources", "translations", "translation.json"),
	}
}

// DescriptorPath returns the descriptor path inside dir.
func (l Layout) DescriptorPath(dir string) string { return filepath.Join(dir, l.Descriptor) }

// StoragePath returns the storage path inside dir.
func (l Layout) StoragePath(dir string) string { return filepath.Join(dir, l.Storage) }

// LoadDescriptor reads a descriptor and returns the names of any fields it
// does not recognize.
func LoadDescriptor(path string) (*Descriptor, []string, error) {
	var d Descriptor
	md, err := toml.DecodeFile(path, &d)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var unknown []string
	for _, k := range md.Undecoded() {
		unknown = append(unknown, k.String())
	}
	return &d, unknown, nil
}

// Check validates the descriptor and returns one problem per bad field,
// keyed by the TOML field name.
func (d *Descriptor) Check() []Problem {
	var out []Problem
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				out = append(out, Problem{Key: tomlName(fe.StructField()), Reason: fmt.Sprintf("failed %q check", fe.Tag())})
			}
		} else {
			out = append(out, Problem{Key: "descriptor", Reason: err.Error()})
		}
	}
	if d.Version != "" {
		if _, err := semver.StrictNewVersion(d.Version); err != nil {
			out = append(out, Problem{Key: "version", Reason: fmt.Sprintf("not a semantic version: %v", err)})
		}
	}
	return out
}

func tomlName(field string) string {
	// Authors[0] -> authors
	field, _, _ = strings.Cut(field, "[")
	switch field {
	case "ID":
		return "id"
	case "SchemaVersion":
		return "schema_version"
	}
	return strings.ToLower(field)
}

// Marshal encodes the descriptor as TOML.
func (d *Descriptor) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(d); err != nil {
		return nil, fmt.Errorf("encode descriptor: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the descriptor atomically.
func (d *Descriptor) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, data, 0o644)
}

// ErrPackExists is returned by Scaffold when the target already has files.
var ErrPackExists = errors.New("pack directory is not empty")

// Scaffold creates a new pack in dir from a descriptor and initial storage.
// It refuses to overwrite an existing, non-empty directory.
func Scaffold(dir string, d *Descriptor, storage *File, layout Layout) error {
	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 {
		return fmt.Errorf("%s: %w", dir, ErrPackExists)
	}
	if problems := d.Check(); len(problems) > 0 {
		return fmt.Errorf("invalid descriptor: %s", problems[0])
	}
	if err := d.WriteFile(layout.DescriptorPath(dir)); err != nil {
		return err
	}
	return storage.WriteFile(layout.StoragePath(dir))
}
