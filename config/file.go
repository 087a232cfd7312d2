// Package config loads the .i18nkit.yaml project file and the I18NKIT_*
// environment overrides, and turns them into options for the scanner,
// builder, validator and menu pipeline.
//
// Every field is optional. A project without .i18nkit.yaml runs on the
// built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .i18nkit.yaml structure.
type File struct {
	// Registry is the defaults registry path relative to the root
	// (default "i18n/defaults.yaml").
	Registry string `yaml:"registry,omitempty"`
	// PacksDir holds the i18n-<lang> pack directories (default ".").
	PacksDir   string `yaml:"packs_dir,omitempty"`
	KeyPrefix  string `yaml:"key_prefix,omitempty"`
	KeyPattern string `yaml:"key_pattern,omitempty"`
	// Extensions restricts scanning to these file extensions.
	Extensions []string `yaml:"extensions,omitempty"`
	Include    []string `yaml:"include,omitempty"`
	Exclude    []string `yaml:"exclude,omitempty"`
	// Keywords are translation calls in "name:keyArg[,defaultArg]" form.
	Keywords   []string `yaml:"keywords,omitempty"`
	GroupNoise []string `yaml:"group_noise,omitempty"`
	Workers    int      `yaml:"workers,omitempty"`

	Classifier Classifier `yaml:"classifier,omitempty"`
	Menus      Menus      `yaml:"menus,omitempty"`
	Pack       Pack       `yaml:"pack,omitempty"`
}

// Classifier tunes the literal classifier. Lists extend the built-in ones.
type Classifier struct {
	Threshold    *int   `yaml:"threshold,omitempty"`
	MinLength    *int   `yaml:"min_length,omitempty"`
	MinWords     *int   `yaml:"min_words,omitempty"`
	IgnoreMarker string `yaml:"ignore_marker,omitempty"`
	// IgnoreCalls are callee patterns whose strings are never UI text.
	IgnoreCalls []string `yaml:"ignore_calls,omitempty"`
	UILabels    []string `yaml:"ui_labels,omitempty"`
	UICalls     []string `yaml:"ui_calls,omitempty"`
	// Exclude adds exclusion rules after the built-in ones.
	Exclude []Rule `yaml:"exclude,omitempty"`
	// NoDefaultRules drops the built-in exclusion rules.
	NoDefaultRules bool `yaml:"no_default_rules,omitempty"`
}

// Rule is a named exclusion pattern.
type Rule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

// Menus configures scan-app-menus.
type Menus struct {
	Containers   []string `yaml:"containers,omitempty"`
	NameField    string   `yaml:"name_field,omitempty"`
	ItemCalls    []string `yaml:"item_calls,omitempty"`
	KeyPrefix    string   `yaml:"key_prefix,omitempty"`
	CallTemplate string   `yaml:"call_template,omitempty"`
	// Import is a pointer so that an empty string can disable it.
	Import *string `yaml:"import,omitempty"`
}

// Pack names the files inside a pack directory.
type Pack struct {
	Descriptor string `yaml:"descriptor,omitempty"`
	Storage    string `yaml:"storage,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// FileName is the project file name.
const FileName = ".i18nkit.yaml"

// LoadFile reads FileName from rootDir. It returns nil, nil when the file
// does not exist. Unknown fields are an error so that typos do not go
// unnoticed.
func LoadFile(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &f, nil
}
