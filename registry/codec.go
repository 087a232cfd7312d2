package registry

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/i18nkit/atomicfile"
)

const header = "Default texts for translation keys, grouped by feature area.\n" +
	"Texts may be edited; keys are referenced from source code."

// LoadError reports a registry file that cannot be read or parsed.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads a registry file. A missing file is reported as a *LoadError
// wrapping fs.ErrNotExist.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	r, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
			return nil, le
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	return r, nil
}

// LoadOrEmpty is Load, except that a missing file yields an empty registry.
func LoadOrEmpty(path string) (*Registry, error) {
	r, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	return r, err
}

// Parse decodes registry YAML. Top-level keys are groups mapping keys to
// texts; a top-level scalar is accepted as an ungrouped entry.
func Parse(data []byte) (*Registry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Err: err}
	}
	if len(doc.Content) == 0 {
		return New(), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &LoadError{Line: root.Line, Err: errors.New("registry must be a mapping of groups")}
	}

	var entries []Entry
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		switch v.Kind {
		case yaml.ScalarNode:
			entries = append(entries, entryFrom(k, v, ""))
		case yaml.MappingNode:
			for j := 0; j+1 < len(v.Content); j += 2 {
				ek, ev := v.Content[j], v.Content[j+1]
				if ev.Kind != yaml.ScalarNode {
					return nil, &LoadError{Line: ev.Line, Err: fmt.Errorf("key %q: text must be a string", ek.Value)}
				}
				entries = append(entries, entryFrom(ek, ev, k.Value))
			}
		default:
			return nil, &LoadError{Line: v.Line, Err: fmt.Errorf("group %q must be a mapping", k.Value)}
		}
	}
	r, err := FromEntries(entries)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return r, nil
}

func entryFrom(k, v *yaml.Node, group string) Entry {
	comment := v.LineComment
	if comment == "" {
		comment = k.LineComment
	}
	text := v.Value
	if v.Tag == "!!null" {
		text = ""
	}
	return Entry{
		Key:    k.Value,
		Text:   text,
		Origin: strings.TrimSpace(strings.TrimLeft(comment, "#")),
		Group:  group,
	}
}

// Marshal encodes the registry as YAML. Output depends only on the entries,
// so marshaling an unchanged registry is byte-identical.
func Marshal(r *Registry) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	var group *yaml.Node
	for i, e := range r.entries {
		if i == 0 || r.entries[i-1].Group != e.Group {
			group = &yaml.Node{Kind: yaml.MappingNode}
			root.Content = append(root.Content, str(e.Group), group)
		}
		v := str(e.Text)
		if e.Origin != "" {
			v.LineComment = e.Origin
		}
		group.Content = append(group.Content, str(e.Key), v)
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, HeadComment: header, Content: []*yaml.Node{root}}
	if len(r.entries) == 0 {
		root.Style = yaml.FlowStyle
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode registry: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode registry: %w", err)
	}
	return buf.Bytes(), nil
}

func str(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// Save writes the registry atomically. It reports whether the file content
// changed; an unchanged registry is not rewritten.
func Save(path string, r *Registry) (bool, error) {
	data, err := Marshal(r)
	if err != nil {
		return false, err
	}
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, data) {
		return false, nil
	}
	if err := atomicfile.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
