// Package pack reads and writes translation packs.
//
// A pack is a directory holding a descriptor (extension.toml) and a storage
// file of translated values:
//
//	{
//	    "i18n.menu.file": "Datei",
//	    "i18n.menu.edit": null,
//	    "_quarantine": {
//	        "i18n.menu.old": "Alt"
//	    }
//	}
//
// A null value is a placeholder awaiting translation. The optional trailing
// "_quarantine" object keeps translations whose keys left the registry, so
// that no translator work is lost. Key order is preserved on read and write.
package pack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/minios-linux/i18nkit/atomicfile"
)

// QuarantineKey names the object holding quarantined entries.
const QuarantineKey = "_quarantine"

// Entry is one key in the storage file.
type Entry struct {
	Key   string
	Value string
	// Placeholder marks a null value: the key is known but untranslated.
	Placeholder bool
}

// Problem is a storage entry that could not be read as a translation.
type Problem struct {
	Key    string
	Reason string
}

func (p Problem) String() string { return fmt.Sprintf("%s: %s", p.Key, p.Reason) }

// File is a parsed storage file.
type File struct {
	Entries    []Entry
	Quarantine []Entry
	// Problems lists values that are neither strings nor null, and repeated
	// keys. Such entries are left out of Entries.
	Problems []Problem
	// Rejected holds the active keys whose values were rejected.
	Rejected []string
}

// ParseFile reads and parses a storage file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes storage JSON. Only invalid JSON or a root that is not an
// object is an error; bad values are collected as Problems.
func Parse(data []byte) (*File, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return &File{}, nil
	}
	f := &File{}
	if err := parseObject(data, true, func(key string, raw json.RawMessage) {
		f.add(key, raw)
	}, &f.Problems); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return f, nil
}

func (f *File) add(key string, raw json.RawMessage) {
	if key == QuarantineKey {
		var q []Entry
		if err := parseObject(raw, false, func(k string, v json.RawMessage) {
			if e, ok := decodeValue(k, v, &f.Problems); ok {
				q = append(q, e)
			}
		}, &f.Problems); err != nil {
			f.Problems = append(f.Problems, Problem{Key: QuarantineKey, Reason: "must be an object of translations"})
			return
		}
		f.Quarantine = append(f.Quarantine, q...)
		return
	}
	if e, ok := decodeValue(key, raw, &f.Problems); ok {
		f.Entries = append(f.Entries, e)
	} else {
		f.Rejected = append(f.Rejected, key)
	}
}

func decodeValue(key string, raw json.RawMessage, problems *[]Problem) (Entry, bool) {
	raw = bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(raw, []byte("null")):
		return Entry{Key: key, Placeholder: true}, true
	case len(raw) > 0 && raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			*problems = append(*problems, Problem{Key: key, Reason: err.Error()})
			return Entry{}, false
		}
		return Entry{Key: key, Value: s}, true
	default:
		*problems = append(*problems, Problem{Key: key, Reason: "value must be a string or null"})
		return Entry{}, false
	}
}

// parseObject walks a JSON object in document order, calling fn for each
// first occurrence of a key. Repeated keys are reported as problems.
func parseObject(data []byte, top bool, fn func(string, json.RawMessage), problems *[]Problem) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected {, got %v", t)
	}

	seen := map[string]bool{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("expected string key, got %T", kt)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if seen[key] {
			*problems = append(*problems, Problem{Key: key, Reason: "duplicate key"})
			continue
		}
		seen[key] = true
		if !top && key == QuarantineKey {
			*problems = append(*problems, Problem{Key: key, Reason: "nested quarantine"})
			continue
		}
		fn(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if top && dec.More() {
		return fmt.Errorf("unexpected data after top-level object")
	}
	return nil
}

// Keys returns the active keys in file order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.Entries))
	for i, e := range f.Entries {
		keys[i] = e.Key
	}
	return keys
}

// Lookup returns the active entry for key.
func (f *File) Lookup(key string) (Entry, bool) {
	for _, e := range f.Entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// UntranslatedKeys returns active keys that are placeholders.
func (f *File) UntranslatedKeys() []string {
	var result []string
	for _, e := range f.Entries {
		if e.Placeholder {
			result = append(result, e.Key)
		}
	}
	return result
}

// Stats returns (total, translated, untranslated) counts of active entries.
func (f *File) Stats() (total, translated, untranslated int) {
	total = len(f.Entries)
	for _, e := range f.Entries {
		if e.Placeholder {
			untranslated++
		} else {
			translated++
		}
	}
	return
}

// Marshal produces the storage JSON with 4-space indentation, keeping entry
// order and writing the quarantine, if any, last.
func (f *File) Marshal() []byte {
	var b strings.Builder
	b.WriteString("{\n")
	writeEntries(&b, "    ", f.Entries, len(f.Quarantine) > 0)
	if len(f.Quarantine) > 0 {
		fmt.Fprintf(&b, "    %s: {\n", jsonString(QuarantineKey))
		writeEntries(&b, "        ", f.Quarantine, false)
		b.WriteString("    }\n")
	}
	b.WriteString("}\n")
	return []byte(b.String())
}

func writeEntries(b *strings.Builder, indent string, entries []Entry, more bool) {
	for i, e := range entries {
		v := "null"
		if !e.Placeholder {
			v = jsonString(e.Value)
		}
		fmt.Fprintf(b, "%s%s: %s", indent, jsonString(e.Key), v)
		if i < len(entries)-1 || more {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
}

// jsonString returns s as a JSON string literal without HTML escaping.
func jsonString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// WriteFile writes the storage file atomically.
func (f *File) WriteFile(path string) error {
	return atomicfile.WriteFile(path, f.Marshal(), 0o644)
}
