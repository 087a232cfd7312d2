package registry

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultPrefix is the first segment of every generated key.
const DefaultPrefix = "i18n"

// DefaultKeyPattern is the well-formedness rule for keys.
var DefaultKeyPattern = regexp.MustCompile(`^i18n(\.[a-z0-9_]+)+$`)

const maxSlug = 48

var slugDrop = strings.NewReplacer("…", "", "...", "", "'", "", "’", "", "&", "")

// Slug turns display text into a key segment: lower case ASCII letters,
// digits and underscores. Accents are folded; text with no usable characters
// falls back to a short content hash so the key stays deterministic.
func Slug(text string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}
	folded = slugDrop.Replace(strings.ToLower(folded))

	var b strings.Builder
	sep := true
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			sep = false
			continue
		}
		if !sep {
			b.WriteByte('_')
			sep = true
		}
	}
	s := strings.TrimRight(b.String(), "_")
	if len(s) > maxSlug {
		s = s[:maxSlug]
		if i := strings.LastIndexByte(s, '_'); i > 0 {
			s = s[:i]
		}
	}
	if s == "" {
		sum := md5.Sum([]byte(text))
		return "text_" + hex.EncodeToString(sum[:])[:8]
	}
	return s
}

// Join builds a key from segments, skipping empty ones.
func Join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ".")
}

// GroupOf returns the group implied by a key: its second segment, or
// "general" for keys too short to have one.
func GroupOf(key string) string {
	parts := strings.Split(key, ".")
	if len(parts) < 3 || parts[1] == "" {
		return "general"
	}
	return parts[1]
}
