package classify

import (
	"fmt"
	"regexp"
)

// DefaultRules are the built-in exclusions, checked in order.
var DefaultRules = []Rule{
	{"punctuation", regexp.MustCompile(`^[\p{P}\p{S}\p{N}\s]+$`)},
	{"placeholder", regexp.MustCompile(`^(\{[^{}]*\}|%[-+# 0]*\d*(\.\d+)?[a-zA-Z%]|[\p{P}\p{S}\p{N}\s])+$`)},
	{"url", regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9+.-]*://|mailto:|www\.)\S*$`)},
	{"email", regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[a-zA-Z]{2,}$`)},
	{"path", regexp.MustCompile(`^(\.{0,2}/|~/|[A-Za-z]:\\|[\w.@-]+/)[^\s]*$`)},
	{"filename", regexp.MustCompile(`^[\w.-]+\.(rs|go|json|toml|ya?ml|txt|md|png|svg|jpe?g|gif|ico|html?|css|js|ts|py|sh|lock|wasm|so|dll|exe|po|mo|ftl)$`)},
	{"identifier", regexp.MustCompile(`^[a-z0-9]+([_.:-][a-z0-9]+)+$`)},
	{"constant", regexp.MustCompile(`^[A-Z0-9]+(_[A-Z0-9]+)+$`)},
	{"camel-case", regexp.MustCompile(`^([a-z]+|[A-Z][a-z0-9]+)([A-Z][a-z0-9]*)+$`)},
	{"hex", regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|0[xX][0-9a-fA-F]+|[0-9a-f]{8,})$`)},
	{"markup", regexp.MustCompile(`^(\s*</?[a-zA-Z][^>]*>\s*)+$`)},
}

// DefaultIgnoreCalls lists callees whose string arguments are developer
// facing: logging, panics, assertions and process plumbing.
var DefaultIgnoreCalls = []string{
	"log::*", "log.*", "tracing::*", "slog.*", "logger.*", "console.*", "logging.*",
	"trace!", "debug!", "info!", "warn!", "error!",
	"println!", "eprintln!", "print!", "eprint!", "dbg!",
	"panic!", "unreachable!", "todo!", "unimplemented!",
	"assert!", "assert_eq!", "assert_ne!", "debug_assert!", "debug_assert_eq!",
	"expect", "context", "with_context", "anyhow!", "bail!",
	"include_str!", "include_bytes!", "env!", "option_env!", "concat!",
	"Regex::new", "regexp.MustCompile", "regexp.Compile", "re.compile",
	"Command::new", "exec.Command", "env::var", "os.Getenv", "Getenv",
	"fmt.Errorf", "errors.New", "Errorf", "Fatalf", "Logf",
	"json!", "serde_json::from_str", "getattr", "setattr",
}

// DefaultUILabels are field names that usually hold display text.
var DefaultUILabels = []string{
	"name", "label", "title", "text", "description", "tooltip", "placeholder",
	"message", "caption", "hint", "heading", "summary", "help",
}

// DefaultUICalls are callees whose arguments usually are display text.
var DefaultUICalls = []string{
	"Label::new", "Button::new", "Tooltip::text", "Tooltip::for_action",
	"MenuItem::action", "MenuItem::os_action", "Headline::new",
	"with_title", "set_title", "set_label", "set_text", "tooltip", "placeholder",
	"alert", "confirm", "prompt", "showMessage", "notify",
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() Policy {
	return Policy{
		Exclude:      append([]Rule(nil), DefaultRules...),
		IgnoreCalls:  append([]string(nil), DefaultIgnoreCalls...),
		IgnoreMarker: "i18n-ignore",
		UILabels:     append([]string(nil), DefaultUILabels...),
		UICalls:      append([]string(nil), DefaultUICalls...),
		MinLength:    2,
		MinWords:     1,
		Threshold:    60,
	}
}

// CompileRules compiles name/pattern pairs into rules, keeping their order.
func CompileRules(pairs [][2]string) ([]Rule, error) {
	rules := make([]Rule, 0, len(pairs))
	for _, p := range pairs {
		re, err := regexp.Compile(p[1])
		if err != nil {
			return nil, fmt.Errorf("exclusion rule %q: %w", p[0], err)
		}
		rules = append(rules, Rule{Name: p[0], Pattern: re})
	}
	return rules, nil
}
