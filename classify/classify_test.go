package classify

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	tests := []struct {
		name   string
		text   string
		ctx    Context
		ok     bool
		reason string
	}{
		{"ui call", "Open File", Context{Calls: []string{"Button::new"}}, true, ""},
		{"plain sentence", "Failed to save the document.", Context{}, true, ""},
		{"single capitalized", "Save", Context{}, true, ""},
		{"cjk", "打开文件", Context{}, true, ""},
		{"ui label lowercase", "untitled file", Context{Label: "title"}, true, ""},
		{"no label lowercase", "untitled file", Context{}, false, ReasonBelowThreshold},
		{"identifier", "debug_mode", Context{}, false, "identifier"},
		{"dotted key", "i18n.menu.file", Context{}, false, "identifier"},
		{"constant", "MAX_RETRIES", Context{}, false, "constant"},
		{"camel", "openFile", Context{}, false, "camel-case"},
		{"url", "https://example.com/docs", Context{}, false, "url"},
		{"email", "team@example.com", Context{}, false, "email"},
		{"path", "./assets/icons", Context{}, false, "path"},
		{"filename", "settings.json", Context{}, false, "filename"},
		{"braces", "{}", Context{}, false, "punctuation"},
		{"placeholder", "{name}", Context{}, false, "placeholder"},
		{"format verbs", "%s: %d", Context{}, false, "placeholder"},
		{"digits", "1.0.2", Context{}, false, "punctuation"},
		{"hex", "#ff00aa", Context{}, false, "hex"},
		{"markup", "<br/>", Context{}, false, "markup"},
		{"blank", "   ", Context{}, false, ReasonBlank},
		{"too short", "Q", Context{}, false, ReasonTooShort},
		{"lowercase word", "error", Context{}, false, ReasonBelowThreshold},
		{"marker", "Debug Mode", Context{Comment: "i18n-ignore: dev only"}, false, ReasonIgnoreMarker},
		{"log macro", "Starting server", Context{Calls: []string{"log::info!"}}, false, ReasonIgnoredCall},
		{"nested ignored call", "Bad input", Context{Calls: []string{"format!", "panic!"}}, false, ReasonIgnoredCall},
		{"in translation call", "Open File", Context{InTranslationCall: true}, false, ReasonKeywordArg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := p.Classify(tt.text, tt.ctx)
			if got.Translatable != tt.ok {
				t.Fatalf("Classify(%q) = %v, want translatable=%v", tt.text, got, tt.ok)
			}
			if !tt.ok && got.Reason != tt.reason {
				t.Fatalf("Classify(%q) reason = %q, want %q", tt.text, got.Reason, tt.reason)
			}
		})
	}
}

func TestClassifyRuleOrder(t *testing.T) {
	t.Parallel()

	// An ignore marker wins over the exclusion rules.
	p := DefaultPolicy()
	got := p.Classify("debug_mode", Context{Comment: "i18n-ignore"})
	if got.Reason != ReasonIgnoreMarker {
		t.Fatalf("reason = %q, want %q", got.Reason, ReasonIgnoreMarker)
	}
}

func TestConfidence(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	tests := []struct {
		text string
		ctx  Context
		want int
	}{
		{"Open File", Context{}, 75},
		{"Open File", Context{Calls: []string{"MenuItem::action"}}, 100},
		{"Save", Context{}, 60},
		{"save", Context{}, 30},
		{"Are you sure you want to quit?", Context{}, 90},
		{"保存", Context{}, 80},
	}
	for _, tt := range tests {
		if got := p.Confidence(tt.text, tt.ctx); got != tt.want {
			t.Fatalf("Confidence(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestMatchCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		patterns []string
		callee   string
		want     bool
	}{
		{[]string{"log::*"}, "log::info!", true},
		{[]string{"info!"}, "log::info!", true},
		{[]string{"Errorf"}, "fmt.Errorf", true},
		{[]string{"t!"}, "tr", false},
		{[]string{"*"}, "", false},
	}
	for _, tt := range tests {
		if got := MatchCall(tt.patterns, tt.callee); got != tt.want {
			t.Fatalf("MatchCall(%q, %q) = %v, want %v", tt.patterns, tt.callee, got, tt.want)
		}
	}
}

func TestCompileRules(t *testing.T) {
	t.Parallel()

	rules, err := CompileRules([][2]string{{"ticket", `^[A-Z]+-\d+$`}})
	if err != nil {
		t.Fatalf("CompileRules() error: %v", err)
	}
	p := DefaultPolicy()
	p.Exclude = append(p.Exclude, rules...)
	if got := p.Classify("PROJ-123", Context{}); got.Reason != "ticket" {
		t.Fatalf("reason = %q, want ticket", got.Reason)
	}
	if _, err := CompileRules([][2]string{{"bad", `(`}}); err == nil {
		t.Fatal("CompileRules() with invalid pattern should fail")
	}
}
