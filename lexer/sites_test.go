package lexer

import "testing"

func sitesOf(t *testing.T, src string, d Dialect) []Site {
	t.Helper()
	toks, err := Tokenize([]byte(src), d)
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	return Strings(toks)
}

func TestStringsCallContext(t *testing.T) {
	t.Parallel()

	src := `fn build() -> Menu {
    Menu {
        name: "File".into(),
        items: vec![
            MenuItem::action("Open…", Open), // shortcut
            MenuItem::os_action("Save", Save, OsAction::Save),
            MenuItem::action(t!(cx, "i18n.menu.file.close"), Close),
        ],
    }
}`
	sites := sitesOf(t, src, Rust)
	if len(sites) != 4 {
		t.Fatalf("got %d sites, want 4", len(sites))
	}

	name := sites[0]
	top, _ := name.Top()
	if top.Kind != Brace || top.Callee != "Menu" || name.Label != "name" || !name.Direct() {
		t.Fatalf("name site = %+v label %q, want Menu brace with label name", top, name.Label)
	}
	if len(name.Frames) != 2 || name.Frames[0].Callee != "" {
		t.Fatalf("fn body frame should carry no callee: %+v", name.Frames)
	}

	open := sites[1]
	call, ok := open.Call()
	if !ok || call.Callee != "MenuItem::action" || call.Arg != 1 {
		t.Fatalf("open call = %+v, want MenuItem::action arg 1", call)
	}
	if open.Comment != "shortcut" {
		t.Fatalf("open comment = %q, want %q", open.Comment, "shortcut")
	}

	save := sites[2]
	if call, _ := save.Call(); call.Callee != "MenuItem::os_action" {
		t.Fatalf("save callee = %q", call.Callee)
	}

	key := sites[3]
	calls := key.Calls()
	if len(calls) != 3 || calls[0].Callee != "t!" || calls[0].Arg != 2 || calls[1].Callee != "MenuItem::action" {
		t.Fatalf("key calls = %+v", calls)
	}
}

func TestStringsLabelsAndDirect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		d      Dialect
		src    string
		label  string
		direct bool
		callee string
	}{
		{"go field", Go, `x := T{Title: "Hello"}`, "Title", true, "T"},
		{"python kwarg", Python, `button(text="Save")`, "text", true, "button"},
		{"comparison", Rust, `if a == "b" {}`, "", false, ""},
		{"concat", JavaScript, `alert("a" + b)`, "", false, "alert"},
		{"method path", Go, `log.Info("started")`, "", true, "log.Info"},
		{"turbofish", Rust, `parse::<u32>("1")`, "", true, "parse"},
		{"definition", Python, `def f(x="d"): pass`, "x", true, ""},
		{"keyword", Go, `if ("x") {}`, "", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sites := sitesOf(t, tt.src, tt.d)
			if len(sites) != 1 {
				t.Fatalf("got %d sites, want 1", len(sites))
			}
			s := sites[0]
			if s.Label != tt.label {
				t.Fatalf("Label = %q, want %q", s.Label, tt.label)
			}
			if s.Direct() != tt.direct {
				t.Fatalf("Direct() = %v, want %v", s.Direct(), tt.direct)
			}
			top, _ := s.Top()
			if top.Callee != tt.callee {
				t.Fatalf("callee = %q, want %q", top.Callee, tt.callee)
			}
		})
	}
}

func TestStringsCommentAbove(t *testing.T) {
	t.Parallel()

	sites := sitesOf(t, "// i18n-ignore\nlet s = \"Debug Mode\";\nlet u = \"Other\";", Rust)
	if len(sites) != 2 {
		t.Fatalf("got %d sites", len(sites))
	}
	if sites[0].Comment != "i18n-ignore" {
		t.Fatalf("Comment = %q, want i18n-ignore", sites[0].Comment)
	}
	if sites[1].Comment != "" {
		t.Fatalf("second Comment = %q, want empty", sites[1].Comment)
	}
}
