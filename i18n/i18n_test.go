package i18n

import (
	"slices"
	"testing"
)

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func resetCatalog(t *testing.T) {
	t.Helper()
	oldPo, oldCurrent := po, current
	t.Cleanup(func() { po, current = oldPo, oldCurrent })
}

func TestPreferences(t *testing.T) {
	t.Run("LANGUAGE list comes first", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		want := []string{"ru_RU", "en_US", "de_DE"}
		if got := preferences(); !slices.Equal(got, want) {
			t.Fatalf("preferences() = %q, want %q", got, want)
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8@euro")

		want := []string{"fr_FR"}
		if got := preferences(); !slices.Equal(got, want) {
			t.Fatalf("preferences() = %q, want %q", got, want)
		}
	})

	t.Run("empty environment", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := preferences(); len(got) != 0 {
			t.Fatalf("preferences() = %q, want none", got)
		}
	})
}

func TestMatch(t *testing.T) {
	available := []string{"ru", "uk"}
	tests := []struct {
		prefs []string
		want  string
	}{
		{[]string{"ru_RU"}, "ru"},
		{[]string{"uk-UA"}, "uk"},
		{[]string{"de_DE", "uk"}, "uk"},
		{[]string{"en_US", "ru"}, "en"},
		{[]string{"de"}, "en"},
		{[]string{"not a locale"}, "en"},
		{nil, "en"},
	}
	for _, tc := range tests {
		if got := match(tc.prefs, available); got != tc.want {
			t.Fatalf("match(%q) = %q, want %q", tc.prefs, got, tc.want)
		}
	}
}

func TestAvailable(t *testing.T) {
	if got := Available(); !slices.Contains(got, "ru") {
		t.Fatalf("Available() = %q, want ru among them", got)
	}
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	resetCatalog(t)
	po = nil

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}
	if got := T("Scanning %s", "src"); got != "Scanning src" {
		t.Fatalf("T with args = %q, want %q", got, "Scanning src")
	}
	if got := N("Found %d file", "Found %d files", 1, 1); got != "Found 1 file" {
		t.Fatalf("N singular fallback = %q", got)
	}
	if got := N("Found %d file", "Found %d files", 2, 2); got != "Found 2 files" {
		t.Fatalf("N plural fallback = %q", got)
	}
}

func TestInitLoadsEmbeddedCatalog(t *testing.T) {
	resetCatalog(t)

	if got := Init("ru_RU"); got != "ru" || Language() != "ru" {
		t.Fatalf("Init(ru_RU) = %q, Language() = %q, want ru", got, Language())
	}
	if got := T("Scanning %s", "src"); got != "Сканирование src" {
		t.Fatalf("T(ru) = %q, want Russian translation", got)
	}
	if got := N("Found %d file", "Found %d files", 5, 5); got != "Найдено 5 файлов" {
		t.Fatalf("N(ru, 5) = %q", got)
	}
	if got := N("Found %d file", "Found %d files", 3, 3); got != "Найдено 3 файла" {
		t.Fatalf("N(ru, 3) = %q", got)
	}
	if got := T("not in the catalog"); got != "not in the catalog" {
		t.Fatalf("T(unknown) = %q, want passthrough", got)
	}

	if got := Init("en"); got != "en" {
		t.Fatalf("Init(en) = %q", got)
	}
	if got := T("Scanning %s", "src"); got != "Scanning src" {
		t.Fatalf("T(en) = %q, want passthrough", got)
	}
}

func TestInitFromEnvironment(t *testing.T) {
	resetCatalog(t)
	clearLocaleEnv(t)
	t.Setenv("LANG", "ru_RU.UTF-8")

	if got := Init(""); got != "ru" {
		t.Fatalf("Init(\"\") with LANG=ru_RU.UTF-8 = %q, want ru", got)
	}
}
