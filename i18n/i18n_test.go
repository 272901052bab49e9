package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FLUENTKIT_LANG", "")
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("FLUENTKIT_LANG overrides the locale", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("FLUENTKIT_LANG", "de")
		t.Setenv("LANGUAGE", "ru_RU")

		if got := detectLanguage(); got != "de" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "de")
		}
	})

	t.Run("prefers a language with a catalog", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "fr_FR:de_AT")
		t.Setenv("LANG", "it_IT.UTF-8")

		if got := detectLanguage(); got != "de_AT" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "de_AT")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}

	if got := N("file", "files", 1); got != "file" {
		t.Fatalf("N singular fallback = %q, want %q", got, "file")
	}

	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural fallback = %q, want %q", got, "files")
	}
}

func TestEmbeddedTranslations(t *testing.T) {
	old, oldLang := po, current
	t.Cleanup(func() { po, current = old, oldLang })

	Init("de")
	if Language() != "de" {
		t.Fatalf("Language() = %q, want %q", Language(), "de")
	}
	if got := T("Show version information"); got != "Versionsinformationen anzeigen" {
		t.Fatalf("T(de) = %q", got)
	}
	if got := N("%d message", "%d messages", 2); got != "%d Nachrichten" {
		t.Fatalf("N(de, 2) = %q", got)
	}

	Init("ru")
	if got := N("%d message", "%d messages", 5); got != "%d сообщений" {
		t.Fatalf("N(ru, 5) = %q", got)
	}

	Init("xx")
	if got := T("Show version information"); got != "Show version information" {
		t.Fatalf("T(xx) = %q, want passthrough", got)
	}
}
