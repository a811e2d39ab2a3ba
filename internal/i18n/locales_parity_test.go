package i18n

import (
	"encoding/json"
	"io/fs"
	"sort"
	"strings"
	"testing"
	"time"
)

func TestLocaleKeysParity(t *testing.T) {
	en := mustLoadLocaleMessages(t, LangEN)
	id := mustLoadLocaleMessages(t, LangID)

	if missing := missingKeys(en, id); len(missing) > 0 {
		t.Errorf("keys missing in id locale: %s", strings.Join(missing, ", "))
	}
	if missing := missingKeys(id, en); len(missing) > 0 {
		t.Errorf("keys missing in en locale: %s", strings.Join(missing, ", "))
	}
}

func TestLocaleFormatVerbsMatch(t *testing.T) {
	en := mustLoadLocaleMessages(t, LangEN)
	id := mustLoadLocaleMessages(t, LangID)
	for key, value := range en {
		if strings.Count(value, "%") != strings.Count(id[key], "%") {
			t.Errorf("format verbs differ for %s: %q vs %q", key, value, id[key])
		}
	}
}

func TestManagerLanguageDetection(t *testing.T) {
	manager, err := NewEmbeddedManager("fr")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if manager.DefaultLanguage() != LangEN {
		t.Fatalf("expected unsupported default to fall back to en, got %q", manager.DefaultLanguage())
	}
	if got := manager.DetectFromAcceptLanguage("fr-FR,id-ID;q=0.8,en;q=0.5"); got != LangID {
		t.Fatalf("expected id, got %q", got)
	}
	if got := manager.NormalizeLanguage("ID_id"); got != LangID {
		t.Fatalf("expected id, got %q", got)
	}
	if got := manager.Translate(LangID, "missing.key"); got != "missing.key" {
		t.Fatalf("expected key fallback, got %q", got)
	}
	if got := manager.Translatef(LangID, "history.label.week", 2); got != "Minggu 2" {
		t.Fatalf("unexpected week label %q", got)
	}
	if got := manager.Weekday(LangEN, time.Wednesday); got != "Wed" {
		t.Fatalf("unexpected weekday %q", got)
	}
}

func TestFormatMilliliters(t *testing.T) {
	manager, err := NewEmbeddedManager(LangEN)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	tests := []struct {
		language string
		amount   int
		want     string
	}{
		{language: LangEN, amount: 750, want: "750"},
		{language: LangEN, amount: 1250, want: "1,250"},
		{language: LangID, amount: 1250, want: "1.250"},
		{language: LangEN, amount: 1234567, want: "1,234,567"},
	}
	for _, tt := range tests {
		if got := manager.FormatMilliliters(tt.language, tt.amount); got != tt.want {
			t.Fatalf("FormatMilliliters(%s, %d) = %q, want %q", tt.language, tt.amount, got, tt.want)
		}
	}
}

func mustLoadLocaleMessages(t *testing.T, language string) map[string]string {
	t.Helper()

	content, err := fs.ReadFile(embeddedLocales, "locales/"+language+".json")
	if err != nil {
		t.Fatalf("read locale %q: %v", language, err)
	}

	messages := map[string]string{}
	if err := json.Unmarshal(content, &messages); err != nil {
		t.Fatalf("parse locale %q: %v", language, err)
	}
	if len(messages) == 0 {
		t.Fatalf("locale %q is empty", language)
	}

	return messages
}

func missingKeys(source map[string]string, target map[string]string) []string {
	missing := make([]string, 0)
	for key := range source {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
