package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCategoriesSeedsDefaults(t *testing.T) {
	dir := t.TempDir()

	categories, err := LoadCategories(dir)
	if err != nil {
		t.Fatalf("LoadCategories failed: %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("seeded config defines no categories")
	}

	if _, err := os.Stat(filepath.Join(dir, "feeds.json")); err != nil {
		t.Errorf("feeds.json not seeded: %v", err)
	}

	for _, c := range categories {
		if c.Key == "" || c.Title == "" {
			t.Errorf("category missing key or title: %+v", c)
		}
		if len(c.Feeds) == 0 {
			t.Errorf("category %q has no feeds", c.Key)
		}
	}
}

func TestLoadCategoriesSortedAndTitled(t *testing.T) {
	dir := t.TempDir()
	cfg := `{
		"zeta": {"title": "Zeta", "feeds": {"A": "http://a"}},
		"alpha": {"feeds": {"B": "http://b"}, "show_author": true}
	}`
	if err := os.WriteFile(filepath.Join(dir, "feeds.json"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	categories, err := LoadCategories(dir)
	if err != nil {
		t.Fatalf("LoadCategories failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(categories))
	}
	if categories[0].Key != "alpha" || categories[1].Key != "zeta" {
		t.Errorf("order = [%s %s], want sorted by key", categories[0].Key, categories[1].Key)
	}
	if categories[0].Title != "alpha" {
		t.Errorf("Title = %q, want the key as fallback", categories[0].Title)
	}
	if !categories[0].ShowAuthor {
		t.Error("show_author not parsed")
	}
	if categories[1].Title != "Zeta" {
		t.Errorf("Title = %q", categories[1].Title)
	}
}

func TestLoadCategoriesInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "feeds.json"), []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCategories(dir); err == nil {
		t.Fatal("expected error for malformed feeds.json")
	}
}

func TestLoadCategoriesEmptyConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "feeds.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCategories(dir); err == nil {
		t.Fatal("expected error for a config with no categories")
	}
}

func TestLoadGeminiDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	g := LoadGemini(t.TempDir())
	if g.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", g.APIKey)
	}
	if g.Model != "gemini-2.5-flash-lite" {
		t.Errorf("Model = %q", g.Model)
	}
	if g.Language != "Korean" {
		t.Errorf("Language = %q", g.Language)
	}
}

func TestLoadGeminiFromFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	dir := t.TempDir()
	cfg := `{"api_key": "file-key", "model": "custom-model", "language": "Japanese"}`
	if err := os.WriteFile(filepath.Join(dir, "gemini.json"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	g := LoadGemini(dir)
	if g.APIKey != "file-key" || g.Model != "custom-model" || g.Language != "Japanese" {
		t.Errorf("Gemini = %+v", g)
	}
}

func TestLoadGeminiEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfg := `{"api_key": "file-key"}`
	if err := os.WriteFile(filepath.Join(dir, "gemini.json"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GEMINI_API_KEY", "env-key")
	if g := LoadGemini(dir); g.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want the environment to win", g.APIKey)
	}

	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	if g := LoadGemini(dir); g.APIKey != "google-key" {
		t.Errorf("APIKey = %q, want GOOGLE_API_KEY to override the file too", g.APIKey)
	}

	t.Setenv("GEMINI_API_KEY", "env-key")
	if g := LoadGemini(dir); g.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want GEMINI_API_KEY to win over GOOGLE_API_KEY", g.APIKey)
	}
}

func TestLoadGeminiMalformedFileIsNotFatal(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "gemini.json"), []byte("{oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if g := LoadGemini(dir); g.Model == "" {
		t.Error("defaults not applied after a malformed config")
	}
}
