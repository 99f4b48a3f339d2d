package content

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Hero.Title == "" {
		t.Error("default hero title should not be empty")
	}
	if len(cfg.Gate.Questions) == 0 {
		t.Error("default gate should have at least one question")
	}
	if len(cfg.Letter.Paragraphs) == 0 {
		t.Error("default letter should have paragraphs")
	}
	if !cfg.MemoriesVisible {
		t.Error("memories should be visible by default")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if cfg.Hero.Title != Default().Hero.Title {
		t.Errorf("Load(\"\") hero title = %q, want default %q", cfg.Hero.Title, Default().Hero.Title)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "content.yaml")

	data := `
hero:
  title: Hello
  intro: Custom intro
gate:
  title: Secret door
  questions:
    - prompt: Favorite color?
      type: text
      answerText: blue
songs:
  heading: Mixtape
  items:
    - url: https://open.spotify.com/track/abc123
      artist: Somebody
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Hero.Title != "Hello" {
		t.Errorf("hero title = %q, want %q", cfg.Hero.Title, "Hello")
	}
	if cfg.Gate.Title != "Secret door" {
		t.Errorf("gate title = %q, want %q", cfg.Gate.Title, "Secret door")
	}
	if len(cfg.Gate.Questions) != 1 {
		t.Fatalf("gate questions = %d, want 1", len(cfg.Gate.Questions))
	}
	if cfg.Gate.Questions[0].Type != QuestionText {
		t.Errorf("question type = %q, want %q", cfg.Gate.Questions[0].Type, QuestionText)
	}
	if len(cfg.Songs.Items) != 1 || cfg.Songs.Items[0].Artist != "Somebody" {
		t.Errorf("songs not loaded: %+v", cfg.Songs.Items)
	}

	// Sections absent from the file keep their defaults.
	if cfg.Letter.Heading != Default().Letter.Heading {
		t.Errorf("letter heading should keep default, got %q", cfg.Letter.Heading)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing content file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("hero: [not: valid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
