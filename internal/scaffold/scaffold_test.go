package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"webserver/internal/config"
)

func TestConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	created, err := Config(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Config failed: %v", err)
	}
	if !created {
		t.Error("Expected the config file to be created")
	}

	// The default file must load cleanly
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Default config does not load: %v", err)
	}
	if cfg.Server.Address != config.DefaultAddress || cfg.Server.Threads != config.DefaultThreads {
		t.Errorf("Default config does not match defaults: %+v", cfg.Server)
	}

	created, err = Config(path, zerolog.Nop())
	if err != nil || created {
		t.Errorf("Second call: created=%v err=%v, want false <nil>", created, err)
	}
}

func TestContent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "www")

	if err := Content(root, zerolog.Nop()); err != nil {
		t.Fatalf("Content failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "index.md"))
	if err != nil {
		t.Fatalf("index.md missing: %v", err)
	}
	if string(data) != DefaultIndex {
		t.Errorf("Unexpected index content %q", data)
	}

	info, err := os.Stat(filepath.Join(root, "style", "font"))
	if err != nil || !info.IsDir() {
		t.Errorf("style/font is not a directory: %v", err)
	}

	for _, name := range []string{"favicon.ico", filepath.Join("style", "default.scss")} {
		if _, err := os.Stat(filepath.Join(root, name)); err != nil {
			t.Errorf("%s missing: %v", name, err)
		}
	}
}

func TestContentKeepsExistingFiles(t *testing.T) {
	root := t.TempDir()
	index := filepath.Join(root, "index.md")
	if err := os.WriteFile(index, []byte("# Mine"), 0644); err != nil {
		t.Fatalf("Failed to write index: %v", err)
	}

	if err := Content(root, zerolog.Nop()); err != nil {
		t.Fatalf("Content failed: %v", err)
	}

	data, err := os.ReadFile(index)
	if err != nil {
		t.Fatalf("Failed to read index: %v", err)
	}
	if string(data) != "# Mine" {
		t.Errorf("Existing index.md was overwritten: %q", data)
	}
}
