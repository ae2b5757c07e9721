package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfiguration_NoFile(t *testing.T) {
	cfg, err := LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() with empty path error = %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("Default config version = %d, want 1", cfg.Version)
	}
	if cfg.Editor.IDLength != 8 {
		t.Errorf("IDLength = %d, want 8", cfg.Editor.IDLength)
	}
	if cfg.Editor.DefaultTag != "div" {
		t.Errorf("DefaultTag = %q, want div", cfg.Editor.DefaultTag)
	}
	if cfg.Editor.Highlight.Outline != "2px dashed #1e90ff" {
		t.Errorf("Highlight.Outline = %q", cfg.Editor.Highlight.Outline)
	}
	if !strings.Contains(cfg.Render.TitleTemplate, "{{") {
		t.Errorf("title template was expanded: %q", cfg.Render.TitleTemplate)
	}
}

func TestLoadConfiguration_WithFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `version: 1
editor:
  id_length: 12
  max_resolve_depth: 5
  default_tag: section
  highlight:
    outline: 1px solid red
    outline_offset: 0
store:
  database: `+filepath.Join(dir, "db", "docs.db")+`
render:
  format: xhtml
logging:
  console:
    level: debug
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if cfg.Editor.IDLength != 12 || cfg.Editor.MaxResolveDepth != 5 || cfg.Editor.DefaultTag != "section" {
		t.Errorf("editor section = %+v", cfg.Editor)
	}
	if cfg.Editor.Highlight.OutlineOffset != "0" {
		t.Errorf("OutlineOffset = %q", cfg.Editor.Highlight.OutlineOffset)
	}
	if cfg.Render.Format != "xhtml" {
		t.Errorf("Format = %q", cfg.Render.Format)
	}
	// values absent from the file keep defaults
	if cfg.Reporting.Destination == "" || cfg.Logging.FileLogger.Level != "none" {
		t.Error("defaults were lost")
	}
	if _, err := os.Stat(filepath.Join(dir, "db")); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
}

func TestLoadConfiguration_Errors(t *testing.T) {
	for name, content := range map[string]string{
		"invalid yaml":   "version: 1\neditor:\n  id_length: 8\n  invalid indent\n",
		"unknown field":  "version: 1\nunknown_field: value\n",
		"bad version":    "version: 2\n",
		"short ids":      "version: 1\neditor:\n  id_length: 2\n",
		"unknown format": "version: 1\nrender:\n  format: pdf\n",
		"missing schema": "version: 1\nschema:\n  directory: /nonexistent/schema/dir\n",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadConfiguration(writeConfig(t, content)); err == nil {
				t.Error("expected error")
			}
		})
	}

	t.Run("no file", func(t *testing.T) {
		if _, err := LoadConfiguration("/nonexistent/config.yaml"); err == nil {
			t.Error("Expected error for nonexistent file")
		}
	})
}

func TestPrepareAndDump(t *testing.T) {
	data, err := Prepare()
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, true)
	if err != nil {
		t.Fatalf("Prepared config is not valid: %v", err)
	}

	dumped, err := Dump(cfg)
	if err != nil {
		t.Fatalf("Dump() error = %v", err)
	}
	again, err := unmarshalConfig(dumped, &Config{}, false)
	if err != nil {
		t.Fatalf("Dumped config cannot be loaded: %v", err)
	}
	if again.Editor != cfg.Editor || again.Render != cfg.Render {
		t.Errorf("dump/load mismatch: %+v vs %+v", again.Editor, cfg.Editor)
	}
}

func TestUnmarshalConfig_WrapsValidationError(t *testing.T) {
	_, err := unmarshalConfig([]byte("version: 99\n"), &Config{}, true)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "validat") {
		t.Errorf("expected error to mention validation, got: %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped error, got bare error: %v", err)
	}
}
