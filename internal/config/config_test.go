package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Extension != ".gv" {
		t.Errorf("unexpected extension %q", cfg.Extension)
	}
	for _, kw := range []string{"as", "else", "export", "for", "foreign", "if", "in", "import", "type", "mod", "while"} {
		if !cfg.IsKeyword(kw) {
			t.Errorf("expected %q to be a keyword", kw)
		}
	}
	if cfg.IsKeyword("int") {
		t.Errorf("type names are not keywords")
	}
	if !cfg.IsOperatorChar('+') || cfg.IsOperatorChar('(') {
		t.Errorf("unexpected operator character classification")
	}
	if !cfg.IsOperatorModifier('=') {
		t.Errorf("'=' must be an operator modifier")
	}
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "genv.yaml",
			content: `extension: .pine
std_root: /opt/std/lib.pine
language_version: ">= 4.0.0"
log:
  level: debug
`,
		},
		{
			name: "toml",
			file: "genv.toml",
			content: `extension = ".pine"
std_root = "/opt/std/lib.pine"
language_version = ">= 4.0.0"

[log]
level = "debug"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.Extension != ".pine" {
				t.Errorf("extension not loaded: %q", cfg.Extension)
			}
			if cfg.StdRoot != "/opt/std/lib.pine" {
				t.Errorf("std_root not loaded: %q", cfg.StdRoot)
			}
			if cfg.Log.Level != "debug" {
				t.Errorf("log level not loaded: %q", cfg.Log.Level)
			}
			// untouched fields keep their defaults
			if cfg.StdName != "std" {
				t.Errorf("expected default std name, got %q", cfg.StdName)
			}
			if cfg.ReadFile == nil {
				t.Errorf("ReadFile hook must default to os.ReadFile")
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LanguageVersion != Default().LanguageVersion {
		t.Errorf("expected defaults for a missing file")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("language_version: \"not a version\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Errorf("expected invalid version constraint to be rejected")
	}

	unknown := filepath.Join(dir, "genv.ini")
	if err := os.WriteFile(unknown, []byte("x=1"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(unknown); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
}

func TestVersionConstraint(t *testing.T) {
	cfg := Default()
	cons, err := cfg.VersionConstraint()
	if err != nil {
		t.Fatal(err)
	}
	if cons.String() == "" {
		t.Errorf("expected a non-empty constraint")
	}

	cfg.LanguageVersion = ""
	if _, err := cfg.VersionConstraint(); err != nil {
		t.Errorf("empty constraint must accept any version: %v", err)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.Log = LogConfig{Level: "debug", Format: "json"}
	cfg.LogOutput = &buf

	cfg.Logger().Debug("module loaded", slog.String("path", "a.gv"))
	if !strings.Contains(buf.String(), `"path":"a.gv"`) {
		t.Errorf("expected JSON log output, got %q", buf.String())
	}
	if cfg.Logger() != cfg.Logger() {
		t.Errorf("logger must be built once")
	}
	if ParseLevel("bogus") != slog.LevelInfo {
		t.Errorf("unknown level must map to info")
	}
}
