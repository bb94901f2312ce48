// Package config holds the immutable settings of one genv invocation.
//
// A Config is built once by the caller (Default or Load) and handed to the
// parser; nothing in the engine reads process-wide state.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Lexicon is the reserved vocabulary of the language.
type Lexicon struct {
	Keywords          []string `yaml:"keywords" toml:"keywords"`
	OperatorChars     string   `yaml:"operator_chars" toml:"operator_chars"`
	OperatorModifiers string   `yaml:"operator_modifiers" toml:"operator_modifiers"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Config holds parser and tooling settings.
type Config struct {
	// Extension is appended to module names to find sibling files.
	Extension string `yaml:"extension" toml:"extension"`
	// StdName is the reserved module name that maps to StdRoot.
	StdName string `yaml:"std_name" toml:"std_name"`
	// StdRoot is the entry file of the standard library.
	StdRoot string `yaml:"std_root" toml:"std_root"`
	// LanguageVersion is a semver constraint checked against `#@version=` pragmas.
	LanguageVersion string `yaml:"language_version" toml:"language_version"`

	ShowAST bool      `yaml:"show_ast" toml:"show_ast"`
	Quiet   bool      `yaml:"quiet" toml:"quiet"`
	Log     LogConfig `yaml:"log" toml:"log"`
	Lexicon Lexicon   `yaml:"lexicon" toml:"lexicon"`

	// ReadFile loads module sources. Defaults to os.ReadFile.
	ReadFile func(path string) ([]byte, error) `yaml:"-" toml:"-"`
	// LogOutput receives log records. Defaults to os.Stderr.
	LogOutput io.Writer `yaml:"-" toml:"-"`

	logger *slog.Logger
}

// DefaultKeywords are the reserved words of the language.
var DefaultKeywords = []string{
	"as", "const", "else", "export", "for", "foreign", "if", "import",
	"in", "infix", "mod", "type", "var", "varip", "while",
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Extension:       ".gv",
		StdName:         "std",
		StdRoot:         "/std/src/lib.gv",
		LanguageVersion: ">= 5.0.0",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Lexicon: Lexicon{
			Keywords:          append([]string(nil), DefaultKeywords...),
			OperatorChars:     "+-*/%=<>&|!?$@",
			OperatorModifiers: "=",
		},
		ReadFile: os.ReadFile,
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported configuration format %q", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the parser depends on.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Extension, ".") {
		return fmt.Errorf("extension %q must start with a dot", c.Extension)
	}
	if c.StdName == "" {
		return errors.New("std_name must not be empty")
	}
	if _, err := c.VersionConstraint(); err != nil {
		return err
	}
	if c.Lexicon.OperatorChars == "" {
		return errors.New("lexicon.operator_chars must not be empty")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// VersionConstraint parses LanguageVersion. An empty value accepts any version.
func (c *Config) VersionConstraint() (*semver.Constraints, error) {
	v := c.LanguageVersion
	if v == "" {
		v = "*"
	}
	cons, err := semver.NewConstraint(v)
	if err != nil {
		return nil, fmt.Errorf("invalid language_version %q: %w", c.LanguageVersion, err)
	}
	return cons, nil
}

// IsKeyword reports whether word is reserved.
func (c *Config) IsKeyword(word string) bool {
	for _, k := range c.Lexicon.Keywords {
		if k == word {
			return true
		}
	}
	return false
}

// IsOperatorChar reports whether b may appear in an operator lexeme.
func (c *Config) IsOperatorChar(b byte) bool {
	return strings.IndexByte(c.Lexicon.OperatorChars, b) >= 0
}

// IsOperatorModifier reports whether b may not follow an operator sign.
func (c *Config) IsOperatorModifier(b byte) bool {
	return strings.IndexByte(c.Lexicon.OperatorModifiers, b) >= 0
}

// Read loads a source file through the configured hook.
func (c *Config) Read(path string) ([]byte, error) {
	if c.ReadFile == nil {
		return os.ReadFile(path)
	}
	return c.ReadFile(path)
}

// Logger returns the structured logger described by Log, building it on
// first use.
func (c *Config) Logger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	out := c.LogOutput
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(c.Log.Level)}

	var handler slog.Handler
	if strings.EqualFold(c.Log.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	c.logger = slog.New(handler)
	return c.logger
}

// SetLogger overrides the logger returned by Logger.
func (c *Config) SetLogger(l *slog.Logger) {
	c.logger = l
}

// ParseLevel maps a level name to a slog level; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
