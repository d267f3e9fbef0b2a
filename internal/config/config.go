package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"cricket-analyzer/internal/model"
	"cricket-analyzer/internal/normalize"
	"cricket-analyzer/internal/storage"
)

type Config struct {
	RawDir    string          `yaml:"raw_dir"`
	Formats   []FormatConfig  `yaml:"formats"`
	Output    OutputConfig    `yaml:"output"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Turso     TursoConfig     `yaml:"turso"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Normalize NormalizeConfig `yaml:"normalize"`
	LogLevel  string          `yaml:"log_level"`
	LogFormat string          `yaml:"log_format"`
}

// FormatConfig maps a format to its directory. Dir is relative to RawDir
// unless absolute.
type FormatConfig struct {
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Encoding string `yaml:"encoding"` // csv or jsonl
	Gzip     bool   `yaml:"gzip"`
	Disabled bool   `yaml:"disabled"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type TursoConfig struct {
	URL       string `yaml:"url"`
	AuthToken string `yaml:"auth_token"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type NormalizeConfig struct {
	DedupeEstimate uint `yaml:"dedupe_estimate"`
}

// envPaths are tried in order; the first .env found wins
var envPaths = []string{".env", "../.env", "../../.env"}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		RawDir: "data/raw_json",
		Formats: []FormatConfig{
			{Format: string(model.FormatTest), Dir: "tests"},
			{Format: string(model.FormatODI), Dir: "odis"},
			{Format: string(model.FormatT20), Dir: "t20s"},
			{Format: string(model.FormatIPL), Dir: "ipl"},
		},
		Output: OutputConfig{
			Dir:      "data/processed",
			Encoding: string(storage.EncodingCSV),
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadDotenv loads the first .env found and returns its path, or "" when
// none exists. Variables already set in the environment are kept.
func LoadDotenv() string {
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key string
		dst *string
	}{
		{"CRICKET_RAW_DIR", &c.RawDir},
		{"CRICKET_OUTPUT_DIR", &c.Output.Dir},
		{"SQLITE_PATH", &c.SQLite.Path},
		{"TURSO_DATABASE_URL", &c.Turso.URL},
		{"TURSO_AUTH_TOKEN", &c.Turso.AuthToken},
		{"DATABASE_URL", &c.Postgres.DSN},
		{"LOG_LEVEL", &c.LogLevel},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.key); v != "" {
			*o.dst = v
		}
	}
}

// Validate rejects unknown formats, encodings and log settings
func (c *Config) Validate() error {
	if c.RawDir == "" {
		return fmt.Errorf("raw_dir is required")
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("at least one format is required")
	}
	seen := make(map[model.Format]bool, len(c.Formats))
	for _, f := range c.Formats {
		format, err := model.ParseFormat(f.Format)
		if err != nil {
			return err
		}
		if seen[format] {
			return fmt.Errorf("format %q listed twice", f.Format)
		}
		seen[format] = true
		if f.Dir == "" {
			return fmt.Errorf("format %q has no dir", f.Format)
		}
	}
	if _, err := storage.ParseEncoding(c.Output.Encoding); err != nil {
		return err
	}
	if !c.Output.Disabled && c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required unless output is disabled")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Sources resolves the configured formats to directories in configured order
func (c *Config) Sources() []normalize.Source {
	sources := make([]normalize.Source, 0, len(c.Formats))
	for _, f := range c.Formats {
		dir := f.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(c.RawDir, dir)
		}
		sources = append(sources, normalize.Source{Format: model.Format(f.Format), Dir: dir})
	}
	return sources
}

// ParseLevel maps debug, info, warn and error to slog levels
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
