package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cricket-analyzer/internal/model"
	"cricket-analyzer/internal/normalize"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"CRICKET_RAW_DIR", "CRICKET_OUTPUT_DIR", "SQLITE_PATH",
		"TURSO_DATABASE_URL", "TURSO_AUTH_TOKEN", "DATABASE_URL", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []normalize.Source{
		{Format: model.FormatTest, Dir: filepath.Join("data/raw_json", "tests")},
		{Format: model.FormatODI, Dir: filepath.Join("data/raw_json", "odis")},
		{Format: model.FormatT20, Dir: filepath.Join("data/raw_json", "t20s")},
		{Format: model.FormatIPL, Dir: filepath.Join("data/raw_json", "ipl")},
	}, cfg.Sources())
	assert.Equal(t, "csv", cfg.Output.Encoding)
	assert.Empty(t, cfg.SQLite.Path)
}

func TestLoadFileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cricket.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
raw_dir: /srv/cricsheet
formats:
  - format: ipl
    dir: ipl_json
  - format: t20
    dir: /mnt/t20s
output:
  encoding: jsonl
  gzip: true
sqlite:
  path: file.db
normalize:
  dedupe_estimate: 5000
`), 0o644))
	t.Setenv("SQLITE_PATH", "/tmp/override.db")
	t.Setenv("DATABASE_URL", "postgres://localhost/cricket")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, []normalize.Source{
		{Format: model.FormatIPL, Dir: filepath.Join("/srv/cricsheet", "ipl_json")},
		{Format: model.FormatT20, Dir: "/mnt/t20s"},
	}, cfg.Sources())
	assert.True(t, cfg.Output.Gzip)
	assert.Equal(t, "data/processed", cfg.Output.Dir, "unset keys keep their defaults")
	assert.Equal(t, "/tmp/override.db", cfg.SQLite.Path)
	assert.Equal(t, "postgres://localhost/cricket", cfg.Postgres.DSN)
	assert.Equal(t, uint(5000), cfg.Normalize.DedupeEstimate)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("formats: [unclosed"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown format", func(c *Config) { c.Formats[0].Format = "t10" }, `unknown format "t10"`},
		{"duplicate format", func(c *Config) { c.Formats[1].Format = "test" }, "listed twice"},
		{"no formats", func(c *Config) { c.Formats = nil }, "at least one format"},
		{"empty dir", func(c *Config) { c.Formats[2].Dir = "" }, "has no dir"},
		{"unknown encoding", func(c *Config) { c.Output.Encoding = "parquet" }, "unknown encoding"},
		{"no output dir", func(c *Config) { c.Output.Dir = "" }, "output.dir is required"},
		{"unknown level", func(c *Config) { c.LogLevel = "loud" }, "unknown log level"},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, "unknown log format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	cfg := Default()
	cfg.Output.Dir = ""
	cfg.Output.Disabled = true
	assert.NoError(t, cfg.Validate())
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CRICKET_TEST_DOTENV=loaded\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("CRICKET_TEST_DOTENV", "")
	os.Unsetenv("CRICKET_TEST_DOTENV")

	assert.Equal(t, ".env", LoadDotenv())
	assert.Equal(t, "loaded", os.Getenv("CRICKET_TEST_DOTENV"))
}
