package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Driver != DefaultDriver {
		t.Errorf("expected Driver %s, got %s", DefaultDriver, cfg.Driver)
	}
	if cfg.ElementTimeout != DefaultElementTimeout {
		t.Errorf("expected ElementTimeout %s, got %s", DefaultElementTimeout, cfg.ElementTimeout)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("expected OutputDir %s, got %s", DefaultOutputDir, cfg.OutputDir)
	}
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Paths(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		get      func(*Config) string
		expected string
	}{
		{
			name:     "default cases path",
			config:   &Config{OutputDir: "data/temp", CasesFile: "cases.xlsx"},
			get:      (*Config).GetCasesPath,
			expected: filepath.Join("data/temp", "cases.xlsx"),
		},
		{
			name:     "cases path from out flag",
			config:   &Config{OutputDir: "data/temp", CasesFile: "cases.xlsx", Flags: Flags{OutPath: "/tmp/x.xlsx"}},
			get:      (*Config).GetCasesPath,
			expected: "/tmp/x.xlsx",
		},
		{
			name:     "default results path",
			config:   &Config{OutputDir: "out", ResultsFile: "results.xlsx"},
			get:      (*Config).GetResultsPath,
			expected: filepath.Join("out", "results.xlsx"),
		},
		{
			name:     "input path from cases flag",
			config:   &Config{OutputDir: "out", CasesFile: "cases.xlsx", Flags: Flags{CasesPath: "mine.xlsx"}},
			get:      (*Config).GetInputPath,
			expected: "mine.xlsx",
		},
		{
			name:     "input path falls back to generated workbook",
			config:   &Config{OutputDir: "out", CasesFile: "cases.xlsx"},
			get:      (*Config).GetInputPath,
			expected: filepath.Join("out", "cases.xlsx"),
		},
		{
			name:     "upload path",
			config:   &Config{OutputDir: "out", UploadFile: "up.xlsx"},
			get:      (*Config).GetUploadPath,
			expected: filepath.Join("out", "up.xlsx"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.get(tt.config)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestConfig_GetOutputPathIsAbsolute(t *testing.T) {
	cfg := New()
	assert.True(t, filepath.IsAbs(cfg.GetOutputPath()))
	assert.Equal(t, DefaultOutputJSONFile, filepath.Base(cfg.GetOutputPath()))
}

func TestConfig_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uirunner.yaml")
	content := `driver: static
headless: false
element_timeout: 3s
navigation_timeout: 1m
output_dir: /tmp/uirunner
history_dsn: "user:pass@tcp(localhost:3306)/ui"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := New()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, "static", cfg.Driver)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 3*time.Second, cfg.ElementTimeout)
	assert.Equal(t, time.Minute, cfg.NavigationTimeout)
	assert.Equal(t, "/tmp/uirunner", cfg.OutputDir)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/ui", cfg.HistoryDSN)
	// Untouched keys keep their defaults
	assert.Equal(t, DefaultSheetName, cfg.SheetName)
}

func TestConfig_LoadEnv(t *testing.T) {
	t.Setenv(EnvDriver, "static")
	t.Setenv(EnvHeadless, "false")
	t.Setenv(EnvElementTimeout, "250ms")
	t.Setenv(EnvOutputDir, "/var/uirunner")

	cfg := New()
	require.NoError(t, cfg.LoadEnv(""))

	assert.Equal(t, "static", cfg.Driver)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 250*time.Millisecond, cfg.ElementTimeout)
	assert.Equal(t, "/var/uirunner", cfg.OutputDir)

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv(EnvNavigationTimeout, "soon")
		assert.Error(t, New().LoadEnv(""))
	})
}

func TestConfig_LoadEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("UIRUNNER_CHROME_PATH=/opt/chrome/chrome\n"), 0644))
	t.Setenv(EnvChromePath, "")
	os.Unsetenv(EnvChromePath)

	cfg := New()
	require.NoError(t, cfg.LoadEnv(envFile))
	assert.Equal(t, "/opt/chrome/chrome", cfg.ChromePath)
}

func TestConfig_LoadEnvFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		assert.NoError(t, New().LoadEnv(filepath.Join(dir, "absent.env")))
	})

	t.Run("malformed file", func(t *testing.T) {
		envFile := filepath.Join(dir, "bad.env")
		require.NoError(t, os.WriteFile(envFile, []byte("BAD-KEY=1\n"), 0644))

		err := New().LoadEnv(envFile)
		require.Error(t, err)
		assert.Contains(t, err.Error(), envFile)
	})
}

func TestConfig_ApplyFlags(t *testing.T) {
	cfg := New()
	cfg.ApplyFlags(Flags{Driver: "static", HeadlessSet: true, Headless: false, Timeout: 2 * time.Second, Verbose: true})

	assert.Equal(t, "static", cfg.Driver)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 2*time.Second, cfg.ElementTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)

	cfg = New()
	cfg.ApplyFlags(Flags{Headless: false})
	assert.True(t, cfg.Headless, "headless only changes when the flag was set")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Driver = "firefox" }},
		{"zero element timeout", func(c *Config) { c.ElementTimeout = 0 }},
		{"negative navigation timeout", func(c *Config) { c.NavigationTimeout = -time.Second }},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(Flags{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestConfig_BrowserOptions(t *testing.T) {
	cfg := New()
	cfg.Driver = "static"
	cfg.ChromePath = "/usr/bin/chromium"

	opts := cfg.BrowserOptions()
	assert.Equal(t, "static", opts.Driver)
	assert.Equal(t, "/usr/bin/chromium", opts.ChromePath)
	assert.Equal(t, DefaultElementTimeout, opts.ElementTimeout)
	assert.Equal(t, DefaultNavigationTimeout, opts.NavigationTimeout)
}
