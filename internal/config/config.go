package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"uirunner/internal/browser"
	"uirunner/internal/logging"
)

// Config holds all configuration for the application
type Config struct {
	// Browser settings
	Driver            string        `yaml:"driver"`
	Headless          bool          `yaml:"headless"`
	ChromePath        string        `yaml:"chrome_path"`
	UserAgent         string        `yaml:"user_agent"`
	WindowWidth       int           `yaml:"window_width"`
	WindowHeight      int           `yaml:"window_height"`
	ElementTimeout    time.Duration `yaml:"element_timeout"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`

	// Output settings
	OutputDir      string `yaml:"output_dir"`
	CasesFile      string `yaml:"cases_file"`
	ResultsFile    string `yaml:"results_file"`
	UploadFile     string `yaml:"upload_file"`
	OutputJSONFile string `yaml:"output_json_file"`
	SheetName      string `yaml:"sheet_name"`

	// HistoryDSN enables run history in MySQL when set
	HistoryDSN string `yaml:"history_dsn"`

	ListenAddr string `yaml:"listen_addr"`
	LogLevel   string `yaml:"log_level"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Flags holds command-line flags
type Flags struct {
	ConfigPath     string
	URL            string
	Count          int
	CasesPath      string
	OutPath        string
	Filter         string
	Driver         string
	Headless       bool
	HeadlessSet    bool
	Timeout        time.Duration
	FailOnFailures bool
	Addr           string
	LogLevel       string
	Verbose        bool
	Plain          bool
	Limit          int
}

// New creates a new Config with defaults
func New() *Config {
	return &Config{
		Driver:            DefaultDriver,
		Headless:          DefaultHeadless,
		WindowWidth:       DefaultWindowWidth,
		WindowHeight:      DefaultWindowHeight,
		ElementTimeout:    DefaultElementTimeout,
		NavigationTimeout: DefaultNavigationTimeout,
		OutputDir:         DefaultOutputDir,
		CasesFile:         DefaultCasesFile,
		ResultsFile:       DefaultResultsFile,
		UploadFile:        DefaultUploadFile,
		OutputJSONFile:    DefaultOutputJSONFile,
		SheetName:         DefaultSheetName,
		ListenAddr:        DefaultListenAddr,
		LogLevel:          DefaultLogLevel,
	}
}

// Load creates a config from defaults, the config file, the environment and
// flags, in that order of precedence.
func Load(flags Flags) (*Config, error) {
	cfg := New()

	path := flags.ConfigPath
	if err := cfg.LoadFile(path); err != nil {
		if path != "" || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if err := cfg.LoadEnv(DefaultEnvFile); err != nil {
		return nil, err
	}
	cfg.ApplyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays YAML settings from path. An empty path reads
// DefaultConfigFile.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadEnv loads envFile into the process environment if it exists, then
// overlays UIRUNNER_* variables. A malformed envFile is an error.
func (c *Config) LoadEnv(envFile string) error {
	if envFile != "" {
		// A missing .env is fine; variables may come from the shell
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if v := os.Getenv(EnvDriver); v != "" {
		c.Driver = v
	}
	if v := os.Getenv(EnvHeadless); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHeadless, err)
		}
		c.Headless = b
	}
	if v := os.Getenv(EnvChromePath); v != "" {
		c.ChromePath = v
	}
	if v := os.Getenv(EnvElementTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvElementTimeout, err)
		}
		c.ElementTimeout = d
	}
	if v := os.Getenv(EnvNavigationTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvNavigationTimeout, err)
		}
		c.NavigationTimeout = d
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv(EnvHistoryDSN); v != "" {
		c.HistoryDSN = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// ApplyFlags stores flags and applies the ones that override settings
func (c *Config) ApplyFlags(flags Flags) {
	c.Flags = flags

	if flags.Driver != "" {
		c.Driver = flags.Driver
	}
	if flags.HeadlessSet {
		c.Headless = flags.Headless
	}
	if flags.Timeout > 0 {
		c.ElementTimeout = flags.Timeout
	}
	if flags.Addr != "" {
		c.ListenAddr = flags.Addr
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Verbose {
		c.LogLevel = "debug"
	}
}

// Validate checks settings that would otherwise fail mid-run
func (c *Config) Validate() error {
	switch c.Driver {
	case browser.DriverChrome, browser.DriverStatic:
	default:
		return fmt.Errorf("driver must be %q or %q, got %q", browser.DriverChrome, browser.DriverStatic, c.Driver)
	}
	if c.ElementTimeout <= 0 {
		return fmt.Errorf("element timeout must be positive, got %s", c.ElementTimeout)
	}
	if c.NavigationTimeout <= 0 {
		return fmt.Errorf("navigation timeout must be positive, got %s", c.NavigationTimeout)
	}
	if c.OutputDir == "" {
		return errors.New("output dir must not be empty")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// BrowserOptions returns the driver options for a run
func (c *Config) BrowserOptions() browser.Options {
	return browser.Options{
		Driver:            c.Driver,
		Headless:          c.Headless,
		ChromePath:        c.ChromePath,
		UserAgent:         c.UserAgent,
		WindowWidth:       c.WindowWidth,
		WindowHeight:      c.WindowHeight,
		ElementTimeout:    c.ElementTimeout,
		NavigationTimeout: c.NavigationTimeout,
	}
}

// GetOutputPath returns the absolute path of the JSON results file so that
// run and results always agree on it regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.OutputDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetCasesPath returns where generated cases are written, preferring the
// --out flag.
func (c *Config) GetCasesPath() string {
	if c.Flags.OutPath != "" {
		return c.Flags.OutPath
	}
	return filepath.Join(c.OutputDir, c.CasesFile)
}

// GetResultsPath returns where the results workbook is written, preferring
// the --out flag.
func (c *Config) GetResultsPath() string {
	if c.Flags.OutPath != "" {
		return c.Flags.OutPath
	}
	return filepath.Join(c.OutputDir, c.ResultsFile)
}

// GetUploadPath returns where uploaded workbooks are stored
func (c *Config) GetUploadPath() string {
	return filepath.Join(c.OutputDir, c.UploadFile)
}

// GetInputPath returns the case workbook to run: the --cases flag, or the
// last generated workbook.
func (c *Config) GetInputPath() string {
	if c.Flags.CasesPath != "" {
		return c.Flags.CasesPath
	}
	return filepath.Join(c.OutputDir, c.CasesFile)
}
