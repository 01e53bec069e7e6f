package config

import "time"

const (
	// DefaultConfigFile is read from the working directory when present
	DefaultConfigFile = "uirunner.yaml"
	// DefaultEnvFile is loaded into the environment when present
	DefaultEnvFile = ".env"
	// DefaultDriver is the browser driver used for runs
	DefaultDriver = "chrome"
	// DefaultHeadless runs the browser without a window
	DefaultHeadless = true
	// DefaultElementTimeout bounds how long a selector may take to resolve
	DefaultElementTimeout = 10 * time.Second
	// DefaultNavigationTimeout bounds a single page load
	DefaultNavigationTimeout = 30 * time.Second
	// DefaultWindowWidth and DefaultWindowHeight size the browser window
	DefaultWindowWidth  = 1280
	DefaultWindowHeight = 720
	// DefaultOutputDir is where workbooks and results are written
	DefaultOutputDir = "data/temp"
	// DefaultCasesFile is the generated test case workbook
	DefaultCasesFile = "ui_ux_test_cases.xlsx"
	// DefaultResultsFile is the results workbook written after a run
	DefaultResultsFile = "ui_ux_test_results.xlsx"
	// DefaultUploadFile is where uploaded workbooks are stored
	DefaultUploadFile = "uploaded_test_cases.xlsx"
	// DefaultOutputJSONFile is the JSON summary of the last run
	DefaultOutputJSONFile = "test-results.json"
	// DefaultSheetName is the worksheet cases are read from and written to
	DefaultSheetName = "Sheet1"
	// DefaultListenAddr is the address of the web front-end
	DefaultListenAddr = ":5000"
	// DefaultLogLevel is the slog level name
	DefaultLogLevel = "info"
	// DefaultCount is the number of generated test cases
	DefaultCount = 5
)

// Environment variables read by LoadEnv
const (
	EnvDriver            = "UIRUNNER_DRIVER"
	EnvHeadless          = "UIRUNNER_HEADLESS"
	EnvChromePath        = "UIRUNNER_CHROME_PATH"
	EnvElementTimeout    = "UIRUNNER_ELEMENT_TIMEOUT"
	EnvNavigationTimeout = "UIRUNNER_NAVIGATION_TIMEOUT"
	EnvOutputDir         = "UIRUNNER_OUTPUT_DIR"
	EnvHistoryDSN        = "UIRUNNER_HISTORY_DSN"
	EnvListenAddr        = "UIRUNNER_ADDR"
	EnvLogLevel          = "UIRUNNER_LOG_LEVEL"
)
