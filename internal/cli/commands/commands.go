package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"uirunner/internal/cli"
	"uirunner/internal/config"
	"uirunner/internal/discovery"
	"uirunner/internal/logging"
	"uirunner/internal/storage"
	"uirunner/internal/suite"
	"uirunner/internal/ui"
)

// Exit codes reported through ExitError
const (
	ExitFailures = 1
	ExitFatal    = 2
)

// ExitError carries the process exit code for an error
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// Commands holds all CLI commands
type Commands struct {
	Generate *GenerateCommand
	Run      *RunCommand
	List     *ListCommand
	Results  *ResultsCommand
	History  *HistoryCommand
	Serve    *ServeCommand
}

// NewCommands creates all commands with dependencies. cfg is filled in by
// Register before a command executes.
func NewCommands(cfg *config.Config) *Commands {
	filter := discovery.NewFilter()
	jsonStorage := storage.NewJSONStorage(cfg)
	viewer := ui.NewResultsViewer()

	return &Commands{
		Generate: NewGenerateCommand(cfg),
		Run:      NewRunCommand(cfg, filter),
		List:     NewListCommand(cfg, filter, jsonStorage),
		Results:  NewResultsCommand(cfg, jsonStorage, viewer),
		History:  NewHistoryCommand(cfg),
		Serve:    NewServeCommand(cfg),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Path to a YAML config file (default "+config.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Shorthand for --log-level debug")

	// Load config after flags are parsed
	load := func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flags.ToConfigFlags(cmd.Flags().Changed("headless")))
		if err != nil {
			return err
		}
		*cfg = *loaded
		return nil
	}

	generateCmd := &cobra.Command{
		Use:     "generate",
		Short:   "Generate a test case workbook for a URL",
		Long:    "Write a workbook of template test cases for the given URL that can be edited and run later",
		RunE:    c.Generate.Execute,
		PreRunE: load,
	}
	generateCmd.Flags().StringVarP(&flags.URL, "url", "u", "", "URL the cases are written for")
	generateCmd.Flags().IntVarP(&flags.Count, "count", "n", config.DefaultCount, "Number of test cases to generate")
	generateCmd.Flags().StringVarP(&flags.OutPath, "out", "o", "", "Workbook to write (default <output dir>/"+config.DefaultCasesFile+")")
	_ = generateCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(generateCmd)

	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run a test case workbook against a URL",
		Long:    "Load the URL before every case, execute the cases in order in one browser session and write the results workbook",
		RunE:    c.Run.Execute,
		PreRunE: load,
	}
	runCmd.Flags().StringVarP(&flags.URL, "url", "u", "", "URL loaded before every case")
	runCmd.Flags().StringVarP(&flags.CasesPath, "cases", "c", "", "Case workbook to run (default <output dir>/"+config.DefaultCasesFile+")")
	runCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter cases by ID pattern (supports wildcards, e.g., 'TC*' or '*search*')")
	runCmd.Flags().StringVarP(&flags.Driver, "driver", "d", "", "Browser driver: chrome or static")
	runCmd.Flags().BoolVar(&flags.Headless, "headless", config.DefaultHeadless, "Run the browser without a window")
	runCmd.Flags().DurationVarP(&flags.Timeout, "timeout", "t", 0, "Element lookup timeout (default "+config.DefaultElementTimeout.String()+")")
	runCmd.Flags().StringVarP(&flags.OutPath, "out", "o", "", "Results workbook to write (default <output dir>/"+config.DefaultResultsFile+")")
	runCmd.Flags().BoolVar(&flags.FailOnFailures, "fail-on-failures", false, "Exit non-zero when any case fails")
	_ = runCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(runCmd)

	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List the cases of a workbook",
		Long:    "Read a case workbook and list its cases without running them; cases that failed in the last run are marked",
		RunE:    c.List.Execute,
		PreRunE: load,
	}
	listCmd.Flags().StringVarP(&flags.CasesPath, "cases", "c", "", "Case workbook to read (default <output dir>/"+config.DefaultCasesFile+")")
	listCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Filter cases by ID pattern (supports wildcards, e.g., 'TC*' or '*search*')")
	rootCmd.AddCommand(listCmd)

	resultsCmd := &cobra.Command{
		Use:     "results",
		Short:   "View the results of the last run",
		Long:    "Display the results of the last run in an interactive viewer, failures first",
		RunE:    c.Results.Execute,
		PreRunE: load,
	}
	resultsCmd.Flags().BoolVar(&flags.Plain, "plain", false, "Print the results as a table instead of opening the viewer")
	rootCmd.AddCommand(resultsCmd)

	historyCmd := &cobra.Command{
		Use:     "history",
		Short:   "List recent runs from the history database",
		Long:    "List the most recent runs recorded in MySQL; requires history_dsn",
		RunE:    c.History.Execute,
		PreRunE: load,
	}
	historyCmd.Flags().IntVarP(&flags.Limit, "limit", "l", 20, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Start the web front-end",
		Long:    "Serve the upload form, generated workbooks and run results over HTTP",
		RunE:    c.Serve.Execute,
		PreRunE: load,
	}
	serveCmd.Flags().StringVarP(&flags.Addr, "addr", "a", "", "Listen address (default "+config.DefaultListenAddr+")")
	serveCmd.Flags().StringVarP(&flags.Driver, "driver", "d", "", "Browser driver: chrome or static")
	serveCmd.Flags().BoolVar(&flags.Headless, "headless", config.DefaultHeadless, "Run the browser without a window")
	rootCmd.AddCommand(serveCmd)
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.New(w, cfg.LogLevel)
}

// openHistory connects to the history database when one is configured.
// The returned close func is always safe to call.
func openHistory(ctx context.Context, cfg *config.Config) (*storage.HistoryStore, func(), error) {
	if cfg.HistoryDSN == "" {
		return nil, func() {}, nil
	}
	history, err := storage.OpenHistory(ctx, cfg.HistoryDSN)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open run history: %w", err)
	}
	return history, func() { history.Close() }, nil
}

// newSuite builds a Suite, recording history when configured
func newSuite(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...suite.Option) (*suite.Suite, func(), error) {
	history, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		return nil, closeHistory, err
	}
	if history != nil {
		opts = append(opts, suite.WithHistory(history))
	}
	return suite.New(cfg, logger, opts...), closeHistory, nil
}
