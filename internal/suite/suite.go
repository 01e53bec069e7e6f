// Package suite ties generation, execution and result persistence together
// for the CLI and the web front-end.
package suite

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"uirunner/internal/browser"
	"uirunner/internal/config"
	"uirunner/internal/domain"
	"uirunner/internal/execution"
	"uirunner/internal/generator"
	"uirunner/internal/metrics"
	"uirunner/internal/storage"
)

// Recorder keeps a history of runs
type Recorder interface {
	Record(ctx context.Context, output *domain.RunOutput) error
}

// DriverFactory builds the driver for a run
type DriverFactory func(opts browser.Options) (browser.Driver, error)

// Suite generates case workbooks and runs them
type Suite struct {
	cfg       *config.Config
	workbooks *storage.WorkbookStore
	results   storage.Storage
	history   Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger
	newDriver DriverFactory

	// guards the shared output files
	mu sync.Mutex
}

// Option configures a Suite
type Option func(*Suite)

// WithHistory records every completed run in r
func WithHistory(r Recorder) Option {
	return func(s *Suite) { s.history = r }
}

// WithMetrics reports runs to m
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Suite) { s.metrics = m }
}

// WithDriverFactory replaces browser.NewDriver
func WithDriverFactory(f DriverFactory) Option {
	return func(s *Suite) { s.newDriver = f }
}

// New creates a Suite writing its files under cfg's output dir
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Suite {
	s := &Suite{
		cfg:       cfg,
		workbooks: storage.NewWorkbookStore(cfg.SheetName),
		results:   storage.NewJSONStorage(cfg),
		logger:    logger,
		newDriver: browser.NewDriver,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Workbooks returns the workbook store used for case and result files
func (s *Suite) Workbooks() *storage.WorkbookStore {
	return s.workbooks
}

// Generate writes count template cases for url to path
func (s *Suite) Generate(url string, count int, path string) ([]domain.TestCase, error) {
	cases := generator.Generate(url, count)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.workbooks.WriteCases(path, cases); err != nil {
		return nil, fmt.Errorf("write cases: %w", err)
	}
	s.metrics.ObserveGenerated(len(cases))
	s.logger.Info("cases generated", "url", url, "count", len(cases), "path", path)
	return cases, nil
}

// RunRequest describes one run
type RunRequest struct {
	URL   string
	Cases []domain.TestCase
	// ResultsPath is where the results workbook is written
	ResultsPath string
	Progress    execution.Progress
}

// Run executes req.Cases against req.URL and persists the results as a
// workbook, the JSON summary and, when configured, run history. A run-fatal
// error is returned as is and nothing is persisted.
func (s *Suite) Run(ctx context.Context, req RunRequest) (*domain.RunOutput, error) {
	start := time.Now()

	driver, err := s.newDriver(s.cfg.BrowserOptions())
	if err != nil {
		s.metrics.ObserveRun(nil, err, time.Since(start))
		return nil, err
	}

	runner := execution.NewRunner(driver, execution.NewExecutor(s.logger), s.logger)
	if req.Progress != nil {
		runner.SetProgress(req.Progress)
	}

	results, err := runner.Run(ctx, req.Cases, req.URL)
	duration := time.Since(start)
	s.metrics.ObserveRun(results, err, duration)
	if err != nil {
		return nil, err
	}

	output := domain.NewRunOutput(uuid.NewString(), req.URL, driver.Name(), results, duration, start)
	if err := s.persist(req.ResultsPath, output); err != nil {
		return output, err
	}

	if s.history != nil {
		if err := s.history.Record(ctx, output); err != nil {
			s.logger.Warn("recording run history", "run", output.Meta.RunID, "error", err)
		}
	}
	return output, nil
}

func (s *Suite) persist(resultsPath string, output *domain.RunOutput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if resultsPath != "" {
		if err := s.workbooks.WriteResults(resultsPath, output.Results); err != nil {
			return fmt.Errorf("write results workbook: %w", err)
		}
	}
	if err := s.results.Save(output); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	return nil
}
