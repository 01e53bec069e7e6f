package execution

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"uirunner/internal/browser"
	"uirunner/internal/domain"
)

// Progress is told about each finished case
type Progress interface {
	Update(passed, failed int)
	Finish()
}

// Runner executes a list of test cases against one browser session
type Runner struct {
	driver   browser.Driver
	executor *Executor
	logger   *slog.Logger
	progress Progress
}

// NewRunner creates a new Runner
func NewRunner(driver browser.Driver, executor *Executor, logger *slog.Logger) *Runner {
	return &Runner{
		driver:   driver,
		executor: executor,
		logger:   logger,
	}
}

// SetProgress sets the progress observer for the next run
func (r *Runner) SetProgress(progress Progress) {
	r.progress = progress
}

// Run launches a session, loads url before every case and executes the
// cases in order. It returns one result per case. A launch or navigation
// failure aborts the run and no results are returned; the session is closed
// in every case once launched.
func (r *Runner) Run(ctx context.Context, cases []domain.TestCase, url string) ([]domain.TestResult, error) {
	start := time.Now()
	r.logger.Info("run starting", "driver", r.driver.Name(), "url", url, "cases", len(cases))

	sess, err := r.driver.Launch(ctx)
	if err != nil {
		var launchErr *browser.LaunchError
		if !errors.As(err, &launchErr) {
			err = &browser.LaunchError{Driver: r.driver.Name(), Err: err}
		}
		r.logger.Error("run aborted", "error", err)
		return nil, err
	}
	defer r.release(sess)
	if r.progress != nil {
		defer r.progress.Finish()
	}

	results := make([]domain.TestResult, 0, len(cases))
	passed, failed := 0, 0
	for _, tc := range cases {
		if err := sess.Navigate(ctx, url); err != nil {
			var navErr *browser.NavigationError
			if !errors.As(err, &navErr) {
				err = &browser.NavigationError{URL: url, Err: err}
			}
			r.logger.Error("run aborted", "case", tc.ID, "error", err)
			return nil, err
		}

		result := r.executor.Execute(ctx, tc, sess)
		results = append(results, result)

		if result.Passed() {
			passed++
		} else {
			failed++
		}
		if r.progress != nil {
			r.progress.Update(passed, failed)
		}
	}

	r.logger.Info("run finished",
		"passed", passed,
		"failed", failed,
		"duration", time.Since(start).Round(time.Millisecond))
	return results, nil
}

func (r *Runner) release(sess browser.Session) {
	if err := sess.Close(); err != nil {
		r.logger.Warn("closing browser session", "error", err)
	}
}
