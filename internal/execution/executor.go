package execution

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"uirunner/internal/browser"
	"uirunner/internal/domain"
)

// Actual results reported by actions that do not observe anything
const (
	InputSuccessful      = "Input Successful"
	Clicked              = "Clicked"
	ActionNotImplemented = "Action not implemented"
)

// Executor performs one test case against a live session. Errors from the
// session are turned into failing results and never returned.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor creates a new Executor
func NewExecutor(logger *slog.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs tc on sess and returns its result
func (e *Executor) Execute(ctx context.Context, tc domain.TestCase, sess browser.Session) domain.TestResult {
	start := time.Now()
	result := e.execute(ctx, tc, sess)
	e.logger.Debug("case executed",
		"case", tc.ID,
		"action", tc.Action,
		"status", result.Status,
		"duration", time.Since(start))
	return result
}

func (e *Executor) execute(ctx context.Context, tc domain.TestCase, sess browser.Session) domain.TestResult {
	step := tc.Step()
	if _, unsupported := step.(domain.UnsupportedStep); unsupported {
		return domain.Fail(tc, ActionNotImplemented)
	}

	el, err := sess.Element(ctx, tc.Selector)
	if err != nil {
		return e.fail(tc, err)
	}

	actual, ok, err := perform(ctx, step, el)
	if err != nil {
		return e.fail(tc, err)
	}
	return domain.Verdict(tc, actual, ok)
}

// perform applies step to el and returns the observed value and whether it
// satisfies the step.
func perform(ctx context.Context, step domain.Step, el browser.Element) (string, bool, error) {
	switch s := step.(type) {
	case domain.InputStep:
		if err := el.SendKeys(ctx, s.Text); err != nil {
			return "", false, err
		}
		return InputSuccessful, true, nil

	case domain.ClickStep:
		if err := el.Click(ctx); err != nil {
			return "", false, err
		}
		return Clicked, true, nil

	case domain.VerifyTextStep:
		text, err := el.Text(ctx)
		if err != nil {
			return "", false, err
		}
		return text, text == s.Expected, nil

	case domain.VerifyVisibilityStep:
		visible, err := el.Visible(ctx)
		if err != nil {
			return "", false, err
		}
		if visible {
			return domain.Visible, s.WantVisible, nil
		}
		return domain.NotVisible, !s.WantVisible, nil

	default:
		return ActionNotImplemented, false, nil
	}
}

func (e *Executor) fail(tc domain.TestCase, err error) domain.TestResult {
	e.logger.Info("case failed",
		"case", tc.ID,
		"selector", tc.Selector,
		"kind", classify(err),
		"error", err)
	return domain.Fail(tc, err.Error())
}

// classify names the kind of per-case error for logs
func classify(err error) string {
	switch {
	case errors.Is(err, browser.ErrElementNotFound):
		return "not_found"
	case errors.Is(err, browser.ErrNotInteractable):
		return "not_interactable"
	case errors.Is(err, browser.ErrInvalidSelector):
		return "invalid_selector"
	case errors.Is(err, browser.ErrSessionClosed):
		return "session_closed"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
