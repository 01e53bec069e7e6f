package domain

import "time"

// Status is the verdict of a single test case
type Status string

const (
	StatusPass Status = "Pass"
	StatusFail Status = "Fail"
)

// TestResult is a test case together with what happened when it ran
type TestResult struct {
	TestCase
	ActualResult string `json:"actual_result"`
	Status       Status `json:"status"`
}

// Passed reports whether the case passed
func (r TestResult) Passed() bool {
	return r.Status == StatusPass
}

// Row returns the result as table cells in ResultColumns order
func (r TestResult) Row() []string {
	return append(r.TestCase.Row(), r.ActualResult, string(r.Status))
}

// Pass builds a passing result for tc
func Pass(tc TestCase, actual string) TestResult {
	return TestResult{TestCase: tc, ActualResult: actual, Status: StatusPass}
}

// Fail builds a failing result for tc
func Fail(tc TestCase, actual string) TestResult {
	return TestResult{TestCase: tc, ActualResult: actual, Status: StatusFail}
}

// Verdict builds a result that passes only when ok is true
func Verdict(tc TestCase, actual string, ok bool) TestResult {
	if ok {
		return Pass(tc, actual)
	}
	return Fail(tc, actual)
}

// RunMeta contains metadata about a run
type RunMeta struct {
	RunID           string  `json:"run_id"`
	URL             string  `json:"url"`
	Driver          string  `json:"driver"`
	TotalCases      int     `json:"total_cases"`
	PassedCases     int     `json:"passed_cases"`
	FailedCases     int     `json:"failed_cases"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// RunOutput is the complete persisted record of a run
type RunOutput struct {
	Meta    RunMeta      `json:"meta"`
	Results []TestResult `json:"results"`
}

// NewRunOutput summarises results into a RunOutput
func NewRunOutput(runID, url, driver string, results []TestResult, duration time.Duration, at time.Time) *RunOutput {
	passed := 0
	for _, r := range results {
		if r.Passed() {
			passed++
		}
	}
	return &RunOutput{
		Meta: RunMeta{
			RunID:           runID,
			URL:             url,
			Driver:          driver,
			TotalCases:      len(results),
			PassedCases:     passed,
			FailedCases:     len(results) - passed,
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Timestamp:       at.Format(time.RFC3339),
		},
		Results: results,
	}
}

// Failures returns the failing results in their original order
func (o *RunOutput) Failures() []TestResult {
	var failed []TestResult
	for _, r := range o.Results {
		if !r.Passed() {
			failed = append(failed, r)
		}
	}
	return failed
}
