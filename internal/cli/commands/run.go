package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"uirunner/internal/browser"
	"uirunner/internal/config"
	"uirunner/internal/discovery"
	"uirunner/internal/suite"
	"uirunner/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	config *config.Config
	filter *discovery.Filter
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, filter *discovery.Filter) *RunCommand {
	return &RunCommand{
		config: cfg,
		filter: filter,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	logger := newLogger(rc.config, errOut)
	s, closeHistory, err := newSuite(cmd.Context(), rc.config, logger)
	defer closeHistory()
	if err != nil {
		return err
	}

	inputPath := rc.config.GetInputPath()
	cases, err := s.Workbooks().ReadCases(inputPath)
	if err != nil {
		return fmt.Errorf("load cases from %s: %w", inputPath, err)
	}

	cases = rc.filter.FilterCases(cases, rc.config.Flags.Filter)
	if len(cases) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No test cases to execute")
		return nil
	}

	output, err := s.Run(cmd.Context(), suite.RunRequest{
		URL:         rc.config.Flags.URL,
		Cases:       cases,
		ResultsPath: rc.config.GetResultsPath(),
		Progress:    ui.NewProgressBar(len(cases), errOut),
	})
	if err != nil {
		if browser.IsFatal(err) {
			color.New(color.FgRed, color.Bold).Fprintf(errOut, "✗ Run aborted, no results were recorded: %v\n", err)
			return &ExitError{Code: ExitFatal, Err: err}
		}
		return err
	}

	ui.NewFormatter(out).PrintRunStats(output)
	fmt.Fprintf(out, "\nResults written to %s\n", rc.config.GetResultsPath())

	if rc.config.Flags.FailOnFailures && output.Meta.FailedCases > 0 {
		return &ExitError{
			Code: ExitFailures,
			Err:  fmt.Errorf("%d of %d case(s) failed", output.Meta.FailedCases, output.Meta.TotalCases),
		}
	}
	return nil
}
