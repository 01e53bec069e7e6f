package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"uirunner/internal/config"
	"uirunner/internal/discovery"
	"uirunner/internal/storage"
	"uirunner/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config  *config.Config
	filter  *discovery.Filter
	storage storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, filter *discovery.Filter, st storage.Storage) *ListCommand {
	return &ListCommand{
		config:  cfg,
		filter:  filter,
		storage: st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	inputPath := lc.config.GetInputPath()
	cases, err := storage.NewWorkbookStore(lc.config.SheetName).ReadCases(inputPath)
	if err != nil {
		return fmt.Errorf("load cases from %s: %w", inputPath, err)
	}

	cases = lc.filter.FilterCases(cases, lc.config.Flags.Filter)

	out := cmd.OutOrStdout()
	if len(cases) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No test cases found")
		return nil
	}

	// Mark cases that failed in the last run, if there was one
	failed := make(map[string]struct{})
	if last, err := lc.storage.Load(); err == nil {
		for _, r := range last.Failures() {
			failed[r.ID] = struct{}{}
		}
	}

	ui.NewFormatter(out).PrintCaseList(cases, failed)
	return nil
}
