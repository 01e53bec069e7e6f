package commands

import (
	"github.com/spf13/cobra"

	"uirunner/internal/config"
	"uirunner/internal/storage"
	"uirunner/internal/ui"
)

// ResultsCommand handles the results command
type ResultsCommand struct {
	config  *config.Config
	storage storage.Storage
	viewer  ui.Viewer
}

// NewResultsCommand creates a new ResultsCommand
func NewResultsCommand(cfg *config.Config, st storage.Storage, viewer ui.Viewer) *ResultsCommand {
	return &ResultsCommand{
		config:  cfg,
		storage: st,
		viewer:  viewer,
	}
}

// Execute runs the command
func (rc *ResultsCommand) Execute(cmd *cobra.Command, args []string) error {
	output, err := rc.storage.Load()
	if err != nil {
		return err
	}

	if rc.config.Flags.Plain {
		formatter := ui.NewFormatter(cmd.OutOrStdout())
		formatter.PrintRunStats(output)
		formatter.PrintResults(output.Results)
		return nil
	}
	return rc.viewer.View(output)
}
