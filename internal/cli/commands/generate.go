package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"uirunner/internal/config"
)

// GenerateCommand handles the generate command
type GenerateCommand struct {
	config *config.Config
}

// NewGenerateCommand creates a new GenerateCommand
func NewGenerateCommand(cfg *config.Config) *GenerateCommand {
	return &GenerateCommand{config: cfg}
}

// Execute runs the command
func (gc *GenerateCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(gc.config, cmd.ErrOrStderr())
	s, closeHistory, err := newSuite(cmd.Context(), gc.config, logger)
	defer closeHistory()
	if err != nil {
		return err
	}

	path := gc.config.GetCasesPath()
	cases, err := s.Generate(gc.config.Flags.URL, gc.config.Flags.Count, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	color.New(color.FgGreen).Fprintf(out, "✓ Generated %d test case(s) for %s\n", len(cases), gc.config.Flags.URL)
	fmt.Fprintf(out, "  %s\n", path)
	return nil
}
