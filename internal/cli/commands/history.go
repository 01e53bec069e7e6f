package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"uirunner/internal/config"
)

// HistoryCommand handles the history command
type HistoryCommand struct {
	config *config.Config
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(cfg *config.Config) *HistoryCommand {
	return &HistoryCommand{config: cfg}
}

// Execute runs the command
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	if hc.config.HistoryDSN == "" {
		return errors.New("run history is not configured; set history_dsn or " + config.EnvHistoryDSN)
	}

	history, closeHistory, err := openHistory(cmd.Context(), hc.config)
	defer closeHistory()
	if err != nil {
		return err
	}

	runs, err := history.Recent(cmd.Context(), hc.config.Flags.Limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		color.New(color.FgYellow).Fprintln(out, "No runs recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tDRIVER\tPASSED\tFAILED\tDURATION\tURL")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			shortID(r.RunID), r.Timestamp, r.Driver, r.PassedCases, r.FailedCases, r.Duration, r.URL)
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
