package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"uirunner/internal/cli"
	"uirunner/internal/cli/commands"
	"uirunner/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "uirunner",
		Short:         "Spreadsheet-driven browser UI test runner",
		Long:          `Generate browser UI test cases for a URL, run a workbook of cases against a real browser session and record a verdict for every row.`,
		Version:       version,
		SilenceErrors: true,
	}

	// Create initial config with defaults; commands load the rest
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	cmds := commands.NewCommands(cfg)
	cmds.Register(rootCmd, &flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code := 1
		var exitErr *commands.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.Code
		}
		stop()
		os.Exit(code)
	}
}
