package commands

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"uirunner/internal/config"
	"uirunner/internal/metrics"
	"uirunner/internal/server"
	"uirunner/internal/suite"
)

// ServeCommand handles the serve command
type ServeCommand struct {
	config *config.Config
}

// NewServeCommand creates a new ServeCommand
func NewServeCommand(cfg *config.Config) *ServeCommand {
	return &ServeCommand{config: cfg}
}

// Execute runs the command
func (sc *ServeCommand) Execute(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	logger := newLogger(sc.config, cmd.ErrOrStderr())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s, closeHistory, err := newSuite(cmd.Context(), sc.config, logger, suite.WithMetrics(metrics.New(reg)))
	defer closeHistory()
	if err != nil {
		return err
	}

	srv, err := server.New(sc.config, s, reg, logger)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(cmd.Context())
}
