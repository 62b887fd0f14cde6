package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wcet-estimator/wcet/orchestrator"
	"github.com/wcet-estimator/wcet/xmlio"
)

type rootFlags struct {
	noTiming bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "wcetcli <configuration.xml>",
		Short:         "wcetcli estimates worst-case execution time bounds from an annotated CFG",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags.verbose)

			cfg, err := loadConfig(args[0])
			if err != nil {
				logger.Error("configuration rejected", "err", err)
				return err
			}

			pl := orchestrator.New(cfg, logger)
			pl.NoTiming = flags.noTiming

			// The first pass must carry an input_file; the pipeline
			// starts with no program loaded.
			if err := pl.Run(cmd.Context(), nil); err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&flags.noTiming, "no-timing", "t", false, "Suppress per-pass timing printouts")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newValidateCmd(flags))

	return cmd
}

// newValidateCmd parses and validates a configuration without running any
// analysis.
func newValidateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <configuration.xml>",
		Short: "Validate a configuration file without running the analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(flags.verbose)
			cfg, err := loadConfig(args[0])
			if err != nil {
				return err
			}
			logger.Info("configuration valid", "passes", len(cfg.Analysis.Passes))
			return nil
		},
	}
}

func newLogger(verbose bool) *log.Logger {
	logger := log.New(os.Stderr)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func loadConfig(path string) (*xmlio.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return xmlio.LoadConfig(f)
}
