// Command dtnsim runs the discrete-event delay-tolerant network
// simulator from a properties-style configuration file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AgentDudu/the-one/internal/config"
	"github.com/AgentDudu/the-one/internal/simlog"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "dtnsim",
		Short: "Discrete-event delay-tolerant network simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				simlog.Logger.SetLevel(simlog.Logger.GetLevel() + 1)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCommand(), newSweepCommand())
	return root
}

func newRunCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single simulation from a config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := validateSettings(settings); err != nil {
				return err
			}
			report, err := RunScenario(settings)
			if err != nil {
				return err
			}
			_, err = report.WriteTo(os.Stdout)
			return err
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "dtnsim.properties", "path to the scenario config file")
	return cmd
}

func newSweepCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one simulation per combination of swept config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := validateSettings(settings); err != nil {
				return err
			}
			combos := expandSweeps(settings)
			for i, combo := range combos {
				report, err := RunScenario(combo)
				if err != nil {
					return fmt.Errorf("sweep run %d: %w", i, err)
				}
				fmt.Fprintf(os.Stdout, "--- run %d ---\n", i)
				if _, err := report.WriteTo(os.Stdout); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "dtnsim.properties", "path to the scenario config file")
	return cmd
}

func validateSettings(s config.Settings) error {
	return config.Validate(s,
		config.RequireGroup("Scenario"),
		config.RequirePositiveFloat("Scenario", "updateInterval"),
		config.RequirePositiveFloat("Scenario", "endTime"),
	)
}
