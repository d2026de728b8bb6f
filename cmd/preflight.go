package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/yeesim/yeesim/sim"
)

// preflightCmd checks a simulation against the size ceilings before a run
var preflightCmd = &cobra.Command{
	Use:   "preflight",
	Short: "Check grid, time-step and monitor storage limits of a simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		if configPath == "" {
			logrus.Fatalf("--config is required")
		}
		if err := runPreflight(cmd.OutOrStdout(), configPath); err != nil {
			logrus.Fatalf("preflight failed: %v", err)
		}
	},
}

// runPreflight prints the size report and returns the first limit exceeded.
// Every monitor is reported even when an earlier one is over the limit.
func runPreflight(w io.Writer, path string) error {
	s, err := loadSimulation(path)
	if err != nil {
		return err
	}
	shape := s.Grid.Shape()
	fmt.Fprintf(w, "grid %dx%dx%d (%d cells), dt=%.4g s, %d time steps\n",
		shape[0], shape[1], shape[2], s.Grid.NumCells(), s.Dt, s.Nt())
	if err := sim.CheckSize(s); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MONITOR\tKIND\tFIELDS\tSIZE (GB)\tSTATUS")
	var firstErr error
	for _, m := range s.Monitors() {
		gb, err := sim.MonitorSizeGB(s, m)
		if err != nil {
			return err
		}
		status := "ok"
		if err := sim.CheckMonitorSize(s, m); err != nil {
			status = "too large"
			if firstErr == nil {
				firstErr = err
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%.3f\t%s\n", m.Base().Name, monitorKind(m), m.Base().StoredFields(), gb, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return firstErr
}

func loadSimulation(path string) (*sim.Simulation, error) {
	cfg, err := sim.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}

func monitorKind(m sim.Monitor) string {
	switch m.(type) {
	case *sim.TimeMonitor:
		return "time"
	case *sim.FreqMonitor:
		return "frequency"
	case *sim.ModeMonitor:
		return "mode"
	}
	return fmt.Sprintf("%T", m)
}

func init() {
	rootCmd.AddCommand(preflightCmd)
}
