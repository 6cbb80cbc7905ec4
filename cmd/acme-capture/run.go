package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/touilkhouloud/acme-utils/pkg/acmecapture"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a capture and print the power measurement report",
	RunE:  runCapture,
}

var runVerbose bool

func init() {
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print per-probe cycle timing diagnostics")
	rootCmd.AddCommand(runCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg, err := acmecapture.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runner, err := acmecapture.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = runner.Shutdown(shutdownCtx)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcome, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	for _, row := range outcome.Rows {
		status := okStyle.Render("[OK]")
		if row.Failed {
			status = failedStyle.Render("[FAILED]")
		}
		cmd.Printf("%s %s: %d samples, %.1f Hz\n",
			status, row.Probe.Label(), row.Diag.SampleCount, row.Diag.SamplingRateHz)
	}
	cmd.Println()
	cmd.Print(outcome.Report)

	if runVerbose {
		printTiming(cmd, outcome)
	}
	return nil
}

func printTiming(cmd *cobra.Command, outcome *acmecapture.Outcome) {
	cmd.Println()
	for _, row := range outcome.Rows {
		stats, ok := outcome.Timing[row.Probe.Slot]
		if !ok {
			continue
		}
		cmd.Printf("%s: %d cycles\n", row.Probe.Label(), stats.Cycles)
		cmd.Printf("  refill duration min/max/avg: %s / %s / %s\n",
			stats.RefillDuration.Min, stats.RefillDuration.Max, stats.RefillDuration.Avg)
		cmd.Printf("  refill delay    min/max/avg: %s / %s / %s\n",
			stats.RefillDelay.Min, stats.RefillDelay.Max, stats.RefillDelay.Avg)
		cmd.Printf("  read duration   min/max/avg: %s / %s / %s\n",
			stats.ReadDuration.Min, stats.ReadDuration.Max, stats.ReadDuration.Avg)
		cmd.Printf("  read delay      min/max/avg: %s / %s / %s\n",
			stats.ReadDelay.Min, stats.ReadDelay.Max, stats.ReadDelay.Avg)
	}
}
