package main

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "acme-capture",
	Short: "Concurrent multi-probe power capture for ACME capes",
	Long: `acme-capture drives one capture session per ACME probe in parallel,
aggregates the voltage, current, and derived power traces, and prints a
power measurement report.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "./config.yaml", "path to the capture configuration file")
}
