package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/touilkhouloud/acme-utils/pkg/acmecapture"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate a configuration file without capturing",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := acmecapture.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("config %s: %w", cfgPath, err)
	}

	channels, err := cfg.CaptureChannels()
	if err != nil {
		return err
	}

	cmd.Printf("%s %s\n", okStyle.Render("[OK]"), cfgPath)
	cmd.Printf("  host: %s\n", cfg.Cape.Host)
	cmd.Printf("  mode: %s, duration: %s\n", cfg.Capture.Mode, cfg.Capture.Duration)
	cmd.Printf("  channels: %v\n", channels)
	if len(cfg.Cape.Slots) == 0 {
		cmd.Println("  slots: all attached probes")
	} else {
		cmd.Printf("  slots: %v\n", cfg.Cape.Slots)
	}
	return nil
}
