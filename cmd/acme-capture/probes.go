package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/touilkhouloud/acme-utils/pkg/acmecapture"
)

var probesCmd = &cobra.Command{
	Use:   "probes",
	Short: "List the probes attached to the configured cape",
	RunE:  runProbes,
}

func init() {
	rootCmd.AddCommand(probesCmd)
}

func runProbes(cmd *cobra.Command, args []string) error {
	cfg, err := acmecapture.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	runner, err := acmecapture.New(cfg)
	if err != nil {
		return err
	}

	probes, err := runner.Probes()
	if err != nil {
		return err
	}

	for _, p := range probes {
		cmd.Printf("%-10s slot %d  %-5s shunt %.1f mohm  power switch: %t\n",
			p.Label(), p.Slot, p.Kind, p.ShuntMilliOhm(), p.HasPowerSwitch)
	}
	return nil
}
