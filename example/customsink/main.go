package main

import (
	"context"
	"fmt"
	"log"

	"github.com/touilkhouloud/acme-utils/pkg/acmecapture"
)

// stdoutSink prints a one-line summary per aggregated probe trace.
type stdoutSink struct{}

func (stdoutSink) Name() string { return "stdout" }

func (stdoutSink) WriteRow(row acmecapture.ReportRow) error {
	fmt.Printf("%s: %d samples, avg %.1f %s\n",
		row.Probe.Label(),
		row.Diag.SampleCount,
		row.PowerStats.Avg,
		row.Power.Unit,
	)
	return nil
}

func main() {
	cfg, err := acmecapture.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.Output.NoFile = true

	runner, err := acmecapture.New(cfg, acmecapture.WithTraceSink(stdoutSink{}))
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer runner.Shutdown(context.Background())

	if _, err := runner.Run(context.Background()); err != nil {
		log.Fatalf("capture: %v", err)
	}
}
