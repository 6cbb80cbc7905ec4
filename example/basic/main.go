package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/touilkhouloud/acme-utils/pkg/acmecapture"
)

func main() {
	cfg, err := acmecapture.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	runner, err := acmecapture.New(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer runner.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcome, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("capture: %v", err)
	}

	fmt.Print(outcome.Report)
}
