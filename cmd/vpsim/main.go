// Package main replays a scripted viewport session headlessly and prints
// the viewport state as JSON lines.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Faultbox/archviz/internal/config"
	"github.com/Faultbox/archviz/internal/logger"
	"github.com/Faultbox/archviz/internal/metrics"
	"github.com/Faultbox/archviz/internal/sim"
	"github.com/Faultbox/archviz/internal/workspace"
)

var (
	flagTrace      = flag.String("trace", "", "Trace file to replay (required)")
	flagAll        = flag.Bool("all", false, "Print the state after every step, not just the last")
	flagMetricsOut = flag.String("metrics-out", "", "Write Prometheus text metrics to this file when done")
)

func main() {
	config.ParseFlags()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vpsim: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *flagTrace == "" {
		return fmt.Errorf("-trace is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return err
	}
	defer logger.Sync()

	trace, err := sim.ReadFile(*flagTrace)
	if err != nil {
		return err
	}

	opts, err := workspace.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	opts.Recorder = metrics.NewRecorder(reg)

	r, err := sim.NewRunner(opts)
	if err != nil {
		return err
	}
	defer r.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	last := len(trace.Steps) - 1
	err = r.Run(ctx, trace, func(step int, st workspace.ViewportState) error {
		if *flagAll || step == last {
			return enc.Encode(st)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(trace.Steps) == 0 {
		if err := enc.Encode(r.Workspace.ExportViewportState()); err != nil {
			return err
		}
	}

	if *flagMetricsOut != "" {
		if err := prometheus.WriteToTextfile(*flagMetricsOut, reg); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		logger.Info("metrics written", zap.String("path", *flagMetricsOut))
	}
	return nil
}
