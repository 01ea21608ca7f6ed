// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/kspio/pkg/bridge"
	"github.com/Thermoquad/kspio/pkg/hostlink"
	"github.com/Thermoquad/kspio/pkg/logging"
	"github.com/Thermoquad/kspio/pkg/metrics"
	"github.com/Thermoquad/kspio/pkg/sim"
	"github.com/spf13/cobra"
)

var (
	hostURL     string
	metricsAddr string
	noDisplay   bool
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Run the panel bridge",
	Long: `Connect the panel and display to the simulator and run until interrupted.

The panel link is opened from --port or --url. The display is found by
discovery unless --display-port names it or --no-display is given; without a
display the bridge runs panel-only.

With --host-url the bridge drives the simulator through the companion plugin.
Without it, the bridge runs against an in-memory simulator and prints every
control action, which is useful for checking panel wiring.

Examples:
  kspio bridge --port /dev/ttyACM0 --host-url ws://localhost:8085/kspio
  kspio bridge --port /dev/ttyACM0 --no-display
  kspio bridge --port /dev/ttyACM0 --metrics-addr :9100`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
	bridgeCmd.Flags().StringVar(&hostURL, "host-url", "", "Companion plugin WebSocket URL (in-memory simulator if empty)")
	bridgeCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	bridgeCmd.Flags().BoolVar(&noDisplay, "no-display", false, "Skip display discovery")
}

func runBridge(cmd *cobra.Command, args []string) error {
	log := newLogger()
	cfg := bridgeConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collector *metrics.Collector
	if metricsAddr != "" {
		var err error
		collector, err = metrics.NewCollector(nil)
		if err != nil {
			return err
		}
		shutdown := serveMetrics(ctx, log, collector)
		defer shutdown()
	}

	host, err := openHost(ctx, stop, log)
	if err != nil {
		return err
	}

	session := bridge.NewSession(host, cfg, bridge.WithLogger(log), bridge.WithMetrics(collector))
	defer session.Close()

	panel, connInfo, err := OpenConnection(ctx, cfg)
	if err != nil {
		return err
	}
	if err := session.AttachPanel(panel); err != nil {
		return err
	}

	fmt.Printf("kspio - Bridge\n")
	fmt.Printf("Panel: %s\n", connInfo)

	switch {
	case noDisplay:
		fmt.Printf("Display: disabled\n")
	case displayPort != "":
		if err := session.OpenDisplay(displayPort); err != nil {
			fmt.Printf("Display: %v (running panel only)\n", err)
		} else {
			fmt.Printf("Display: %s @ %d baud\n", displayPort, cfg.DisplayBaud)
		}
	default:
		candidates, err := displayCandidates()
		if err != nil {
			log.Warn(ctx, "port enumeration failed", logging.Err(err))
		}
		fmt.Printf("Display: probing %d ports...\n", len(candidates))
		if session.DiscoverDisplay(ctx, candidates) {
			fmt.Printf("Display: %s @ %d baud\n", session.DisplayPort(), cfg.DisplayBaud)
		} else {
			fmt.Printf("Display: not found (running panel only)\n")
		}
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	return bridge.NewRunner(session, host, cfg, log).Run(ctx)
}

// openHost connects to the companion plugin, or returns an in-memory
// simulator that prints what the panel does to it.
func openHost(ctx context.Context, stop context.CancelFunc, log logging.Logger) (sim.Host, error) {
	if hostURL == "" {
		mem := sim.NewMemory()
		mem.Observer = func(event string) {
			fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05.000"), event)
		}
		return mem, nil
	}

	client, err := hostlink.Dial(ctx, hostURL, bridge.DialOptions{SkipSSLVerify: wsNoSSLVerify}, log)
	if err != nil {
		return nil, fmt.Errorf("host link: %w", err)
	}

	go func() {
		if err := client.Run(ctx); err != nil {
			log.Error(ctx, "host link closed", logging.Err(err))
			stop()
		}
	}()

	return client, nil
}

// serveMetrics serves /metrics until the returned function is called
func serveMetrics(ctx context.Context, log logging.Logger, collector *metrics.Collector) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{
		Addr:              metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "metrics server failed", logging.Err(err))
		}
	}()
	log.Info(ctx, "serving metrics", logging.String("addr", metricsAddr))

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}
}
