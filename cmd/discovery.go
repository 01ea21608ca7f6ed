// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/Thermoquad/kspio/pkg/bridge"
	"github.com/spf13/cobra"
)

var (
	discoverySettle time.Duration
	discoveryPolls  int
)

var discoveryCmd = &cobra.Command{
	Use:   "discovery",
	Short: "Find the display by handshake",
	Long: `Probe serial ports for the telemetry display.

Each candidate is opened at the display baud rate, given time to reset, and
sent the handshake frame. A display answers with a status line "KSP;0;...".
Probing stops at the first port that answers.

Candidates are every serial port except --port, or just --display-port.

Examples:
  kspio discovery
  kspio discovery --port /dev/ttyACM0
  kspio discovery --display-port /dev/ttyUSB1 --settle 4s

Exit codes:
  0 - Display found
  1 - No display answered
  2 - Port enumeration error`,
	RunE: runDiscovery,
}

func init() {
	rootCmd.AddCommand(discoveryCmd)
	defaults := bridge.DefaultConfig()
	discoveryCmd.Flags().DurationVar(&discoverySettle, "settle", defaults.SettleDelay, "Wait after opening each port before the handshake")
	discoveryCmd.Flags().IntVar(&discoveryPolls, "polls", defaults.ReplyPolls, "Reply checks per port")
}

func runDiscovery(cmd *cobra.Command, args []string) error {
	candidates, err := displayCandidates()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Enumeration error: %v\n", err)
		os.Exit(2)
	}

	cfg := bridgeConfig()
	cfg.SettleDelay = discoverySettle
	cfg.ReplyPolls = discoveryPolls

	fmt.Printf("kspio - Display Discovery\n")
	fmt.Printf("Candidates: %v\n", candidates)
	fmt.Printf("Baud: %d, settle: %s, reply window: %s\n\n",
		cfg.DisplayBaud, cfg.SettleDelay, time.Duration(cfg.ReplyPolls)*cfg.PollInterval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d := bridge.NewDiscoverer(cfg, bridge.SerialOpener(cfg.ReadTimeout), newLogger(), nil)
	for _, name := range candidates {
		fmt.Printf("Probing %s... ", name)
		found, err := d.Probe(ctx, name)
		switch {
		case err != nil:
			fmt.Printf("error: %v\n", err)
			if ctx.Err() != nil {
				os.Exit(1)
			}
		case found:
			fmt.Printf("display found\n")
			fmt.Printf("\n--- Discovery summary ---\n")
			fmt.Printf("Display: %s\n", name)
			return nil
		default:
			fmt.Printf("no reply\n")
		}
	}

	fmt.Printf("\n--- Discovery summary ---\n")
	fmt.Printf("No display found. Check the cable and that the display firmware is running.\n")
	os.Exit(1)
	return nil
}
