// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/kspio/pkg/serialio"
	"github.com/spf13/cobra"
)

var (
	packetTestTimeout int
)

var packetTestCmd = &cobra.Command{
	Use:   "packet_test",
	Short: "Test the panel link by waiting for a valid report",
	Long: `Wait for a valid panel report on the connection until timeout.

This command connects to a serial port or WebSocket and waits for a line
that parses as a panel report. Malformed lines and partial lines are counted
and skipped.

Exit codes:
  0 - Report received before timeout
  1 - Timeout reached without receiving a valid report
  2 - Connection error

Useful for checking panel wiring and the WebSocket serial bridge.`,
	RunE: runPacketTest,
}

func init() {
	rootCmd.AddCommand(packetTestCmd)
	packetTestCmd.Flags().IntVar(&packetTestTimeout, "timeout", 10, "Timeout in seconds to wait for a report")
}

func runPacketTest(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection(context.Background(), bridgeConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("kspio - Packet Test\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Timeout: %d seconds\n", packetTestTimeout)
	fmt.Printf("Waiting for a valid panel report...\n\n")

	reportChan := make(chan serialio.RawInputState, 1)
	errChan := make(chan error, 1)

	go func() {
		lines := serialio.NewLineReader(conn)
		skipped := 0
		for {
			line, err := lines.ReadLine()
			if err != nil {
				var readErr *serialio.LineReadError
				if errors.As(err, &readErr) {
					errChan <- err
					return
				}
				skipped++
				continue
			}

			state, err := serialio.ParseInputLine(line)
			if err != nil {
				skipped++
				continue
			}

			if skipped > 0 {
				fmt.Printf("(skipped %d invalid lines before a valid report)\n", skipped)
			}
			reportChan <- state
			return
		}
	}()

	select {
	case state := <-reportChan:
		fmt.Printf("SUCCESS: Received valid report\n")
		fmt.Printf("  Axes: x=%d y=%d\n", state.X, state.Y)
		fmt.Printf("  Held: %v\n", state.Pressed())
		fmt.Printf("  Wire: %s\n", serialio.FormatInputLine(state))
		os.Exit(0)

	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		os.Exit(2)

	case <-time.After(time.Duration(packetTestTimeout) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: No valid report received within %d seconds\n", packetTestTimeout)
		os.Exit(1)
	}

	return nil
}
