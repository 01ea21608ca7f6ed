// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"os"

	"github.com/Thermoquad/kspio/pkg/bridge"
	"github.com/Thermoquad/kspio/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	// Panel connection flags
	portName string
	baudRate int

	// Display connection flags
	displayPort string
	displayBaud int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Logging flags
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "kspio",
	Short: "Serial bridge between a flight simulator and a hardware control panel",
	Long: `kspio - connects a physical control panel and its telemetry display to the
flight simulator.

The panel reports buttons and a two-axis joystick as text lines at 115200
baud. The display is found by handshake among the serial ports at 38400 baud
and receives framed telemetry records.

Connection modes (panel):
  Serial:    --port /dev/ttyACM0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the KSPIO_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:      "1.0.0",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return checkPorts(portName, displayPort)
	},
}

func init() {
	// Panel connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Panel serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", bridge.DefaultConfig().PanelBaud, "Panel baud rate (serial only)")

	// Display connection flags
	rootCmd.PersistentFlags().StringVar(&displayPort, "display-port", "", "Display serial port (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&displayBaud, "display-baud", bridge.DefaultConfig().DisplayBaud, "Display baud rate")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "Panel WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Logging flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", envOr("LOG_FORMAT", "text"), "Log format (text or json)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// newLogger builds the logger selected by the logging flags
func newLogger() logging.Logger {
	return logging.New(logging.Config{
		Level:  logLevel,
		Format: logFormat,
		Output: os.Stderr,
	})
}

// bridgeConfig returns the bridge configuration with flag overrides applied
func bridgeConfig() bridge.Config {
	cfg := bridge.DefaultConfig()
	cfg.PanelBaud = baudRate
	cfg.DisplayBaud = displayBaud
	return cfg
}
