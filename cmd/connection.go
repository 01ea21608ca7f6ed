// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/Thermoquad/kspio/pkg/bridge"
	"golang.org/x/term"
)

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	if pw := os.Getenv("KSPIO_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// dialOptions collects WebSocket flags, prompting for a password when a
// username is set.
func dialOptions() (bridge.DialOptions, error) {
	opts := bridge.DialOptions{
		Username:      wsUsername,
		SkipSSLVerify: wsNoSSLVerify,
	}
	if wsUsername != "" {
		password, err := GetPassword()
		if err != nil {
			return opts, err
		}
		opts.Password = password
	}
	return opts, nil
}

// OpenConnection opens the panel link, serial or WebSocket, based on flags
func OpenConnection(ctx context.Context, cfg bridge.Config) (bridge.Port, string, error) {
	if wsURL != "" {
		opts, err := dialOptions()
		if err != nil {
			return nil, "", err
		}

		conn, err := bridge.DialWebSocket(ctx, wsURL, opts)
		if err != nil {
			return nil, "", err
		}

		return bridge.NewWebSocketPort(conn), fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if portName != "" {
		port, err := bridge.SerialOpener(cfg.ReadTimeout)(portName, cfg.PanelBaud)
		if err != nil {
			return nil, "", err
		}

		return port, fmt.Sprintf("Serial: %s @ %d baud", portName, cfg.PanelBaud), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}

// ErrDisplayIsPanel is returned when --display-port names the panel port
var ErrDisplayIsPanel = errors.New("--display-port must differ from --port")

// checkPorts rejects a display port that is the panel port
func checkPorts(panel, display string) error {
	if display != "" && display == panel {
		return fmt.Errorf("%w: both are %s", ErrDisplayIsPanel, display)
	}
	return nil
}

// displayCandidates returns the ports to probe for the display, leaving out
// the panel port.
func displayCandidates() ([]string, error) {
	if err := checkPorts(portName, displayPort); err != nil {
		return nil, err
	}
	if displayPort != "" {
		return []string{displayPort}, nil
	}

	ports, err := bridge.ListPorts()
	if err != nil {
		return nil, err
	}
	return withoutPort(ports, portName), nil
}

// withoutPort returns ports with panel removed
func withoutPort(ports []string, panel string) []string {
	candidates := make([]string, 0, len(ports))
	for _, p := range ports {
		if p != panel {
			candidates = append(candidates, p)
		}
	}
	return candidates
}
