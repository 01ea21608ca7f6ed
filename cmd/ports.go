// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.bug.st/serial/enumerator"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports",
	Long: `List the serial ports present on this machine, with USB vendor and product
IDs where available. These are the candidates probed by discovery.`,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("failed to enumerate ports: %w", err)
	}

	if len(ports) == 0 {
		fmt.Printf("No serial ports found\n")
		return nil
	}

	for _, p := range ports {
		if p.IsUSB {
			fmt.Printf("%-20s USB %s:%s", p.Name, p.VID, p.PID)
			if p.SerialNumber != "" {
				fmt.Printf(" serial=%s", p.SerialNumber)
			}
			fmt.Printf("\n")
		} else {
			fmt.Printf("%-20s\n", p.Name)
		}
	}
	return nil
}
