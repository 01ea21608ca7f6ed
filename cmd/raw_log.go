// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Thermoquad/kspio/pkg/bridge"
	"github.com/Thermoquad/kspio/pkg/metrics"
	"github.com/Thermoquad/kspio/pkg/serialio"
	"github.com/spf13/cobra"
)

var rawLogFrames bool

// Backoff after a failed read
const readRetryDelay = 100 * time.Millisecond

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display the raw link traffic in human-readable format",
	Long: `Continuously decode and display what arrives on a link.

By default the link is read as panel reports, one per line, shown with the
held buttons (after inversion) and the raw joystick readings. Status lines
from the display firmware are shown as they are.

With --frames the link is decoded as display frames instead, which is useful
on a loopback of the display cable. Frame statistics are printed every
--stats-interval seconds and checksum failures are exported when
--metrics-addr is set.

Supports both serial and WebSocket connections.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
	rawLogCmd.Flags().BoolVar(&rawLogFrames, "frames", false, "Decode display frames instead of panel lines")
	rawLogCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Frame statistics interval (seconds, --frames only)")
	rawLogCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (--frames only)")
}

func runRawLog(cmd *cobra.Command, args []string) error {
	cfg := bridgeConfig()
	if rawLogFrames {
		cfg.PanelBaud = cfg.DisplayBaud
	}

	ctx := context.Background()
	conn, connInfo, err := OpenConnection(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("kspio - Raw Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	if !rawLogFrames {
		return logLines(conn)
	}

	var collector *metrics.Collector
	if metricsAddr != "" {
		collector, err = metrics.NewCollector(nil)
		if err != nil {
			return err
		}
		shutdown := serveMetrics(ctx, newLogger(), collector)
		defer shutdown()
	}

	fl := newFrameLog(os.Stdout, collector)
	err = logFrames(conn, fl, time.Duration(statsInterval)*time.Second)
	fmt.Println()
	fmt.Println(fl.stats.String())
	return err
}

func logLines(conn bridge.Port) error {
	lines := serialio.NewLineReader(conn)

	for {
		line, err := lines.ReadLine()
		if err != nil {
			if isLinkClosed(err) {
				log.Printf("Connection closed")
				return nil
			}
			var readErr *serialio.LineReadError
			if errors.As(err, &readErr) {
				log.Printf("Read error: %v", err)
				time.Sleep(readRetryDelay)
				continue
			}
			fmt.Printf("[ERROR] %v\n", err)
			continue
		}

		timestamp := time.Now().Format("15:04:05.000")

		if status, err := serialio.ParseStatusLine(line); err == nil {
			fmt.Printf("[%s] STATUS id=%d %v\n", timestamp, status.MessageID, status.Fields)
			continue
		}

		state, err := serialio.ParseInputLine(line)
		if err != nil {
			fmt.Printf("[%s] [ERROR] %v\n", timestamp, err)
			continue
		}
		fmt.Printf("[%s] INPUT %s\n", timestamp, serialio.FormatInputState(&state))
	}
}

// isLinkClosed reports whether err means the link will not deliver more data
func isLinkClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, bridge.ErrConnectionClosed)
}

// frameLog decodes display frames and keeps link statistics
type frameLog struct {
	out       io.Writer
	decoder   *serialio.Decoder
	stats     *serialio.Statistics
	collector *metrics.Collector
}

func newFrameLog(out io.Writer, collector *metrics.Collector) *frameLog {
	return &frameLog{
		out:       out,
		decoder:   serialio.NewDecoder(),
		stats:     serialio.NewStatistics(),
		collector: collector,
	}
}

// process decodes data and prints every frame or checksum failure
func (l *frameLog) process(data []byte) {
	for _, b := range data {
		frame, err := l.decoder.DecodeByte(b)
		if err != nil {
			l.stats.Update(err)
			if errors.Is(err, serialio.ErrChecksum) {
				l.collector.ChecksumError()
			}
			fmt.Fprintf(l.out, "[ERROR] %v\n", err)
			continue
		}
		if frame != nil {
			l.stats.Update(nil)
			fmt.Fprint(l.out, serialio.FormatFrame(frame))
		}
	}
}

// logFrames reads conn until it closes, printing statistics every interval
func logFrames(conn io.Reader, fl *frameLog, interval time.Duration) error {
	buf := make([]byte, 128)
	lastStats := time.Now()

	for {
		n, err := conn.Read(buf)
		fl.process(buf[:n])

		if interval > 0 && time.Since(lastStats) >= interval {
			lastStats = time.Now()
			fl.stats.CalculateRates()
			fmt.Fprintf(fl.out, "\n%s\n\n", fl.stats.String())
		}

		if err != nil {
			if isLinkClosed(err) {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Read error: %v", err)
			time.Sleep(readRetryDelay)
		}
	}
}
