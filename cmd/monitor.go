// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/kspio/pkg/bridge"
	"github.com/Thermoquad/kspio/pkg/logging"
	"github.com/Thermoquad/kspio/pkg/serialio"
	"github.com/Thermoquad/kspio/pkg/sim"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	statsInterval int
	useTUI        bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the panel drive an in-memory simulator",
	Long: `Run the bridge against an in-memory simulator and show what the panel does.

The monitor shows joystick deflection, throttle, the selected autopilot mode,
the held buttons and link statistics. Every simulator write is listed in the
event log.

The display is only used when --display-port names it.

Examples:
  kspio monitor --port /dev/ttyACM0
  kspio monitor --port /dev/ttyACM0 --tui=false --stats-interval 5`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval in text mode (seconds)")
	monitorCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg := bridgeConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The TUI owns the terminal, keep log output quiet
	log := logging.Noop()
	if !useTUI {
		log = newLogger()
	}

	mem := sim.NewMemory()
	session := bridge.NewSession(mem, cfg, bridge.WithLogger(log))
	defer session.Close()

	panel, connInfo, err := OpenConnection(ctx, cfg)
	if err != nil {
		return err
	}
	if err := session.AttachPanel(panel); err != nil {
		return err
	}

	displayInfo := "disabled"
	if displayPort != "" {
		if err := session.OpenDisplay(displayPort); err != nil {
			displayInfo = err.Error()
		} else {
			displayInfo = fmt.Sprintf("%s @ %d baud", displayPort, cfg.DisplayBaud)
		}
	}

	runner := bridge.NewRunner(session, mem, cfg, log)

	if useTUI {
		return runMonitorTUI(ctx, stop, session, mem, runner, connInfo, displayInfo)
	}
	return runMonitorText(ctx, session, mem, runner, connInfo, displayInfo)
}

// snapshot samples the session and simulator. It must run on the runner's
// goroutine.
func snapshot(session *bridge.Session, mem *sim.Memory) controlSnapshot {
	mapper := session.Mapper()
	state := mapper.State()
	x, y := mapper.Axes()

	s := controlSnapshot{
		x:         x,
		y:         y,
		rawX:      state.X,
		rawY:      state.Y,
		throttle:  mem.MainThrottle(),
		docking:   mapper.Docking(),
		autopilot: "off",
		warp:      mem.TimeWarpIndex(),
		stats:     session.Stats(),
	}
	for i := 0; i < serialio.ButtonCount; i++ {
		if state.Held(i) {
			s.held = append(s.held, i)
		}
	}
	if mem.ActionGroup(sim.GroupSAS) {
		if ap := mem.Autopilot(); ap != nil {
			s.autopilot = ap.Mode().String()
		}
	}
	return s
}

// runMonitorTUI runs the monitor in TUI mode
func runMonitorTUI(ctx context.Context, stop context.CancelFunc, session *bridge.Session, mem *sim.Memory, runner *bridge.Runner, connInfo, displayInfo string) error {
	m := initialModel(connInfo, displayInfo)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	mem.Observer = func(event string) {
		go p.Send(eventMsg{message: event})
	}

	// Send a snapshot every 5th tick
	ticks := 0
	runner.OnTick = func() {
		ticks++
		if ticks%5 != 0 {
			return
		}
		p.Send(snapshotMsg(snapshot(session, mem)))
	}

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	_, err := p.Run()
	stop()
	<-done
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %v", err)
	}
	return nil
}

// runMonitorText runs the monitor in text mode
func runMonitorText(ctx context.Context, session *bridge.Session, mem *sim.Memory, runner *bridge.Runner, connInfo, displayInfo string) error {
	fmt.Printf("kspio - Panel Monitor\n")
	fmt.Printf("Panel: %s\n", connInfo)
	fmt.Printf("Display: %s\n", displayInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	mem.Observer = func(event string) {
		fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05.000"), event)
	}

	interval := time.Duration(statsInterval) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	last := time.Now()
	runner.OnTick = func() {
		if time.Since(last) < interval {
			return
		}
		last = time.Now()

		s := snapshot(session, mem)
		fmt.Println()
		fmt.Println(s.stats.String())
		fmt.Printf("Rates: %.1f reports/s, %.1f err/s\n", s.stats.ReportRate, s.stats.ErrorRate)
		fmt.Printf("Axes: x=%+.2f y=%+.2f  Throttle: %+.2f  Autopilot: %s  Held: %v\n\n",
			s.x, s.y, s.throttle, s.autopilot, s.held)
	}

	return runner.Run(ctx)
}
