// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/Thermoquad/kspio/pkg/serialio"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Event log entry
type eventLogEntry struct {
	timestamp time.Time
	message   string
	isError   bool // true for errors, false for control events
}

// Control state sampled from the session
type controlSnapshot struct {
	x, y      float32
	rawX      int
	rawY      int
	throttle  float32
	docking   bool
	held      []int
	autopilot string
	warp      int
	stats     serialio.Statistics
}

// TUI model
type model struct {
	connInfo      string
	displayInfo   string
	started       time.Time
	eventLog      []eventLogEntry
	maxLogEntries int
	last          *controlSnapshot
	bar           progress.Model
	width         int
	height        int
	quitting      bool
}

// Messages
type tickMsg time.Time
type snapshotMsg controlSnapshot
type eventMsg struct {
	message string
	isError bool
}

// formatUptime formats uptime in milliseconds to human-friendly string
func formatUptime(ms uint64) string {
	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	seconds %= 60
	minutes %= 60
	hours %= 24

	plural := func(n uint64, unit string) string {
		if n == 1 {
			return "1 " + unit
		}
		return fmt.Sprintf("%d %ss", n, unit)
	}

	parts := []string{}
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, plural(seconds, "second"))
	}

	// Join with commas and "and" for last item
	if len(parts) == 1 {
		return parts[0]
	}
	if len(parts) == 2 {
		return parts[0] + " and " + parts[1]
	}
	last := parts[len(parts)-1]
	rest := strings.Join(parts[:len(parts)-1], ", ")
	return rest + ", and " + last
}

func initialModel(connInfo, displayInfo string) model {
	return model{
		connInfo:      connInfo,
		displayInfo:   displayInfo,
		started:       time.Now(),
		eventLog:      make([]eventLogEntry, 0),
		maxLogEntries: 100,
		bar:           progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(30)),
		width:         80,
		height:        24,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.EnterAltScreen,
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		// Redraw for the uptime counter
		return m, tickCmd()

	case snapshotMsg:
		s := controlSnapshot(msg)
		if m.last != nil && m.last.stats.ParseErrors < s.stats.ParseErrors {
			m.addLogEntry(fmt.Sprintf("%d malformed report(s)", s.stats.ParseErrors-m.last.stats.ParseErrors), true)
		}
		if m.last != nil && m.last.stats.LineErrors < s.stats.LineErrors {
			m.addLogEntry(fmt.Sprintf("%d line error(s)", s.stats.LineErrors-m.last.stats.LineErrors), true)
		}
		m.last = &s

	case eventMsg:
		m.addLogEntry(msg.message, msg.isError)
	}

	return m, nil
}

func (m *model) addLogEntry(message string, isError bool) {
	entry := eventLogEntry{
		timestamp: time.Now(),
		message:   message,
		isError:   isError,
	}
	m.eventLog = append(m.eventLog, entry)

	// Keep only last N entries
	if len(m.eventLog) > m.maxLogEntries {
		m.eventLog = m.eventLog[len(m.eventLog)-m.maxLogEntries:]
	}
}

// axisPercent maps [-1, 1] onto a progress bar
func axisPercent(v float32) float64 {
	return (float64(v) + 1) / 2
}

func (m model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	statsLabelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	statsValueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	// Header
	var s strings.Builder
	s.WriteString(titleStyle.Render("KSPIO - PANEL MONITOR"))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Panel: %s | Display: %s | Up %s | Press 'q' to quit",
		m.connInfo, m.displayInfo, formatUptime(uint64(time.Since(m.started).Milliseconds())))))
	s.WriteString("\n\n")

	if m.last == nil {
		s.WriteString(warningStyle.Render("⏳ Waiting for the first panel report..."))
		s.WriteString("\n\n")
	} else {
		st := m.last.stats
		var validPercent float64
		if st.TotalReports > 0 {
			validPercent = float64(st.ValidReports) * 100.0 / float64(st.TotalReports)
		}

		statsContent := strings.Builder{}
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
			statsLabelStyle.Render("Reports:"), statsValueStyle.Render(fmt.Sprintf("%d", st.TotalReports)),
			statsLabelStyle.Render("Valid:"), statsValueStyle.Render(fmt.Sprintf("%d (%.1f%%)", st.ValidReports, validPercent)),
			statsLabelStyle.Render("Errors:"), errorStyle.Render(fmt.Sprintf("%d", st.TotalErrors())),
		))
		statsContent.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s",
			statsLabelStyle.Render("Report Rate:"), statsValueStyle.Render(fmt.Sprintf("%.1f/s", st.ReportRate)),
			statsLabelStyle.Render("Error Rate:"), func() string {
				if st.ErrorRate > 0 {
					return errorStyle.Render(fmt.Sprintf("%.1f err/s", st.ErrorRate))
				}
				return statsValueStyle.Render(fmt.Sprintf("%.1f err/s", st.ErrorRate))
			}(),
			statsLabelStyle.Render("Frames Sent:"), statsValueStyle.Render(fmt.Sprintf("%d", st.FramesSent)),
		))
		s.WriteString(boxStyle.Render(statsContent.String()))
		s.WriteString("\n\n")

		mode := "STAGING"
		if m.last.docking {
			mode = "DOCKING"
		}

		controls := strings.Builder{}
		controls.WriteString(fmt.Sprintf("%s %s   %s %s   %s %d\n",
			statsLabelStyle.Render("Mode:"), statsValueStyle.Render(mode),
			statsLabelStyle.Render("Autopilot:"), statsValueStyle.Render(m.last.autopilot),
			statsLabelStyle.Render("Warp:"), m.last.warp,
		))
		controls.WriteString(fmt.Sprintf("%s %s %+.2f (raw %d)\n",
			statsLabelStyle.Render("X:       "), m.bar.ViewAs(axisPercent(m.last.x)), m.last.x, m.last.rawX))
		controls.WriteString(fmt.Sprintf("%s %s %+.2f (raw %d)\n",
			statsLabelStyle.Render("Y:       "), m.bar.ViewAs(axisPercent(m.last.y)), m.last.y, m.last.rawY))
		controls.WriteString(fmt.Sprintf("%s %s %+.2f\n",
			statsLabelStyle.Render("Throttle:"), m.bar.ViewAs(axisPercent(m.last.throttle)), m.last.throttle))
		controls.WriteString(fmt.Sprintf("%s %v",
			statsLabelStyle.Render("Held:"), m.last.held))

		s.WriteString(boxStyle.Render(controls.String()))
		s.WriteString("\n\n")
	}

	// Event log
	s.WriteString(statsLabelStyle.Render("Recent Events:"))
	s.WriteString("\n")

	// Calculate how many log entries we can show
	logHeight := m.height - 20 // Reserve space for header, stats and controls
	if logHeight < 5 {
		logHeight = 5
	}

	logContent := strings.Builder{}
	startIdx := len(m.eventLog) - logHeight
	if startIdx < 0 {
		startIdx = 0
	}

	if len(m.eventLog) == 0 {
		logContent.WriteString(headerStyle.Render("  (no events yet)"))
	} else {
		for i := startIdx; i < len(m.eventLog); i++ {
			entry := m.eventLog[i]
			timestamp := entry.timestamp.Format("15:04:05.000")
			if entry.isError {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					errorStyle.Render("✗ "+entry.message),
				))
			} else {
				logContent.WriteString(fmt.Sprintf("%s %s\n",
					headerStyle.Render(timestamp),
					warningStyle.Render("ℹ "+entry.message),
				))
			}
		}
	}

	s.WriteString(boxStyle.Width(m.width - 4).Render(logContent.String()))

	return s.String()
}
