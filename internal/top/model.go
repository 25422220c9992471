// Package top renders a live view of per-thread CPU usage in the terminal.
package top

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/voluzi/debugpilot/pkg/cpusampler"
)

const (
	barWidth   = 20
	nameWidth  = 32
	reservedUI = 6
)

// RecordMsg delivers a sampled record to the model.
type RecordMsg struct {
	Record cpusampler.TimeAndThreadCpuUsages
}

// ErrMsg reports that the record source failed. The model quits on it.
type ErrMsg struct {
	Err error
}

type sortOrder int

const (
	byUsage sortOrder = iota
	byName
)

// Model is the bubbletea model for the top view.
type Model struct {
	width  int
	height int
	latest *cpusampler.TimeAndThreadCpuUsages
	peaks  map[int64]int
	order  sortOrder
	err    error
}

func NewModel() Model {
	return Model{peaks: make(map[int64]int)}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Sort):
			if m.order == byUsage {
				m.order = byName
			} else {
				m.order = byUsage
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case RecordMsg:
		record := msg.Record
		m.latest = &record
		peaks := make(map[int64]int, len(m.peaks))
		for k, v := range m.peaks {
			peaks[k] = v
		}
		for _, usage := range record.ThreadCpuUsages {
			if usage.CPUUsage > peaks[usage.ThreadID] {
				peaks[usage.ThreadID] = usage.CPUUsage
			}
		}
		m.peaks = peaks

	case ErrMsg:
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) rows() []cpusampler.ThreadCpuUsage {
	if m.latest == nil {
		return nil
	}
	rows := append([]cpusampler.ThreadCpuUsage(nil), m.latest.ThreadCpuUsages...)
	sort.SliceStable(rows, func(i, j int) bool {
		if m.order == byUsage && rows[i].CPUUsage != rows[j].CPUUsage {
			return rows[i].CPUUsage > rows[j].CPUUsage
		}
		if rows[i].ThreadName != rows[j].ThreadName {
			return rows[i].ThreadName < rows[j].ThreadName
		}
		return rows[i].ThreadID < rows[j].ThreadID
	})
	if m.height > reservedUI && len(rows) > m.height-reservedUI {
		rows = rows[:m.height-reservedUI]
	}
	return rows
}

func (m Model) View() string {
	if m.err != nil {
		return styleError.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
	}
	if m.latest == nil {
		return "Waiting for samples...\n"
	}

	title := styleTitle.Render(fmt.Sprintf("Thread CPU usage at %s", m.latest.Time.Format("15:04:05")))
	header := styleHeader.Render(fmt.Sprintf("%-8s %-*s %5s %5s  %s", "TID", nameWidth, "THREAD", "CPU", "PEAK", "USAGE"))

	lines := []string{title, header}
	for _, row := range m.rows() {
		lines = append(lines, fmt.Sprintf("%-8d %-*s %4d%% %4d%%  %s",
			row.ThreadID, nameWidth, truncate(row.ThreadName, nameWidth),
			row.CPUUsage, m.peaks[row.ThreadID], renderBar(row.CPUUsage)))
	}
	lines = append(lines, styleFooter.Render("q: quit | s: sort"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderBar(usage int) string {
	filled := usage * barWidth / cpusampler.MaxUsage
	if usage > 0 && filled == 0 {
		filled = 1
	}
	return usageStyle(usage).Render(strings.Repeat("█", filled)) + strings.Repeat("·", barWidth-filled)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
