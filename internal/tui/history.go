package tui

import (
	"context"
	"fmt"
	"strings"

	"raceready/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
)

const historyListSize = 12

// HistoryModel shows saved VDOT snapshots over time
type HistoryModel struct {
	predictor Predictor
	limit     int
	entries   []service.HistoryEntry
	loading   bool
	err       error
}

// NewHistoryModel creates a new history model
func NewHistoryModel(p Predictor, limit int) HistoryModel {
	return HistoryModel{predictor: p, limit: limit, loading: true}
}

// Init initializes the history screen
func (m HistoryModel) Init() tea.Cmd {
	return m.loadHistory
}

type historyLoadedMsg struct {
	entries []service.HistoryEntry
	err     error
}

func (m HistoryModel) loadHistory() tea.Msg {
	entries, err := m.predictor.History(context.Background(), m.limit)
	return historyLoadedMsg{entries: entries, err: err}
}

// Update handles messages
func (m HistoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		m.loading = false
		m.entries = msg.entries
		m.err = msg.err
	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, m.loadHistory
		}
	}
	return m, nil
}

// View renders the history screen
func (m HistoryModel) View() string {
	if m.loading {
		return "\n  Loading history..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if len(m.entries) == 0 {
		return helpDescStyle.Render("\n  No saved snapshots yet. Press s on the predictions screen to save one.")
	}

	sections := []string{m.renderChart(), m.renderList()}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m HistoryModel) renderChart() string {
	title := cardTitleStyle.Render("VDOT Trend")
	if len(m.entries) < 2 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "Need at least two snapshots to chart"))
	}

	data := make([]float64, len(m.entries))
	for i, e := range m.entries {
		data[i] = e.VDOT
	}
	graph := asciigraph.Plot(data,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(1),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m HistoryModel) renderList() string {
	title := cardTitleStyle.Render("Recent Snapshots")
	rows := []string{
		tableHeaderStyle.Render(fmt.Sprintf("%-12s  %6s  %-10s  %s", "As of", "VDOT", "Confidence", "Computed")),
	}

	// entries are oldest first; list newest first
	shown := 0
	for i := len(m.entries) - 1; i >= 0 && shown < historyListSize; i-- {
		e := m.entries[i]
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-12s  %6.1f  %-10s  %s",
			e.AsOf.Format("Jan 02 2006"),
			e.VDOT,
			confidenceStyle(e.Confidence).Render(fmt.Sprintf("%-10s", e.Confidence)),
			humanize.Time(e.ComputedAt),
		)))
		shown++
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(rows, "\n")))
}
