package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"raceready/internal/engine"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PredictionsModel is the race predictions screen model
type PredictionsModel struct {
	predictor Predictor
	units     Units
	result    *engine.Result
	viewport  viewport.Model
	loading   bool
	saved     bool
	err       error
	width     int
	height    int
	ready     bool
}

// NewPredictionsModel creates a new predictions model
func NewPredictionsModel(p Predictor, units Units, width, height int) PredictionsModel {
	m := PredictionsModel{
		predictor: p,
		units:     units,
		loading:   true,
		width:     width,
		height:    height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init initializes the predictions screen
func (m PredictionsModel) Init() tea.Cmd {
	return m.loadPredictions
}

type predictionsLoadedMsg struct {
	result *engine.Result
	saved  bool
	err    error
}

func (m PredictionsModel) loadPredictions() tea.Msg {
	res, err := m.predictor.Evaluate(context.Background(), time.Now())
	return predictionsLoadedMsg{result: res, err: err}
}

func (m PredictionsModel) savePredictions() tea.Msg {
	res, err := m.predictor.Predict(context.Background(), time.Now())
	return predictionsLoadedMsg{result: res, saved: err == nil, err: err}
}

// Update handles messages
func (m PredictionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case predictionsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.result = msg.result
		m.saved = msg.saved
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.result != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadPredictions
		case "s":
			m.loading = true
			return m, m.savePredictions
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the predictions screen
func (m PredictionsModel) View() string {
	if m.loading {
		return "\n  Computing race predictions..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	help := "  j/k or arrows: scroll  r: recompute  s: save snapshot"
	if m.saved {
		help += "  " + successStyle.Render("snapshot saved")
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), statusStyle.Render(help))
}

func (m PredictionsModel) renderContent() string {
	if m.result == nil || len(m.result.Predictions) == 0 {
		return m.renderEmptyState()
	}

	sections := []string{
		"",
		cardTitleStyle.Render("Race Time Predictions"),
		m.renderVDOTInfo(),
		m.renderPredictionsTable(),
		m.renderSignalsTable(),
		m.renderFormSection(),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m PredictionsModel) renderEmptyState() string {
	emptyStyle := lipgloss.NewStyle().Foreground(mutedColor)
	lines := []string{
		"",
		cardTitleStyle.Render("Race Time Predictions"),
		emptyStyle.Render("  Not enough data to estimate fitness yet."),
		"",
		emptyStyle.Render("  Import a few runs with heart rate, or add a recent race result:"),
		emptyStyle.Render("    raceready import activity.fit"),
		emptyStyle.Render("    raceready race add -distance 5K -time 22:30 -date 2024-05-01"),
		"",
	}
	return strings.Join(lines, "\n")
}

func (m PredictionsModel) renderVDOTInfo() string {
	r := m.result
	vdotStyle := lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	labelStyle := lipgloss.NewStyle().Foreground(secondaryColor)
	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)

	lines := []string{
		fmt.Sprintf("  VDOT: %s (%s)  range %.1f-%.1f",
			vdotStyle.Render(fmt.Sprintf("%.1f", r.VDOT)),
			labelStyle.Render(r.VDOTLabel),
			r.VDOTRange.Low, r.VDOTRange.High,
		),
		fmt.Sprintf("  Confidence: %s  Agreement: %s",
			confidenceStyle(r.Confidence).Render(r.Confidence),
			RenderProgressBar(r.AgreementScore, 20),
		),
		mutedStyle.Render("  " + r.AgreementDetails),
		"",
	}
	return strings.Join(lines, "\n")
}

func (m PredictionsModel) renderPredictionsTable() string {
	lines := []string{
		sectionHeader("Predicted Times"),
		tableHeaderStyle.Render(fmt.Sprintf("%-14s  %9s  %9s  %9s  %-17s  %s",
			"Distance", "Predicted", "Tapered", "Pace", "Range", "Readiness")),
	}

	for _, p := range m.result.Predictions {
		lines = append(lines, tableRowStyle.Render(fmt.Sprintf("%-14s  %9s  %9s  %9s  %-17s  %s",
			p.Distance,
			FormatRaceTime(p.PredictedSeconds),
			FormatRaceTime(p.TaperedSeconds),
			m.units.FormatPace(p.PacePerMile),
			FormatRaceTime(p.Range.Fast)+" - "+FormatRaceTime(p.Range.Slow),
			RenderProgressBar(p.Readiness, 10),
		)))
		for _, reason := range p.AdjustmentReasons {
			lines = append(lines, helpDescStyle.Render("    "+reason))
		}
	}

	lines = append(lines, helpDescStyle.Render("  Pace in "+m.units.PaceLabel()), "")
	return strings.Join(lines, "\n")
}

func (m PredictionsModel) renderSignalsTable() string {
	lines := []string{
		sectionHeader("Signals"),
		tableHeaderStyle.Render(fmt.Sprintf("%-20s  %6s  %6s  %5s  %6s  %s",
			"Signal", "VDOT", "Weight", "Conf", "Points", "Detail")),
	}

	for _, s := range m.result.Signals {
		vdot := "-"
		if s.Kind == engine.KindEstimate {
			vdot = fmt.Sprintf("%.1f", s.EstimatedVDOT)
		}
		lines = append(lines, tableRowStyle.Render(fmt.Sprintf("%-20s  %6s  %5.0f%%  %5.2f  %6d  %s",
			s.Name, vdot, s.Weight*100, s.Confidence, s.DataPoints, s.Description)))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m PredictionsModel) renderFormSection() string {
	r := m.result
	trend := ""
	if r.FormAdjustmentPct != 0 {
		trend = fmt.Sprintf("%+.1f%%", r.FormAdjustmentPct)
	}

	q := r.DataQuality
	lines := []string{
		sectionHeader("Form & Data"),
		"  " + RenderMetric("Form", r.FormDescription, trend),
		"  " + RenderMetric("Signals used", fmt.Sprintf("%d", q.SignalsUsed), ""),
		"  " + RenderMetric("Heart rate data", yesNo(q.HasHR), ""),
		"  " + RenderMetric("Race results", yesNo(q.HasRaces), ""),
		"  " + RenderMetric("Recent data", yesNo(q.HasRecentData), ""),
		"",
	}
	return strings.Join(lines, "\n")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
