package tui

import (
	"context"
	"time"

	"raceready/internal/engine"
	"raceready/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Predictor is the slice of the prediction service the screens need
type Predictor interface {
	Evaluate(ctx context.Context, asOf time.Time) (*engine.Result, error)
	Predict(ctx context.Context, asOf time.Time) (*engine.Result, error)
	History(ctx context.Context, limit int) ([]service.HistoryEntry, error)
}

// Screen identifiers
type Screen int

const (
	ScreenPredictions Screen = iota
	ScreenHistory
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	predictions PredictionsModel
	history     HistoryModel
	help        HelpModel

	predictor    Predictor
	units        Units
	historyLimit int

	width  int
	height int
}

// NewApp creates a new App with all dependencies
func NewApp(p Predictor, units Units, historyLimit int) *App {
	return &App{
		screen:       ScreenPredictions,
		predictor:    p,
		units:        units,
		historyLimit: historyLimit,
		predictions:  NewPredictionsModel(p, units, 0, 0),
		history:      NewHistoryModel(p, historyLimit),
		help:         NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.predictions.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			a.screen = ScreenPredictions
			a.predictions = NewPredictionsModel(a.predictor, a.units, a.width, a.height)
			return a, a.predictions.Init()
		case "2":
			a.screen = ScreenHistory
			a.history = NewHistoryModel(a.predictor, a.historyLimit)
			return a, a.history.Init()
		case "?":
			if a.screen != ScreenHelp {
				a.prevScreen = a.screen
				a.screen = ScreenHelp
			}
			return a, nil
		case "esc":
			if a.screen == ScreenHelp {
				a.screen = a.prevScreen
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenPredictions:
		var m tea.Model
		m, cmd = a.predictions.Update(msg)
		a.predictions = m.(PredictionsModel)
	case ScreenHistory:
		var m tea.Model
		m, cmd = a.history.Update(msg)
		a.history = m.(HistoryModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenPredictions:
		content = a.predictions.View()
	case ScreenHistory:
		content = a.history.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("RaceReady - Race Time Predictions")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Predictions", ScreenPredictions},
		{"2", "History", ScreenHistory},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}
