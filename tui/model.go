// Package tui provides an interactive terminal view of a PCA variance analysis. It
// plots the cumulative explained variance against the number of components, lists
// each component's share, and scatters the samples on the first two components.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alDuncanson/latentpca/projection"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Variance is the explained variance summary the view displays.
type Variance struct {
	Ratios     []float64
	Cumulative []float64
	Threshold  float64
	// Components is the 1-indexed component count selected for Threshold.
	Components int
	Samples    int
	Features   int
}

// Model is the bubbletea model for the variance viewer.
type Model struct {
	variance    Variance
	points      []projection.Point2D
	activeTab   viewTab
	cursor      int
	pointCursor int
	showDetails bool
	width       int
	height      int
	version     string
}

// NewModel creates a viewer for the given variance summary and 2D sample points.
// The cursor starts on the selected component.
func NewModel(variance Variance, points []projection.Point2D, version string) (Model, error) {
	if len(variance.Ratios) == 0 || len(variance.Ratios) != len(variance.Cumulative) {
		return Model{}, errors.New("variance ratios and cumulative ratios must be non-empty and of equal length")
	}
	if variance.Components < 1 || variance.Components > len(variance.Ratios) {
		return Model{}, fmt.Errorf("selected component count %d outside 1..%d", variance.Components, len(variance.Ratios))
	}

	return Model{
		variance: variance,
		points:   points,
		cursor:   variance.Components - 1,
		version:  version,
	}, nil
}

// Run shows the model full screen until the user quits or ctx is cancelled.
func Run(ctx context.Context, model Model) error {
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run terminal view: %w", err)
	}
	return nil
}

// Init implements tea.Model. The view is static, so there is nothing to load.
func (model Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state accordingly.
func (model Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch message := msg.(type) {
	case tea.KeyMsg:
		return model.handleKeyPress(message)
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
	}
	return model, nil
}

// handleKeyPress processes keyboard input and returns the updated model.
func (model Model) handleKeyPress(keyMessage tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMessage.String() {
	case "ctrl+c", "esc", "q":
		return model, tea.Quit
	case "tab":
		model.activeTab = (model.activeTab + 1) % tabCount
	case "shift+tab":
		model.activeTab = (model.activeTab + tabCount - 1) % tabCount
	case "1":
		model.activeTab = tabCurve
	case "2":
		model.activeTab = tabComponents
	case "3":
		model.activeTab = tabScatter
	case "left", "h":
		model.moveCursor(-1)
	case "right", "l":
		model.moveCursor(1)
	case "up", "k":
		if model.activeTab == tabCurve {
			model.moveCursor(1)
		} else {
			model.moveCursor(-1)
		}
	case "down", "j":
		if model.activeTab == tabCurve {
			model.moveCursor(-1)
		} else {
			model.moveCursor(1)
		}
	case "home", "g":
		model.cursor = 0
	case "end", "G":
		model.cursor = len(model.variance.Ratios) - 1
	case "s":
		model.cursor = model.variance.Components - 1
	case "/":
		model.showDetails = !model.showDetails
	}
	return model, nil
}

// moveCursor steps the component cursor, or the point cursor on the scatter tab,
// clamping at both ends.
func (model *Model) moveCursor(step int) {
	if model.activeTab == tabScatter {
		model.pointCursor = clamp(model.pointCursor+step, 0, len(model.points)-1)
		return
	}
	model.cursor = clamp(model.cursor+step, 0, len(model.variance.Ratios)-1)
}

func clamp(value, minimum, maximum int) int {
	if maximum < minimum {
		return minimum
	}
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}

// View renders the tab bar, the active tab's content and the status bar.
func (model Model) View() string {
	if model.width == 0 || model.height == 0 {
		return "Loading..."
	}

	s := newStyles()
	layout := model.calculateLayout()

	var outputBuilder strings.Builder
	outputBuilder.WriteString(model.renderTabBar(s, layout.totalWidth))
	outputBuilder.WriteString("\n")
	outputBuilder.WriteString(model.renderContentArea(s, layout))
	outputBuilder.WriteString("\n")
	outputBuilder.WriteString(model.renderSummary(s, layout.totalWidth))
	outputBuilder.WriteString("\n")
	outputBuilder.WriteString(model.renderStatusBar(s, layout.totalWidth))

	return lipgloss.NewStyle().Padding(1, 1).Render(outputBuilder.String())
}

// renderSummary repeats the run's headline numbers under the canvas.
func (model Model) renderSummary(s styles, width int) string {
	summary := fmt.Sprintf("(%d, %d) embeddings │ %d of %d components reach %s%% variance",
		model.variance.Samples, model.variance.Features,
		model.variance.Components, len(model.variance.Ratios),
		projection.ThresholdPercent(model.variance.Threshold))
	return s.dim.Width(width).Render(summary)
}
