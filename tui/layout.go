package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/truncate"
)

const (
	detailPanelWidth  = 36
	detailPanelHeight = 7
	minCanvasWidth    = 40
	minCanvasHeight   = 10
	tabBarHeight      = 1
	statusBarHeight   = 1
	summaryHeight     = 1
	borderSize        = 2
)

type viewTab int

const (
	tabCurve viewTab = iota
	tabComponents
	tabScatter
	tabCount
)

type layoutDimensions struct {
	totalWidth   int
	totalHeight  int
	canvasWidth  int
	canvasHeight int
}

func (model Model) calculateLayout() layoutDimensions {
	marginX := 2
	marginY := 2

	totalWidth := model.width - marginX
	totalHeight := model.height - marginY

	canvasHeight := totalHeight - tabBarHeight - summaryHeight - statusBarHeight
	if canvasHeight < minCanvasHeight {
		canvasHeight = minCanvasHeight
	}

	canvasWidth := totalWidth
	if canvasWidth < minCanvasWidth {
		canvasWidth = minCanvasWidth
	}

	return layoutDimensions{
		totalWidth:   totalWidth,
		totalHeight:  totalHeight,
		canvasWidth:  canvasWidth,
		canvasHeight: canvasHeight,
	}
}

type styles struct {
	title       lipgloss.Style
	canvas      lipgloss.Style
	overlay     lipgloss.Style
	tabActive   lipgloss.Style
	tabInactive lipgloss.Style
	tabBar      lipgloss.Style
	statusBar   lipgloss.Style
	highlight   lipgloss.Style
	threshold   lipgloss.Style
	selection   lipgloss.Style
	dim         lipgloss.Style
}

func newStyles() styles {
	accentColor := lipgloss.Color("#FF87D7")
	borderColor := lipgloss.Color("#5F5FAF")
	canvasBorderColor := lipgloss.Color("#FF8700")
	dimColor := lipgloss.Color("#6C6C6C")
	bgColor := lipgloss.Color("#303030")

	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor),

		canvas: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(canvasBorderColor),

		overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Background(bgColor).
			Padding(0, 1),

		tabActive: lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor).
			Padding(0, 1),

		tabInactive: lipgloss.NewStyle().
			Foreground(dimColor).
			Padding(0, 1),

		tabBar: lipgloss.NewStyle().
			Foreground(dimColor),

		statusBar: lipgloss.NewStyle().
			Foreground(dimColor),

		highlight: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")),

		threshold: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		selection: lipgloss.NewStyle().
			Foreground(lipgloss.Color("118")),

		dim: lipgloss.NewStyle().
			Foreground(dimColor),
	}
}

func (model Model) renderTabBar(s styles, width int) string {
	tabs := []struct {
		name string
		tab  viewTab
	}{
		{"Variance", tabCurve},
		{"Components", tabComponents},
		{"PC1/PC2", tabScatter},
	}

	var parts []string
	for _, t := range tabs {
		style := s.tabInactive
		if t.tab == model.activeTab {
			style = s.tabActive
		}
		parts = append(parts, style.Render(t.name))
	}

	tabRow := strings.Join(parts, s.tabBar.Render(" │ "))
	title := s.title.Render("latentpca")

	tabWidth := lipgloss.Width(tabRow)
	titleWidth := lipgloss.Width(title)
	gap := width - tabWidth - titleWidth
	if gap < 1 {
		gap = 1
	}

	return tabRow + strings.Repeat(" ", gap) + title
}

func (model Model) renderContentArea(s styles, layout layoutDimensions) string {
	canvasInnerWidth := layout.canvasWidth - borderSize
	canvasInnerHeight := layout.canvasHeight - borderSize

	var content string
	switch model.activeTab {
	case tabComponents:
		content = model.renderComponentTable(s, canvasInnerWidth, canvasInnerHeight)
	case tabScatter:
		content = model.renderScatterCanvas(s, canvasInnerWidth, canvasInnerHeight)
	default:
		content = model.renderCurveCanvas(s, canvasInnerWidth, canvasInnerHeight)
	}

	canvasBox := s.canvas.
		Width(canvasInnerWidth).
		Height(canvasInnerHeight).
		Render(content)

	if model.showDetails && model.activeTab != tabScatter {
		canvasBox = model.overlayDetailPanel(canvasBox, s, layout)
	}

	return canvasBox
}

func (model Model) overlayDetailPanel(base string, s styles, layout layoutDimensions) string {
	panelInnerWidth := detailPanelWidth - 4

	panel := s.overlay.
		Width(panelInnerWidth).
		Height(detailPanelHeight).
		Render(model.renderDetails(s, panelInnerWidth))

	return overlayAt(base, panel, layout.canvasWidth-detailPanelWidth-1, 1)
}

// renderDetails describes the component under the cursor.
func (model Model) renderDetails(s styles, width int) string {
	componentNumber := model.cursor + 1
	ratio := model.variance.Ratios[model.cursor]
	cumulative := model.variance.Cumulative[model.cursor]

	meetsThreshold := "no"
	if cumulative >= model.variance.Threshold {
		meetsThreshold = "yes"
	}

	lines := []string{
		s.highlight.Render(fmt.Sprintf("PC%d", componentNumber)),
		fmt.Sprintf("ratio       %.4f", ratio),
		fmt.Sprintf("cumulative  %.4f", cumulative),
		fmt.Sprintf("threshold   %.4f", model.variance.Threshold),
		fmt.Sprintf("meets it    %s", meetsThreshold),
	}
	if componentNumber == model.variance.Components {
		lines = append(lines, s.selection.Render("selected component count"))
	}

	for lineIndex, line := range lines {
		lines[lineIndex] = truncate.String(line, uint(width))
	}
	return strings.Join(lines, "\n")
}

func overlayAt(base, overlay string, x, y int) string {
	bgLines, bgWidth := getLines(base)
	fgLines, fgWidth := getLines(overlay)
	bgHeight := len(bgLines)
	fgHeight := len(fgLines)

	if fgWidth >= bgWidth && fgHeight >= bgHeight {
		return overlay
	}

	if x > bgWidth-fgWidth {
		x = bgWidth - fgWidth
	}
	if y > bgHeight-fgHeight {
		y = bgHeight - fgHeight
	}
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}

	var b strings.Builder
	for i, bgLine := range bgLines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if i < y || i >= y+fgHeight {
			b.WriteString(bgLine)
			continue
		}

		pos := 0
		if x > 0 {
			left := truncate.String(bgLine, uint(x))
			pos = ansi.StringWidth(left)
			b.WriteString(left)
			if pos < x {
				b.WriteString(strings.Repeat(" ", x-pos))
				pos = x
			}
		}

		fgLine := fgLines[i-y]
		b.WriteString(fgLine)
		pos += ansi.StringWidth(fgLine)

		right := ansi.TruncateLeft(bgLine, pos, "")
		lineWidth := ansi.StringWidth(bgLine)
		rightWidth := ansi.StringWidth(right)
		if rightWidth <= lineWidth-pos {
			b.WriteString(strings.Repeat(" ", lineWidth-rightWidth-pos))
		}
		b.WriteString(right)
	}

	return b.String()
}

func getLines(s string) ([]string, int) {
	lines := strings.Split(s, "\n")
	widest := 0
	for _, l := range lines {
		w := ansi.StringWidth(l)
		if widest < w {
			widest = w
		}
	}
	return lines, widest
}

func (model Model) renderStatusBar(s styles, width int) string {
	var help string
	switch model.activeTab {
	case tabScatter:
		help = "↑↓: select point │ 1-3/Tab: tabs │ q: quit"
	default:
		help = "←→/↑↓: move │ s: selected │ /: details │ 1-3/Tab: tabs │ q: quit"
	}

	version := model.version
	padding := width - lipgloss.Width(help) - lipgloss.Width(version)
	if padding < 1 {
		padding = 1
	}

	return s.statusBar.Render(help + strings.Repeat(" ", padding) + version)
}
