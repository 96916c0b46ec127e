package tui

import (
	"fmt"
	"strings"

	"github.com/alDuncanson/latentpca/projection"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const (
	// yAxisLabelWidth leaves room for tick labels such as "1.00 ┤".
	yAxisLabelWidth = 6
	xAxisLabelRows  = 2
	// maxLabelledPoints is the most scatter points drawn with their text labels.
	maxLabelledPoints = 30
	maxLabelLength    = 12
)

// canvasCell represents a single character cell on the visualization canvas.
type canvasCell struct {
	char  rune
	style lipgloss.Style
}

// initializeCanvasGrid creates a 2D grid of empty canvas cells.
func initializeCanvasGrid(canvasWidth, canvasHeight int) [][]canvasCell {
	canvasGrid := make([][]canvasCell, canvasHeight)
	for rowIndex := range canvasGrid {
		canvasGrid[rowIndex] = make([]canvasCell, canvasWidth)
		for columnIndex := range canvasGrid[rowIndex] {
			canvasGrid[rowIndex][columnIndex] = canvasCell{char: ' ', style: lipgloss.NewStyle()}
		}
	}
	return canvasGrid
}

// writeTextOnCanvas places text starting at the given cell, clipping at the right edge.
func writeTextOnCanvas(canvasGrid [][]canvasCell, rowIndex, columnIndex int, text string, style lipgloss.Style) {
	if rowIndex < 0 || rowIndex >= len(canvasGrid) {
		return
	}
	for characterOffset, character := range []rune(text) {
		targetColumn := columnIndex + characterOffset
		if targetColumn >= 0 && targetColumn < len(canvasGrid[rowIndex]) {
			canvasGrid[rowIndex][targetColumn] = canvasCell{char: character, style: style}
		}
	}
}

// renderCurveCanvas draws the cumulative explained variance curve with a horizontal
// line at the threshold and a vertical line at the selected component count.
func (model Model) renderCurveCanvas(s styles, canvasWidth, canvasHeight int) string {
	canvasGrid := initializeCanvasGrid(canvasWidth, canvasHeight)

	// Define the plotting area to the right of the y axis labels and above the x axis
	plotLeft := yAxisLabelWidth
	plotWidth := canvasWidth - plotLeft - 1
	plotHeight := canvasHeight - xAxisLabelRows
	if plotWidth < 2 || plotHeight < 2 {
		return canvasGridToString(canvasGrid)
	}

	componentCount := len(model.variance.Cumulative)
	columnForComponent := func(componentIndex int) int {
		if componentCount == 1 {
			return plotLeft + plotWidth/2
		}
		return plotLeft + componentIndex*(plotWidth-1)/(componentCount-1)
	}
	rowForValue := func(value float64) int {
		if value < 0 {
			value = 0
		}
		if value > 1 {
			value = 1
		}
		return int(float64(plotHeight-1) * (1 - value))
	}

	// Draw the y axis with ticks at 0, 0.5 and 1
	for rowIndex := 0; rowIndex < plotHeight; rowIndex++ {
		canvasGrid[rowIndex][plotLeft-1] = canvasCell{char: '│', style: s.dim}
	}
	for _, tick := range []float64{0, 0.5, 1} {
		tickRow := rowForValue(tick)
		writeTextOnCanvas(canvasGrid, tickRow, 0, fmt.Sprintf("%4.2f", tick), s.dim)
		canvasGrid[tickRow][plotLeft-1] = canvasCell{char: '┤', style: s.dim}
	}

	// Draw the x axis labels for the first, selected and last components
	xAxisRow := plotHeight
	for columnIndex := plotLeft; columnIndex < plotLeft+plotWidth; columnIndex++ {
		canvasGrid[xAxisRow][columnIndex] = canvasCell{char: '─', style: s.dim}
	}
	for _, componentIndex := range []int{0, model.variance.Components - 1, componentCount - 1} {
		label := fmt.Sprintf("%d", componentIndex+1)
		writeTextOnCanvas(canvasGrid, xAxisRow+1, columnForComponent(componentIndex)-len(label)/2, label, s.dim)
	}

	// Draw the threshold and selection reference lines first so the curve sits on top
	thresholdRow := rowForValue(model.variance.Threshold)
	drawLineOnCanvas(canvasGrid, plotLeft, thresholdRow, plotLeft+plotWidth-1, thresholdRow, '─', s.threshold)
	selectionColumn := columnForComponent(model.variance.Components - 1)
	drawLineOnCanvas(canvasGrid, selectionColumn, 0, selectionColumn, plotHeight-1, '│', s.selection)

	// Connect consecutive points, then draw the point markers
	for componentIndex := 1; componentIndex < componentCount; componentIndex++ {
		drawLineOnCanvas(canvasGrid,
			columnForComponent(componentIndex-1), rowForValue(model.variance.Cumulative[componentIndex-1]),
			columnForComponent(componentIndex), rowForValue(model.variance.Cumulative[componentIndex]),
			'·', s.title)
	}
	for componentIndex, value := range model.variance.Cumulative {
		marker := canvasCell{char: '●', style: s.title}
		if componentIndex == model.cursor {
			marker = canvasCell{char: '◆', style: s.highlight}
		}
		canvasGrid[rowForValue(value)][columnForComponent(componentIndex)] = marker
	}

	// Legend in the bottom right corner of the plot area
	legendLines := []struct {
		text  string
		style lipgloss.Style
	}{
		{"── " + projection.ThresholdPercent(model.variance.Threshold) + "% Explained Variance", s.threshold},
		{fmt.Sprintf("│  %d Components", model.variance.Components), s.selection},
	}
	for lineIndex, line := range legendLines {
		legendColumn := plotLeft + plotWidth - len([]rune(line.text)) - 1
		writeTextOnCanvas(canvasGrid, plotHeight-len(legendLines)-1+lineIndex, legendColumn, line.text, line.style)
	}

	return canvasGridToString(canvasGrid)
}

// renderScatterCanvas draws every sample at its (PC1, PC2) coordinates.
func (model Model) renderScatterCanvas(s styles, canvasWidth, canvasHeight int) string {
	canvasGrid := initializeCanvasGrid(canvasWidth, canvasHeight)

	// Handle empty state - show placeholder message
	if len(model.points) == 0 {
		placeholderMessage := "No projected samples"
		writeTextOnCanvas(canvasGrid, canvasHeight/2, (canvasWidth-len(placeholderMessage))/2, placeholderMessage, s.dim)
		return canvasGridToString(canvasGrid)
	}

	// Calculate the bounding box of all points, avoiding division by zero
	minimumX, maximumX, minimumY, maximumY := calculatePointBounds(model.points)
	rangeX := maximumX - minimumX
	rangeY := maximumY - minimumY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	paddingSize := 1
	plotAreaWidth := canvasWidth - 2*paddingSize
	plotAreaHeight := canvasHeight - 2*paddingSize
	showLabels := len(model.points) <= maxLabelledPoints

	var selectedColumn, selectedRow int
	for pointIndex, point := range model.points {
		// Map normalized coordinates to grid positions, with PC2 increasing upwards
		columnIndex := paddingSize + int((point.X-minimumX)/rangeX*float64(plotAreaWidth-1))
		rowIndex := paddingSize + int((maximumY-point.Y)/rangeY*float64(plotAreaHeight-1))

		if pointIndex == model.pointCursor {
			selectedColumn, selectedRow = columnIndex, rowIndex
			continue
		}

		canvasGrid[rowIndex][columnIndex] = canvasCell{char: '○', style: s.dim}
		if showLabels {
			writeTextOnCanvas(canvasGrid, rowIndex, columnIndex+2, truncate.String(point.Text, maxLabelLength), s.dim)
		}
	}

	// The selected point always renders on top with its label
	selectedPoint := model.points[model.pointCursor]
	canvasGrid[selectedRow][selectedColumn] = canvasCell{char: '◆', style: s.highlight}
	writeTextOnCanvas(canvasGrid, selectedRow, selectedColumn+2, truncate.String(selectedPoint.Text, maxLabelLength), s.selection)

	coordinates := fmt.Sprintf("%s  PC1 %.3f  PC2 %.3f", selectedPoint.Text, selectedPoint.X, selectedPoint.Y)
	writeTextOnCanvas(canvasGrid, 0, 0, truncate.String(coordinates, uint(canvasWidth)), s.highlight)

	return canvasGridToString(canvasGrid)
}

// renderComponentTable lists every component with its ratio, cumulative ratio and a
// proportional bar, scrolled so the cursor row stays visible.
func (model Model) renderComponentTable(s styles, width, height int) string {
	header := fmt.Sprintf("%-6s %10s %12s  %s", "PC", "ratio", "cumulative", "")
	barWidth := width - lipgloss.Width(header) - 1
	if barWidth < 0 {
		barWidth = 0
	}

	visibleRows := height - 1
	if visibleRows < 1 {
		visibleRows = 1
	}
	firstRow := 0
	if model.cursor >= visibleRows {
		firstRow = model.cursor - visibleRows + 1
	}

	lines := []string{s.dim.Render(truncate.String(header, uint(width)))}
	for componentIndex := firstRow; componentIndex < len(model.variance.Ratios) && componentIndex < firstRow+visibleRows; componentIndex++ {
		ratio := model.variance.Ratios[componentIndex]
		bar := strings.Repeat("█", int(ratio*float64(barWidth)+0.5))
		line := fmt.Sprintf("%-6s %10.4f %12.4f  %s", fmt.Sprintf("PC%d", componentIndex+1), ratio, model.variance.Cumulative[componentIndex], bar)
		line = truncate.String(line, uint(width))

		switch {
		case componentIndex == model.cursor:
			line = s.highlight.Render(line)
		case componentIndex < model.variance.Components:
			line = s.selection.Render(line)
		default:
			line = s.dim.Render(line)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

// calculatePointBounds finds the min/max X and Y coordinates across all points.
func calculatePointBounds(points []projection.Point2D) (minimumX, maximumX, minimumY, maximumY float64) {
	minimumX, maximumX = points[0].X, points[0].X
	minimumY, maximumY = points[0].Y, points[0].Y

	for _, point := range points {
		if point.X < minimumX {
			minimumX = point.X
		}
		if point.X > maximumX {
			maximumX = point.X
		}
		if point.Y < minimumY {
			minimumY = point.Y
		}
		if point.Y > maximumY {
			maximumY = point.Y
		}
	}
	return
}

// canvasGridToString converts the 2D canvas grid into a renderable string.
func canvasGridToString(canvasGrid [][]canvasCell) string {
	var outputBuilder strings.Builder

	for rowIndex, gridRow := range canvasGrid {
		for _, cell := range gridRow {
			outputBuilder.WriteString(cell.style.Render(string(cell.char)))
		}
		// Add newline between rows, but not after the last row
		if rowIndex < len(canvasGrid)-1 {
			outputBuilder.WriteString("\n")
		}
	}

	return outputBuilder.String()
}

// drawLineOnCanvas uses Bresenham's line algorithm to draw a line between two points.
// Only empty cells are filled, so anything drawn earlier stays visible.
func drawLineOnCanvas(canvasGrid [][]canvasCell, startX, startY, endX, endY int, lineCharacter rune, lineStyle lipgloss.Style) {
	// Calculate the absolute distance to travel in each dimension
	deltaX := absoluteValue(endX - startX)
	deltaY := absoluteValue(endY - startY)

	// Determine the direction of travel for each axis (1 = positive, -1 = negative)
	stepDirectionX := 1
	if startX > endX {
		stepDirectionX = -1
	}
	stepDirectionY := 1
	if startY > endY {
		stepDirectionY = -1
	}

	// The error term tracks the distance between the ideal line and the current cell
	errorTerm := deltaX - deltaY

	currentX := startX
	currentY := startY

	for {
		if currentY >= 0 && currentY < len(canvasGrid) && currentX >= 0 && currentX < len(canvasGrid[0]) {
			if canvasGrid[currentY][currentX].char == ' ' {
				canvasGrid[currentY][currentX] = canvasCell{char: lineCharacter, style: lineStyle}
			}
		}

		if currentX == endX && currentY == endY {
			break
		}

		// Doubling the error keeps the arithmetic in integers
		doubledError := 2 * errorTerm

		if doubledError > -deltaY {
			errorTerm -= deltaY
			currentX += stepDirectionX
		}

		if doubledError < deltaX {
			errorTerm += deltaX
			currentY += stepDirectionY
		}
	}
}

func absoluteValue(number int) int {
	if number < 0 {
		return -number
	}
	return number
}
