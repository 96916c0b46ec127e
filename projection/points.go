package projection

import (
	"gonum.org/v1/gonum/mat"
)

// Point2D represents a single data point projected into 2D space for visualization.
// It preserves a text label for display in the UI.
type Point2D struct {
	X, Y float64
	Text string
}

// PointsFromProjection turns the first two columns of a projected matrix into labelled
// points. A single-column projection is laid out along the X axis.
func PointsFromProjection(projectedCoordinates mat.Matrix, textLabels []string) []Point2D {
	if projectedCoordinates == nil {
		return nil
	}

	numberOfVectors, numberOfComponents := projectedCoordinates.Dims()
	if numberOfVectors == 0 || numberOfComponents == 0 {
		return nil
	}

	points := make([]Point2D, numberOfVectors)
	for vectorIndex := 0; vectorIndex < numberOfVectors; vectorIndex++ {
		xCoordinate := projectedCoordinates.At(vectorIndex, 0)
		yCoordinate := 0.0
		if numberOfComponents > 1 {
			yCoordinate = projectedCoordinates.At(vectorIndex, 1)
		}

		points[vectorIndex] = Point2D{
			X:    xCoordinate,
			Y:    yCoordinate,
			Text: getTextLabelAtIndex(textLabels, vectorIndex),
		}
	}

	return points
}

// getTextLabelAtIndex safely retrieves a text label, returning empty string if index is out of bounds.
func getTextLabelAtIndex(textLabels []string, index int) string {
	if index < len(textLabels) {
		return textLabels[index]
	}
	return ""
}
