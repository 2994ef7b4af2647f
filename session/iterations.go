package session

import "math"

// InitialIterations is the iteration cap of the first drawings.
const InitialIterations = 33

// GuessIterations picks an iteration cap for a view zoomed in zoomFactor
// times. Deeper views need more iterations to show detail; Julia sets need
// about twice as many.
func GuessIterations(zoomFactor float64, julia bool) int {
	if zoomFactor < 1 || math.IsNaN(zoomFactor) {
		zoomFactor = 1
	}
	logZoom := math.Log(zoomFactor)
	magnitude := logZoom/2.3 - 2
	if magnitude < 1 {
		magnitude = 1
	}
	iterations := float64(InitialIterations) * (magnitude*logZoom + 1)
	if julia {
		iterations *= 2
	}
	if iterations > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(iterations)
}
