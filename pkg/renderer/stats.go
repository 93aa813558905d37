package renderer

import (
	"fmt"
	"time"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels  int           // Pixels rendered successfully
	TotalSamples int           // Camera rays traced for those pixels
	FailedPixels int           // Pixels whose task failed and hold FailedPixelColor
	Workers      int           // Worker goroutines used
	Duration     time.Duration // Wall-clock render time
}

// SamplesPerSecond returns the camera ray throughput of the render
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.Duration.Seconds()
}

func (s RenderStats) String() string {
	return fmt.Sprintf("%d pixels, %d samples, %d failed, %d workers in %v (%.0f samples/s)",
		s.TotalPixels, s.TotalSamples, s.FailedPixels, s.Workers,
		s.Duration.Round(time.Millisecond), s.SamplesPerSecond())
}
